package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/aquabot/core/telegram/state"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/storage"
	"github.com/m3rciful/aquabot/internal/view"
)

// botStore is an in-memory stand-in for the Postgres gateway with failure
// injection for the retry paths.
type botStore struct {
	users  map[int64]*models.User
	orders map[int64]*models.Order
	nextU  int64
	nextO  int64

	failCreateUser  error
	failCreateOrder error
	failSetRating   error
}

func newBotStore() *botStore {
	return &botStore{
		users:  map[int64]*models.User{},
		orders: map[int64]*models.Order{},
	}
}

func (f *botStore) GetUserByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *botStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *botStore) CreateUser(_ context.Context, telegramID int64, fullName, phone, address string) (*models.User, error) {
	if f.failCreateUser != nil {
		return nil, f.failCreateUser
	}
	f.nextU++
	u := &models.User{
		ID: f.nextU, TelegramID: telegramID,
		FullName: fullName, Phone: phone, Address: address,
		CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *botStore) UpdateUserProfile(_ context.Context, telegramID int64, fullName, phone, address string) error {
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			u.FullName, u.Phone, u.Address = fullName, phone, address
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *botStore) SetUserPrice(_ context.Context, userID int64, price *int) error {
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.CustomPrice = price
	return nil
}

func (f *botStore) ListUsers(_ context.Context, offset, limit int) ([]models.User, int, error) {
	var all []models.User
	for id := int64(1); id <= f.nextU; id++ {
		if u, ok := f.users[id]; ok {
			all = append(all, *u)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *botStore) CreateOrder(_ context.Context, in storage.NewOrder) (*models.Order, error) {
	if f.failCreateOrder != nil {
		return nil, f.failCreateOrder
	}
	f.nextO++
	o := &models.Order{
		ID: f.nextO, UserID: in.UserID,
		WaterType: in.WaterType, Quantity: in.Quantity,
		BottlePrice: in.BottlePrice, TotalPrice: in.TotalPrice,
		PaymentMethod: in.PaymentMethod, Status: models.StatusPending,
		Comment: in.Comment, CreatedAt: time.Now(),
	}
	f.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (f *botStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *botStore) GetOrderWithOwner(ctx context.Context, id int64) (*models.Order, *models.User, error) {
	o, err := f.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	u, err := f.GetUserByID(ctx, o.UserID)
	if err != nil {
		return nil, nil, err
	}
	return o, u, nil
}

func (f *botStore) ListOrdersForUser(_ context.Context, userID int64, limit int) ([]models.Order, error) {
	var out []models.Order
	for id := f.nextO; id >= 1 && len(out) < limit; id-- {
		if o, ok := f.orders[id]; ok && o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *botStore) ListActiveOrders(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for id := int64(1); id <= f.nextO; id++ {
		if o, ok := f.orders[id]; ok && !o.Status.Terminal() {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *botStore) SetOrderStatus(_ context.Context, id int64, status models.OrderStatus) error {
	o, ok := f.orders[id]
	if !ok {
		return storage.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *botStore) SetOrderRating(_ context.Context, id int64, rating int, feedback *string) error {
	if f.failSetRating != nil {
		return f.failSetRating
	}
	o, ok := f.orders[id]
	if !ok {
		return storage.ErrNotFound
	}
	o.Rating = &rating
	o.Feedback = feedback
	return nil
}

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(*models.Order, *models.User)        {}
func (noopNotifier) OrderStatusChanged(*models.Order, *models.User) {}
func (noopNotifier) OrderReceived(*models.Order, *models.User)      {}
func (noopNotifier) NegativeRating(*models.Order, *models.User)     {}

// testContext carries just enough of tele.Context for the dialogue handlers.
type testContext struct {
	tele.Context
	sender *tele.User
	data   map[string]interface{}
	text   string
	sent   []string
}

func newTestContext(userID int64) *testContext {
	return &testContext{
		sender: &tele.User{ID: userID},
		data:   map[string]interface{}{},
	}
}

func (c *testContext) Sender() *tele.User     { return c.sender }
func (c *testContext) Chat() *tele.Chat       { return &tele.Chat{ID: c.sender.ID} }
func (c *testContext) Update() tele.Update    { return tele.Update{} }
func (c *testContext) Message() *tele.Message { return nil }
func (c *testContext) Text() string           { return c.text }
func (c *testContext) Get(k string) interface{} {
	return c.data[k]
}
func (c *testContext) Set(k string, v interface{}) {
	c.data[k] = v
}
func (c *testContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}
func (c *testContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return c.Send(what, opts...)
}
func (c *testContext) Respond(_ ...*tele.CallbackResponse) error { return nil }

func newBotFixture(t *testing.T) (*Bot, *botStore, state.Manager) {
	t.Helper()
	store := newBotStore()
	users := service.NewUsers(store, 150)
	orders := service.NewOrders(store, users, noopNotifier{})
	fsm := state.NewMemoryManager()
	return New(users, orders, fsm, []int64{1}), store, fsm
}

func registerCustomer(t *testing.T, b *Bot) *models.User {
	t.Helper()
	u, err := b.users.Register(context.Background(), service.Registration{
		TelegramID: 42, FullName: "Ivan Petrov",
		Phone: "+79001234567", Address: "Lenina 5, apt 12",
	})
	require.NoError(t, err)
	return u
}

func TestOrderPriceQuotedAtFlowStart(t *testing.T) {
	b, _, fsm := newBotFixture(t)
	ctx := context.Background()
	u := registerCustomer(t, b)

	c := newTestContext(42)
	require.NoError(t, b.startOrder(c))
	fsm.SetTemp(42, tmpOrderWater, string(models.WaterEffect))
	fsm.SetTemp(42, tmpOrderQty, 3)
	fsm.SetTemp(42, tmpOrderPayment, view.PaymentCash)

	d, ok := b.draft(42, u)
	require.True(t, ok)
	assert.Equal(t, 150, d.BottlePrice)

	// An override landing mid-flow does not move the quote the customer saw.
	override := 999
	require.NoError(t, b.users.SetPrice(ctx, u.ID, &override))
	u, err := b.users.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	d, ok = b.draft(42, u)
	require.True(t, ok)
	assert.Equal(t, 150, d.BottlePrice)

	require.NoError(t, b.cbOrderConfirm(c))
	placed, err := b.orders.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 150, placed.BottlePrice)
	assert.Equal(t, 450, placed.TotalPrice)
}

func TestConfirmKeepsSessionOnStorageFailure(t *testing.T) {
	b, store, fsm := newBotFixture(t)
	registerCustomer(t, b)

	c := newTestContext(42)
	require.NoError(t, b.startOrder(c))
	fsm.SetTemp(42, tmpOrderWater, string(models.WaterEffect))
	fsm.SetTemp(42, tmpOrderQty, 2)
	fsm.SetTemp(42, tmpOrderPayment, view.PaymentCard)

	store.failCreateOrder = errors.New("db down")
	require.Error(t, b.cbOrderConfirm(c))
	_, ok := fsm.GetTempInt(42, tmpOrderQty)
	assert.True(t, ok, "draft must survive a failed placement")

	store.failCreateOrder = nil
	require.NoError(t, b.cbOrderConfirm(c))
	_, ok = fsm.GetTempInt(42, tmpOrderQty)
	assert.False(t, ok)
}

func TestRegistrationKeepsSessionOnStorageFailure(t *testing.T) {
	b, store, fsm := newBotFixture(t)

	c := newTestContext(42)
	c.text = "Lenina 5, apt 12"
	fsm.SetState(42, stateRegAddress)
	fsm.SetTemp(42, tmpRegName, "Ivan Petrov")
	fsm.SetTemp(42, tmpRegPhone, "+79001234567")

	store.failCreateUser = errors.New("db down")
	require.Error(t, b.fsmRegAddress(c))
	_, ok := fsm.GetTempString(42, tmpRegName)
	assert.True(t, ok, "entered steps must survive a failed insert")
	assert.Equal(t, stateRegAddress, fsm.GetState(42))

	store.failCreateUser = nil
	require.NoError(t, b.fsmRegAddress(c))
	u, err := b.users.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", u.FullName)
	_, ok = fsm.GetTempString(42, tmpRegName)
	assert.False(t, ok)
}

func TestDuplicateRegistrationShowsProfile(t *testing.T) {
	b, _, _ := newBotFixture(t)
	registerCustomer(t, b)

	c := newTestContext(42)
	require.NoError(t, b.startRegistration(c))
	require.NotEmpty(t, c.sent)
	last := c.sent[len(c.sent)-1]
	assert.Contains(t, last, "already registered")
	assert.Contains(t, last, "Ivan Petrov")
}

func TestRatingKeepsSessionOnStorageFailure(t *testing.T) {
	b, store, fsm := newBotFixture(t)
	ctx := context.Background()
	u := registerCustomer(t, b)

	o, err := b.orders.Place(ctx, u, service.OrderDraft{
		WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: view.PaymentCash,
	})
	require.NoError(t, err)
	_, err = b.orders.Transition(ctx, o.ID, models.StatusConfirmed)
	require.NoError(t, err)
	_, err = b.orders.Transition(ctx, o.ID, models.StatusDelivering)
	require.NoError(t, err)
	_, err = b.orders.MarkReceived(ctx, 42, o.ID)
	require.NoError(t, err)

	fsm.SetTemp(42, tmpRateOrder, o.ID)
	fsm.SetTemp(42, tmpRateStars, 5)
	fsm.SetState(42, stateRatingFeedback)

	c := newTestContext(42)
	c.text = "all good"
	store.failSetRating = errors.New("db down")
	require.Error(t, b.fsmRatingFeedback(c))
	_, ok := fsm.GetTempInt64(42, tmpRateOrder)
	assert.True(t, ok, "rating context must survive a failed write")

	store.failSetRating = nil
	require.NoError(t, b.fsmRatingFeedback(c))
	_, ok = fsm.GetTempInt64(42, tmpRateOrder)
	assert.False(t, ok)

	stored, err := b.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
}
