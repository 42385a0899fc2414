package service

import (
	"context"
	"time"

	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/storage"
)

// fakeStore is an in-memory stand-in for the Postgres gateway.
type fakeStore struct {
	users  map[int64]*models.User
	orders map[int64]*models.Order
	nextU  int64
	nextO  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[int64]*models.User{},
		orders: map[int64]*models.Order{},
	}
}

func (f *fakeStore) GetUserByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) CreateUser(_ context.Context, telegramID int64, fullName, phone, address string) (*models.User, error) {
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

func (f *fakeStore) UpdateUserProfile(_ context.Context, telegramID int64, fullName, phone, address string) error {
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			u.FullName, u.Phone, u.Address = fullName, phone, address
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) SetUserPrice(_ context.Context, userID int64, price *int) error {
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.CustomPrice = price
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context, offset, limit int) ([]models.User, int, error) {
	all := make([]models.User, 0, len(f.users))
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

func (f *fakeStore) CreateOrder(_ context.Context, in storage.NewOrder) (*models.Order, error) {
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

func (f *fakeStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetOrderWithOwner(ctx context.Context, id int64) (*models.Order, *models.User, error) {
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

func (f *fakeStore) ListOrdersForUser(_ context.Context, userID int64, limit int) ([]models.Order, error) {
	var out []models.Order
	for id := f.nextO; id >= 1 && len(out) < limit; id-- {
		if o, ok := f.orders[id]; ok && o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveOrders(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for id := int64(1); id <= f.nextO; id++ {
		if o, ok := f.orders[id]; ok && !o.Status.Terminal() {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) SetOrderStatus(_ context.Context, id int64, status models.OrderStatus) error {
	o, ok := f.orders[id]
	if !ok {
		return storage.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeStore) SetOrderRating(_ context.Context, id int64, rating int, feedback *string) error {
	o, ok := f.orders[id]
	if !ok {
		return storage.ErrNotFound
	}
	o.Rating = &rating
	o.Feedback = feedback
	return nil
}

// fakeNotifier records the events it receives.
type fakeNotifier struct {
	placed   []int64
	changed  []models.OrderStatus
	received []int64
	negative []int64
}

func (f *fakeNotifier) OrderPlaced(o *models.Order, _ *models.User) {
	f.placed = append(f.placed, o.ID)
}

func (f *fakeNotifier) OrderStatusChanged(o *models.Order, _ *models.User) {
	f.changed = append(f.changed, o.Status)
}

func (f *fakeNotifier) OrderReceived(o *models.Order, _ *models.User) {
	f.received = append(f.received, o.ID)
}

func (f *fakeNotifier) NegativeRating(o *models.Order, _ *models.User) {
	f.negative = append(f.negative, o.ID)
}
