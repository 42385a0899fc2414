package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/aquabot/internal/models"
)

func newOrderFixture(t *testing.T) (*Orders, *Users, *fakeStore, *fakeNotifier, *models.User) {
	t.Helper()
	store := newFakeStore()
	users := NewUsers(store, 150)
	notifier := &fakeNotifier{}
	orders := NewOrders(store, users, notifier)

	u, err := users.Register(context.Background(), Registration{
		TelegramID: 42, FullName: "Ivan Petrov",
		Phone: "+79001234567", Address: "Lenina 5, apt 12",
	})
	require.NoError(t, err)
	return orders, users, store, notifier, u
}

func TestPlaceOrder(t *testing.T) {
	orders, _, _, notifier, u := newOrderFixture(t)

	o, err := orders.Place(context.Background(), u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 3, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, 150, o.BottlePrice)
	assert.Equal(t, 450, o.TotalPrice)
	assert.Equal(t, []int64{o.ID}, notifier.placed)
}

func TestPlaceOrderSnapshotsPrice(t *testing.T) {
	orders, users, _, _, u := newOrderFixture(t)
	ctx := context.Background()

	personal := 120
	require.NoError(t, users.SetPrice(ctx, u.ID, &personal))
	u, err := users.GetUserByTelegramID(ctx, u.TelegramID)
	require.NoError(t, err)

	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 2, PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 120, o.BottlePrice)
	assert.Equal(t, 240, o.TotalPrice)

	// A later price change never touches the stored order.
	raised := 200
	require.NoError(t, users.SetPrice(ctx, u.ID, &raised))
	stored, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, stored.BottlePrice)
	assert.Equal(t, 240, stored.TotalPrice)
}

func TestPlaceChargesQuotedPrice(t *testing.T) {
	orders, users, _, _, u := newOrderFixture(t)
	ctx := context.Background()

	// A price override landing while the order is being composed does not
	// move the total away from the quote the customer saw.
	raised := 999
	require.NoError(t, users.SetPrice(ctx, u.ID, &raised))
	u, err := users.GetUserByTelegramID(ctx, u.TelegramID)
	require.NoError(t, err)

	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 3,
		BottlePrice: 150, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, 150, o.BottlePrice)
	assert.Equal(t, 450, o.TotalPrice)
}

func TestPlaceOrderValidation(t *testing.T) {
	orders, _, _, notifier, u := newOrderFixture(t)
	ctx := context.Background()

	_, err := orders.Place(ctx, u, OrderDraft{
		WaterType: "sparkling", Quantity: 1, PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 0, PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 101, PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, notifier.placed)
}

func TestLifecycleHappyPath(t *testing.T) {
	orders, _, _, notifier, u := newOrderFixture(t)
	ctx := context.Background()

	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffectCoffee, Quantity: 1, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusDelivering, models.StatusCompleted,
	} {
		o, err = orders.Transition(ctx, o.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, o.Status)
	}
	assert.Equal(t, []models.OrderStatus{
		models.StatusConfirmed, models.StatusDelivering, models.StatusCompleted,
	}, notifier.changed)
}

func TestLifecycleGuards(t *testing.T) {
	orders, _, _, _, u := newOrderFixture(t)
	ctx := context.Background()

	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	// Skipping confirmation is not allowed.
	_, err = orders.Transition(ctx, o.ID, models.StatusDelivering)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = orders.Transition(ctx, o.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Repeating the current status is rejected too.
	_, err = orders.Transition(ctx, o.ID, models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = orders.Transition(ctx, o.ID, models.StatusConfirmed)
	require.NoError(t, err)
	_, err = orders.Transition(ctx, o.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelledIsTerminal(t *testing.T) {
	orders, _, _, _, u := newOrderFixture(t)
	ctx := context.Background()

	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	_, err = orders.Transition(ctx, o.ID, models.StatusCancelled)
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusDelivering,
		models.StatusCompleted, models.StatusCancelled,
	} {
		_, err = orders.Transition(ctx, o.ID, next)
		assert.ErrorIs(t, err, ErrInvalidTransition, "to %s", next)
	}
}

func TestMarkReceived(t *testing.T) {
	orders, _, _, notifier, u := newOrderFixture(t)
	ctx := context.Background()

	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	// Too early: the order is still pending.
	_, err = orders.MarkReceived(ctx, u.TelegramID, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = orders.Transition(ctx, o.ID, models.StatusConfirmed)
	require.NoError(t, err)
	_, err = orders.Transition(ctx, o.ID, models.StatusDelivering)
	require.NoError(t, err)

	// Someone else's order.
	_, err = orders.MarkReceived(ctx, 9999, o.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	done, err := orders.MarkReceived(ctx, u.TelegramID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	// The customer confirmation goes out as a received event, not as a
	// regular status change.
	assert.Equal(t, []int64{o.ID}, notifier.received)
	assert.Equal(t, []models.OrderStatus{models.StatusConfirmed, models.StatusDelivering}, notifier.changed)

	// Tapping the button again is rejected.
	_, err = orders.MarkReceived(ctx, u.TelegramID, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestForcedCompletionIsARegularStatusChange(t *testing.T) {
	orders, _, _, notifier, u := newOrderFixture(t)
	completedOrder(t, orders, u)

	assert.Empty(t, notifier.received)
	require.NotEmpty(t, notifier.changed)
	assert.Equal(t, models.StatusCompleted, notifier.changed[len(notifier.changed)-1])
}

func completedOrder(t *testing.T, orders *Orders, u *models.User) *models.Order {
	t.Helper()
	ctx := context.Background()
	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	for _, next := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusDelivering, models.StatusCompleted,
	} {
		o, err = orders.Transition(ctx, o.ID, next)
		require.NoError(t, err)
	}
	return o
}

func TestRate(t *testing.T) {
	orders, _, _, notifier, u := newOrderFixture(t)
	ctx := context.Background()
	o := completedOrder(t, orders, u)

	rated, err := orders.Rate(ctx, u.TelegramID, o.ID, 5, "great service")
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)
	assert.Empty(t, notifier.negative)

	// Only once.
	_, err = orders.Rate(ctx, u.TelegramID, o.ID, 4, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRateNegativeRequiresFeedback(t *testing.T) {
	orders, _, _, notifier, u := newOrderFixture(t)
	ctx := context.Background()
	o := completedOrder(t, orders, u)

	_, err := orders.Rate(ctx, u.TelegramID, o.ID, 2, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, notifier.negative)

	rated, err := orders.Rate(ctx, u.TelegramID, o.ID, 2, "the courier was late")
	require.NoError(t, err)
	require.NotNil(t, rated.Feedback)
	assert.Equal(t, []int64{o.ID}, notifier.negative)
}

func TestRateGuards(t *testing.T) {
	orders, _, _, _, u := newOrderFixture(t)
	ctx := context.Background()

	o, err := orders.Place(ctx, u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	// Not completed yet.
	_, err = orders.Rate(ctx, u.TelegramID, o.ID, 5, "")
	assert.ErrorIs(t, err, ErrValidation)

	done := completedOrder(t, orders, u)

	// Someone else's order.
	_, err = orders.Rate(ctx, 9999, done.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotOwner)

	// Out-of-range stars.
	_, err = orders.Rate(ctx, u.TelegramID, done.ID, 0, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = orders.Rate(ctx, u.TelegramID, done.ID, 6, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRateTruncatesFeedback(t *testing.T) {
	orders, _, _, _, u := newOrderFixture(t)
	o := completedOrder(t, orders, u)

	long := strings.Repeat("x", FeedbackMaxLen+100)
	rated, err := orders.Rate(context.Background(), u.TelegramID, o.ID, 4, long)
	require.NoError(t, err)
	require.NotNil(t, rated.Feedback)
	assert.Equal(t, FeedbackMaxLen, len([]rune(*rated.Feedback)))
}

func TestCommentTruncatedOnPlace(t *testing.T) {
	orders, _, store, _, u := newOrderFixture(t)

	long := strings.Repeat("к", CommentMaxLen+30)
	o, err := orders.Place(context.Background(), u, OrderDraft{
		WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: "cash", Comment: long,
	})
	require.NoError(t, err)

	stored := store.orders[o.ID]
	require.NotNil(t, stored.Comment)
	assert.Equal(t, CommentMaxLen, len([]rune(*stored.Comment)))
}

func TestActiveExcludesTerminal(t *testing.T) {
	orders, _, _, _, u := newOrderFixture(t)
	ctx := context.Background()

	a, err := orders.Place(ctx, u, OrderDraft{WaterType: models.WaterEffect, Quantity: 1, PaymentMethod: "cash"})
	require.NoError(t, err)
	b, err := orders.Place(ctx, u, OrderDraft{WaterType: models.WaterEffect, Quantity: 2, PaymentMethod: "cash"})
	require.NoError(t, err)
	_ = completedOrder(t, orders, u)

	_, err = orders.Transition(ctx, b.ID, models.StatusCancelled)
	require.NoError(t, err)

	active, err := orders.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)
}
