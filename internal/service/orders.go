package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/aquabot/core/logger"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/storage"
)

// OrderStore is the persistence surface the orders service needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, in storage.NewOrder) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrderWithOwner(ctx context.Context, id int64) (*models.Order, *models.User, error)
	ListOrdersForUser(ctx context.Context, userID int64, limit int) ([]models.Order, error)
	ListActiveOrders(ctx context.Context) ([]models.Order, error)
	SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	SetOrderRating(ctx context.Context, id int64, rating int, feedback *string) error
}

// Notifier delivers order events to the customer, administrators, and the
// orders channel. Implementations enqueue asynchronously and never block.
// OrderReceived fires only when the customer confirmed delivery themselves,
// OrderStatusChanged covers every administrator-driven change.
type Notifier interface {
	OrderPlaced(order *models.Order, owner *models.User)
	OrderStatusChanged(order *models.Order, owner *models.User)
	OrderReceived(order *models.Order, owner *models.User)
	NegativeRating(order *models.Order, owner *models.User)
}

// PriceResolver yields the effective per-bottle price for a customer.
type PriceResolver interface {
	PriceFor(u *models.User) int
}

// allowedTransitions is the order lifecycle. Terminal states have no exits.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusDelivering, models.StatusCancelled},
	models.StatusDelivering: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Orders implements order placement, the status lifecycle, and rating capture.
type Orders struct {
	store  OrderStore
	prices PriceResolver
	notify Notifier
}

// NewOrders wires the orders service.
func NewOrders(store OrderStore, prices PriceResolver, notify Notifier) *Orders {
	return &Orders{store: store, prices: prices, notify: notify}
}

// OrderDraft is a fully composed order awaiting placement. BottlePrice is
// the unit price quoted to the customer when composition started; a draft
// without one is charged the owner's current price.
type OrderDraft struct {
	WaterType     models.WaterType
	Quantity      int
	BottlePrice   int
	PaymentMethod string
	Comment       string
}

// Place validates the draft, stores a pending order at the quoted unit price,
// and notifies administrators and the orders channel.
func (s *Orders) Place(ctx context.Context, owner *models.User, d OrderDraft) (*models.Order, error) {
	if !d.WaterType.Valid() {
		return nil, fmt.Errorf("%w: unknown water type %q", ErrValidation, d.WaterType)
	}
	if err := ValidateQuantity(d.Quantity); err != nil {
		return nil, err
	}

	price := d.BottlePrice
	if price <= 0 {
		price = s.prices.PriceFor(owner)
	}
	var comment *string
	if c := TruncateComment(d.Comment); c != "" {
		comment = &c
	}

	order, err := s.store.CreateOrder(ctx, storage.NewOrder{
		UserID:        owner.ID,
		WaterType:     d.WaterType,
		Quantity:      d.Quantity,
		BottlePrice:   price,
		TotalPrice:    price * d.Quantity,
		PaymentMethod: d.PaymentMethod,
		Comment:       comment,
	})
	if err != nil {
		return nil, err
	}

	logger.SVCOrders.Info("order placed",
		slog.String("event", "orders.place"),
		slog.Int64("order_id", order.ID),
		slog.Int64("user_id", owner.ID),
		slog.String("order_status", string(order.Status)),
		slog.Int("quantity", order.Quantity),
	)
	s.notify.OrderPlaced(order, owner)
	return order, nil
}

// Get loads a single order.
func (s *Orders) Get(ctx context.Context, id int64) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// GetWithOwner loads an order and the customer who placed it.
func (s *Orders) GetWithOwner(ctx context.Context, id int64) (*models.Order, *models.User, error) {
	return s.store.GetOrderWithOwner(ctx, id)
}

// History returns the customer's most recent orders, newest first.
func (s *Orders) History(ctx context.Context, owner *models.User, limit int) ([]models.Order, error) {
	return s.store.ListOrdersForUser(ctx, owner.ID, limit)
}

// Active returns every order still in flight for the admin queue.
func (s *Orders) Active(ctx context.Context) ([]models.Order, error) {
	return s.store.ListActiveOrders(ctx)
}

// Transition moves an order to the target status. Illegal moves, including
// any move out of a terminal state and repeating the current status, are
// rejected with ErrInvalidTransition. On success the customer is notified.
func (s *Orders) Transition(ctx context.Context, orderID int64, target models.OrderStatus) (*models.Order, error) {
	order, owner, err := s.store.GetOrderWithOwner(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s for order %d", ErrInvalidTransition, order.Status, target, orderID)
	}

	if err := s.store.SetOrderStatus(ctx, orderID, target); err != nil {
		return nil, err
	}
	prev := order.Status
	order.Status = target

	logger.SVCOrders.Info("order status changed",
		slog.String("event", "orders.transition"),
		slog.Int64("order_id", orderID),
		slog.String("from", string(prev)),
		slog.String("order_status", string(target)),
	)
	s.notify.OrderStatusChanged(order, owner)
	return order, nil
}

// MarkReceived lets the customer confirm delivery of their own order, moving
// it from delivering to completed. Non-owners are rejected before the
// transition guard runs, so they learn nothing about the order's state.
// Unlike an administrator's forced completion this path invites a rating.
func (s *Orders) MarkReceived(ctx context.Context, telegramID, orderID int64) (*models.Order, error) {
	order, owner, err := s.store.GetOrderWithOwner(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if owner.TelegramID != telegramID {
		return nil, ErrNotOwner
	}
	if !CanTransition(order.Status, models.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s for order %d", ErrInvalidTransition, order.Status, models.StatusCompleted, orderID)
	}

	if err := s.store.SetOrderStatus(ctx, orderID, models.StatusCompleted); err != nil {
		return nil, err
	}
	order.Status = models.StatusCompleted

	logger.SVCOrders.Info("order received by customer",
		slog.String("event", "orders.received"),
		slog.Int64("order_id", orderID),
	)
	s.notify.OrderReceived(order, owner)
	return order, nil
}

// Rate stores a delivery rating for a completed order. Only the order's owner
// may rate, only once, and a rating at or below NegativeRatingMax requires
// feedback text and raises an admin alert.
func (s *Orders) Rate(ctx context.Context, raterTelegramID, orderID int64, rating int, feedback string) (*models.Order, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}

	order, owner, err := s.store.GetOrderWithOwner(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if owner.TelegramID != raterTelegramID {
		return nil, ErrNotOwner
	}
	if order.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: only completed orders can be rated", ErrValidation)
	}
	if order.Rating != nil {
		return nil, fmt.Errorf("%w: order %d is already rated", ErrValidation, orderID)
	}

	fb := TruncateFeedback(feedback)
	if rating <= NegativeRatingMax && fb == "" {
		return nil, fmt.Errorf("%w: a rating of %d or lower requires feedback", ErrValidation, NegativeRatingMax)
	}
	var fbPtr *string
	if fb != "" {
		fbPtr = &fb
	}

	if err := s.store.SetOrderRating(ctx, orderID, rating, fbPtr); err != nil {
		return nil, err
	}
	order.Rating = &rating
	order.Feedback = fbPtr

	logger.SVCOrders.Info("order rated",
		slog.String("event", "orders.rate"),
		slog.Int64("order_id", orderID),
		slog.Int("rating", rating),
	)
	if rating <= NegativeRatingMax {
		s.notify.NegativeRating(order, owner)
	}
	return order, nil
}
