package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m3rciful/aquabot/internal/models"
)

const orderColumns = `id, user_id, water_type, quantity, bottle_price, total_price,
	payment_method, status, comment, rating, feedback,
	confirmed_at, delivered_at, completed_at, created_at`

// NewOrder carries the fields of an order being placed.
type NewOrder struct {
	UserID        int64
	WaterType     models.WaterType
	Quantity      int
	BottlePrice   int
	TotalPrice    int
	PaymentMethod string
	Comment       *string
}

// CreateOrder inserts a pending order and returns the stored row.
func (s *Store) CreateOrder(ctx context.Context, in NewOrder) (*models.Order, error) {
	var o models.Order
	err := s.db.GetContext(ctx, &o,
		`INSERT INTO orders (user_id, water_type, quantity, bottle_price, total_price, payment_method, comment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+orderColumns,
		in.UserID, in.WaterType, in.Quantity, in.BottlePrice, in.TotalPrice, in.PaymentMethod, in.Comment)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &o, nil
}

// GetOrder loads a single order by id.
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.db.GetContext(ctx, &o,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// GetOrderWithOwner loads an order together with the customer who placed it.
func (s *Store) GetOrderWithOwner(ctx context.Context, id int64) (*models.Order, *models.User, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.GetUserByID(ctx, o.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("order %d owner: %w", id, err)
	}
	return o, u, nil
}

// ListOrdersForUser returns the most recent orders of a customer, newest first.
func (s *Store) ListOrdersForUser(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+`
		   FROM orders
		  WHERE user_id = $1
		  ORDER BY created_at DESC, id DESC
		  LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders for user: %w", err)
	}
	return orders, nil
}

// ListActiveOrders returns all orders that are not yet in a terminal state,
// oldest first so administrators work the queue in placement order.
func (s *Store) ListActiveOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+`
		   FROM orders
		  WHERE status NOT IN ('completed', 'cancelled')
		  ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	return orders, nil
}

// SetOrderStatus writes the new lifecycle status and stamps the matching
// milestone column. Guarding which transitions are legal is the service's job.
func (s *Store) SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	var stamp string
	switch status {
	case models.StatusConfirmed:
		stamp = ", confirmed_at = NOW()"
	case models.StatusDelivering:
		stamp = ", delivered_at = NOW()"
	case models.StatusCompleted:
		stamp = ", completed_at = NOW()"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2`+stamp+` WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	return requireRow(res)
}

// SetOrderRating stores the delivery rating and optional feedback text.
func (s *Store) SetOrderRating(ctx context.Context, id int64, rating int, feedback *string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET rating = $2, feedback = $3 WHERE id = $1`, id, rating, feedback)
	if err != nil {
		return fmt.Errorf("set order rating: %w", err)
	}
	return requireRow(res)
}
