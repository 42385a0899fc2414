// Package models declares the persistent entities of the water delivery bot.
package models

import "time"

// OrderStatus is the authoritative lifecycle state of an order.
type OrderStatus string

const (
	// StatusPending marks a freshly placed order awaiting confirmation.
	StatusPending OrderStatus = "pending"
	// StatusConfirmed marks an order accepted by an administrator.
	StatusConfirmed OrderStatus = "confirmed"
	// StatusDelivering marks an order handed to a courier.
	StatusDelivering OrderStatus = "delivering"
	// StatusCompleted marks a delivered order; terminal.
	StatusCompleted OrderStatus = "completed"
	// StatusCancelled marks a cancelled order; terminal.
	StatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further lifecycle transition is accepted.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// WaterType identifies one of the sold water variants.
type WaterType string

const (
	// WaterEffect is the standard 19l drinking water.
	WaterEffect WaterType = "effect"
	// WaterEffectCoffee is the 19l water blended for coffee machines.
	WaterEffectCoffee WaterType = "effect_coffee"
)

// WaterTypes lists all sellable variants in menu order.
var WaterTypes = []WaterType{WaterEffect, WaterEffectCoffee}

// Valid reports whether the variant belongs to the closed set.
func (w WaterType) Valid() bool {
	for _, t := range WaterTypes {
		if t == w {
			return true
		}
	}
	return false
}

// User is a registered customer.
type User struct {
	ID          int64     `db:"id"`
	TelegramID  int64     `db:"telegram_id"`
	FullName    string    `db:"full_name"`
	Phone       string    `db:"phone"`
	Address     string    `db:"address"`
	CustomPrice *int      `db:"custom_price"`
	CreatedAt   time.Time `db:"created_at"`
}

// Order is a single placed order. BottlePrice is the per-unit price
// snapshotted at creation; later price changes never touch it.
type Order struct {
	ID            int64       `db:"id"`
	UserID        int64       `db:"user_id"`
	WaterType     WaterType   `db:"water_type"`
	Quantity      int         `db:"quantity"`
	BottlePrice   int         `db:"bottle_price"`
	TotalPrice    int         `db:"total_price"`
	PaymentMethod string      `db:"payment_method"`
	Status        OrderStatus `db:"status"`
	Comment       *string     `db:"comment"`
	Rating        *int        `db:"rating"`
	Feedback      *string     `db:"feedback"`
	ConfirmedAt   *time.Time  `db:"confirmed_at"`
	DeliveredAt   *time.Time  `db:"delivered_at"`
	CompletedAt   *time.Time  `db:"completed_at"`
	CreatedAt     time.Time   `db:"created_at"`
}
