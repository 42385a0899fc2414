package service

import "errors"

var (
	// ErrAlreadyRegistered is returned when a Telegram account tries to register twice.
	ErrAlreadyRegistered = errors.New("service: already registered")
	// ErrNotOwner is returned when a customer acts on an order placed by someone else.
	ErrNotOwner = errors.New("service: order belongs to another user")
	// ErrInvalidTransition is returned when an order status change is not allowed
	// from the order's current state.
	ErrInvalidTransition = errors.New("service: invalid status transition")
	// ErrValidation wraps all user input rejections; the message explains the field.
	ErrValidation = errors.New("service: validation failed")
)
