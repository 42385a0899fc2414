// Package service holds the business rules of the water delivery bot:
// registration, profile management, order lifecycle, and pricing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/aquabot/core/logger"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/storage"
)

// UserStore is the persistence surface the users service needs.
type UserStore interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, telegramID int64, fullName, phone, address string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, telegramID int64, fullName, phone, address string) error
	SetUserPrice(ctx context.Context, userID int64, price *int) error
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, int, error)
}

// Users implements customer account operations.
type Users struct {
	store        UserStore
	defaultPrice int
}

// NewUsers wires the users service with its store and the default bottle price.
func NewUsers(store UserStore, defaultPrice int) *Users {
	return &Users{store: store, defaultPrice: defaultPrice}
}

// Registration carries validated input for a new account.
type Registration struct {
	TelegramID int64
	FullName   string
	Phone      string
	Address    string
}

// Register creates a customer account. Registering an already registered
// Telegram account is rejected with ErrAlreadyRegistered and changes nothing.
func (s *Users) Register(ctx context.Context, in Registration) (*models.User, error) {
	existing, err := s.store.GetUserByTelegramID(ctx, in.TelegramID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	u, err := s.store.CreateUser(ctx, in.TelegramID, in.FullName, in.Phone, in.Address)
	if err != nil {
		return nil, err
	}
	logger.SVCUsers.Info("user registered",
		slog.String("event", "users.register"),
		slog.Int64("user_id", u.ID),
		slog.Int64("tg_id", u.TelegramID),
	)
	return u, nil
}

// GetUserByTelegramID loads the account bound to a Telegram id.
func (s *Users) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.store.GetUserByTelegramID(ctx, telegramID)
}

// UpdateProfile overwrites the editable fields of an existing account.
func (s *Users) UpdateProfile(ctx context.Context, telegramID int64, fullName, phone, address string) error {
	if err := s.store.UpdateUserProfile(ctx, telegramID, fullName, phone, address); err != nil {
		return err
	}
	logger.SVCUsers.Info("profile updated",
		slog.String("event", "users.profile_update"),
		slog.Int64("tg_id", telegramID),
	)
	return nil
}

// PriceFor resolves the effective per-bottle price for a customer:
// the personal override when set, otherwise the default tariff.
func (s *Users) PriceFor(u *models.User) int {
	if u != nil && u.CustomPrice != nil {
		return *u.CustomPrice
	}
	return s.defaultPrice
}

// DefaultPrice returns the tariff applied to customers without an override.
func (s *Users) DefaultPrice() int {
	return s.defaultPrice
}

// SetPrice stores or clears a personal bottle price. price == nil clears
// the override so the customer falls back to the default tariff.
func (s *Users) SetPrice(ctx context.Context, userID int64, price *int) error {
	if price != nil && *price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if err := s.store.SetUserPrice(ctx, userID, price); err != nil {
		return err
	}
	logger.SVCUsers.Info("price override set",
		slog.String("event", "users.set_price"),
		slog.Int64("user_id", userID),
		slog.Any("price", price),
	)
	return nil
}

// UsersPage is one page of the admin customer list.
type UsersPage struct {
	Users []models.User
	Total int
	Page  int
	Pages int
}

// List returns one page of registered customers for the admin panel.
func (s *Users) List(ctx context.Context, page, perPage int) (*UsersPage, error) {
	if page < 0 {
		page = 0
	}
	users, total, err := s.store.ListUsers(ctx, page*perPage, perPage)
	if err != nil {
		return nil, err
	}
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	return &UsersPage{Users: users, Total: total, Page: page, Pages: pages}, nil
}
