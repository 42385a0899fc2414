package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m3rciful/aquabot/internal/models"
)

// GetUserByTelegramID loads a user row by Telegram account id.
// Returns ErrNotFound when the account is not registered.
func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, telegram_id, full_name, phone, address, custom_price, created_at
		   FROM users
		  WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return &u, nil
}

// GetUserByID loads a user row by primary key.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, telegram_id, full_name, phone, address, custom_price, created_at
		   FROM users
		  WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new registered user and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, telegramID int64, fullName, phone, address string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`INSERT INTO users (telegram_id, full_name, phone, address)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, telegram_id, full_name, phone, address, custom_price, created_at`,
		telegramID, fullName, phone, address)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// UpdateUserProfile overwrites the editable profile fields of a user.
func (s *Store) UpdateUserProfile(ctx context.Context, telegramID int64, fullName, phone, address string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users
		    SET full_name = $2, phone = $3, address = $4
		  WHERE telegram_id = $1`,
		telegramID, fullName, phone, address)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return requireRow(res)
}

// SetUserPrice stores a per-user bottle price override.
// A nil price clears the override back to the default tariff.
func (s *Store) SetUserPrice(ctx context.Context, userID int64, price *int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET custom_price = $2 WHERE id = $1`, userID, price)
	if err != nil {
		return fmt.Errorf("set user price: %w", err)
	}
	return requireRow(res)
}

// ListUsers returns a page of registered users ordered by registration time,
// together with the total count for pagination.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]models.User, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	users := []models.User{}
	err := s.db.SelectContext(ctx, &users,
		`SELECT id, telegram_id, full_name, phone, address, custom_price, created_at
		   FROM users
		  ORDER BY created_at DESC, id DESC
		  OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
