package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndDuplicate(t *testing.T) {
	store := newFakeStore()
	users := NewUsers(store, 150)
	ctx := context.Background()

	u, err := users.Register(ctx, Registration{
		TelegramID: 42, FullName: "Ivan Petrov",
		Phone: "+79001234567", Address: "Lenina 5, apt 12",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.TelegramID)

	// Registering the same account again changes nothing.
	_, err = users.Register(ctx, Registration{
		TelegramID: 42, FullName: "Someone Else",
		Phone: "+70000000000", Address: "Another street 99",
	})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	again, err := users.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", again.FullName)
}

func TestPriceResolution(t *testing.T) {
	store := newFakeStore()
	users := NewUsers(store, 150)
	ctx := context.Background()

	u, err := users.Register(ctx, Registration{
		TelegramID: 1, FullName: "Anna K",
		Phone: "+79001112233", Address: "Mira 10, apt 1",
	})
	require.NoError(t, err)

	assert.Equal(t, 150, users.PriceFor(u))
	assert.Equal(t, 150, users.PriceFor(nil))

	price := 120
	require.NoError(t, users.SetPrice(ctx, u.ID, &price))
	u, err = users.GetUserByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 120, users.PriceFor(u))

	// Clearing the override falls back to the default tariff.
	require.NoError(t, users.SetPrice(ctx, u.ID, nil))
	u, err = users.GetUserByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 150, users.PriceFor(u))
}

func TestSetPriceRejectsNonPositive(t *testing.T) {
	users := NewUsers(newFakeStore(), 150)
	bad := -5
	assert.ErrorIs(t, users.SetPrice(context.Background(), 1, &bad), ErrValidation)
	zero := 0
	assert.ErrorIs(t, users.SetPrice(context.Background(), 1, &zero), ErrValidation)
}

func TestUsersPagination(t *testing.T) {
	store := newFakeStore()
	users := NewUsers(store, 150)
	ctx := context.Background()

	for i := int64(1); i <= 7; i++ {
		_, err := users.Register(ctx, Registration{
			TelegramID: i, FullName: "Customer Name",
			Phone: "+79000000000", Address: "Some street 123",
		})
		require.NoError(t, err)
	}

	page, err := users.List(ctx, 0, 5)
	require.NoError(t, err)
	assert.Len(t, page.Users, 5)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 2, page.Pages)

	page, err = users.List(ctx, 1, 5)
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, 1, page.Page)
}

func TestUpdateProfile(t *testing.T) {
	store := newFakeStore()
	users := NewUsers(store, 150)
	ctx := context.Background()

	_, err := users.Register(ctx, Registration{
		TelegramID: 9, FullName: "Old Name",
		Phone: "+79001234567", Address: "Old street 1, apt 2",
	})
	require.NoError(t, err)

	require.NoError(t, users.UpdateProfile(ctx, 9, "New Name", "+79007654321", "New street 42, apt 3"))
	u, err := users.GetUserByTelegramID(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "New Name", u.FullName)
	assert.Equal(t, "+79007654321", u.Phone)
	assert.Equal(t, "New street 42, apt 3", u.Address)
}
