package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/aquabot/internal/models"
)

func TestMessagePoolsdeterministic(t *testing.T) {
	first := func(n int) int { return 0 }
	last := func(n int) int { return n - 1 }

	assert.Equal(t, confirmMessages[0], ConfirmMessage(first))
	assert.Equal(t, confirmMessages[len(confirmMessages)-1], ConfirmMessage(last))
	assert.Equal(t, deliveryMessages[0], DeliveryMessage(first))
	assert.NotEqual(t, ConfirmMessage(first), DeliveryMessage(first))
}

func TestNewPickerStaysInRange(t *testing.T) {
	pick := NewPicker()
	for i := 0; i < 100; i++ {
		got := pick(len(confirmMessages))
		assert.GreaterOrEqual(t, got, 0)
		assert.Less(t, got, len(confirmMessages))
	}
}

func TestDraftSummary(t *testing.T) {
	text := DraftSummary(Draft{
		WaterType:     models.WaterEffect,
		Quantity:      3,
		BottlePrice:   150,
		PaymentMethod: PaymentCash,
		Comment:       "call on arrival",
		Address:       "Lenina 5, apt 12",
	})
	assert.Contains(t, text, "450")
	assert.Contains(t, text, "Quantity: 3")
	assert.Contains(t, text, "call on arrival")
	assert.Contains(t, text, "Lenina 5, apt 12")
}

func TestStatusChangeMessages(t *testing.T) {
	pick := func(n int) int { return 0 }
	o := &models.Order{ID: 5, TotalPrice: 300}

	o.Status = models.StatusConfirmed
	assert.Contains(t, StatusChangeMessage(o, pick), confirmMessages[0])

	o.Status = models.StatusDelivering
	assert.Contains(t, StatusChangeMessage(o, pick), deliveryMessages[0])

	o.Status = models.StatusCompleted
	completed := StatusChangeMessage(o, pick)
	assert.Contains(t, completed, "Thank you")
	assert.NotContains(t, completed, "rate")

	o.Status = models.StatusCancelled
	assert.Contains(t, StatusChangeMessage(o, pick), "cancelled")

	// Only the customer's own receipt confirmation asks for stars.
	assert.Contains(t, RatePrompt(o), "rate")
}

func TestAdminOrderKeyboardFollowsStatus(t *testing.T) {
	o := &models.Order{ID: 9}

	o.Status = models.StatusPending
	kb := AdminOrderKeyboard(o)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)

	o.Status = models.StatusConfirmed
	kb = AdminOrderKeyboard(o)
	require.NotNil(t, kb)
	assert.Contains(t, kb.InlineKeyboard[0][0].Text, "Deliver")

	o.Status = models.StatusDelivering
	kb = AdminOrderKeyboard(o)
	require.NotNil(t, kb)
	assert.Contains(t, kb.InlineKeyboard[0][0].Text, "Complete")

	// Terminal states offer nothing.
	o.Status = models.StatusCompleted
	assert.Nil(t, AdminOrderKeyboard(o))
	o.Status = models.StatusCancelled
	assert.Nil(t, AdminOrderKeyboard(o))
}

func TestRatingKeyboardHasFiveStars(t *testing.T) {
	kb := RatingKeyboard(12)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Len(t, kb.InlineKeyboard[0], 5)
}

func TestMainMenuByRegistration(t *testing.T) {
	reg := MainMenu(true)
	vis := MainMenu(false)

	assert.Equal(t, BtnOrder, reg.ReplyKeyboard[0][0].Text)
	assert.Equal(t, BtnRegister, vis.ReplyKeyboard[0][0].Text)
	assert.NotEqual(t, len(reg.ReplyKeyboard), len(vis.ReplyKeyboard))
}

func TestOrderHistory(t *testing.T) {
	assert.Contains(t, OrderHistory(nil), "no orders yet")

	rating := 4
	text := OrderHistory([]models.Order{{
		ID: 3, WaterType: models.WaterEffect, Quantity: 2,
		TotalPrice: 300, Status: models.StatusCompleted,
		Rating:    &rating,
		CreatedAt: time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC),
	}})
	assert.Contains(t, text, "#3")
	assert.Contains(t, text, "14.08.2026")
	assert.Contains(t, text, "⭐⭐⭐⭐")
}

func TestPrices(t *testing.T) {
	assert.NotContains(t, Prices(nil, 150), "personal")

	custom := 120
	u := &models.User{CustomPrice: &custom}
	text := Prices(u, 150)
	assert.Contains(t, text, "personal")
	assert.Contains(t, text, "120")
}
