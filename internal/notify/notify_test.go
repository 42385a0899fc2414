package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/aquabot/internal/models"
)

type sentMessage struct {
	to     tele.Recipient
	text   string
	markup *tele.ReplyMarkup
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	msg := sentMessage{to: to}
	if s, ok := what.(string); ok {
		msg.text = s
	}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok && so != nil {
			msg.markup = so.ReplyMarkup
		}
	}
	f.sent = append(f.sent, msg)
	return &tele.Message{}, nil
}

func fixedPicker(i int) func(int) int {
	return func(n int) int { return i % n }
}

func fixtures() (*models.Order, *models.User) {
	comment := "call on arrival"
	order := &models.Order{
		ID: 7, UserID: 1,
		WaterType: models.WaterEffect, Quantity: 3,
		BottlePrice: 150, TotalPrice: 450,
		PaymentMethod: "cash", Status: models.StatusPending,
		Comment: &comment,
	}
	owner := &models.User{
		ID: 1, TelegramID: 42,
		FullName: "Ivan Petrov", Phone: "+79001234567", Address: "Lenina 5, apt 12",
	}
	return order, owner
}

func TestOrderPlacedFansOut(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, nil, []int64{100, 200}, -1001234, fixedPicker(0))
	order, owner := fixtures()

	n.OrderPlaced(order, owner)

	require.Len(t, sender.sent, 3)
	assert.Equal(t, tele.ChatID(100), sender.sent[0].to)
	assert.Equal(t, tele.ChatID(200), sender.sent[1].to)
	assert.Equal(t, tele.ChatID(-1001234), sender.sent[2].to)

	// Admins get action buttons, the channel does not.
	assert.NotNil(t, sender.sent[0].markup)
	assert.NotNil(t, sender.sent[1].markup)
	assert.Nil(t, sender.sent[2].markup)

	assert.Contains(t, sender.sent[0].text, "Order #7")
	assert.Contains(t, sender.sent[0].text, "Ivan Petrov")
	assert.Contains(t, sender.sent[0].text, "450")
}

func TestOrderPlacedWithoutChannel(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, nil, []int64{100}, 0, fixedPicker(0))
	order, owner := fixtures()

	n.OrderPlaced(order, owner)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, tele.ChatID(100), sender.sent[0].to)
}

func TestStatusChangeGoesToCustomer(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, nil, []int64{100}, 0, fixedPicker(1))
	order, owner := fixtures()
	order.Status = models.StatusConfirmed

	n.OrderStatusChanged(order, owner)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, tele.ChatID(42), sender.sent[0].to)
	assert.Nil(t, sender.sent[0].markup)
}

func TestDeliveringCarriesReceivedButton(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, nil, nil, 0, fixedPicker(0))
	order, owner := fixtures()
	order.Status = models.StatusDelivering

	n.OrderStatusChanged(order, owner)
	require.Len(t, sender.sent, 1)
	require.NotNil(t, sender.sent[0].markup)
	assert.NotEmpty(t, sender.sent[0].markup.InlineKeyboard)
}

func TestForcedCompletionSendsPlainMessage(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, nil, nil, 0, fixedPicker(0))
	order, owner := fixtures()
	order.Status = models.StatusCompleted

	n.OrderStatusChanged(order, owner)
	require.Len(t, sender.sent, 1)
	assert.Nil(t, sender.sent[0].markup)
}

func TestReceivedConfirmationInvitesRating(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, nil, nil, 0, fixedPicker(0))
	order, owner := fixtures()
	order.Status = models.StatusCompleted

	n.OrderReceived(order, owner)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, tele.ChatID(42), sender.sent[0].to)
	require.NotNil(t, sender.sent[0].markup)
	assert.NotEmpty(t, sender.sent[0].markup.InlineKeyboard)
}

func TestNegativeRatingAlertsEveryAdmin(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, nil, []int64{100, 200, 300}, -1001234, fixedPicker(0))
	order, owner := fixtures()
	order.Status = models.StatusCompleted
	rating := 1
	fb := "water bottle was damaged"
	order.Rating = &rating
	order.Feedback = &fb

	n.NegativeRating(order, owner)

	// Admins only, never the channel.
	require.Len(t, sender.sent, 3)
	for _, m := range sender.sent {
		assert.NotEqual(t, tele.ChatID(-1001234), m.to)
		assert.Contains(t, m.text, "Low rating")
		assert.Contains(t, m.text, fb)
	}
}

func TestUnboundSenderDropsQuietly(t *testing.T) {
	n := New(nil, nil, []int64{100}, 0, fixedPicker(0))
	order, owner := fixtures()
	assert.NotPanics(t, func() { n.OrderPlaced(order, owner) })
}
