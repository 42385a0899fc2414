// Package notify fans order events out to the customer, the administrators,
// and the orders channel through the asynchronous sender.
package notify

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/aquabot/core/logger"
	"github.com/m3rciful/aquabot/core/telegram/sender"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/view"
)

// Sender is the outbound surface used for notifications. *tele.Bot satisfies it.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier delivers order events. Every send is enqueued on the dispatcher;
// a failed recipient never blocks the others.
type Notifier struct {
	bot        Sender
	dispatcher *sender.Dispatcher
	adminIDs   []int64
	channelID  int64
	pick       view.Picker
}

// New wires the notifier. channelID == 0 disables channel posts. The sender
// may be nil at construction and bound later, once the bot is running.
func New(bot Sender, d *sender.Dispatcher, adminIDs []int64, channelID int64, pick view.Picker) *Notifier {
	if pick == nil {
		pick = view.NewPicker()
	}
	return &Notifier{bot: bot, dispatcher: d, adminIDs: adminIDs, channelID: channelID, pick: pick}
}

// Bind attaches the outbound sender and dispatcher after bot startup.
func (n *Notifier) Bind(bot Sender, d *sender.Dispatcher) {
	n.bot = bot
	n.dispatcher = d
}

// OrderPlaced posts the new order card to every admin and the orders channel.
func (n *Notifier) OrderPlaced(order *models.Order, owner *models.User) {
	text := view.NewOrderAlert(order, owner)
	markup := view.AdminOrderKeyboard(order)
	for _, id := range n.adminIDs {
		n.send(order.ID, id, text, markup)
	}
	if n.channelID != 0 {
		// The channel is read-only, no action buttons there.
		n.send(order.ID, n.channelID, text, nil)
	}
}

// OrderStatusChanged tells the customer about the new status. A delivering
// order carries the received confirmation button. An administrator's forced
// completion sends a plain thank-you, the rating prompt goes out only through
// OrderReceived.
func (n *Notifier) OrderStatusChanged(order *models.Order, owner *models.User) {
	text := view.StatusChangeMessage(order, n.pick)
	var markup *tele.ReplyMarkup
	if order.Status == models.StatusDelivering {
		markup = view.ReceivedKeyboard(order.ID)
	}
	n.send(order.ID, owner.TelegramID, text, markup)
}

// OrderReceived asks the customer who just confirmed delivery for a rating.
func (n *Notifier) OrderReceived(order *models.Order, owner *models.User) {
	n.send(order.ID, owner.TelegramID, view.RatePrompt(order), view.RatingKeyboard(order.ID))
}

// NegativeRating alerts every admin about a low rating.
func (n *Notifier) NegativeRating(order *models.Order, owner *models.User) {
	text := view.NegativeRatingAlert(order, owner)
	for _, id := range n.adminIDs {
		n.send(order.ID, id, text, nil)
	}
}

func (n *Notifier) send(orderID, chatID int64, text string, markup *tele.ReplyMarkup) {
	if n.bot == nil {
		logger.NTF.Warn("notification dropped, sender not bound",
			slog.String("event", "notify.send"),
			slog.Int64("order_id", orderID),
			slog.Int64("chat_id", chatID),
		)
		return
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	run := func() error {
		_, err := n.bot.Send(tele.ChatID(chatID), text, opts)
		return err
	}
	if n.dispatcher == nil {
		if err := run(); err != nil {
			logger.NTF.Warn("notification send failed",
				slog.String("event", "notify.send"),
				slog.Int64("order_id", orderID),
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
		}
		return
	}
	if err := n.dispatcher.Enqueue(context.Background(), "notify.order", "sendMessage", run); err != nil {
		logger.NTF.Warn("notification enqueue failed",
			slog.String("event", "notify.enqueue"),
			slog.Int64("order_id", orderID),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}
