package bot

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/aquabot/core/telegram/helpers"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/storage"
	"github.com/m3rciful/aquabot/internal/view"
)

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// replyValidation turns a validation error into a user-facing hint; other
// errors bubble up to the recover/logging middleware.
func replyValidation(c tele.Context, err error) error {
	if errors.Is(err, service.ErrValidation) {
		msg := err.Error()
		// Strip the sentinel prefix, the rest reads as a hint.
		if i := len("service: validation failed: "); len(msg) > i {
			msg = msg[i:]
		}
		return tghelpers.SendText(c, "⚠️ "+capitalize(msg)+" Try again or /cancel.")
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

// handleStart shows the menu matching the visitor's registration status.
func (b *Bot) handleStart(c tele.Context) error {
	b.fsm.Clear(c.Sender().ID)
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendMD(c, view.WelcomeNew, view.MainMenu(false))
	}
	return tghelpers.SendMD(c, view.WelcomeBack, view.MainMenu(true))
}

func (b *Bot) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, view.Help)
}

// handleCancel aborts whatever conversation is in flight.
func (b *Bot) handleCancel(c tele.Context) error {
	b.fsm.Clear(c.Sender().ID)
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, view.Cancelled, &tele.SendOptions{ReplyMarkup: view.MainMenu(u != nil)})
}

func (b *Bot) showPrices(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, view.Prices(u, b.users.DefaultPrice()))
}

func (b *Bot) showHistory(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, view.NotRegistered)
	}
	orders, err := b.orders.History(b.ctx(c), u, historyLimit)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, view.OrderHistory(orders))
}
