package bot

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/aquabot/core/telegram"
	"github.com/m3rciful/aquabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/aquabot/core/telegram/helpers"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/view"
)

func (b *Bot) registerRatingCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback(view.CBReceived, b.cbReceived)
	_ = reg.RegisterCallback(view.CBRate, b.cbRate)
	_ = reg.RegisterCallback(view.CBRateSkip, b.cbRateSkip)
}

// cbReceived is the customer's delivery confirmation. The completion message
// with the rating keyboard arrives through the notifier.
func (b *Bot) cbReceived(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad order data"})
	}
	_, err = b.orders.MarkReceived(b.ctx(c), c.Sender().ID, orderID)
	switch {
	case errors.Is(err, service.ErrNotOwner):
		return c.Respond(&tele.CallbackResponse{Text: "This order is not yours."})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.Respond(&tele.CallbackResponse{Text: "Order already handled"})
	case err != nil:
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "Thank you!"})
}

// cbRate receives a star tap. A low rating demands feedback text before the
// rating is stored; a good one makes the text optional.
func (b *Bot) cbRate(c tele.Context) error {
	orderID, stars64, err := callbacks.PayloadTwoInt64(c, "|")
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad rating data"})
	}
	stars := int(stars64)
	if err := service.ValidateRating(stars); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad rating data"})
	}

	userID := c.Sender().ID
	b.fsm.SetTemp(userID, tmpRateOrder, orderID)
	b.fsm.SetTemp(userID, tmpRateStars, stars)
	b.fsm.SetState(userID, stateRatingFeedback)

	if stars <= service.NegativeRatingMax {
		return tghelpers.EditOrSendMD(c, view.AskFeedback)
	}
	return tghelpers.EditOrSendMD(c, view.AskFeedbackOptional, view.FeedbackSkipKeyboard())
}

func (b *Bot) fsmRatingFeedback(c tele.Context) error {
	return b.submitRating(c, c.Text())
}

// cbRateSkip stores the rating without feedback. The service still rejects
// the skip when the rating was negative.
func (b *Bot) cbRateSkip(c tele.Context) error {
	return b.submitRating(c, "")
}

func (b *Bot) submitRating(c tele.Context, feedback string) error {
	userID := c.Sender().ID
	orderID, okO := b.fsm.GetTempInt64(userID, tmpRateOrder)
	stars, okS := b.fsm.GetTempInt(userID, tmpRateStars)
	if !okO || !okS {
		b.fsm.Clear(userID)
		return tghelpers.SendText(c, view.Unknown)
	}

	_, err := b.orders.Rate(b.ctx(c), userID, orderID, stars, feedback)
	if errors.Is(err, service.ErrValidation) {
		// Keep the state so the customer can send the missing text.
		return replyValidation(c, err)
	}
	if errors.Is(err, service.ErrNotOwner) {
		b.fsm.Clear(userID)
		return tghelpers.SendText(c, "This order is not yours to rate.")
	}
	if err != nil {
		// The session survives, sending the text again retries.
		return err
	}
	b.fsm.Clear(userID)
	return tghelpers.SendText(c, view.FeedbackSaved)
}
