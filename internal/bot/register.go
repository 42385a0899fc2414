package bot

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/aquabot/core/telegram"
	tghelpers "github.com/m3rciful/aquabot/core/telegram/helpers"
	"github.com/m3rciful/aquabot/core/telegram/keyboard"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/view"
)

func (b *Bot) registerUserCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback(view.CBRegister, b.startRegistration)
	_ = reg.RegisterCallback(view.CBEditProfile, b.startProfileEdit)
}

// startRegistration opens the three-step registration dialogue.
func (b *Bot) startRegistration(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u != nil {
		return b.alreadyRegistered(c)
	}
	b.fsm.SetState(c.Sender().ID, stateRegName)
	return tghelpers.SendText(c, view.AskName)
}

// alreadyRegistered answers a duplicate registration with the existing profile.
func (b *Bot) alreadyRegistered(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, view.Unknown)
	}
	text := "You are already registered!\n\n" + view.Profile(u, b.users.PriceFor(u))
	return tghelpers.SendMD(c, text, view.MainMenu(true))
}

func (b *Bot) fsmRegName(c tele.Context) error {
	name, err := service.ValidateName(c.Text())
	if err != nil {
		return replyValidation(c, err)
	}
	b.fsm.SetTemp(c.Sender().ID, tmpRegName, name)
	b.fsm.SetState(c.Sender().ID, stateRegPhone)
	return tghelpers.SendText(c, view.AskPhone, &tele.SendOptions{ReplyMarkup: view.PhoneKeyboard()})
}

func (b *Bot) fsmRegPhone(c tele.Context) error {
	phone, err := phoneFromUpdate(c)
	if err != nil {
		return replyValidation(c, err)
	}
	b.fsm.SetTemp(c.Sender().ID, tmpRegPhone, phone)
	b.fsm.SetState(c.Sender().ID, stateRegAddress)
	return tghelpers.SendText(c, view.AskAddress, &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
}

func (b *Bot) fsmRegAddress(c tele.Context) error {
	userID := c.Sender().ID
	address, err := service.ValidateAddress(c.Text())
	if err != nil {
		return replyValidation(c, err)
	}
	name, _ := b.fsm.GetTempString(userID, tmpRegName)
	phone, _ := b.fsm.GetTempString(userID, tmpRegPhone)

	_, err = b.users.Register(b.ctx(c), service.Registration{
		TelegramID: userID,
		FullName:   name,
		Phone:      phone,
		Address:    address,
	})
	if errors.Is(err, service.ErrAlreadyRegistered) {
		b.fsm.Clear(userID)
		return b.alreadyRegistered(c)
	}
	if err != nil {
		// The session survives, resending the address retries.
		return err
	}
	b.fsm.Clear(userID)
	return tghelpers.SendText(c, view.Registered, &tele.SendOptions{ReplyMarkup: view.MainMenu(true)})
}

// phoneFromUpdate accepts either a shared contact or typed text.
func phoneFromUpdate(c tele.Context) (string, error) {
	if m := c.Message(); m != nil && m.Contact != nil {
		return service.NormalizePhone(m.Contact.PhoneNumber)
	}
	return service.NormalizePhone(c.Text())
}
