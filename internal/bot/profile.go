package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/aquabot/core/telegram/helpers"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/view"
)

// keepCurrent is the shortcut that keeps a field unchanged during edit.
const keepCurrent = "."

func (b *Bot) showProfile(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, view.NotRegistered)
	}
	return tghelpers.SendMD(c, view.Profile(u, b.users.PriceFor(u)), view.ProfileKeyboard())
}

// startProfileEdit walks name, phone, address in order. Sending "." at any
// step keeps the current value.
func (b *Bot) startProfileEdit(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, view.NotRegistered)
	}
	b.fsm.SetState(c.Sender().ID, stateEditName)
	return tghelpers.SendText(c, "Your name? Current: "+u.FullName+"\n"+view.EditHint)
}

func (b *Bot) fsmEditName(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	name := u.FullName
	if c.Text() != keepCurrent {
		name, err = service.ValidateName(c.Text())
		if err != nil {
			return replyValidation(c, err)
		}
	}
	b.fsm.SetTemp(c.Sender().ID, tmpEditName, name)
	b.fsm.SetState(c.Sender().ID, stateEditPhone)
	return tghelpers.SendText(c, "Your phone? Current: "+u.Phone+"\n"+view.EditHint)
}

func (b *Bot) fsmEditPhone(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	phone := u.Phone
	if c.Text() != keepCurrent {
		phone, err = phoneFromUpdate(c)
		if err != nil {
			return replyValidation(c, err)
		}
	}
	b.fsm.SetTemp(c.Sender().ID, tmpEditPhone, phone)
	b.fsm.SetState(c.Sender().ID, stateEditAddress)
	return tghelpers.SendText(c, "Your address? Current: "+u.Address+"\n"+view.EditHint)
}

func (b *Bot) fsmEditAddress(c tele.Context) error {
	userID := c.Sender().ID
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	address := u.Address
	if c.Text() != keepCurrent {
		address, err = service.ValidateAddress(c.Text())
		if err != nil {
			return replyValidation(c, err)
		}
	}
	name, _ := b.fsm.GetTempString(userID, tmpEditName)
	phone, _ := b.fsm.GetTempString(userID, tmpEditPhone)

	if err := b.users.UpdateProfile(b.ctx(c), userID, name, phone, address); err != nil {
		// The session survives, resending the address retries.
		return err
	}
	b.fsm.Clear(userID)
	if err := tghelpers.SendText(c, "✅ Profile updated."); err != nil {
		return err
	}
	return b.showProfile(c)
}
