package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/aquabot/core/telegram"
	"github.com/m3rciful/aquabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/aquabot/core/telegram/helpers"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/view"
)

func (b *Bot) registerOrderCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback(view.CBOrderWater, b.cbOrderWater)
	_ = reg.RegisterCallback(view.CBOrderQty, b.cbOrderQty)
	_ = reg.RegisterCallback(view.CBOrderQtyOwn, b.cbOrderQtyOwn)
	_ = reg.RegisterCallback(view.CBOrderPayment, b.cbOrderPayment)
	_ = reg.RegisterCallback(view.CBOrderSkip, b.cbOrderSkipComment)
	_ = reg.RegisterCallback(view.CBOrderConfirm, b.cbOrderConfirm)
	_ = reg.RegisterCallback(view.CBOrderAbort, b.cbOrderAbort)
	_ = reg.RegisterCallback(view.CBOrderBack, b.cbOrderBack)
}

// startOrder opens order composition with the water type screen. The unit
// price is quoted here and carried in the session, so a price change while
// the order is being composed does not move the total.
func (b *Bot) startOrder(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, view.NotRegistered)
	}
	b.fsm.SetTemp(c.Sender().ID, tmpOrderPrice, b.users.PriceFor(u))
	return tghelpers.SendMD(c, view.AskWater, view.WaterKeyboard())
}

func (b *Bot) cbOrderWater(c tele.Context) error {
	w := models.WaterType(callbacks.CallbackPayload(c))
	if !w.Valid() {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown water type"})
	}
	b.fsm.SetTemp(c.Sender().ID, tmpOrderWater, string(w))
	return tghelpers.EditOrSendMD(c, view.AskQuantity, view.QuantityKeyboard())
}

func (b *Bot) cbOrderQty(c tele.Context) error {
	qty, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad quantity"})
	}
	return b.acceptQuantity(c, qty)
}

// cbOrderQtyOwn switches to typed quantity entry.
func (b *Bot) cbOrderQtyOwn(c tele.Context) error {
	b.fsm.SetState(c.Sender().ID, stateOrderQty)
	return tghelpers.EditOrSendMD(c, view.AskQuantityCustom)
}

func (b *Bot) fsmOrderQty(c tele.Context) error {
	qty, err := strconv.Atoi(c.Text())
	if err != nil {
		return tghelpers.SendText(c, "Please send a number, for example 3.")
	}
	return b.acceptQuantity(c, qty)
}

func (b *Bot) acceptQuantity(c tele.Context, qty int) error {
	if err := service.ValidateQuantity(qty); err != nil {
		return replyValidation(c, err)
	}
	userID := c.Sender().ID
	b.fsm.SetTemp(userID, tmpOrderQty, qty)
	b.fsm.ClearState(userID)
	return tghelpers.EditOrSendMD(c, view.AskPayment, view.PaymentKeyboard())
}

func (b *Bot) cbOrderPayment(c tele.Context) error {
	method := callbacks.CallbackPayload(c)
	if !validPayment(method) {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown payment method"})
	}
	userID := c.Sender().ID
	b.fsm.SetTemp(userID, tmpOrderPayment, method)
	b.fsm.SetState(userID, stateOrderComment)
	return tghelpers.EditOrSendMD(c, view.AskComment, view.CommentKeyboard())
}

func (b *Bot) fsmOrderComment(c tele.Context) error {
	userID := c.Sender().ID
	b.fsm.SetTemp(userID, tmpOrderComment, service.TruncateComment(c.Text()))
	b.fsm.ClearState(userID)
	return b.showSummary(c)
}

func (b *Bot) cbOrderSkipComment(c tele.Context) error {
	userID := c.Sender().ID
	b.fsm.SetTemp(userID, tmpOrderComment, "")
	b.fsm.ClearState(userID)
	return b.showSummary(c)
}

func (b *Bot) showSummary(c tele.Context) error {
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	d, ok := b.draft(c.Sender().ID, u)
	if !ok {
		return b.restart(c)
	}
	return tghelpers.EditOrSendMD(c, view.DraftSummary(d), view.ConfirmKeyboard())
}

// cbOrderConfirm places the composed order.
func (b *Bot) cbOrderConfirm(c tele.Context) error {
	userID := c.Sender().ID
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, view.NotRegistered)
	}
	d, ok := b.draft(userID, u)
	if !ok {
		return b.restart(c)
	}

	_, err = b.orders.Place(b.ctx(c), u, service.OrderDraft{
		WaterType:     d.WaterType,
		Quantity:      d.Quantity,
		BottlePrice:   d.BottlePrice,
		PaymentMethod: d.PaymentMethod,
		Comment:       d.Comment,
	})
	if err != nil {
		// The session survives, confirming again retries the placement.
		return replyValidation(c, err)
	}
	b.fsm.Clear(userID)
	return tghelpers.EditOrSendMD(c, view.OrderPlaced)
}

func (b *Bot) cbOrderAbort(c tele.Context) error {
	b.fsm.Clear(c.Sender().ID)
	return tghelpers.EditOrSendMD(c, view.OrderAborted)
}

// cbOrderBack returns to the previous composition step named in the payload.
func (b *Bot) cbOrderBack(c tele.Context) error {
	b.fsm.ClearState(c.Sender().ID)
	switch callbacks.CallbackPayload(c) {
	case "water":
		return tghelpers.EditOrSendMD(c, view.AskWater, view.WaterKeyboard())
	case "quantity":
		return tghelpers.EditOrSendMD(c, view.AskQuantity, view.QuantityKeyboard())
	case "payment":
		return tghelpers.EditOrSendMD(c, view.AskPayment, view.PaymentKeyboard())
	case "comment":
		b.fsm.SetState(c.Sender().ID, stateOrderComment)
		return tghelpers.EditOrSendMD(c, view.AskComment, view.CommentKeyboard())
	default:
		return b.restart(c)
	}
}

// draft assembles the current composition from temp data, including the unit
// price quoted when the flow opened. ok is false when a required step is
// missing, e.g. after a restart wiped the session.
func (b *Bot) draft(userID int64, u *models.User) (view.Draft, bool) {
	water, okW := b.fsm.GetTempString(userID, tmpOrderWater)
	qty, okQ := b.fsm.GetTempInt(userID, tmpOrderQty)
	payment, okP := b.fsm.GetTempString(userID, tmpOrderPayment)
	price, okPr := b.fsm.GetTempInt(userID, tmpOrderPrice)
	if !okW || !okQ || !okP || !okPr || u == nil {
		return view.Draft{}, false
	}
	comment, _ := b.fsm.GetTempString(userID, tmpOrderComment)
	return view.Draft{
		WaterType:     models.WaterType(water),
		Quantity:      qty,
		BottlePrice:   price,
		PaymentMethod: payment,
		Comment:       comment,
		Address:       u.Address,
	}, true
}

// restart wipes a broken session and reopens the flow with a fresh quote.
func (b *Bot) restart(c tele.Context) error {
	userID := c.Sender().ID
	b.fsm.Clear(userID)
	u, err := b.currentUser(c)
	if err != nil {
		return err
	}
	if u == nil {
		return tghelpers.SendText(c, view.NotRegistered)
	}
	b.fsm.SetTemp(userID, tmpOrderPrice, b.users.PriceFor(u))
	return tghelpers.EditOrSendMD(c, view.AskWater, view.WaterKeyboard())
}

func validPayment(method string) bool {
	for _, m := range view.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
