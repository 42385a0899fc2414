package view

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/aquabot/core/telegram/keyboard"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/service"
)

// Callback uniques shared between keyboards and handler registration.
const (
	CBRegister    = "register"
	CBEditProfile = "edit_profile"

	CBOrderWater   = "order_water"
	CBOrderQty     = "order_qty"
	CBOrderQtyOwn  = "order_qty_own"
	CBOrderPayment = "order_payment"
	CBOrderSkip    = "order_skip_comment"
	CBOrderConfirm = "order_confirm"
	CBOrderAbort   = "order_abort"
	CBOrderBack    = "order_back"

	CBReceived = "order_received"
	CBRate     = "rate"
	CBRateSkip = "rate_skip_feedback"

	CBAdminConfirm  = "adm_confirm"
	CBAdminDeliver  = "adm_deliver"
	CBAdminComplete = "adm_complete"
	CBAdminCancel   = "adm_cancel"
	CBAdminOrders   = "adm_orders"
	CBAdminUsers    = "adm_users"
	CBAdminSetPrice = "adm_set_price"
	CBAdminOrder    = "adm_order"
	CBAdminClose    = "adm_close"
)

// Main menu reply button labels. Message routing matches on these.
const (
	BtnOrder    = "💧 Order water"
	BtnMyOrders = "📦 My orders"
	BtnProfile  = "👤 Profile"
	BtnPrices   = "💰 Prices"
	BtnContacts = "📞 Contacts"
	BtnRegister = "📝 Register"
)

// MainMenu is the persistent reply keyboard. Its shape depends on whether
// the visitor is registered.
func MainMenu(registered bool) *tele.ReplyMarkup {
	if !registered {
		return keyboard.ReplyButtons(
			[]string{BtnRegister},
			[]string{BtnPrices, BtnContacts},
		)
	}
	return keyboard.ReplyButtons(
		[]string{BtnOrder},
		[]string{BtnMyOrders, BtnProfile},
		[]string{BtnPrices, BtnContacts},
	)
}

// RegisterKeyboard offers the single registration entry button.
func RegisterKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📝 Register", Unique: CBRegister},
	})
}

// PhoneKeyboard is a one-tap contact share keyboard for the phone step.
func PhoneKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact("📱 Share my number")))
	return markup
}

// ProfileKeyboard is shown under the profile screen.
func ProfileKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✏️ Edit profile", Unique: CBEditProfile},
	})
}

// WaterKeyboard offers the water variants plus abort.
func WaterKeyboard() *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(models.WaterTypes)+1)
	for _, w := range models.WaterTypes {
		btns = append(btns, keyboard.InlineBtn{Text: WaterLabel(w), Unique: CBOrderWater, Data: string(w)})
	}
	btns = append(btns, keyboard.InlineBtn{Text: "❌ Cancel", Unique: CBOrderAbort})
	return keyboard.InlineButtons(btns)
}

// QuantityKeyboard offers preset bottle counts, a custom entry, and navigation.
func QuantityKeyboard() *tele.ReplyMarkup {
	presets := make([]keyboard.InlineBtn, 0, 5)
	for q := 1; q <= 5; q++ {
		presets = append(presets, keyboard.InlineBtn{
			Text: strconv.Itoa(q), Unique: CBOrderQty, Data: strconv.Itoa(q),
		})
	}
	return keyboard.InlineButtonsRows(
		presets,
		[]keyboard.InlineBtn{{Text: "✍️ Other amount", Unique: CBOrderQtyOwn}},
		navRow("water"),
	)
}

// PaymentKeyboard offers the payment methods and navigation.
func PaymentKeyboard() *tele.ReplyMarkup {
	row := make([]keyboard.InlineBtn, 0, len(PaymentMethods))
	for _, m := range PaymentMethods {
		row = append(row, keyboard.InlineBtn{Text: PaymentLabel(m), Unique: CBOrderPayment, Data: m})
	}
	return keyboard.InlineButtonsRows(row, navRow("quantity"))
}

// CommentKeyboard lets the customer skip the courier note.
func CommentKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "⏭ Skip", Unique: CBOrderSkip}},
		navRow("payment"),
	)
}

// ConfirmKeyboard finalizes or aborts the composed order.
func ConfirmKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Confirm", Unique: CBOrderConfirm},
			{Text: "❌ Cancel", Unique: CBOrderAbort},
		},
		navRow("comment"),
	)
}

func navRow(backTo string) []keyboard.InlineBtn {
	return []keyboard.InlineBtn{{Text: "⬅️ Back", Unique: CBOrderBack, Data: backTo}}
}

// ReceivedKeyboard lets the customer confirm delivery of an order in transit.
func ReceivedKeyboard(orderID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📦 I received it", Unique: CBReceived, Data: strconv.FormatInt(orderID, 10)},
	})
}

// RatingKeyboard offers the five star buttons for a completed order.
func RatingKeyboard(orderID int64) *tele.ReplyMarkup {
	stars := make([]keyboard.InlineBtn, 0, service.RatingMax)
	for r := service.RatingMin; r <= service.RatingMax; r++ {
		stars = append(stars, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%d⭐", r),
			Unique: CBRate,
			Data:   fmt.Sprintf("%d|%d", orderID, r),
		})
	}
	return keyboard.InlineButtonsRows(stars)
}

// FeedbackSkipKeyboard lets the customer skip optional feedback text.
func FeedbackSkipKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⏭ Skip", Unique: CBRateSkip},
	})
}

// AdminOrderKeyboard is a pure function of the order status: it offers only
// the transitions legal from the current state.
func AdminOrderKeyboard(o *models.Order) *tele.ReplyMarkup {
	id := strconv.FormatInt(o.ID, 10)
	var rows [][]keyboard.InlineBtn
	switch o.Status {
	case models.StatusPending:
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "✅ Confirm", Unique: CBAdminConfirm, Data: id},
			{Text: "❌ Cancel", Unique: CBAdminCancel, Data: id},
		})
	case models.StatusConfirmed:
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "🚚 Deliver", Unique: CBAdminDeliver, Data: id},
			{Text: "❌ Cancel", Unique: CBAdminCancel, Data: id},
		})
	case models.StatusDelivering:
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "🏁 Complete", Unique: CBAdminComplete, Data: id},
			{Text: "❌ Cancel", Unique: CBAdminCancel, Data: id},
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return keyboard.InlineButtonsRows(rows...)
}

// AdminMenuKeyboard is the /admin panel entry screen.
func AdminMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "📋 Active orders", Unique: CBAdminOrders},
			{Text: "👥 Customers", Unique: CBAdminUsers, Data: "0"},
		},
		[]keyboard.InlineBtn{{Text: "✖️ Close", Unique: CBAdminClose}},
	)
}

// AdminOrdersKeyboard lists active orders as buttons opening the order card.
func AdminOrdersKeyboard(orders []models.Order) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(orders))
	for _, o := range orders {
		btns = append(btns, keyboard.InlineBtn{
			Text:   fmt.Sprintf("#%d %s %d %s", o.ID, StatusLabel(o.Status), o.TotalPrice, "₽"),
			Unique: CBAdminOrder,
			Data:   strconv.FormatInt(o.ID, 10),
		})
	}
	return keyboard.InlineButtons(btns)
}

// AdminUsersKeyboard paginates the customer list and offers a price override
// button per customer on the current page.
func AdminUsersKeyboard(page *service.UsersPage) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, u := range page.Users {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("💰 %s", u.FullName),
			Unique: CBAdminSetPrice,
			Data:   strconv.FormatInt(u.ID, 10),
		}})
	}
	var nav []keyboard.InlineBtn
	if page.Page > 0 {
		nav = append(nav, keyboard.InlineBtn{
			Text: "⬅️", Unique: CBAdminUsers, Data: strconv.Itoa(page.Page - 1),
		})
	}
	if page.Page < page.Pages-1 {
		nav = append(nav, keyboard.InlineBtn{
			Text: "➡️", Unique: CBAdminUsers, Data: strconv.Itoa(page.Page + 1),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return keyboard.InlineButtonsRows(rows...)
}
