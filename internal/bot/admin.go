package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/aquabot/core/telegram"
	"github.com/m3rciful/aquabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/aquabot/core/telegram/helpers"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/view"
)

func (b *Bot) registerAdminCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback(view.CBAdminOrders, b.adminGuard(b.cbAdminOrders))
	_ = reg.RegisterCallback(view.CBAdminOrder, b.adminGuard(b.cbAdminOrder))
	_ = reg.RegisterCallback(view.CBAdminConfirm, b.adminGuard(b.transitionHandler(models.StatusConfirmed)))
	_ = reg.RegisterCallback(view.CBAdminDeliver, b.adminGuard(b.transitionHandler(models.StatusDelivering)))
	_ = reg.RegisterCallback(view.CBAdminComplete, b.adminGuard(b.transitionHandler(models.StatusCompleted)))
	_ = reg.RegisterCallback(view.CBAdminCancel, b.adminGuard(b.transitionHandler(models.StatusCancelled)))
	_ = reg.RegisterCallback(view.CBAdminUsers, b.adminGuard(b.cbAdminUsers))
	_ = reg.RegisterCallback(view.CBAdminSetPrice, b.adminGuard(b.cbAdminSetPrice))
	_ = reg.RegisterCallback(view.CBAdminClose, b.adminGuard(func(c tele.Context) error {
		return c.Delete()
	}))
}

func (b *Bot) handleAdminPanel(c tele.Context) error {
	return tghelpers.SendMD(c, "*Admin panel*", view.AdminMenuKeyboard())
}

func (b *Bot) cbAdminOrders(c tele.Context) error {
	orders, err := b.orders.Active(b.ctx(c))
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return tghelpers.EditOrSendMD(c, "No active orders. 🎉")
	}
	return tghelpers.EditOrSendMD(c,
		fmt.Sprintf("*Active orders: %d*", len(orders)),
		view.AdminOrdersKeyboard(orders))
}

func (b *Bot) cbAdminOrder(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad order id"})
	}
	order, owner, err := b.orders.GetWithOwner(b.ctx(c), id)
	if isNotFound(err) {
		return c.Respond(&tele.CallbackResponse{Text: "Order not found"})
	}
	if err != nil {
		return err
	}
	return tghelpers.EditOrSendMD(c, view.AdminOrderCard(order, owner), view.AdminOrderKeyboard(order))
}

// transitionHandler builds the handler for one lifecycle action button.
// The card is redrawn with the keyboard matching the new status.
func (b *Bot) transitionHandler(target models.OrderStatus) tele.HandlerFunc {
	return func(c tele.Context) error {
		id, err := callbacks.PayloadInt64(c)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Bad order id"})
		}
		order, err := b.orders.Transition(b.ctx(c), id, target)
		if errors.Is(err, service.ErrInvalidTransition) {
			// A stale keyboard, e.g. two admins racing on the same order.
			return c.Respond(&tele.CallbackResponse{Text: "Order already handled"})
		}
		if isNotFound(err) {
			return c.Respond(&tele.CallbackResponse{Text: "Order not found"})
		}
		if err != nil {
			return err
		}
		_, owner, err := b.orders.GetWithOwner(b.ctx(c), id)
		if err != nil {
			return err
		}
		return tghelpers.EditOrSendMD(c, view.AdminOrderCard(order, owner), view.AdminOrderKeyboard(order))
	}
}

func (b *Bot) cbAdminUsers(c tele.Context) error {
	pageNo, err := callbacks.PayloadInt(c)
	if err != nil {
		pageNo = 0
	}
	page, err := b.users.List(b.ctx(c), pageNo, usersPerPage)
	if err != nil {
		return err
	}
	if page.Total == 0 {
		return tghelpers.EditOrSendMD(c, "No registered customers yet.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Customers* (page %d of %d, %d total):\n\n", page.Page+1, page.Pages, page.Total)
	for _, u := range page.Users {
		sb.WriteString(view.UserLine(u, b.users.DefaultPrice()))
		sb.WriteString("\n")
	}
	return tghelpers.EditOrSendMD(c, sb.String(), view.AdminUsersKeyboard(page))
}

// cbAdminSetPrice opens the typed price entry for one customer.
func (b *Bot) cbAdminSetPrice(c tele.Context) error {
	userID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad user id"})
	}
	adminID := c.Sender().ID
	b.fsm.SetTemp(adminID, tmpPriceUser, userID)
	b.fsm.SetState(adminID, stateAdminPrice)
	return tghelpers.EditOrSendMD(c,
		fmt.Sprintf("New price for customer #%d, in whole rubles. Send 0 to reset to the default (%d).",
			userID, b.users.DefaultPrice()))
}

func (b *Bot) fsmAdminPrice(c tele.Context) error {
	adminID := c.Sender().ID
	price, err := strconv.Atoi(c.Text())
	if err != nil || price < 0 {
		return tghelpers.SendText(c, "Please send a non-negative whole number, or /cancel.")
	}
	userID, ok := b.fsm.GetTempInt64(adminID, tmpPriceUser)
	if !ok {
		b.fsm.Clear(adminID)
		return tghelpers.SendText(c, view.Unknown)
	}

	var override *int
	if price > 0 {
		override = &price
	}
	err = b.users.SetPrice(b.ctx(c), userID, override)
	if errors.Is(err, service.ErrValidation) {
		return replyValidation(c, err)
	}
	b.fsm.Clear(adminID)
	if isNotFound(err) {
		return tghelpers.SendText(c, "Customer not found.")
	}
	if err != nil {
		return err
	}
	if override == nil {
		return tghelpers.SendText(c, fmt.Sprintf("✅ Customer #%d is back on the default price.", userID))
	}
	return tghelpers.SendText(c, fmt.Sprintf("✅ Customer #%d now pays %d ₽ per bottle.", userID, price))
}
