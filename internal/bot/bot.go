// Package bot wires the Telegram dialogue layer: commands, callbacks, and
// the conversation state machine on top of the services.
package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/aquabot/core/telegram"
	"github.com/m3rciful/aquabot/core/telegram/commands"
	tghelpers "github.com/m3rciful/aquabot/core/telegram/helpers"
	"github.com/m3rciful/aquabot/core/telegram/middleware"
	"github.com/m3rciful/aquabot/core/telegram/state"
	"github.com/m3rciful/aquabot/internal/models"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/view"
)

// usersPerPage sizes the admin customer list pages.
const usersPerPage = 5

// historyLimit caps the "My orders" listing.
const historyLimit = 10

// Bot is the dialogue layer. It owns no business rules; everything flows
// through the services.
type Bot struct {
	users    *service.Users
	orders   *service.Orders
	fsm      state.Manager
	adminIDs []int64
}

// New wires the dialogue layer.
func New(users *service.Users, orders *service.Orders, fsm state.Manager, adminIDs []int64) *Bot {
	return &Bot{users: users, orders: orders, fsm: fsm, adminIDs: adminIDs}
}

// FSM exposes the state manager for routing.
func (b *Bot) FSM() state.Manager { return b.fsm }

// Setup registers every command, callback, and conversation state handler.
func (b *Bot) Setup(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.handleHelp,
		Description: "What this bot can do",
	})
	reg.RegisterCommand("/prices", commands.Command{
		Handler:     b.showPrices,
		Description: "Bottle prices",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.handleCancel,
		Description: "Abort the current action",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     b.handleAdminPanel,
		Description: "Admin panel",
		AdminOnly:   true,
		Hidden:      true,
	})

	b.registerUserCallbacks(reg)
	b.registerOrderCallbacks(reg)
	b.registerRatingCallbacks(reg)
	b.registerAdminCallbacks(reg)

	b.registerStates()

	reg.SetTextFallback(b.routeMenuText)
	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "This action is no longer available"})
	})
}

// Routes returns extra endpoint routes beyond text and callbacks: shared
// contacts feed the conversation state machine (phone step).
func (b *Bot) Routes() []tg.Route {
	return []tg.Route{
		{
			Endpoint: tele.OnContact,
			Handler: middleware.RecoverMiddleware(middleware.LoggerMiddleware(func(c tele.Context) error {
				if b.fsm.InProgress(c.Sender().ID) {
					return b.fsm.ManagerHandler(c)
				}
				return nil
			})),
		},
	}
}

// adminGuard wraps admin callbacks so a leaked keyboard can never be used
// by a non-admin.
func (b *Bot) adminGuard(h tele.HandlerFunc) tele.HandlerFunc {
	opts := middleware.AdminOptions{
		AdminIDs: b.adminIDs,
		OnReject: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Admins only"})
		},
	}
	return middleware.AdminOnlyMiddleware(opts)(h)
}

func (b *Bot) ctx(c tele.Context) context.Context {
	return tghelpers.BuildContext(c)
}

// currentUser loads the registered user for the sender, or nil when the
// sender has not registered yet.
func (b *Bot) currentUser(c tele.Context) (*models.User, error) {
	u, err := tghelpers.CurrentUser(b.ctx(c), b.users, c.Sender().ID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// routeMenuText dispatches the persistent menu buttons; anything else gets
// the generic hint.
func (b *Bot) routeMenuText(c tele.Context) error {
	switch c.Text() {
	case view.BtnRegister:
		return b.startRegistration(c)
	case view.BtnOrder:
		return b.startOrder(c)
	case view.BtnMyOrders:
		return b.showHistory(c)
	case view.BtnProfile:
		return b.showProfile(c)
	case view.BtnPrices:
		return b.showPrices(c)
	case view.BtnContacts:
		return tghelpers.SendMD(c, view.Contacts)
	default:
		return tghelpers.SendText(c, view.Unknown)
	}
}

// UnknownText implements ui.FallbackProvider.
func (b *Bot) UnknownText() tele.HandlerFunc {
	return b.routeMenuText
}

// UnknownDocument implements ui.FallbackProvider.
func (b *Bot) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, view.Unknown)
	}
}

// UnknownCallback implements ui.FallbackProvider.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "This action is no longer available"})
	}
}
