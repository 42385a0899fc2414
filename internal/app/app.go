package app

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/aquabot/core/bootstrap"
	coretelegram "github.com/m3rciful/aquabot/core/telegram"
	"github.com/m3rciful/aquabot/core/telegram/router"
	"github.com/m3rciful/aquabot/core/telegram/state"
	"github.com/m3rciful/aquabot/core/telegram/ui"
	"github.com/m3rciful/aquabot/internal/bot"
	"github.com/m3rciful/aquabot/internal/notify"
	"github.com/m3rciful/aquabot/internal/service"
	"github.com/m3rciful/aquabot/internal/storage"
	"github.com/m3rciful/aquabot/internal/view"
)

// App holds the assembled bot.
type App struct {
	cfg      *Config
	bot      *bot.Bot
	notifier *notify.Notifier
	fsm      state.Manager
}

// Bootstrap initializes logging, the database, and the domain services.
func Bootstrap(cfg *Config) (*App, error) {
	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(infra.DB)
	users := service.NewUsers(store, cfg.Delivery.DefaultBottlePrice)

	// The notifier gets its sender once the bot is up, in OnStart.
	notifier := notify.New(nil, nil,
		cfg.Core.Telegram.AdminIDs, cfg.Delivery.OrdersChannelID, view.NewPicker())
	orders := service.NewOrders(store, users, notifier)

	fsm := state.NewMemoryManager()
	b := bot.New(users, orders, fsm, cfg.Core.Telegram.AdminIDs)

	return &App{cfg: cfg, bot: b, notifier: notifier, fsm: fsm}, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.bot.Setup(reg)
	var fallback ui.FallbackProvider = a.bot

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminIDs: a.cfg.Core.Telegram.AdminIDs,
		OnAdminReject: func(c tele.Context) error {
			return nil
		},
	})
	routes = append(routes, router.TextRoutes(a.fsm, reg, router.TextOptions{
		UnknownText:     fallback.UnknownText(),
		UnknownDocument: fallback.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fallback.UnknownCallback(),
	}))
	routes = append(routes, a.bot.Routes()...)

	middlewares := coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil)
	middlewares = append(middlewares, coretelegram.Middleware{
		Name: "session",
		Use:  state.WithSession(a.fsm),
	})

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.Bind(rt.Bot, rt.Dispatcher)
			return nil
		},
	}, nil
}
