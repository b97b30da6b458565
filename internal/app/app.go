// Package app wires configuration, providers and the dialogue controller
// into a runnable Telegram bot.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/m3rciful/weatherbot/core/bootstrap"
	coretelegram "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/commands"
	"github.com/m3rciful/weatherbot/core/telegram/netutil"
	"github.com/m3rciful/weatherbot/core/telegram/router"
	"github.com/m3rciful/weatherbot/internal/config"
	"github.com/m3rciful/weatherbot/internal/dialogue"
	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/rates"
	"github.com/m3rciful/weatherbot/internal/session"
	"github.com/m3rciful/weatherbot/internal/weather"
)

// App holds the long-lived services of the bot.
type App struct {
	cfg      *config.Config
	view     *formatter.Formatter
	weather  *weather.Client
	rates    *rates.Client
	sessions *session.Store

	// ctrl is built once the bot exists; see setup.
	ctrl *dialogue.Controller
}

// New builds the services described by cfg without touching the network.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	view := formatter.New(cfg.HeaderStyle())
	return &App{
		cfg:  cfg,
		view: view,
		weather: weather.New(weather.Options{
			BaseURL:    cfg.Weather.BaseURL,
			APIKey:     cfg.Weather.APIKey,
			HTTPClient: providerClient(cfg.WeatherTimeout()),
			Formatter:  view,
		}),
		rates: rates.New(rates.Options{
			BaseURL:    cfg.Rates.BaseURL,
			HTTPClient: providerClient(cfg.RatesTimeout()),
			Formatter:  view,
		}),
		sessions: session.New(nil, cfg.Weather.DefaultCity),
	}, nil
}

// Bootstrap initializes the logger, builds the services and warms the rate
// cache. A failed warm-up is logged and ignored.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	var seeders []bootstrap.NamedSeeder
	if !cfg.Rates.DisableWarmup {
		seeders = append(seeders, bootstrap.NamedSeeder{Name: "rates", Seeder: bootstrap.SeederFunc(a.rates.Seed)})
	}
	if _, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg.CoreConfig(), Seeders: seeders}); err != nil {
		return nil, err
	}
	return a, nil
}

func providerClient(timeout time.Duration) *http.Client {
	return netutil.NewHTTPClient(netutil.ClientOptions{Timeout: timeout})
}

// Weather exposes the forecast client for one-off checks.
func (a *App) Weather() *weather.Client { return a.weather }

// Rates exposes the rate client for one-off checks.
func (a *App) Rates() *rates.Client { return a.rates }

// TelegramRunOptions registers commands, callbacks and fallbacks and returns
// the run options for core/telegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg := coretelegram.NewRegistry()

	for _, c := range []struct{ name, desc string }{
		{"/start", "Розпочати роботу з ботом 🚀"},
		{"/help", "Допомога та інструкції 📋"},
		{"/weather", "Швидкий прогноз погоди ⚡"},
		{"/rates", "Швидкі курси валют ⚡"},
	} {
		reg.RegisterCommand(c.name, commands.Command{Handler: a.handleText, Description: c.desc})
	}
	for _, action := range dialogue.Actions() {
		if err := reg.RegisterCallback(action.Key(), a.handleButton); err != nil {
			return coretelegram.RunOptions{}, fmt.Errorf("app: %w", err)
		}
	}
	reg.SetCallbackNotFound(a.UnknownCallback())
	reg.SetTextFallback(a.handleText)
	a.sessions.Manager().Handle(session.StateAwaitingCity, a.handleText)

	return coretelegram.RunOptions{
		Config:   core,
		Registry: reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, coretelegram.MiddlewareOptions{
			OnLimited: a.rateLimited,
			OnPanic:   a.recovered,
		}),
		Setup: a.setup,
	}, nil
}

func (a *App) setup(_ context.Context, rt coretelegram.Runtime) ([]coretelegram.Route, error) {
	ctrl, err := dialogue.New(dialogue.Options{
		Transport:    coretelegram.NewTransport(rt.Bot, rt.Dispatcher),
		Weather:      a.weather,
		Rates:        a.rates,
		Sessions:     a.sessions,
		Formatter:    a.view,
		ConfirmDelay: a.cfg.ConfirmDelay(),
	})
	if err != nil {
		return nil, err
	}
	a.ctrl = ctrl

	routes := router.CommandRoutes(rt.Registry)
	routes = append(routes, router.CallbackRoute(rt.Registry, router.CallbackOptions{NotFound: a.UnknownCallback()}))
	routes = append(routes, router.TextRoutes(a.sessions.Manager(), rt.Registry, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)
	return routes, nil
}
