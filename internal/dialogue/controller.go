// Package dialogue turns chat events into replies: it owns the menu
// navigation, the loading placeholder protocol and the typed-city flow.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/models"

	tele "gopkg.in/telebot.v4"
)

const (
	component = "dialogue"

	// DefaultConfirmDelay is how long a city confirmation waits after the forecast.
	DefaultConfirmDelay = time.Second

	processingNotice = "⏳ Обробляю..."
	unknownNotice    = "❌ Невідома команда"
)

// Transport delivers replies to the chat.
type Transport interface {
	Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error
	Answer(ctx context.Context, callbackID, text string, alert bool) error
}

// WeatherService renders forecasts. The text is always displayable; err is
// set when the city could not be resolved or fetched.
type WeatherService interface {
	Forecast(ctx context.Context, intent models.Intent, city string) (string, error)
}

// RateService renders exchange rates. Failures come back as text.
type RateService interface {
	Rate(ctx context.Context, cur models.Currency) string
	Compare(ctx context.Context) string
}

// Sessions is the per-user and per-chat state the controller needs.
type Sessions interface {
	City(userID int64) string
	SetCity(userID int64, city string)
	SetAwaitingCityInput(userID int64, awaiting bool)
	ConsumeAwaitingCity(userID int64) bool
	TrackLoading(chatID int64, messageID int)
	TakeLoading(chatID int64) (int, bool)
	ReleaseLoading(chatID int64, messageID int) bool
	ScheduleConfirmation(userID int64, delay time.Duration, fn func())
}

// TextMessage is a free-text message or command.
type TextMessage struct {
	UserID    int64
	ChatID    int64
	FirstName string
	Text      string
}

// ButtonPress is an inline button callback.
type ButtonPress struct {
	UserID     int64
	ChatID     int64
	MessageID  int
	CallbackID string
	FirstName  string
	Action     Action
	Payload    string
}

// Options wire a Controller.
type Options struct {
	Transport    Transport
	Weather      WeatherService
	Rates        RateService
	Sessions     Sessions
	Formatter    *formatter.Formatter
	ConfirmDelay time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Controller handles chat events. It is safe for concurrent use; events of
// the same user are not serialised.
type Controller struct {
	transport    Transport
	weather      WeatherService
	rates        RateService
	sessions     Sessions
	view         *formatter.Formatter
	confirmDelay time.Duration
	now          func() time.Time
}

// New builds a Controller. Transport, Weather, Rates and Sessions are required.
func New(opts Options) (*Controller, error) {
	if opts.Transport == nil || opts.Weather == nil || opts.Rates == nil || opts.Sessions == nil {
		return nil, errors.New("dialogue: transport, weather, rates and sessions are required")
	}
	c := &Controller{
		transport:    opts.Transport,
		weather:      opts.Weather,
		rates:        opts.Rates,
		sessions:     opts.Sessions,
		view:         opts.Formatter,
		confirmDelay: opts.ConfirmDelay,
		now:          opts.Now,
	}
	if c.view == nil {
		c.view = formatter.New(formatter.HeaderStyle{})
	}
	if c.confirmDelay <= 0 {
		c.confirmDelay = DefaultConfirmDelay
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// HandleText handles a free-text message. A pending typed-city request
// takes the message whatever it says; otherwise the text is matched
// against the known commands and labels.
func (c *Controller) HandleText(ctx context.Context, msg TextMessage) error {
	if c.sessions.ConsumeAwaitingCity(msg.UserID) {
		return c.guard(ctx, msg.ChatID, func() error { return c.typedCity(ctx, msg) })
	}
	parsed := ParseText(msg.Text)
	logger.Debug(ctx, component, "text.command", slog.String("command", parsed.Command.String()))
	return c.guard(ctx, msg.ChatID, func() error { return c.dispatchText(ctx, msg, parsed) })
}

func (c *Controller) dispatchText(ctx context.Context, msg TextMessage, p ParsedText) error {
	switch p.Command {
	case CommandStart:
		return c.send(ctx, msg.ChatID, c.view.Welcome(msg.FirstName), StartMenu())
	case CommandHelp:
		return c.send(ctx, msg.ChatID, c.view.Help(), StartMenu())
	case CommandQuickWeather:
		return c.textForecast(ctx, msg, models.IntentQuick)
	case CommandLegacyForecast:
		return c.textForecast(ctx, msg, p.Intent)
	case CommandQuickRates:
		return c.withLoading(ctx, msg.ChatID, formatter.KindCurrency, RateMenu(), func() string {
			return c.rates.Compare(ctx)
		})
	case CommandRate:
		return c.withLoading(ctx, msg.ChatID, formatter.KindCurrency, RateMenu(), func() string {
			return c.rates.Rate(ctx, p.Currency)
		})
	case CommandWeatherMenu:
		return c.send(ctx, msg.ChatID, c.view.WeatherMenu(), WeatherMenu())
	case CommandCurrencyMenu:
		return c.send(ctx, msg.ChatID, c.view.CurrencyMenu(), RateMenu())
	case CommandBack:
		return c.send(ctx, msg.ChatID, c.view.MainMenu(msg.FirstName), StartMenu())
	case CommandUnknown:
		return c.send(ctx, msg.ChatID, formatter.UnknownText(msg.FirstName), StartMenu())
	default:
		return fmt.Errorf("dialogue: unhandled text command %d", p.Command)
	}
}

func (c *Controller) textForecast(ctx context.Context, msg TextMessage, intent models.Intent) error {
	city := c.sessions.City(msg.UserID)
	return c.withLoading(ctx, msg.ChatID, formatter.KindWeather, WeatherMenu(), func() string {
		text, _ := c.weather.Forecast(ctx, intent, city)
		return text
	})
}

// typedCity validates the text as a city by fetching its quick forecast.
func (c *Controller) typedCity(ctx context.Context, msg TextMessage) error {
	city := strings.TrimSpace(msg.Text)
	loadingID, err := c.sendLoading(ctx, msg.ChatID, formatter.KindWeather)
	if err != nil {
		return err
	}

	text, err := c.weather.Forecast(ctx, models.IntentQuick, city)
	if err != nil {
		logger.Info(ctx, component, "city.rejected",
			slog.String("outcome", "not_found"),
			slog.String("city", logger.SanitizeLimit(city, 64)),
			slog.String("err", err.Error()),
		)
		return c.replaceLoading(ctx, msg.ChatID, loadingID, formatter.CityNotFound(city), CityMenu())
	}

	c.sessions.SetCity(msg.UserID, city)
	logger.Info(ctx, component, "city.saved",
		slog.String("outcome", "ok"),
		slog.String("city", logger.SanitizeLimit(city, 64)),
	)
	if err := c.replaceLoading(ctx, msg.ChatID, loadingID, text, WeatherMenu()); err != nil {
		return err
	}
	c.confirm(ctx, msg.UserID, msg.ChatID, formatter.CitySaved(city))
	return nil
}

// HandleButton handles an inline button press. Unknown actions only get an
// alert and leave the message as it is.
func (c *Controller) HandleButton(ctx context.Context, b ButtonPress) error {
	if b.Action == ActionUnknown || (b.Action == ActionCity && !IsPresetCity(b.Payload)) {
		logger.Warn(ctx, component, "button.unknown",
			slog.String("outcome", "not_found"),
			slog.String("payload", logger.SanitizeLimit(b.Payload, 64)),
		)
		return c.transport.Answer(ctx, b.CallbackID, unknownNotice, true)
	}
	if err := c.transport.Answer(ctx, b.CallbackID, processingNotice, false); err != nil {
		// Stale callbacks cannot be answered; the edit still goes through.
		logger.Warn(ctx, component, "button.answer.fail",
			slog.String("action", b.Action.String()),
			slog.String("err", err.Error()),
		)
	}
	return c.guard(ctx, b.ChatID, func() error { return c.dispatchButton(ctx, b) })
}

func (c *Controller) dispatchButton(ctx context.Context, b ButtonPress) error {
	switch b.Action {
	case ActionMainMenu:
		return c.show(ctx, b, c.view.MainMenu(b.FirstName), StartMenu())
	case ActionWeatherMenu:
		return c.show(ctx, b, c.view.WeatherMenu(), WeatherMenu())
	case ActionCurrencyMenu:
		return c.show(ctx, b, c.view.CurrencyMenu(), RateMenu())
	case ActionWeather3h:
		return c.buttonForecast(ctx, b, models.IntentEvery3h, c.sessions.City(b.UserID))
	case ActionWeather6h:
		return c.buttonForecast(ctx, b, models.IntentEvery6h, c.sessions.City(b.UserID))
	case ActionWeatherWind:
		return c.buttonForecast(ctx, b, models.IntentWind, c.sessions.City(b.UserID))
	case ActionWeatherQuick, ActionWeatherRefresh:
		return c.buttonForecast(ctx, b, models.IntentQuick, c.sessions.City(b.UserID))
	case ActionSelectCity:
		return c.show(ctx, b, c.view.CitySelection(c.sessions.City(b.UserID)), CityMenu())
	case ActionCity:
		c.sessions.SetCity(b.UserID, b.Payload)
		if err := c.buttonForecast(ctx, b, models.IntentQuick, b.Payload); err != nil {
			return err
		}
		c.confirm(ctx, b.UserID, b.ChatID, formatter.CitySelected(b.Payload))
		return nil
	case ActionCustomCity:
		c.sessions.SetAwaitingCityInput(b.UserID, true)
		return c.show(ctx, b, formatter.CustomCityPrompt(), CityMenu())
	case ActionRateUSD:
		return c.buttonRate(ctx, b, RateMenu(), func() string { return c.rates.Rate(ctx, models.CurrencyUSD) })
	case ActionRateEUR:
		return c.buttonRate(ctx, b, RateMenu(), func() string { return c.rates.Rate(ctx, models.CurrencyEUR) })
	case ActionRateCompare, ActionCompareUSDEUR:
		return c.buttonRate(ctx, b, CompareMenu(), func() string { return c.rates.Compare(ctx) })
	case ActionRateRefresh, ActionRateQuick:
		return c.buttonRate(ctx, b, RateMenu(), func() string { return c.rates.Compare(ctx) })
	case ActionAbout:
		return c.show(ctx, b, c.view.About(c.now()), StartMenu())
	case ActionUnknown:
		return errors.New("dialogue: unknown action reached dispatch")
	default:
		return fmt.Errorf("dialogue: unhandled action %d", b.Action)
	}
}

func (c *Controller) buttonForecast(ctx context.Context, b ButtonPress, intent models.Intent, city string) error {
	c.paintLoading(ctx, b, formatter.KindWeather)
	text, _ := c.weather.Forecast(ctx, intent, city)
	return c.replaceLoading(ctx, b.ChatID, b.MessageID, text, WeatherMenu())
}

func (c *Controller) buttonRate(ctx context.Context, b ButtonPress, menu *tele.ReplyMarkup, fetch func() string) error {
	c.paintLoading(ctx, b, formatter.KindCurrency)
	return c.replaceLoading(ctx, b.ChatID, b.MessageID, fetch(), menu)
}

// paintLoading turns the pressed message into the placeholder. A failed
// paint is cosmetic and only logged.
func (c *Controller) paintLoading(ctx context.Context, b ButtonPress, kind formatter.Kind) {
	c.sessions.TrackLoading(b.ChatID, b.MessageID)
	if err := c.transport.Edit(ctx, b.ChatID, b.MessageID, formatter.Loading(kind), nil); err != nil && !tg.IsNotModified(err) {
		logger.Warn(ctx, component, "loading.paint.fail", slog.String("err", err.Error()))
	}
}

// withLoading sends a placeholder, renders the reply and swaps it in.
func (c *Controller) withLoading(ctx context.Context, chatID int64, kind formatter.Kind, menu *tele.ReplyMarkup, render func() string) error {
	loadingID, err := c.sendLoading(ctx, chatID, kind)
	if err != nil {
		return err
	}
	return c.replaceLoading(ctx, chatID, loadingID, render(), menu)
}

// sendLoading posts a placeholder and makes it the chat's pending one.
func (c *Controller) sendLoading(ctx context.Context, chatID int64, kind formatter.Kind) (int, error) {
	id, err := c.transport.Send(ctx, chatID, formatter.Loading(kind), nil)
	if err != nil {
		return 0, fmt.Errorf("dialogue: send loading: %w", err)
	}
	c.sessions.TrackLoading(chatID, id)
	return id, nil
}

// replaceLoading puts text into the placeholder messageID and forgets it
// unless a newer placeholder took its place.
func (c *Controller) replaceLoading(ctx context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	defer c.sessions.ReleaseLoading(chatID, messageID)
	return c.editOrSend(ctx, chatID, messageID, text, markup)
}

// show edits the pressed message into a static screen.
func (c *Controller) show(ctx context.Context, b ButtonPress, text string, markup *tele.ReplyMarkup) error {
	return c.editOrSend(ctx, b.ChatID, b.MessageID, text, markup)
}

// editOrSend edits messageID; "not modified" counts as done and any other
// edit failure falls back to a new message.
func (c *Controller) editOrSend(ctx context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	err := c.transport.Edit(ctx, chatID, messageID, text, markup)
	if err == nil || tg.IsNotModified(err) {
		return nil
	}
	logger.Warn(ctx, component, "edit.fallback",
		slog.Int("message_id", messageID),
		slog.String("err", err.Error()),
	)
	_, err = c.transport.Send(ctx, chatID, text, markup)
	return err
}

func (c *Controller) send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	_, err := c.transport.Send(ctx, chatID, text, markup)
	return err
}

// confirm posts text after the confirmation delay, superseding a pending one.
func (c *Controller) confirm(ctx context.Context, userID, chatID int64, text string) {
	detached := context.WithoutCancel(ctx)
	c.sessions.ScheduleConfirmation(userID, c.confirmDelay, func() {
		if _, err := c.transport.Send(detached, chatID, text, nil); err != nil {
			logger.Warn(detached, component, "confirm.fail", slog.String("err", err.Error()))
		}
	})
}

// guard runs fn and converts its error into the generic failure reply.
func (c *Controller) guard(ctx context.Context, chatID int64, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	return c.Fail(ctx, chatID, err)
}

// Fail logs cause and tells the chat something went wrong, reusing the
// pending placeholder when there is one. It returns nil once the user has
// been told.
func (c *Controller) Fail(ctx context.Context, chatID int64, cause error) error {
	logger.Error(ctx, component, "event.fail",
		slog.String("status", logger.Status(cause)),
		slog.String("err", logger.SanitizeLimit(cause.Error(), 256)),
	)
	text := c.view.GenericError(c.now())
	if id, ok := c.sessions.TakeLoading(chatID); ok {
		if err := c.editOrSend(ctx, chatID, id, text, StartMenu()); err != nil {
			return errors.Join(cause, err)
		}
		return nil
	}
	if err := c.send(ctx, chatID, text, StartMenu()); err != nil {
		return errors.Join(cause, err)
	}
	return nil
}
