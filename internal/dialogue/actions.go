package dialogue

import (
	"strings"

	"github.com/m3rciful/weatherbot/internal/models"
)

// Action is an inline button callback.
type Action int

const (
	ActionUnknown Action = iota
	ActionMainMenu
	ActionWeatherMenu
	ActionCurrencyMenu
	ActionWeather3h
	ActionWeather6h
	ActionWeatherWind
	ActionWeatherQuick
	ActionWeatherRefresh
	ActionSelectCity
	ActionCity
	ActionCustomCity
	ActionRateUSD
	ActionRateEUR
	ActionRateCompare
	ActionRateRefresh
	ActionRateQuick
	ActionCompareUSDEUR
	ActionAbout
)

var actionKeys = map[Action]string{
	ActionMainMenu:       "main_menu",
	ActionWeatherMenu:    "weather_menu",
	ActionCurrencyMenu:   "currency_menu",
	ActionWeather3h:      "weather_3h",
	ActionWeather6h:      "weather_6h",
	ActionWeatherWind:    "weather_wind",
	ActionWeatherQuick:   "weather_quick",
	ActionWeatherRefresh: "weather_refresh",
	ActionSelectCity:     "select_city",
	ActionCity:           "city",
	ActionCustomCity:     "custom_city",
	ActionRateUSD:        "rate_USD",
	ActionRateEUR:        "rate_EUR",
	ActionRateCompare:    "rate_compare",
	ActionRateRefresh:    "rate_refresh",
	ActionRateQuick:      "rate_quick",
	ActionCompareUSDEUR:  "compare_usd_eur",
	ActionAbout:          "about",
}

var actionsByKey = func() map[string]Action {
	m := make(map[string]Action, len(actionKeys))
	for a, k := range actionKeys {
		m[k] = a
	}
	return m
}()

// Key is the callback unique of the action.
func (a Action) Key() string { return actionKeys[a] }

func (a Action) String() string {
	if k, ok := actionKeys[a]; ok {
		return k
	}
	return "unknown"
}

// ParseAction maps a callback unique onto an Action.
func ParseAction(key string) Action {
	return actionsByKey[key]
}

// Actions lists every known action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, len(actionKeys))
	for a := ActionMainMenu; a <= ActionAbout; a++ {
		out = append(out, a)
	}
	return out
}

// TextCommand is a recognised free-text message.
type TextCommand int

const (
	CommandUnknown TextCommand = iota
	CommandStart
	CommandHelp
	CommandQuickWeather
	CommandQuickRates
	CommandWeatherMenu
	CommandCurrencyMenu
	CommandLegacyForecast
	CommandRate
	CommandBack
)

func (c TextCommand) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandHelp:
		return "help"
	case CommandQuickWeather:
		return "weather"
	case CommandQuickRates:
		return "rates"
	case CommandWeatherMenu:
		return "weather_menu"
	case CommandCurrencyMenu:
		return "currency_menu"
	case CommandLegacyForecast:
		return "legacy_forecast"
	case CommandRate:
		return "rate"
	case CommandBack:
		return "back"
	default:
		return "unknown"
	}
}

// ParsedText is a TextCommand with its argument, if any.
type ParsedText struct {
	Command  TextCommand
	Intent   models.Intent
	Currency models.Currency
}

// Reply keyboard labels of the first bot version, still accepted as text.
const (
	LabelWeatherMenu  = "/Погода 🌡️"
	LabelCurrencyMenu = "/Курс валют 💹"
	LabelEvery3h      = "Кожні 3 години 🕒"
	LabelEvery6h      = "Кожні 6 годин 🕕"
	LabelWind         = "Вітер 💨"
	LabelBack         = "Попереднє меню ⬅️"
)

// ParseText matches text exactly; "/cmd@botname" counts as "/cmd".
func ParseText(text string) ParsedText {
	switch normalizeCommand(text) {
	case "/start":
		return ParsedText{Command: CommandStart}
	case "/help":
		return ParsedText{Command: CommandHelp}
	case "/weather":
		return ParsedText{Command: CommandQuickWeather}
	case "/rates":
		return ParsedText{Command: CommandQuickRates}
	case LabelWeatherMenu:
		return ParsedText{Command: CommandWeatherMenu}
	case LabelCurrencyMenu:
		return ParsedText{Command: CommandCurrencyMenu}
	case LabelEvery3h:
		return ParsedText{Command: CommandLegacyForecast, Intent: models.IntentEvery3h}
	case LabelEvery6h:
		return ParsedText{Command: CommandLegacyForecast, Intent: models.IntentEvery6h}
	case LabelWind:
		return ParsedText{Command: CommandLegacyForecast, Intent: models.IntentWind}
	case "USD":
		return ParsedText{Command: CommandRate, Currency: models.CurrencyUSD}
	case "EUR":
		return ParsedText{Command: CommandRate, Currency: models.CurrencyEUR}
	case LabelBack:
		return ParsedText{Command: CommandBack}
	default:
		return ParsedText{Command: CommandUnknown}
	}
}

func normalizeCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	if cmd, _, ok := strings.Cut(text, "@"); ok && !strings.Contains(cmd, " ") {
		return cmd
	}
	return text
}
