package formatter

import (
	"strings"
	"time"

	"github.com/m3rciful/weatherbot/core/telegram/format"
)

// Kind tags loading and error texts with the data they are about.
type Kind int

const (
	KindDefault Kind = iota
	KindWeather
	KindCurrency
)

// AboutVersion is the product version shown on the about screen.
const AboutVersion = "2.0"

// Loading returns the placeholder shown while data is being fetched.
func Loading(kind Kind) string {
	switch kind {
	case KindWeather:
		return "⏳ Завантажую прогноз погоди..."
	case KindCurrency:
		return "⏳ Отримую курси валют..."
	default:
		return "⏳ Обробляю запит..."
	}
}

// detailReplacer keeps an error detail from closing the italic entity it is
// rendered in.
var detailReplacer = strings.NewReplacer("_", " ", "*", "", "`", "'", "[", "(")

// Error renders the failure block for kind, always carrying detail.
func Error(kind Kind, detail string) string {
	what := "курси валют"
	if kind == KindWeather {
		what = "прогноз погоди"
	}
	return "⚠️ **Помилка**\n\n" +
		"Не вдалося отримати " + what + ".\n\n" +
		"ℹ️ Спробуйте пізніше або зверніться до адміністратора.\n\n" +
		"_Деталі: " + detailReplacer.Replace(detail) + "_"
}

// Welcome greets the user on /start.
func (f *Formatter) Welcome(name string) string {
	return f.Header("ЛАСКАВО ПРОСИМО", "🎉") + "\n\n" +
		"Привіт, **" + format.EscapeLegacy(name) + "**! 👋\n\n" +
		"Я ваш персональний помічник для:\n\n" +
		"🌡️ **Прогнозу погоди**\n" +
		"💱 **Курсів валют**\n\n" +
		"ℹ️ Оберіть потрібну опцію нижче:"
}

// Help lists commands and buttons.
func (f *Formatter) Help() string {
	return f.Header("ДОПОМОГА", "📋") + "\n\n" +
		"**Доступні команди:**\n" +
		"/start - Головне меню\n" +
		"/help - Ця довідка\n" +
		"/weather - Швидкий прогноз\n" +
		"/rates - Швидкі курси\n\n" +
		"**Функції бота:**\n" +
		"🌡️ Прогноз погоди на 24 години\n" +
		"💨 Детальна інформація про вітер\n" +
		"💵 Курси USD та EUR\n" +
		"💱 Порівняння валют\n\n" +
		"ℹ️ Виберіть опцію в меню або використовуйте команди!"
}

// MainMenu greets name on the start screen.
func (f *Formatter) MainMenu(name string) string {
	return f.Header("ГОЛОВНЕ МЕНЮ", "🏠") + "\n\n**" + format.EscapeLegacy(name) + "**, оберіть потрібну опцію:"
}

// WeatherMenu is the forecast options screen.
func (f *Formatter) WeatherMenu() string {
	return f.Header("МЕНЮ ПОГОДИ", "🌡️") + "\n\nОберіть тип прогнозу:"
}

// CurrencyMenu is the exchange rates screen.
func (f *Formatter) CurrencyMenu() string {
	return f.Header("МЕНЮ ВАЛЮТ", "💱") + "\n\nОберіть валюту або дію:"
}

// CitySelection shows the current city above the preset list.
func (f *Formatter) CitySelection(current string) string {
	return f.Header("ВИБІР МІСТА", "🏙️") + "\n\n" +
		"📍 **Поточне місто:** " + format.EscapeLegacy(current) + "\n\n" +
		"Оберіть місто для прогнозу погоди:"
}

// CustomCityPrompt asks for a free-text city name.
func CustomCityPrompt() string {
	return "ℹ️ **Введіть назву міста**\n\n" +
		"Напишіть назву міста українською або англійською мовою.\n\n" +
		"_Приклад: Київ, Kyiv, Харків, Kharkiv_"
}

// CityNotFound tells the user input matched no city.
func CityNotFound(input string) string {
	return "⚠️ **Помилка**\n\n" +
		"Не вдалося знайти місто \"" + format.EscapeLegacy(input) + "\". " +
		"Спробуйте ввести правильну назву міста українською або англійською мовою."
}

// CitySaved confirms a typed city.
func CitySaved(city string) string {
	return "✅ Місто **" + format.EscapeLegacy(city) + "** збережено як ваше за замовчуванням!"
}

// CitySelected confirms a preset city.
func CitySelected(city string) string {
	return "✅ Місто **" + format.EscapeLegacy(city) + "** обрано як за замовчуванням!"
}

// UnknownText answers free text that is not a command.
func UnknownText(name string) string {
	return "ℹ️ Я не розумію цю команду, **" + format.EscapeLegacy(name) + "**.\n\n" +
		"Використовуйте меню нижче або команди /help"
}

// GenericError is the reply for any unexpected failure; at is shown as HH:mm:ss.
func (f *Formatter) GenericError(at time.Time) string {
	return "⚠️ **Виникла помилка**\n\n" +
		"Спробуйте пізніше або зверніться до адміністратора.\n\n" +
		"_Час: " + at.In(f.loc).Format("15:04:05") + "_"
}

// About describes the bot, dated today.
func (f *Formatter) About(today time.Time) string {
	return f.Header("ПРО БОТА", "ℹ️") + "\n\n" +
		"**Функції:**\n" +
		"🌡️ Прогноз погоди від OpenWeatherMap\n" +
		"💱 Курси валют від MonoBank\n" +
		"🕐 Актуальні дані в реальному часі\n" +
		"💨 Детальна інформація про вітер\n\n" +
		"**Версія:** " + AboutVersion + "\n" +
		"**Дата:** " + today.In(f.loc).Format("02.01.2006") + "\n\n" +
		"ℹ️ Дані оновлюються автоматично"
}
