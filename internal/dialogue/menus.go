package dialogue

import (
	"github.com/m3rciful/weatherbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// City is a preset city button.
type City struct {
	Label string
	Name  string
}

// PresetCities are offered on the city selection menu.
var PresetCities = []City{
	{"🏛️ Київ", "Kyiv"},
	{"🏭 Харків", "Kharkiv"},
	{"🏖️ Одеса", "Odesa"},
	{"🏭 Дніпро", "Dnipro"},
	{"🌆 Львів", "Lviv"},
	{"🏘️ Запоріжжя", "Zaporizhzhia"},
	{"🏭 Кривий Ріг", "Kryvyi Rih"},
	{"🏛️ Миколаїв", "Mykolaiv"},
	{"🌳 Маріуполь", "Mariupol"},
}

// IsPresetCity reports whether name is one of PresetCities.
func IsPresetCity(name string) bool {
	for _, c := range PresetCities {
		if c.Name == name {
			return true
		}
	}
	return false
}

func btn(text string, a Action) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: text, Unique: a.Key()}
}

// Menus are built per call; telebot owns the markup once it is sent.

// StartMenu is the main menu shown by /start and the home buttons.
func StartMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{btn("🌡️ Погода", ActionWeatherMenu), btn("💹 Курс валют", ActionCurrencyMenu)},
		[]keyboard.InlineBtn{btn("⚡ Швидкий прогноз", ActionWeatherQuick), btn("⚡ Швидкий курс", ActionRateQuick)},
		[]keyboard.InlineBtn{btn("ℹ️ Про бота", ActionAbout)},
	)
}

// WeatherMenu offers forecast views and city selection.
func WeatherMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{btn("🕒 Кожні 3 години", ActionWeather3h), btn("🕕 Кожні 6 годин", ActionWeather6h)},
		[]keyboard.InlineBtn{btn("💨 Інформація про вітер", ActionWeatherWind)},
		[]keyboard.InlineBtn{btn("🏙️ Обрати місто", ActionSelectCity)},
		[]keyboard.InlineBtn{btn("🔄 Оновити", ActionWeatherRefresh), btn("⬅️ Назад", ActionMainMenu)},
	)
}

// CityMenu lists PresetCities three per row plus a custom city button.
func CityMenu() *tele.ReplyMarkup {
	cities := make([]keyboard.InlineBtn, len(PresetCities))
	for i, c := range PresetCities {
		cities[i] = keyboard.InlineBtn{Text: c.Label, Unique: ActionCity.Key(), Data: c.Name}
	}
	rows := keyboard.Chunk(cities, 3)
	rows = append(rows,
		[]keyboard.InlineBtn{btn("✏️ Інше місто", ActionCustomCity)},
		[]keyboard.InlineBtn{btn("⬅️ До погоди", ActionWeatherMenu), btn("🏠 Головна", ActionMainMenu)},
	)
	return keyboard.InlineButtonsRows(rows...)
}

// RateMenu offers single rates and the comparison screen.
func RateMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{btn("💵 USD/UAH", ActionRateUSD), btn("💶 EUR/UAH", ActionRateEUR)},
		[]keyboard.InlineBtn{btn("📊 Порівняти валюти", ActionRateCompare)},
		[]keyboard.InlineBtn{btn("🔄 Оновити курси", ActionRateRefresh), btn("⬅️ Назад", ActionMainMenu)},
	)
}

// CompareMenu holds the USD vs EUR comparison button.
func CompareMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{btn("📈 USD vs EUR", ActionCompareUSDEUR)},
		[]keyboard.InlineBtn{btn("⬅️ До валют", ActionCurrencyMenu), btn("🏠 Головна", ActionMainMenu)},
	)
}
