package formatter

import (
	"strconv"
	"strings"

	"github.com/m3rciful/weatherbot/core/telegram/format"
	"github.com/m3rciful/weatherbot/internal/models"
)

const (
	entrySeparator = "───────────────────\n"
	noData         = "н/д"
)

var icons = map[string]string{
	"Clear":        "☀️",
	"Clouds":       "☁️",
	"Rain":         "🌧️",
	"Snow":         "❄️",
	"Thunderstorm": "⛈️",
	"Drizzle":      "🌦️",
	"Mist":         "🌫️",
	"Fog":          "🌫️",
}

var translations = map[string]string{
	"clear sky":        "ясне небо",
	"few clouds":       "мало хмар",
	"scattered clouds": "розсіяні хмари",
	"broken clouds":    "хмарно",
	"shower rain":      "дощ з грозою",
	"rain":             "дощ",
	"thunderstorm":     "гроза",
	"snow":             "сніг",
	"mist":             "туман",
	"overcast clouds":  "суцільна хмарність",
}

// Icon maps a weather category such as "Rain" onto its emoji.
func Icon(category string) string {
	if icon, ok := icons[category]; ok {
		return icon
	}
	return "☁️"
}

// Translate returns the Ukrainian phrase for an English weather
// description, or the description itself when it is not known.
func Translate(description string) string {
	if uk, ok := translations[strings.ToLower(description)]; ok {
		return uk
	}
	return description
}

// number formats v the shortest way; negative zero prints as 0.
func number(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Weather renders a forecast for city. The intent picks the header and the
// per-entry template; entry selection is the caller's job.
func (f *Formatter) Weather(city string, entries []models.ForecastEntry, intent models.Intent) string {
	var header string
	switch intent {
	case models.IntentEvery3h:
		header = f.Header("Погода кожні 3 години", "🌡️")
	case models.IntentEvery6h:
		header = f.Header("Погода кожні 6 годин", "🌡️")
	case models.IntentWind:
		header = f.Header("Інформація про вітер", "💨")
	default:
		var first string
		if len(entries) > 0 {
			first = entries[0].Category
		}
		header = f.Header("Прогноз погоди", Icon(first))
	}

	items := make([]string, len(entries))
	for i, e := range entries {
		if intent == models.IntentWind {
			items[i] = f.windEntry(e)
		} else {
			items[i] = f.temperatureEntry(e)
		}
	}

	location := "📍 **Місто:** " + format.EscapeLegacy(city) + "\n"
	return header + "\n" + location + "\n" + strings.Join(items, entrySeparator) + "\nℹ️ _Дані з OpenWeatherMap_"
}

func (f *Formatter) temperatureEntry(e models.ForecastEntry) string {
	return "🕐 **" + f.FormatTime(e.Time) + "**\n" +
		Icon(e.Category) + " **" + number(e.Temp) + "°C** - " + Translate(e.Description) + "\n" +
		"💨 Вітер: **" + number(e.WindSpeed) + " м/с**\n"
}

func (f *Formatter) windEntry(e models.ForecastEntry) string {
	gust := noData
	if g := format.Deref(e.WindGust, 0); g != 0 {
		gust = number(g)
	}
	return "🕐 **" + f.FormatTime(e.Time) + "**\n" +
		"💨 Швидкість: **" + number(e.WindSpeed) + " м/с**\n" +
		"🧭 Напрямок: **" + number(e.WindDeg) + "°**\n" +
		"💥 Порив: **" + gust + " м/с**\n"
}
