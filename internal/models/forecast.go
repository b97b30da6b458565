package models

// ForecastEntry is one 3-hour step of the OpenWeatherMap forecast.
type ForecastEntry struct {
	Time        int64    `json:"dt"`
	Temp        float64  `json:"temp"`
	Category    string   `json:"main"`
	Description string   `json:"description"`
	WindSpeed   float64  `json:"wind_speed"`
	WindDeg     float64  `json:"wind_deg"`
	WindGust    *float64 `json:"wind_gust,omitempty"`
}

// Forecast is a resolved city with its ordered forecast entries.
type Forecast struct {
	City    string
	Entries []ForecastEntry
}

// Intent selects both the forecast entries shown and the template used to
// render them.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentEvery3h
	IntentEvery6h
	IntentWind
	IntentQuick
)

const (
	entriesPerDay  = 8
	entriesOnQuick = 3
)

func (i Intent) String() string {
	switch i {
	case IntentEvery3h:
		return "every_3h"
	case IntentEvery6h:
		return "every_6h"
	case IntentWind:
		return "wind"
	case IntentQuick:
		return "quick"
	default:
		return "unknown"
	}
}

// Select returns the subset of entries the intent renders. Unknown intents
// behave like Every3h.
func (i Intent) Select(entries []ForecastEntry) []ForecastEntry {
	switch i {
	case IntentQuick:
		return head(entries, entriesOnQuick)
	case IntentEvery6h:
		stride := make([]ForecastEntry, 0, (len(entries)+1)/2)
		for idx := 0; idx < len(entries); idx += 2 {
			stride = append(stride, entries[idx])
		}
		return head(stride, entriesPerDay)
	case IntentEvery3h, IntentWind:
		return head(entries, entriesPerDay)
	default:
		return head(entries, entriesPerDay)
	}
}

func head(entries []ForecastEntry, n int) []ForecastEntry {
	if len(entries) < n {
		n = len(entries)
	}
	return entries[:n:n]
}
