package formatter

import (
	"strconv"

	"github.com/m3rciful/weatherbot/core/telegram/format"
	"github.com/m3rciful/weatherbot/internal/models"
)

// Trend is the direction of a rate since the previous observation.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// CachedNotice is appended to a cached rate served during provider throttling.
const CachedNotice = "\n\n⚠️ *Дані з кешу* (обмеження API)"

func currencyEmoji(c models.Currency) string {
	if c == models.CurrencyUSD {
		return "💵"
	}
	return "💶"
}

func trendLine(t Trend) string {
	switch t {
	case TrendUp:
		return "📈 *Тенденція:* Зростання"
	case TrendDown:
		return "📉 *Тенденція:* Падіння"
	default:
		return "➡️ *Тенденція:* Стабільно"
	}
}

func price(p *float64) string {
	return number(format.Deref(p, 0))
}

// Rate renders the UAH exchange card of one currency.
func (f *Formatter) Rate(c models.Currency, e models.RateEntry, trend Trend) string {
	return f.Header(c.String()+"/UAH", currencyEmoji(c)) + "\n\n" +
		"📅 *Дата:* " + f.FormatTime(e.Date) + "\n" +
		trendLine(trend) + "\n\n" +
		"💱 *Курси обміну:*\n" +
		"▫️ Покупка: *" + price(e.RateBuy) + " ₴*\n" +
		"▫️ Продаж: *" + price(e.RateSell) + " ₴*\n\n" +
		"ℹ️ _Дані з MonoBank API_"
}

// Compare renders USD and EUR side by side with their cross-rates.
func (f *Formatter) Compare(cmp models.Comparison) string {
	return f.Header("ПОРІВНЯННЯ ВАЛЮТ", "💱") + "\n\n" +
		pairBlock(models.CurrencyUSD, cmp.USD) + "\n\n" +
		pairBlock(models.CurrencyEUR, cmp.EUR) + "\n\n" +
		"🔄 *Крос-курси:*\n" +
		"▫️ 1 USD = *" + strconv.FormatFloat(cmp.USDInEUR, 'f', 4, 64) + " EUR*\n" +
		"▫️ 1 EUR = *" + strconv.FormatFloat(cmp.EURInUSD, 'f', 4, 64) + " USD*\n\n" +
		"📅 *Оновлено:* " + f.FormatTime(cmp.USD.Date) + "\n\n" +
		"ℹ️ _Дані з MonoBank API_"
}

func pairBlock(c models.Currency, e models.RateEntry) string {
	return currencyEmoji(c) + " *" + c.String() + "/UAH*\n" +
		"▫️ Покупка: *" + price(e.RateBuy) + " ₴*\n" +
		"▫️ Продаж: *" + price(e.RateSell) + " ₴*"
}
