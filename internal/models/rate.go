package models

import "strings"

// Currency is a foreign currency quoted against UAH.
type Currency int

const (
	CurrencyUnknown Currency = 0
	CurrencyUSD     Currency = 840
	CurrencyEUR     Currency = 978

	// CodeUAH is the ISO 4217 numeric code of the local currency.
	CodeUAH = 980
)

// ParseCurrency maps a symbol such as "USD" onto a Currency.
func ParseCurrency(symbol string) (Currency, bool) {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "USD":
		return CurrencyUSD, true
	case "EUR":
		return CurrencyEUR, true
	default:
		return CurrencyUnknown, false
	}
}

// Code returns the ISO 4217 numeric code.
func (c Currency) Code() int { return int(c) }

func (c Currency) String() string {
	switch c {
	case CurrencyUSD:
		return "USD"
	case CurrencyEUR:
		return "EUR"
	default:
		return "UNKNOWN"
	}
}

// RateEntry is one row of the Monobank currency table.
type RateEntry struct {
	CodeA     int      `json:"currencyCodeA"`
	CodeB     int      `json:"currencyCodeB"`
	Date      int64    `json:"date"`
	RateBuy   *float64 `json:"rateBuy,omitempty"`
	RateSell  *float64 `json:"rateSell,omitempty"`
	RateCross *float64 `json:"rateCross,omitempty"`
}

// Quotes reports whether the entry quotes c against UAH.
func (e RateEntry) Quotes(c Currency) bool {
	return e.CodeA == c.Code() && e.CodeB == CodeUAH
}

// Complete reports whether both buy and sell prices are present and non-zero.
func (e RateEntry) Complete() bool {
	return e.RateBuy != nil && *e.RateBuy != 0 && e.RateSell != nil && *e.RateSell != 0
}

// Find returns the first entry quoting c against UAH.
func Find(table []RateEntry, c Currency) (RateEntry, bool) {
	for _, e := range table {
		if e.Quotes(c) {
			return e, true
		}
	}
	return RateEntry{}, false
}

// Comparison is a USD/EUR pair with both cross-rates already computed.
type Comparison struct {
	USD, EUR RateEntry
	// USDInEUR is how many EUR one USD buys: USD sell / EUR buy.
	USDInEUR float64
	// EURInUSD is how many USD one EUR buys: EUR sell / USD buy.
	EURInUSD float64
}
