package models

import "testing"

func entries(n int) []ForecastEntry {
	out := make([]ForecastEntry, n)
	for i := range out {
		out[i] = ForecastEntry{Time: int64(i)}
	}
	return out
}

func TestIntentSelect(t *testing.T) {
	cases := []struct {
		intent Intent
		want   []int64
	}{
		{IntentEvery3h, []int64{0, 1, 2, 3, 4, 5, 6, 7}},
		{IntentEvery6h, []int64{0, 2, 4, 6, 8, 10, 12, 14}},
		{IntentWind, []int64{0, 1, 2, 3, 4, 5, 6, 7}},
		{IntentQuick, []int64{0, 1, 2}},
		{IntentUnknown, []int64{0, 1, 2, 3, 4, 5, 6, 7}},
		{Intent(42), []int64{0, 1, 2, 3, 4, 5, 6, 7}},
	}
	list := entries(40)
	for _, tc := range cases {
		got := tc.intent.Select(list)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d entries, want %d", tc.intent, len(got), len(tc.want))
		}
		for i, e := range got {
			if e.Time != tc.want[i] {
				t.Errorf("%s: entry %d = %d, want %d", tc.intent, i, e.Time, tc.want[i])
			}
		}
	}
}

func TestIntentSelectShortList(t *testing.T) {
	if got := IntentEvery6h.Select(entries(5)); len(got) != 3 {
		t.Fatalf("every 6h over 5 entries = %d", len(got))
	}
	if got := IntentQuick.Select(nil); len(got) != 0 {
		t.Fatalf("quick over nil = %d", len(got))
	}
}

func TestFindAndComplete(t *testing.T) {
	buy, sell, zero := 40.0, 41.0, 0.0
	table := []RateEntry{
		{CodeA: 840, CodeB: 978, RateCross: &buy},
		{CodeA: 840, CodeB: 980, RateBuy: &buy, RateSell: &sell},
		{CodeA: 978, CodeB: 980, RateBuy: &zero, RateSell: &sell},
	}
	usd, ok := Find(table, CurrencyUSD)
	if !ok || !usd.Complete() {
		t.Fatalf("usd = %+v, %v", usd, ok)
	}
	eur, ok := Find(table, CurrencyEUR)
	if !ok || eur.Complete() {
		t.Fatalf("eur must be found and incomplete: %+v", eur)
	}
	if _, ok := Find(table[:1], CurrencyUSD); ok {
		t.Fatal("cross pair must not match")
	}
}

func TestParseCurrency(t *testing.T) {
	if c, ok := ParseCurrency(" usd "); !ok || c != CurrencyUSD {
		t.Fatalf("ParseCurrency(usd) = %v, %v", c, ok)
	}
	if _, ok := ParseCurrency("GBP"); ok {
		t.Fatal("GBP must be rejected")
	}
}
