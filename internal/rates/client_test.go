package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/models"
)

const table = `[
	{"currencyCodeA":840,"currencyCodeB":980,"date":1704456000,"rateBuy":40,"rateSell":41},
	{"currencyCodeA":978,"currencyCodeB":980,"date":1704456000,"rateBuy":43,"rateSell":44},
	{"currencyCodeA":978,"currencyCodeB":840,"date":1704456000,"rateBuy":1.07,"rateSell":1.08}
]`

// scripted serves the given responses in order, repeating the last one.
func scripted(t *testing.T, responses ...func(http.ResponseWriter)) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		responses[n](w)
	}))
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, HTTPClient: srv.Client()}), &calls
}

func ok(body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) { fmt.Fprint(w, body) }
}

func tooMany(w http.ResponseWriter) {
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprint(w, `{"errorDescription":"Too many requests"}`)
}

func TestRateCachesAndFallsBackOn429(t *testing.T) {
	c, _ := scripted(t, ok(table), tooMany)
	ctx := context.Background()

	fresh := c.Rate(ctx, models.CurrencyUSD)
	if !strings.Contains(fresh, "USD/UAH") || !strings.Contains(fresh, "*41 ₴*") {
		t.Fatalf("unexpected card:\n%s", fresh)
	}

	stale := c.Rate(ctx, models.CurrencyUSD)
	if stale != fresh+formatter.CachedNotice {
		t.Fatalf("expected cached card with notice, got:\n%s", stale)
	}
}

func TestRate429WithoutCache(t *testing.T) {
	c, _ := scripted(t, tooMany)
	got := c.Rate(context.Background(), models.CurrencyEUR)
	if got != formatter.Error(formatter.KindCurrency, rateLimitDetail) {
		t.Fatalf("unexpected reply:\n%s", got)
	}
}

func TestRateOtherFailureIgnoresCache(t *testing.T) {
	c, _ := scripted(t, ok(table), func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadGateway) })
	ctx := context.Background()
	c.Rate(ctx, models.CurrencyUSD)
	got := c.Rate(ctx, models.CurrencyUSD)
	if strings.Contains(got, formatter.CachedNotice) || !strings.Contains(got, "status 502") {
		t.Fatalf("expected generic error block, got:\n%s", got)
	}
}

func TestRateNotFound(t *testing.T) {
	c, _ := scripted(t, ok(`[]`))
	got := c.Rate(context.Background(), models.CurrencyUSD)
	if !strings.Contains(got, "Не вдалося отримати курси валют") || !strings.Contains(got, "currency pair not found") {
		t.Fatalf("unexpected reply:\n%s", got)
	}
	if _, cached := c.Cached(models.CurrencyUSD); cached {
		t.Fatal("failure must not populate the cache")
	}
}

func TestCross(t *testing.T) {
	c, _ := scripted(t, ok(table))
	entries, err := c.Table(context.Background())
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	cmp, err := Cross(entries)
	if err != nil {
		t.Fatalf("Cross: %v", err)
	}
	if cmp.USDInEUR != 0.9535 || cmp.EURInUSD != 1.1 {
		t.Fatalf("cross rates = %v / %v", cmp.USDInEUR, cmp.EURInUSD)
	}
}

func TestCompare(t *testing.T) {
	c, _ := scripted(t, ok(table))
	got := c.Compare(context.Background())
	for _, want := range []string{"1 USD = *0.9535 EUR*", "1 EUR = *1.1000 USD*"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if _, cached := c.Cached(models.CurrencyUSD); cached {
		t.Fatal("compare must not touch the cache")
	}
}

func TestCompareValidation(t *testing.T) {
	cases := map[string]string{
		`[{"currencyCodeA":840,"currencyCodeB":980,"rateBuy":40,"rateSell":41}]`:                                                        missingDetail,
		`[{"currencyCodeA":840,"currencyCodeB":980,"rateBuy":40,"rateSell":41},{"currencyCodeA":978,"currencyCodeB":980,"rateBuy":43}]`: partialDetail,
		`[{"currencyCodeA":840,"currencyCodeB":980,"rateBuy":0,"rateSell":41},{"currencyCodeA":978,"currencyCodeB":980,"rateBuy":43,"rateSell":44}]`: partialDetail,
	}
	for body, want := range cases {
		c, _ := scripted(t, ok(body))
		if got := c.Compare(context.Background()); got != formatter.Error(formatter.KindCurrency, want) {
			t.Errorf("body %s: got\n%s", body, got)
		}
	}
}

func TestSeedWarmsCache(t *testing.T) {
	c, calls := scripted(t, ok(table), tooMany)
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("seed made %d requests", calls.Load())
	}
	got := c.Rate(context.Background(), models.CurrencyEUR)
	if !strings.HasSuffix(got, formatter.CachedNotice) || !strings.Contains(got, "EUR/UAH") {
		t.Fatalf("expected seeded EUR card, got:\n%s", got)
	}
}

func TestTableAPIError(t *testing.T) {
	c, _ := scripted(t, tooMany)
	_, err := c.Table(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.RateLimited() || apiErr.Message != "Too many requests" {
		t.Fatalf("unexpected error %v", err)
	}
}
