package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/models"
)

func forecastJSON(city string, n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"dt":%d,"main":{"temp":%d.5},"weather":[{"main":"Clouds","description":"broken clouds"}],"wind":{"speed":3,"deg":180}}`, 1704456000+i*10800, i)
	}
	return fmt.Sprintf(`{"cod":"200","list":[%s],"city":{"name":%q}}`, strings.Join(items, ","), city)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, APIKey: "secret-key", HTTPClient: srv.Client()})
}

func TestFetchBuildsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Кривий Ріг" || q.Get("units") != "metric" || q.Get("appid") != "secret-key" || q.Get("lang") != "en" {
			t.Errorf("unexpected query %v", q)
		}
		fmt.Fprint(w, forecastJSON("Kryvyi Rih", 2))
	})
	fc, err := c.Fetch(context.Background(), "Кривий Ріг")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if fc.City != "Kryvyi Rih" || len(fc.Entries) != 2 {
		t.Fatalf("unexpected forecast %+v", fc)
	}
	if fc.Entries[1].Category != "Clouds" || fc.Entries[1].Temp != 1.5 {
		t.Fatalf("unexpected entry %+v", fc.Entries[1])
	}
}

func TestForecastEntryCountPerIntent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastJSON("Kyiv", 40))
	})
	cases := map[models.Intent]int{
		models.IntentEvery3h: 8,
		models.IntentEvery6h: 8,
		models.IntentWind:    8,
		models.IntentQuick:   3,
		models.IntentUnknown: 8,
	}
	for intent, want := range cases {
		text, err := c.Forecast(context.Background(), intent, "kyiv")
		if err != nil {
			t.Fatalf("%s: %v", intent, err)
		}
		if got := strings.Count(text, "🕐 **"); got != want {
			t.Errorf("%s: %d entries rendered, want %d", intent, got, want)
		}
		if !strings.Contains(text, "**Місто:** Kyiv") {
			t.Errorf("%s: city must come from the response", intent)
		}
	}
}

func TestForecastEvery6hStride(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastJSON("Kyiv", 40))
	})
	text, err := c.Forecast(context.Background(), models.IntentEvery6h, "Kyiv")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	// Entries 0, 2, ... 14 have temperatures 0.5, 2.5, ... 14.5.
	if !strings.Contains(text, "**14.5°C**") || strings.Contains(text, "**1.5°C**") {
		t.Fatalf("unexpected stride:\n%s", text)
	}
}

func TestForecastCityNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod":"404","message":"city not found"}`)
	})
	text, err := c.Forecast(context.Background(), models.IntentQuick, "Atlantis")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected APIError 404, got %v", err)
	}
	if !strings.Contains(text, "Не вдалося отримати прогноз погоди") || !strings.Contains(text, "city not found") {
		t.Fatalf("unexpected error block:\n%s", text)
	}
}

func TestForecastEmptyList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"list":[],"city":{"name":"Kyiv"}}`)
	})
	if _, err := c.Forecast(context.Background(), models.IntentQuick, "Kyiv"); !errors.Is(err, ErrEmptyForecast) {
		t.Fatalf("expected ErrEmptyForecast, got %v", err)
	}
}

func TestForecastTransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, APIKey: "secret-key", Formatter: formatter.New(formatter.HeaderStyle{})})
	text, err := c.Forecast(context.Background(), models.IntentQuick, "Kyiv")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(text, "secret-key") {
		t.Fatalf("api key leaked into reply:\n%s", text)
	}
}
