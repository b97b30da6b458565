// Package weather fetches OpenWeatherMap 5 day / 3 hour forecasts and
// renders them for chat.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/models"
)

// DefaultBaseURL is the OpenWeatherMap forecast endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/forecast"

const (
	component    = "weather"
	maxErrorBody = 4 << 10
)

var (
	// ErrCityNotFound reports that the provider does not know the city.
	ErrCityNotFound = errors.New("weather: city not found")
	// ErrEmptyForecast reports a successful response without entries.
	ErrEmptyForecast = errors.New("weather: empty forecast")
)

// APIError is a non-200 response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("weather: provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("weather: provider returned status %d: %s", e.StatusCode, e.Message)
}

// Is makes a 404 match ErrCityNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrCityNotFound && e.StatusCode == http.StatusNotFound
}

// Code implements the router's error code lookup.
func (e *APIError) Code() string {
	return fmt.Sprintf("weather_http_%d", e.StatusCode)
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Formatter  *formatter.Formatter
}

// Client talks to OpenWeatherMap.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	fmt     *formatter.Formatter
}

// New creates a Client. Missing options fall back to the public endpoint,
// http.DefaultClient and a default formatter.
func New(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimSpace(opts.BaseURL),
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		fmt:     opts.Formatter,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.fmt == nil {
		c.fmt = formatter.New(formatter.HeaderStyle{})
	}
	return c
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64  `json:"speed"`
			Deg   float64  `json:"deg"`
			Gust  *float64 `json:"gust"`
		} `json:"wind"`
	} `json:"list"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Fetch requests the forecast for city. The returned city name is the
// provider's canonical one.
func (c *Client) Fetch(ctx context.Context, city string) (models.Forecast, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	q.Set("lang", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("weather: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload errorResponse
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return models.Forecast{}, apiErr
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Forecast{}, fmt.Errorf("weather: decode response: %w", err)
	}
	if len(payload.List) == 0 {
		return models.Forecast{}, ErrEmptyForecast
	}

	fc := models.Forecast{City: payload.City.Name, Entries: make([]models.ForecastEntry, 0, len(payload.List))}
	if fc.City == "" {
		fc.City = city
	}
	for _, item := range payload.List {
		e := models.ForecastEntry{
			Time:      item.Dt,
			Temp:      item.Main.Temp,
			WindSpeed: item.Wind.Speed,
			WindDeg:   item.Wind.Deg,
			WindGust:  item.Wind.Gust,
		}
		if len(item.Weather) > 0 {
			e.Category = item.Weather[0].Main
			e.Description = item.Weather[0].Description
		}
		fc.Entries = append(fc.Entries, e)
	}
	return fc, nil
}

// Forecast returns displayable text for city and intent. On failure the
// text is the weather error block and err says what went wrong, so callers
// validating a typed city can tell the two apart.
func (c *Client) Forecast(ctx context.Context, intent models.Intent, city string) (string, error) {
	start := time.Now()
	fc, err := c.Fetch(ctx, city)
	if err != nil {
		logger.Error(ctx, component, "forecast.fail",
			slog.String("status", logger.Status(err)),
			slog.String("city", logger.SanitizeLimit(city, 64)),
			slog.String("intent", intent.String()),
			slog.String("err", c.detail(err)),
			slog.Duration("duration", logger.Took(start)),
		)
		return formatter.Error(formatter.KindWeather, c.detail(err)), err
	}

	selected := intent.Select(fc.Entries)
	logger.Debug(ctx, component, "forecast.fetch",
		slog.String("status", "ok"),
		slog.String("city", fc.City),
		slog.String("intent", intent.String()),
		slog.Int("entries", len(selected)),
		slog.Duration("duration", logger.Took(start)),
	)
	return c.fmt.Weather(fc.City, selected, intent), nil
}

// detail renders err for users and logs without the request URL, which
// carries the API key.
func (c *Client) detail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	msg := err.Error()
	if c.apiKey != "" {
		msg = strings.ReplaceAll(msg, c.apiKey, "<redacted>")
	}
	return msg
}
