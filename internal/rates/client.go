// Package rates reads the Monobank currency table and renders UAH exchange
// rates, keeping the last good card per currency for throttled periods.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/models"
)

// DefaultBaseURL is the public Monobank currency endpoint.
const DefaultBaseURL = "https://api.monobank.ua/bank/currency"

const (
	component    = "rates"
	maxErrorBody = 4 << 10

	rateLimitDetail = "API rate limit exceeded. Please try again later."
	missingDetail   = "Не вдалося знайти курси валют"
	partialDetail   = "Неповні дані курсів валют"
)

var (
	// ErrRateNotFound reports that the table has no UAH quote for the currency.
	ErrRateNotFound = errors.New("rates: currency pair not found")
	// ErrIncompleteRate reports a quote without buy or sell price.
	ErrIncompleteRate = errors.New("rates: incomplete quote")
)

// APIError is a non-200 response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rates: provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("rates: provider returned status %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the provider throttled the request.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Code implements the router's error code lookup.
func (e *APIError) Code() string {
	return fmt.Sprintf("rates_http_%d", e.StatusCode)
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Formatter  *formatter.Formatter
}

// Client talks to Monobank. Formatted cards are cached per currency with no
// expiry and only served back while the provider answers 429.
type Client struct {
	baseURL string
	http    *http.Client
	fmt     *formatter.Formatter

	mu    sync.RWMutex
	cache map[models.Currency]string
}

// New creates a Client. Missing options fall back to the public endpoint,
// http.DefaultClient and a default formatter.
func New(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimSpace(opts.BaseURL),
		http:    opts.HTTPClient,
		fmt:     opts.Formatter,
		cache:   make(map[models.Currency]string),
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

type errorResponse struct {
	ErrorDescription string `json:"errorDescription"`
}

// Table fetches the full currency table.
func (c *Client) Table(ctx context.Context) ([]models.RateEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload errorResponse
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.ErrorDescription
		}
		return nil, apiErr
	}

	var table []models.RateEntry
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("rates: decode response: %w", err)
	}
	return table, nil
}

// Cached returns the last card rendered for cur.
func (c *Client) Cached(cur models.Currency) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.cache[cur]
	return text, ok
}

func (c *Client) store(cur models.Currency, text string) {
	c.mu.Lock()
	c.cache[cur] = text
	c.mu.Unlock()
}

// card renders the exchange card for cur from table.
func (c *Client) card(table []models.RateEntry, cur models.Currency) (string, error) {
	entry, ok := models.Find(table, cur)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRateNotFound, cur)
	}
	if !entry.Complete() {
		return "", fmt.Errorf("%w: %s", ErrIncompleteRate, cur)
	}
	return c.fmt.Rate(cur, entry, formatter.TrendFlat), nil
}

// Rate returns the exchange card for cur. A throttled request falls back to
// the cached card; every other failure yields the currency error block.
func (c *Client) Rate(ctx context.Context, cur models.Currency) string {
	start := time.Now()
	table, err := c.Table(ctx)
	var text string
	if err == nil {
		text, err = c.card(table, cur)
	}
	if err == nil {
		c.store(cur, text)
		logger.Debug(ctx, component, "rate.fetch",
			slog.String("status", "ok"),
			slog.String("currency", cur.String()),
			slog.String("cache", "store"),
			slog.Duration("duration", logger.Took(start)),
		)
		return text
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RateLimited() {
		cached, ok := c.Cached(cur)
		cacheState := "miss"
		if ok {
			cacheState = "hit"
		}
		logger.Warn(ctx, component, "rate.throttled",
			slog.String("status", "rate_limited"),
			slog.String("currency", cur.String()),
			slog.String("cache", cacheState),
			slog.Duration("duration", logger.Took(start)),
		)
		if ok {
			return cached + formatter.CachedNotice
		}
		return formatter.Error(formatter.KindCurrency, rateLimitDetail)
	}

	logger.Error(ctx, component, "rate.fail",
		slog.String("status", logger.Status(err)),
		slog.String("currency", cur.String()),
		slog.String("err", detail(err)),
		slog.Duration("duration", logger.Took(start)),
	)
	return formatter.Error(formatter.KindCurrency, detail(err))
}

// Compare renders USD and EUR side by side with their cross-rates. It
// neither reads nor fills the per-currency cache.
func (c *Client) Compare(ctx context.Context) string {
	start := time.Now()
	table, err := c.Table(ctx)
	if err != nil {
		logger.Error(ctx, component, "compare.fail",
			slog.String("status", logger.Status(err)),
			slog.String("err", detail(err)),
			slog.Duration("duration", logger.Took(start)),
		)
		return formatter.Error(formatter.KindCurrency, detail(err))
	}

	cmp, err := Cross(table)
	if err != nil {
		msg := missingDetail
		if errors.Is(err, ErrIncompleteRate) {
			msg = partialDetail
		}
		logger.Warn(ctx, component, "compare.invalid",
			slog.String("outcome", "not_found"),
			slog.String("err", err.Error()),
		)
		return formatter.Error(formatter.KindCurrency, msg)
	}

	logger.Debug(ctx, component, "compare.fetch",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
	)
	return c.fmt.Compare(cmp)
}

// Cross picks USD and EUR from table and computes both cross-rates rounded
// to 4 decimals.
func Cross(table []models.RateEntry) (models.Comparison, error) {
	usd, okUSD := models.Find(table, models.CurrencyUSD)
	eur, okEUR := models.Find(table, models.CurrencyEUR)
	if !okUSD || !okEUR {
		return models.Comparison{}, ErrRateNotFound
	}
	if !usd.Complete() || !eur.Complete() {
		return models.Comparison{}, ErrIncompleteRate
	}
	return models.Comparison{
		USD:      usd,
		EUR:      eur,
		USDInEUR: round4(*usd.RateSell / *eur.RateBuy),
		EURInUSD: round4(*eur.RateSell / *usd.RateBuy),
	}, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Seed warms the cache with USD and EUR cards from a single table fetch.
func (c *Client) Seed(ctx context.Context) error {
	table, err := c.Table(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, cur := range []models.Currency{models.CurrencyUSD, models.CurrencyEUR} {
		text, err := c.card(table, cur)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.store(cur, text)
	}
	return errors.Join(errs...)
}

func detail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
