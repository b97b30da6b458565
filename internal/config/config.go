// Package config is the weatherbot configuration: the shared core settings
// plus the provider, header and dialogue sections.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/rates"
	"github.com/m3rciful/weatherbot/internal/session"
	"github.com/m3rciful/weatherbot/internal/weather"
)

const (
	defaultTimeoutSeconds = 10
	defaultConfirmDelayMS = 1000
)

// WeatherConfig configures the forecast provider.
type WeatherConfig struct {
	APIKey         string `yaml:"api_key" envconfig:"WEATHER_API_KEY"`
	BaseURL        string `yaml:"api_url" envconfig:"WEATHER_API_URL"`
	DefaultCity    string `yaml:"city" envconfig:"CITY"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"WEATHER_TIMEOUT_SECONDS"`
}

// RatesConfig configures the exchange rate provider.
type RatesConfig struct {
	BaseURL        string `yaml:"api_url" envconfig:"RATES_API_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"RATES_TIMEOUT_SECONDS"`
	// DisableWarmup skips fetching the rate table at startup.
	DisableWarmup bool `yaml:"disable_warmup" envconfig:"RATES_DISABLE_WARMUP"`
}

// HeaderConfig mirrors formatter.HeaderStyle. DecorFull accepts 1, true or yes.
type HeaderConfig struct {
	TargetWidth int    `yaml:"target_width" envconfig:"HEADER_TARGET_WIDTH"`
	DecorChar   string `yaml:"decor_char" envconfig:"HEADER_DECOR_CHAR"`
	DecorFull   string `yaml:"decor_full" envconfig:"HEADER_DECOR_FULL"`
	DecorWidth  int    `yaml:"decor_width" envconfig:"HEADER_DECOR_WIDTH"`
}

type DialogueConfig struct {
	ConfirmDelayMS int `yaml:"confirm_delay_ms" envconfig:"CONFIRM_DELAY_MS"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Weather  WeatherConfig  `yaml:"weather"`
	Rates    RatesConfig    `yaml:"rates"`
	Header   HeaderConfig   `yaml:"header"`
	Dialogue DialogueConfig `yaml:"dialogue"`
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads .env, the YAML file at path and the environment, then validates.
func Load(path string) (*Config, error) {
	if err := coreconfig.LoadDotEnv(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills in defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	w := &cfg.Weather
	w.APIKey = strings.TrimSpace(w.APIKey)
	if w.APIKey == "" {
		return fmt.Errorf("weather api key is required (WEATHER_API_KEY)")
	}
	var err error
	if w.BaseURL, err = normalizeURL(w.BaseURL, weather.DefaultBaseURL, "weather.api_url"); err != nil {
		return err
	}
	w.DefaultCity = strings.TrimSpace(w.DefaultCity)
	if w.DefaultCity == "" {
		w.DefaultCity = session.DefaultCity
	}
	if w.TimeoutSeconds, err = normalizeTimeout(w.TimeoutSeconds, "weather.timeout_seconds"); err != nil {
		return err
	}

	r := &cfg.Rates
	if r.BaseURL, err = normalizeURL(r.BaseURL, rates.DefaultBaseURL, "rates.api_url"); err != nil {
		return err
	}
	if r.TimeoutSeconds, err = normalizeTimeout(r.TimeoutSeconds, "rates.timeout_seconds"); err != nil {
		return err
	}

	h := &cfg.Header
	if h.TargetWidth < 0 || h.DecorWidth < 0 {
		return fmt.Errorf("header widths must be >= 0")
	}
	h.DecorFull = strings.ToLower(strings.TrimSpace(h.DecorFull))

	switch d := cfg.Dialogue.ConfirmDelayMS; {
	case d < 0:
		return fmt.Errorf("dialogue.confirm_delay_ms must be >= 0")
	case d == 0:
		cfg.Dialogue.ConfirmDelayMS = defaultConfirmDelayMS
	}
	return nil
}

func normalizeURL(raw, def, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid %s %q", field, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func normalizeTimeout(v int, field string) (int, error) {
	switch {
	case v < 0:
		return 0, fmt.Errorf("%s must be >= 0", field)
	case v == 0:
		return defaultTimeoutSeconds, nil
	}
	return v, nil
}

// HeaderStyle converts the header section for the formatter.
func (c *Config) HeaderStyle() formatter.HeaderStyle {
	switch c.Header.DecorFull {
	case "1", "true", "yes":
		return formatter.HeaderStyle{
			TargetWidth: c.Header.TargetWidth,
			DecorChar:   c.Header.DecorChar,
			DecorFull:   true,
			DecorWidth:  c.Header.DecorWidth,
		}
	}
	return formatter.HeaderStyle{
		TargetWidth: c.Header.TargetWidth,
		DecorChar:   c.Header.DecorChar,
		DecorWidth:  c.Header.DecorWidth,
	}
}

// WeatherTimeout bounds a single forecast request.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.Weather.TimeoutSeconds) * time.Second
}

// RatesTimeout bounds a single rates request.
func (c *Config) RatesTimeout() time.Duration {
	return time.Duration(c.Rates.TimeoutSeconds) * time.Second
}

// ConfirmDelay is the pause before the city change confirmation.
func (c *Config) ConfirmDelay() time.Duration {
	return time.Duration(c.Dialogue.ConfirmDelayMS) * time.Millisecond
}
