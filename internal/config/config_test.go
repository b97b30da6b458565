package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/weatherbot/internal/rates"
	"github.com/m3rciful/weatherbot/internal/weather"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("WEATHER_API_KEY", "owm-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Weather.BaseURL != weather.DefaultBaseURL || cfg.Rates.BaseURL != rates.DefaultBaseURL {
		t.Fatalf("unexpected base urls %q %q", cfg.Weather.BaseURL, cfg.Rates.BaseURL)
	}
	if cfg.Weather.DefaultCity != "Kyiv" {
		t.Fatalf("default city = %q", cfg.Weather.DefaultCity)
	}
	if cfg.WeatherTimeout() != 10*time.Second || cfg.RatesTimeout() != 10*time.Second {
		t.Fatalf("timeouts = %v %v", cfg.WeatherTimeout(), cfg.RatesTimeout())
	}
	if cfg.ConfirmDelay() != time.Second {
		t.Fatalf("confirm delay = %v", cfg.ConfirmDelay())
	}
	if cfg.CoreConfig().Telegram.Token != "123:abc" {
		t.Fatal("core config not shared")
	}
}

func TestLoadYAMLWithEnvOverlay(t *testing.T) {
	setRequired(t)
	t.Setenv("CITY", "Lviv")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
telegram:
  run_mode: polling
logging:
  level: debug
weather:
  city: Odesa
  timeout_seconds: 3
header:
  target_width: 28
  decor_full: "Yes"
dialogue:
  confirm_delay_ms: 250
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Weather.DefaultCity != "Lviv" {
		t.Fatalf("env should win, got %q", cfg.Weather.DefaultCity)
	}
	if cfg.Logging.Level != "debug" || cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("core section not decoded: %+v", cfg.Config)
	}
	if cfg.WeatherTimeout() != 3*time.Second || cfg.ConfirmDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected durations %v %v", cfg.WeatherTimeout(), cfg.ConfirmDelay())
	}
	style := cfg.HeaderStyle()
	if !style.DecorFull || style.TargetWidth != 28 {
		t.Fatalf("header style = %+v", style)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing weather key", map[string]string{"WEATHER_API_KEY": " "}, "WEATHER_API_KEY"},
		{"bad int", map[string]string{"WEATHER_TIMEOUT_SECONDS": "ten"}, "failed to process env"},
		{"negative delay", map[string]string{"CONFIRM_DELAY_MS": "-1"}, "confirm_delay_ms"},
		{"bad url", map[string]string{"RATES_API_URL": "monobank"}, "rates.api_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestHeaderStyleDecorFullOff(t *testing.T) {
	cfg := &Config{Header: HeaderConfig{DecorFull: "no", DecorChar: "="}}
	if style := cfg.HeaderStyle(); style.DecorFull || style.DecorChar != "=" {
		t.Fatalf("header style = %+v", style)
	}
}
