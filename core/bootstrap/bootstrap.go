// Package bootstrap prepares shared infrastructure before the bot starts:
// the logger first, then the optional warm-up seeders.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/logger"
)

const component = "bootstrap"

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Seeders    []NamedSeeder
	// SeedTimeout bounds each seeder; zero means 15s.
	SeedTimeout time.Duration
}

// Result reports what the pipeline did.
type Result struct {
	// RID correlates the bootstrap log lines.
	RID string
	// Failed lists seeders that returned an error.
	Failed []string
}

// Run initializes the logger and runs the seeders. Seeder failures are
// logged and reported in Result; only Required seeders abort the run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{RID: uuid.NewString()}
	ctx = logger.WithRID(ctx, res.RID)

	timeout := opts.SeedTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	for _, s := range opts.Seeders {
		if s.Seeder == nil {
			continue
		}
		start := time.Now()
		seedCtx, cancel := context.WithTimeout(ctx, timeout)
		err := s.Seed(seedCtx)
		cancel()
		if err == nil {
			logger.Info(ctx, component, "seed.done",
				slog.String("seeder", s.Name),
				slog.String("status", "ok"),
				slog.Duration("duration", time.Since(start)),
			)
			continue
		}
		if s.Required {
			return nil, fmt.Errorf("bootstrap: seeder %s failed: %w", s.Name, err)
		}
		res.Failed = append(res.Failed, s.Name)
		logger.Warn(ctx, component, "seed.fail",
			slog.String("seeder", s.Name),
			slog.String("status", "skip"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return res, nil
}
