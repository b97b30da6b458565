package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/weatherbot/core/cmd"
	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/internal/app"
	"github.com/m3rciful/weatherbot/internal/config"
	"github.com/m3rciful/weatherbot/internal/models"
)

func newCheckCmd(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check [city]",
		Short: "Fetch a quick forecast and the USD/EUR comparison once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := corecmd.ResolveConfigPath(corecmd.Options{
				ConfigPath:        *configPath,
				DefaultConfigPath: defaultConfigPath,
			})
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}

			city := cfg.Weather.DefaultCity
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				city = strings.TrimSpace(args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			ctx = logger.WithRID(ctx, uuid.NewString())

			out := cmd.OutOrStdout()
			forecast, ferr := a.Weather().Forecast(ctx, models.IntentQuick, city)
			fmt.Fprintln(out, forecast)
			fmt.Fprintln(out)
			fmt.Fprintln(out, a.Rates().Compare(ctx))
			if ferr != nil {
				return fmt.Errorf("forecast for %s: %w", city, ferr)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall deadline for both provider calls.")
	return cmd
}
