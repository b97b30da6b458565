package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/weatherbot/core/buildinfo"
	corecmd "github.com/m3rciful/weatherbot/core/cmd"
	"github.com/m3rciful/weatherbot/internal/app"
	"github.com/m3rciful/weatherbot/internal/config"
)

const defaultConfigPath = "config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "weatherbot",
		Short:        "Telegram bot with weather forecasts and exchange rates",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return corecmd.Run(corecmd.Options{
				ConfigPath:        configPath,
				DefaultConfigPath: defaultConfigPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					return config.Load(path)
				},
				Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
					c, ok := cfg.(*config.Config)
					if !ok {
						return nil, fmt.Errorf("unexpected config type %T", cfg)
					}
					return app.Bootstrap(ctx, c)
				},
			})
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (defaults to $CONFIG_PATH or config.yaml).")

	cmd.AddCommand(newCheckCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "weatherbot", buildinfo.String())
		},
	})
	return cmd
}
