package main

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"WatchlistScanner/internal/config"
)

type globalFlags struct {
	configPath string
	tickers    string
}

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "scanner",
		Short:         "Technical watchlist scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", defaultConfig, "path to the YAML config")
	root.PersistentFlags().StringVarP(&g.tickers, "tickers", "t", "", "comma separated tickers overriding the watchlist")

	root.AddCommand(scanCmd(g), serveCmd(g), rulesCmd(g), analyzeCmd(g), downloadCmd(g))
	return root.ExecuteContext(ctx)
}

// loadConfig loads and validates the config and sets up logging from it.
func loadConfig(g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
