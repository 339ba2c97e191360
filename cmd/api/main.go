// Command api serves the BharatBus route catalog, route search and live
// vehicle positions over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/logging"
	"bharatbus.in/internal/tracking"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "bharatbus-api:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	opts, err := parseFlags(args, os.Getenv)
	if err != nil {
		return err
	}

	jsonCfg, err := opts.jsonConfig()
	if err != nil {
		return err
	}

	cfg := jsonCfg.ToAppConfig()
	format := cfg.ResolvedLogFormat()
	logger := logging.NewLogger(logging.Options{
		JSON:    format == "json",
		Color:   format == "color",
		Verbose: cfg.Verbose,
	})
	slog.SetDefault(logger)

	catalogCfg := catalog.FromConfigData(jsonCfg.ToCatalogConfigData())
	trackingCfg := tracking.FromConfigData(jsonCfg.ToTrackingConfigData())

	coreApp, err := BuildApplication(cfg, catalogCfg, trackingCfg)
	if err != nil {
		return err
	}

	srv, api := CreateServer(coreApp, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, srv, coreApp, api)
}
