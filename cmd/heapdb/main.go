// Command heapdb opens a data directory, optionally runs a demo workload
// against it, and serves the buffer pool metrics over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"heapdb/pkg/config"
	"heapdb/pkg/logging"
	"heapdb/pkg/registry"
)

type options struct {
	ConfigPath  string
	DataDir     string
	DemoMode    bool
	DemoRows    int
	MetricsAddr string
}

func main() {
	opts := parseArguments()
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "heapdb: %v\n", err)
		os.Exit(1)
	}
}

func parseArguments() options {
	var opts options

	flag.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	flag.StringVar(&opts.DataDir, "data", "", "Data directory path (overrides the config file)")
	flag.BoolVar(&opts.DemoMode, "demo", false, "Load a sample table and run a few queries")
	flag.IntVar(&opts.DemoRows, "demo-rows", 500, "Number of rows the demo inserts")
	flag.StringVar(&opts.MetricsAddr, "metrics", "", "Serve /metrics and /health on this address")

	flag.Parse()
	return opts
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	return cfg, cfg.Validate()
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	if err := logging.Init(cfg.Logging); err != nil {
		return errors.Wrap(err, "init logging")
	}
	defer logging.Close()
	logger := logging.GetLogger()

	dbCtx, err := registry.NewDatabaseContext(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbCtx.Close(); err != nil {
			logger.Error("close database", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DemoMode {
		report, err := runDemo(ctx, dbCtx, opts.DemoRows)
		if err != nil {
			return errors.Wrap(err, "demo workload")
		}
		report.Print(os.Stdout)
	}

	if opts.MetricsAddr == "" {
		return nil
	}
	return serveMetrics(ctx, opts.MetricsAddr, dbCtx, logger)
}
