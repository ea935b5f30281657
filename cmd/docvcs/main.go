// docvcs interactive shell
// Multi-user document repositories with reviewed check-ins and revertible history
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nainya/docvcs/internal/config"
	"github.com/nainya/docvcs/internal/logger"
	"github.com/nainya/docvcs/internal/metrics"
	"github.com/nainya/docvcs/internal/server"
	"github.com/nainya/docvcs/internal/shell"
	"github.com/nainya/docvcs/pkg/registry"
)

var configPath = flag.String("config", "", "Config file path (default ./docvcs.yaml if present)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		WithCaller: cfg.Log.Caller,
	})

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(promReg)

	reg := registry.New(log, m)

	port := 0
	var obs *server.ObservabilityServer
	if cfg.Metrics.Enabled {
		port = cfg.Metrics.Port
		obs = server.NewObservabilityServer(port, promReg, reg, log)
		go func() {
			if err := obs.Start(); err != nil {
				log.Error("Observability server stopped").Err(err).Send()
			}
		}()
	}

	log.LogSessionStart(port)
	err = shell.New(reg, os.Stdin, os.Stdout, shell.Options{
		Logger:  log,
		Metrics: m,
		Debug:   cfg.Shell.Debug,
	}).Run()
	log.LogSessionEnd(err)

	if obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := obs.Shutdown(ctx); shutdownErr != nil {
			log.Warn("Observability server shutdown failed").Err(shutdownErr).Send()
		}
	}

	if err != nil {
		os.Exit(1)
	}
}
