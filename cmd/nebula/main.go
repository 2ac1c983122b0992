// The nebula engine: hand motion in, wind sound and a spiral particle
// field out. Serves the dashboard, runs sessions, and asks for a closing
// reflection when one ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stillpoint/nebula/internal/config"
	ilog "github.com/stillpoint/nebula/internal/log"
	"github.com/stillpoint/nebula/pkg/insight"
	"github.com/stillpoint/nebula/pkg/web"
)

func main() {
	cfgPath := flag.String("config", config.Path(), "Path to the TOML config file")
	autostart := flag.Bool("autostart", true, "Start a session immediately")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ilog.Init(cfg.LogLevel)
	logger := ilog.L()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	insightCfg := cfg.Insight
	insightCfg.APIKey = config.GeminiAPIKey()
	if insightCfg.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, session reflections will use the fallback")
	}

	server := web.NewServer(cfg.Web, logger)

	eng := newEngine(ctx, cfg, logger, server, insight.NewClient(insightCfg, logger))
	if err := eng.regenerateField(); err != nil {
		logger.Error("field generation failed", "error", err)
		os.Exit(1)
	}

	server.OnSessionStart = eng.start
	server.OnSessionStop = eng.stop
	server.OnStatus = eng.status
	server.OnTuningGet = eng.tuning
	server.OnTuningPut = eng.applyTuning

	stopWatch, err := config.Watch(*cfgPath, logger, func(c *config.Config) {
		if err := eng.applyTuning(c.Motion); err != nil {
			logger.Warn("reloaded tuning rejected", "error", err)
		}
	})
	if err != nil {
		logger.Warn("config watch unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	server.StartAsync()

	if *autostart {
		if err := eng.start(); err != nil {
			logger.Error("autostart failed", "error", err)
		}
	}

	<-ctx.Done()

	if result, err := eng.stop(); err == nil {
		logger.Info("final session closed",
			"session_id", result.Summary.SessionID,
			"title", result.Insight.Title,
		)
	}
	if err := server.Shutdown(); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
}
