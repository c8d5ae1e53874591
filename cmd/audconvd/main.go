// SPDX-License-Identifier: EPL-2.0

// Command audconvd serves audio conversion over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ik5/audconv"
	"github.com/ik5/audconv/formats/ffmpeg"
	"github.com/ik5/audconv/internal/config"
	"github.com/ik5/audconv/internal/logging"
	"github.com/ik5/audconv/internal/metrics"
	"github.com/ik5/audconv/internal/server"
)

const (
	serviceName     = "audconvd"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to configuration file (defaults are used when empty)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			return 1
		}
	}

	logger, output := logging.New(cfg.Logging)
	if f, ok := output.(*os.File); ok && f != os.Stdout && f != os.Stderr {
		defer f.Close()
	}
	slog.SetDefault(logger)

	logger.Info("service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)
	logger.Info("configuration loaded",
		slog.String("address", cfg.HTTP.Addr()),
		slog.Int("max_concurrent", cfg.HTTP.MaxConcurrent),
		slog.Int("max_upload_mb", cfg.HTTP.MaxUploadMB),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("channels", cfg.Audio.Channels),
		slog.String("quality", cfg.Audio.Quality),
		slog.String("ffmpeg_path", cfg.FFmpeg.FFmpegPath),
		slog.String("log_level", cfg.Logging.Level),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(reg)

	runner := ffmpeg.New(
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath),
		ffmpeg.WithTimeout(cfg.FFmpeg.GetTimeoutDuration()),
	)
	if !runner.Available() {
		logger.Warn("ffmpeg not found, only native formats can be decoded and webm/mp3 output will fail",
			slog.String("ffmpeg_path", cfg.FFmpeg.FFmpegPath))
	}

	conv := audconv.New(audconv.Options{
		TempDir:    cfg.Audio.TempDir,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Quality:    cfg.Audio.Quality,
		FFmpeg:     runner,
		Logger:     logger,
		Observer:   appMetrics,
	})

	httpServer := server.NewHTTPServer(server.Options{
		Config:          cfg,
		Converter:       conv,
		Metrics:         appMetrics,
		Gatherer:        reg,
		FFmpegAvailable: runner.Available,
		Logger:          logger,
	})
	errs := httpServer.Start()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errs:
		if err != nil {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error stopping HTTP server", slog.String("error", err.Error()))
	}

	logger.Info("service stopped")

	return exitCode
}
