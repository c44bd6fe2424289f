// Package app assembles the motionsync engine and its interactive shell.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/motionsync/internal/align"
	"github.com/chrissnell/motionsync/internal/capture"
	"github.com/chrissnell/motionsync/internal/eventloop"
	"github.com/chrissnell/motionsync/internal/motion"
	"github.com/chrissnell/motionsync/internal/shell"
	"github.com/chrissnell/motionsync/internal/video"
	"github.com/chrissnell/motionsync/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the event loop and the shell, and blocks until the shell exits
// or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := eventloop.New(a.logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Errorw("event loop stopped", "error", err)
		}
	}()

	sh := shell.New(loop, AlignerConfig(a.cfg, a.logger), a.cfg.Shell, os.Stdout)

	// The shell reads ^C itself; only SIGTERM stops the process from outside.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
			a.logger.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	a.logger.Debugw("motionsync started",
		"ffmpeg", a.cfg.Video.FFmpegPath,
		"ffprobe", a.cfg.Video.FFprobePath,
		"detrend", a.cfg.Signal.Detrend)

	err := sh.Run(ctx)

	cancel()
	wg.Wait()
	a.logger.Debug("shutdown complete")
	return err
}

// AlignerConfig wires the engine components described by cfg. The scheduler
// and navigator callbacks are left to the shell.
func AlignerConfig(cfg *config.ConfigData, logger *zap.SugaredLogger) align.Config {
	ff := video.NewFFmpeg(cfg.Video.FFmpegPath, cfg.Video.FFprobePath, logger)
	return align.Config{
		Captures:  capture.NewReader(cfg.Capture.RightMarkers, logger),
		Prober:    ff,
		Decoder:   ff,
		Extractor: motion.NewExtractor(cfg.Signal.Detrend),
		Defaults: align.Inputs{
			VideoReference: cfg.Alignment.VideoReference,
			Date:           cfg.Alignment.Date,
			Time:           cfg.Alignment.Time,
			Timezone:       cfg.Alignment.Timezone,
		},
		Logger: logger,
	}
}
