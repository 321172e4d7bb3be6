// Package main is the entry point for the heisenberg status display.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/randytsao24/heisenberg/internal/api"
	"github.com/randytsao24/heisenberg/internal/config"
	"github.com/randytsao24/heisenberg/internal/display"
	"github.com/randytsao24/heisenberg/internal/fetch"
	"github.com/randytsao24/heisenberg/internal/input"
	"github.com/randytsao24/heisenberg/internal/logging"
	"github.com/randytsao24/heisenberg/internal/poller"
	"github.com/randytsao24/heisenberg/internal/state"
	"github.com/randytsao24/heisenberg/internal/transit"
	"github.com/randytsao24/heisenberg/internal/weather"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the config file and real env still apply
	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logger error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Errorw("exiting", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	client := fetch.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, log)

	transitSource, err := transit.NewSource(cfg.Transit, client, log)
	if err != nil {
		return err
	}
	weatherSource := weather.NewNWSSource(weather.NWSHost, cfg.Weather, client)

	tracker := poller.NewTracker()
	lines := cfg.Transit.Lines

	transitPoller := poller.New(transitSource.Name(), cfg.Transit.Interval,
		func(ctx context.Context) (transit.Predictions, error) {
			records, err := transitSource.Predictions(ctx)
			if err != nil {
				return transit.Predictions{}, err
			}
			return transit.Aggregate(lines, records, time.Now(), log), nil
		},
		func(p transit.Predictions) state.Message { return state.TransitUpdated{Predictions: p} },
		tracker, log,
	)
	weatherPoller := poller.New(weatherSource.Name(), cfg.Weather.Interval,
		weatherSource.Forecast,
		func(f weather.Forecast) state.Message { return state.WeatherUpdated{Forecast: f} },
		tracker, log,
	)

	terminal, err := display.OpenTerminal(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	restore := sync.OnceFunc(func() {
		if err := terminal.Restore(); err != nil {
			log.Warnw("terminal restore failed", "error", err)
		}
	})
	defer restore()
	if w, h := terminal.Size(); w < display.Width || h < display.Height {
		log.Warnw("terminal smaller than frame", "width", w, "height", h)
	}

	mailbox := state.NewMailbox()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	start := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}

	start(func() { transitPoller.Run(ctx, mailbox) })
	start(func() { weatherPoller.Run(ctx, mailbox) })
	start(func() { forwardSignals(ctx, mailbox, log) })
	if cfg.Status.Addr != "" {
		server := api.NewServer(cfg.Status.Addr, tracker, log)
		start(func() {
			if err := server.ListenAndServe(ctx); err != nil {
				log.Errorw("status server failed", "error", err)
			}
		})
	}
	// The listener blocks on stdin, so it is not waited for
	go input.NewListener(os.Stdin, log).Run(mailbox)

	log.Infow("heisenberg started",
		"transit", transitSource.Name(),
		"lines", len(lines),
		"weather", weatherSource.Name(),
	)

	final := state.Run(mailbox, display.NewRenderer(os.Stdout), state.New(lines), log)

	// Hand the screen back before waiting on producers
	cancel()
	restore()
	wg.Wait()
	log.Infow("heisenberg stopped", "mode", final.Mode.String())
	return nil
}

// forwardSignals turns SIGINT/SIGTERM into a Quit message
func forwardSignals(ctx context.Context, out state.Sender, log *zap.SugaredLogger) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	if ctx.Err() == nil {
		log.Infow("signal received")
		out.Send(state.Quit{})
	}
}
