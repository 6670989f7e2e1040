package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Meet/internal/adapters/http"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	setupLogger(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setLevel(cfg.LogLevel)
	cfg.Watch(func(next *config.Config) {
		setLevel(next.LogLevel)
	})

	o := orch.New(app.NewRegistry(), app.NewRoomTable(), app.SimplePolicy{})
	loopCtx, stopLoop := context.WithCancel(context.Background())
	go o.Run(loopCtx)

	r := router.SetupRouter(ctx, cfg, o)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Meet signaling server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopLoop()
	select {
	case <-o.Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("event loop did not stop in time")
	}
	log.Info().Msg("Server exited gracefully")
}

// setupLogger writes human-friendly output to terminals and JSON otherwise.
func setupLogger(out *os.File) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly})
		return
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func setLevel(raw string) {
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil || raw == "" {
		log.Warn().Str("log_level", raw).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	if lvl == zerolog.GlobalLevel() {
		return
	}
	zerolog.SetGlobalLevel(lvl)
	log.Info().Str("log_level", lvl.String()).Msg("log level set")
}
