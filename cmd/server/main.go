/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the earned-time wallet server: the engine over a
  SQLite store, the HTTP API, and the background pollers.

STARTUP SEQUENCE:
  1. Load configuration (env / yaml / defaults)
  2. Open the SQLite store
  3. Construct and load the engine
  4. Start pollers and HTTP server
  5. Graceful shutdown on SIGINT/SIGTERM

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the pollers, close the database
  4. Exit

EXAMPLES:
  # Run with file database
  TIMEWALLET_DB=./data/timewallet.db ./server

  # Run with in-memory database on another port
  TIMEWALLET_DB=":memory:" TIMEWALLET_ADDR=":3000" ./server

SEE ALSO:
  - config.go: Configuration keys
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/screenward/timewallet/api"
	"github.com/screenward/timewallet/store/sqlite"
	"github.com/screenward/timewallet/wallet"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open store")
	}
	defer st.Close()

	// The server always runs without a native balance authority: background
	// enforcement only exists inside the mobile shell. The engine degrades
	// to purely local bookkeeping, which is exactly what we debug here.
	authority := wallet.LocalAuthority{}

	engine := wallet.NewEngine(st, st,
		wallet.WithAuthority(authority),
		wallet.WithLogger(log.With().Str("component", "engine").Logger()),
	)
	if err := engine.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to load wallet state")
	}
	// Configured cap applies only until the user sets one; a persisted
	// value always wins over TIMEWALLET_DAILY_LIMIT.
	if err := engine.SeedTotalDailyLimit(context.Background(), cfg.DailyLimit); err != nil {
		log.Warn().Err(err).Int("minutes", cfg.DailyLimit).
			Msg("could not seed configured daily limit")
	}

	metrics := api.NewMetrics(prometheus.DefaultRegisterer)
	handler := api.NewHandler(engine, metrics)
	router := api.NewRouter(handler)

	poller := api.NewPoller(engine, authority.Available())
	poller.RolloverEvery = cfg.RolloverInterval
	poller.NativeEvery = cfg.NativeInterval
	poller.Log = log.With().Str("component", "poller").Logger()
	poller.Start()
	defer poller.Stop()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
