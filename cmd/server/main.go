package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/roundtable-games/avalon-server/internal/auth"
	"github.com/roundtable-games/avalon-server/internal/config"
	"github.com/roundtable-games/avalon-server/internal/database"
	"github.com/roundtable-games/avalon-server/internal/engine"
	"github.com/roundtable-games/avalon-server/internal/httpapi"
	"github.com/roundtable-games/avalon-server/internal/logger"
	"github.com/roundtable-games/avalon-server/internal/ratelimit"
	"github.com/roundtable-games/avalon-server/internal/store"
	"github.com/roundtable-games/avalon-server/internal/telemetry"
	"github.com/roundtable-games/avalon-server/internal/websocket"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, "avalon-server", cfg.TracingEnabled)
	if err != nil {
		log.Fatal().Err(err).Msg("set up tracing")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect")
	}
	defer pool.Close()
	log.Info().Msg("connected to database")

	if err := database.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("database migrate")
	}
	log.Info().Msg("migrations up to date")

	st := store.NewStore(pool)
	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)

	hub := websocket.NewHub(log)
	go hub.Run()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	machine := engine.NewStateMachine(st, hub, log, rng)

	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		limiter = ratelimit.NewRedis(redis.NewClient(opts), cfg.RateLimitPerMin, time.Minute)
		log.Info().Msg("using redis rate limiter")
	} else {
		limiter = ratelimit.NewInMemory(cfg.RateLimitPerMin, time.Minute)
	}

	wsHandler := websocket.NewHandler(hub, st, machine, tokens, log)
	router := httpapi.NewRouter(st, machine, wsHandler, tokens, limiter, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("avalon server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
}
