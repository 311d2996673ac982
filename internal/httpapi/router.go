package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/roundtable-games/avalon-server/internal/auth"
	"github.com/roundtable-games/avalon-server/internal/engine"
	"github.com/roundtable-games/avalon-server/internal/httpapi/handler"
	"github.com/roundtable-games/avalon-server/internal/ratelimit"
	"github.com/roundtable-games/avalon-server/internal/store"
	"github.com/roundtable-games/avalon-server/internal/websocket"

	_ "github.com/roundtable-games/avalon-server/docs" // swag-generated docs
)

// NewRouter builds the root HTTP router: admin endpoints for driving games,
// player endpoints for joining and catching up, the websocket entry point,
// and the operational endpoints (health, metrics, docs).
//
// @title            Avalon Game Server API
// @version          1.0
// @description      HTTP API for the Avalon realtime game server. Gameplay actions flow over the websocket; these endpoints cover lobby management, credentials, and event catch-up.
// @BasePath         /
// @SecurityDefinitions.apikey  BearerAuth
// @in               header
// @name             Authorization
func NewRouter(st *store.Store, machine *engine.StateMachine, wsHandler *websocket.Handler,
	tokens *auth.TokenManager, limiter ratelimit.Limiter, logger zerolog.Logger) http.Handler {
	if limiter == nil {
		limiter = &ratelimit.Noop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handler.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI and generated spec (from swag comments)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	rateLimitByIP := RateLimitMiddleware(limiter, RateLimitKeyByIP)
	adminHandler := handler.NewAdminHandler(st, machine)
	gameHandler := handler.NewGameHandler(st, machine, tokens)

	r.Route("/api", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))

		r.Route("/admin/games", func(r chi.Router) {
			r.Post("/", adminHandler.CreateGame)
			r.Get("/{game_id}", adminHandler.GetGame)
			r.Post("/{game_id}/start", adminHandler.StartGame)
		})

		r.Route("/games/{game_id}", func(r chi.Router) {
			r.With(rateLimitByIP).Post("/join", gameHandler.JoinGame)
			r.With(rateLimitByIP).Post("/players/{player_id}/token", gameHandler.IssueToken)
			r.With(RequirePlayer(tokens)).Get("/events", gameHandler.ListEvents)
			r.Get("/ws", wsHandler.ServeWS)
		})
	})

	return r
}

// DefaultRateLimiter returns an in-memory rate limiter for join and token
// endpoints: 20 requests per minute per IP. For multi-instance deployments
// use the Redis-backed limiter instead.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemory(20, time.Minute)
}
