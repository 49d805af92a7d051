// Package web exposes the HTTP API for generating, storing, and
// narrating teaching scripts.
package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abhisek/eduscript/internal/store"
)

// RouterConfig wires the router's dependencies.
type RouterConfig struct {
	Handlers  *Handlers
	Store     *store.Store
	RateLimit int // generation requests per user per minute
	Log       *zap.SugaredLogger
}

// NewRouter assembles the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}

	h := cfg.Handlers
	auth := AuthMiddleware(cfg.Store.SessionRepo(), cfg.Store.UserRepo())
	limiter := NewRateLimiter(cfg.RateLimit, time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JSONContentType)

		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Post("/logout", h.Logout)
			r.Get("/scripts", h.ListScripts)
			r.Get("/scripts/{id}", h.GetScript)
			r.Delete("/scripts/{id}", h.DeleteScript)

			r.Group(func(r chi.Router) {
				r.Use(RateLimitMiddleware(limiter))
				r.Post("/scripts", h.CreateScript)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/audio/{filename}", h.Audio)
	})

	return r
}
