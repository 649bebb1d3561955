package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tbraden/quoteboard/internal/config"
	"github.com/tbraden/quoteboard/internal/handlers"
	"github.com/tbraden/quoteboard/internal/middleware"
	"github.com/tbraden/quoteboard/internal/repo"
	"github.com/tbraden/quoteboard/internal/stock"
	"github.com/tbraden/quoteboard/internal/token"
)

// newRouter builds the full API handler chain. Everything the server needs
// (db pool, secrets, upstream key) arrives through parameters, never through
// package state, so tests can build the same router with fakes.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	tokens := token.New([]byte(cfg.JWTSecret))

	authHandler := &handlers.AuthHandler{
		UserRepo:      repo.NewUserRepo(db),
		Tokens:        tokens,
		SecureCookies: cfg.IsProd(),
	}
	stockHandler := &handlers.StockHandler{
		Client: stock.NewClient(cfg.FinnhubBaseURL, cfg.FinnhubAPIKey),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Prometheus)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
				Post("/signup", authHandler.Signup)
			r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
				Post("/signin", authHandler.Signin)
			r.Get("/signout", authHandler.Signout)
		})

		r.Route("/stock", func(r chi.Router) {
			r.Use(middleware.Auth(tokens))
			r.Get("/quote", stockHandler.GetQuote)
		})
	})

	return r
}
