package http

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"skydeck/internal/auth"
	"skydeck/internal/config"
	"skydeck/internal/directory"
	"skydeck/internal/metrics"
	"skydeck/internal/token"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(
	cfg config.Config,
	verifier *token.Verifier,
	sessions *auth.Service,
	users directory.Repository,
	collector *metrics.Collector,
	reg *prometheus.Registry,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))

	handoffHandler := NewHandoffHandler(verifier, sessions, users, collector, cfg.LoginOriginURL, cfg.Environment, logger)
	sessionHandler := NewSessionHandler(sessions, users, collector, cfg.LoginOriginURL, cfg.Environment, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/me", sessionHandler.Me)
		r.Post("/logout", sessionHandler.Logout)
	})

	r.Route("/dashboard", func(r chi.Router) {
		// The handoff endpoint must stay reachable without a session.
		r.Get("/auth", handoffHandler.Handle)

		r.Group(func(r chi.Router) {
			r.Use(newRouteGuard(cfg.LoginOriginURL))
			app := dashboardApp(cfg.StaticDir)
			r.Handle("/", app)
			r.Handle("/*", app)
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}

// dashboardApp serves the built dashboard frontend, falling back to the shell
// document for client-routed paths.
func dashboardApp(staticDir string) http.Handler {
	dir := http.Dir(staticDir)
	fileServer := http.StripPrefix(protectedHomePath, http.FileServer(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, protectedHomePath)
		if path == "" || path == "/" {
			path = "/index.html"
		}

		if f, err := dir.Open(path); err == nil {
			_ = f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})
}
