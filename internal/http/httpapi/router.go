package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"clipvault/internal/http/handlers"
	"clipvault/internal/middleware"
)

// Options configure the router's cross-cutting behavior.
type Options struct {
	Logger          zerolog.Logger
	RateLimitPerMin int
	AllowedOrigins  []string
	// StaticDir, when set, serves the filesystem blob store under /static
	// for development environments.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}

	limit := opts.RateLimitPerMin
	if limit <= 0 {
		limit = 30
	}
	submitLimiter := middleware.RateLimit(limit, time.Minute)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/videos", func(r chi.Router) {
		r.With(submitLimiter).Post("/", app.SubmitVideo)
		r.Get("/", app.ListVideos)
		r.Delete("/{id}", app.DeleteVideo)
	})

	r.Route("/v1/queue", func(r chi.Router) {
		r.With(submitLimiter).Post("/", app.EnqueueVideo)
		r.Get("/", app.QueueStatus)
	})

	if opts.StaticDir != "" {
		fs := stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.Dir(opts.StaticDir)))
		r.Handle("/static/*", fs)
	}

	return r
}
