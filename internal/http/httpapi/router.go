package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"campaignkit/internal/http/handlers"
	"campaignkit/internal/infra"
	"campaignkit/internal/middleware"
)

// Options configures the shared middleware stack.
type Options struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	DefaultLocale   string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	// Generation endpoints call paid providers and share one per-IP budget.
	limit := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Get("/v1/catalog", app.Catalog)
	r.With(limit).Post("/v1/content", app.Content)

	r.Route("/v1/batches", func(r chi.Router) {
		r.With(limit).Post("/", app.CreateBatch)
		r.Get("/{id}", app.GetBatch)
		r.Get("/{id}/archive", app.ArchiveBatch)
		r.Post("/{id}/reset", app.ResetBatch)
		r.With(limit).Post("/{id}/slots/{index}/retry", app.RetrySlot)
	})

	r.Route("/v1/presets", func(r chi.Router) {
		r.Get("/", app.Presets)
		r.With(limit).Post("/{preset}", app.CreatePreset)
	})

	return r
}
