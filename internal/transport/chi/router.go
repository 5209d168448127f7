package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// RouterConfig controls the middleware chain.
type RouterConfig struct {
	APIKeys []string
	// MaxBodyBytes caps request bodies; zero means 1 MiB.
	MaxBodyBytes int64
}

// NewRouter mounts the API on a chi router with the standard middleware chain.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chimw.RequestID)
	r.Use(WideEvent(logger))
	r.Use(CORS)
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware("/metrics"))
	r.Use(chimw.RequestSize(cfg.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/stats", s.Stats)
	r.Post("/search", s.Search)
	r.Get("/search", s.SearchGet)
	r.Post("/index", s.Index)
	r.Post("/scrape", s.Scrape)
	r.Post("/crawl", s.Crawl)
	r.Post("/encode", s.Encode)

	return r
}
