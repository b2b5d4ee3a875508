package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	APIKeys []string
	Gzip    bool
}

// NewRouter mounts the server on a chi router with the standard middleware
// stack: recovery, request id, wide-event logging, auth and metrics.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/v1/search", s.SearchUsers)
	r.Get("/v1/users/{id}/similar", func(w http.ResponseWriter, req *http.Request) {
		var id int64
		err := runtime.BindStyledParameterWithLocation("simple", false, "id",
			runtime.ParamLocationPath, chi.URLParam(req, "id"), &id)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid user id")
			return
		}
		s.SimilarUsers(w, req, id)
	})

	if cfg.Gzip {
		return gzhttp.GzipHandler(r)
	}
	return r
}
