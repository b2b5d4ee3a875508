package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	healthuc "github.com/kailas-cloud/matchdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/matchdex/internal/usecase/search"
)

// maxBodyBytes caps the decoded search request body.
const maxBodyBytes = 1 << 20

// Searcher runs compiled user searches.
type Searcher interface {
	Search(ctx context.Context, set filter.Set, opts searchuc.Options) (*searchuc.Result, error)
	SimilarByID(ctx context.Context, id int64, opts searchuc.SimilarOptions) (*searchuc.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the search API.
type Server struct {
	search Searcher
	health HealthChecker
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker) *Server {
	return &Server{search: search, health: health}
}

// CenterPoint is a request coordinate.
type CenterPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Filters         map[string]any       `json:"filters"`
	Locale          string               `json:"locale"`
	Center          *CenterPoint         `json:"center,omitempty"`
	Page            int                  `json:"page"`
	PerPage         int                  `json:"per_page"`
	IncludeDisabled bool                 `json:"include_disabled"`
	Explain         bool                 `json:"explain"`
	Log             bool                 `json:"log"`
	GridRows        int                  `json:"grid_rows"`
	Aggregations    map[string]any       `json:"aggregations,omitempty"`
	Scoring         query.ScoringOptions `json:"scoring,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	// Items is nil only for clustered responses; a page always carries it.
	Items        []user.Record              `json:"items,omitzero"`
	Clusters     []geo.Cluster              `json:"clusters,omitempty"`
	Total        int                        `json:"total"`
	Page         int                        `json:"page,omitempty"`
	PerPage      int                        `json:"per_page,omitempty"`
	Broadened    bool                       `json:"broadened,omitempty"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SearchUsers handles POST /v1/search.
func (s *Server) SearchUsers(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts := searchuc.Options{
		Locale:          req.Locale,
		Page:            req.Page,
		PerPage:         req.PerPage,
		IncludeDisabled: req.IncludeDisabled,
		Explain:         req.Explain,
		Log:             req.Log,
		GridRows:        req.GridRows,
		Aggregations:    req.Aggregations,
		Scoring:         req.Scoring,
	}
	if req.Center != nil {
		p, err := geo.NewPoint(req.Center.Lat, req.Center.Lon)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "center: "+err.Error())
			return
		}
		opts.Center = &p
	}

	res, err := s.search.Search(r.Context(), filterSet(req.Filters), opts)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(res))
}

// SimilarUsers handles GET /v1/users/{id}/similar.
func (s *Server) SimilarUsers(w http.ResponseWriter, r *http.Request, id int64) {
	var opts searchuc.SimilarOptions
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "locale", q, &opts.Locale); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &opts.Page); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "per_page", q, &opts.PerPage); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "distance_km", q, &opts.DistanceKm); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	res, err := s.search.SimilarByID(r.Context(), id, opts)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func filterSet(m map[string]any) filter.Set {
	set := make(filter.Set, len(m))
	for k, v := range m {
		set[filter.Key(k)] = v
	}
	return set
}

func searchResponse(res *searchuc.Result) SearchResponse {
	out := SearchResponse{
		Total:        res.Total,
		Broadened:    res.Broadened,
		Aggregations: res.Aggregations,
	}
	if res.Clustered() {
		out.Clusters = res.Clusters
		return out
	}
	out.Items = res.Items
	if out.Items == nil {
		out.Items = []user.Record{}
	}
	out.Page = res.Page
	out.PerPage = res.PerPage
	return out
}
