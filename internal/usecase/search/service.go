package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	"github.com/kailas-cloud/matchdex/internal/logger"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// Defaults for Config.
const (
	DefaultIndex              = "users"
	DefaultClusterThreshold   = 100
	DefaultFallbackDistanceKm = 25
)

// Config tunes the orchestrator.
type Config struct {
	Index              string
	ClusterThreshold   int
	FallbackDistanceKm float64
	RecencyDays        int
}

func (c *Config) applyDefaults() {
	if c.Index == "" {
		c.Index = DefaultIndex
	}
	if c.ClusterThreshold <= 0 {
		c.ClusterThreshold = DefaultClusterThreshold
	}
	if c.FallbackDistanceKm <= 0 {
		c.FallbackDistanceKm = DefaultFallbackDistanceKm
	}
	if c.RecencyDays <= 0 {
		c.RecencyDays = query.DefaultRecencyDays
	}
}

// Options are the per-call search options.
type Options struct {
	Locale          string
	Center          *geo.Point
	Page            int
	PerPage         int
	IncludeDisabled bool
	Explain         bool
	// Log writes the compiled request body at info level.
	Log          bool
	GridRows     int
	Aggregations map[string]any
	Scoring      query.ScoringOptions
}

// Result is either a page of records or, for large bounded searches, a list
// of clusters.
type Result struct {
	Items        []user.Record
	Clusters     []geo.Cluster
	Total        int
	Page         int
	PerPage      int
	Aggregations map[string]json.RawMessage
	// Broadened is set when a similar-user search needed the fallback pass.
	Broadened bool
}

// Clustered reports whether the result holds clusters instead of records.
func (r *Result) Clustered() bool { return r.Clusters != nil }

// Service compiles filter sets into index requests and assembles results.
type Service struct {
	index      Index
	records    RecordStore
	places     PlaceResolver
	dispatcher *filter.Dispatcher
	stale      StaleSink
	cfg        Config
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for relative date filters.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a search service. places and stale may be nil.
func New(
	index Index, records RecordStore, places PlaceResolver,
	dispatcher *filter.Dispatcher, stale StaleSink, cfg Config, opts ...Option,
) *Service {
	cfg.applyDefaults()
	s := &Service{
		index:      index,
		records:    records,
		places:     places,
		dispatcher: dispatcher,
		stale:      stale,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs one filter set and returns a page of records or clusters.
func (s *Service) Search(ctx context.Context, set filter.Set, opts Options) (*Result, error) {
	start := time.Now()
	res, err := s.search(ctx, set, opts)
	observe("search", start, err)
	return res, err
}

func (s *Service) search(ctx context.Context, set filter.Set, opts Options) (*Result, error) {
	resolved, err := s.resolveDependencies(ctx, set)
	if err != nil {
		return nil, err
	}
	box, bounded, err := filter.BoundingBox(resolved)
	if err != nil {
		return nil, err
	}

	b := s.newBuilder(opts)
	if err := s.dispatcher.Apply(ctx, b, resolved, opts.Locale); err != nil {
		return nil, err
	}

	page := query.NewPage(opts.Page, opts.PerPage)
	if bounded {
		b.Window(query.Page{Size: query.MaxWindow})
	} else {
		b.Window(page)
	}

	res, err := s.execute(ctx, b, opts)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Total:        res.Total,
		Page:         page.Number(),
		PerPage:      page.Size,
		Aggregations: res.Aggregations,
	}

	hits := res.Hits
	if bounded {
		if res.Total > s.cfg.ClusterThreshold {
			out.Clusters = clusterHits(box, opts.GridRows, hits)
			metrics.SearchResultsTotal.WithLabelValues("clusters").Inc()
			return out, nil
		}
		hits = pageOf(hits, page)
	}

	out.Items, err = s.hydrate(ctx, hits, user.Eligibility{IncludeDisabled: opts.IncludeDisabled})
	if err != nil {
		return nil, err
	}
	if opts.Center != nil {
		withDistance(out.Items, *opts.Center)
	}
	metrics.SearchResultsTotal.WithLabelValues("page").Inc()
	return out, nil
}

func (s *Service) newBuilder(opts Options) *query.Builder {
	bopts := []query.Option{
		query.WithClock(s.now),
		query.WithRecencyDays(s.cfg.RecencyDays),
	}
	if opts.IncludeDisabled {
		bopts = append(bopts, query.WithIncludeDisabled())
	}

	b := query.NewBuilder(s.cfg.Index, bopts...)
	if opts.Center != nil {
		b.SetCenter(*opts.Center)
	}
	if len(opts.Scoring) > 0 {
		b.SetScoringOptions(opts.Scoring)
	}
	b.Aggregations(opts.Aggregations)
	if opts.Explain {
		b.Explain()
	}
	b.TrackTotalHits()
	b.Source(filter.FieldLocation)
	return b
}

// execute builds and runs the request. Failures are logged together with the
// request body.
func (s *Service) execute(ctx context.Context, b *query.Builder, opts Options) (*query.Result, error) {
	req := b.Build()
	body, err := req.Body()
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	log := logger.FromContext(ctx)
	if opts.Log {
		log.Info("compiled search request", zap.String("index", req.Index), zap.ByteString("query", body))
	}

	res, err := s.index.Execute(ctx, &req)
	if err != nil {
		log.Error("index execution failed", zap.String("index", req.Index), zap.ByteString("query", body), zap.Error(err))
		var ie *domain.IndexExecutionError
		if errors.As(err, &ie) {
			return nil, err
		}
		return nil, &domain.IndexExecutionError{Query: body, Err: err}
	}
	metrics.SearchHits.Observe(float64(res.Total))
	return res, nil
}

func clusterHits(box geo.BoundingBox, rows int, hits []query.Hit) []geo.Cluster {
	points := make([]geo.Point, 0, len(hits))
	for _, h := range hits {
		if h.Location != nil {
			points = append(points, *h.Location)
		}
	}
	return geo.ClusterPoints(box, geo.GridRows(rows, len(points)), points)
}

func withDistance(items []user.Record, center geo.Point) {
	for i := range items {
		if loc := items[i].Location; loc != nil {
			items[i].DistanceKm = geo.DistanceKm(center, *loc)
		}
	}
}

func pageOf(hits []query.Hit, p query.Page) []query.Hit {
	if p.Offset >= len(hits) {
		return nil
	}
	end := min(p.Offset+p.Size, len(hits))
	return hits[p.Offset:end]
}

func observe(kind string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		status = "invalid"
	case err != nil:
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(kind, status).Inc()
	metrics.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
