package query

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/matchdex/internal/domain/geo"
)

// Pagination limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxWindow is the overall ceiling for from+size of a single request.
	MaxWindow = 10000
)

// Page is a size/offset window over the ranked hits.
type Page struct {
	Size   int
	Offset int
}

// NewPage converts a 1-based page number and page size into a window.
// Size defaults to DefaultPageSize and is clamped to MaxPageSize; the window
// never reaches past MaxWindow.
func NewPage(page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size
	if offset+size > MaxWindow {
		offset = max(0, MaxWindow-size)
	}
	return Page{Size: size, Offset: offset}
}

// Number returns the 1-based page number of the window.
func (p Page) Number() int {
	if p.Size <= 0 {
		return 1
	}
	return p.Offset/p.Size + 1
}

// ScoringOptions is an externally supplied function_score configuration
// (functions, score_mode, boost_mode, ...). It is consumed as-is.
type ScoringOptions map[string]any

// Request is a fully built, serializable search request.
type Request struct {
	Index          string
	Query          BoolQuery
	Scoring        ScoringOptions
	Sort           []SortEntry
	Page           Page
	Aggregations   map[string]any
	TrackTotalHits bool
	Explain        bool
	// Fields limits _source; nil returns the whole document.
	Fields []string
}

// QuerySource renders the query part, wrapping the bool query in
// function_score when scoring options are present.
func (r *Request) QuerySource() map[string]any {
	boolQuery := r.Query.Source()
	if len(r.Scoring) == 0 {
		return boolQuery
	}
	fs := make(map[string]any, len(r.Scoring)+1)
	for k, v := range r.Scoring {
		fs[k] = v
	}
	fs["query"] = boolQuery
	return map[string]any{"function_score": fs}
}

// Source renders the full request body.
func (r *Request) Source() map[string]any {
	body := map[string]any{
		"query": r.QuerySource(),
		"from":  r.Page.Offset,
		"size":  r.Page.Size,
	}
	if len(r.Sort) > 0 {
		sorts := make([]any, len(r.Sort))
		for i, s := range r.Sort {
			sorts[i] = s.Source()
		}
		body["sort"] = sorts
	}
	if len(r.Aggregations) > 0 {
		body["aggs"] = r.Aggregations
	}
	if r.TrackTotalHits {
		body["track_total_hits"] = true
	}
	if r.Explain {
		body["explain"] = true
	}
	if r.Fields != nil {
		body["_source"] = r.Fields
	}
	return body
}

// Body serializes the request body to JSON.
func (r *Request) Body() ([]byte, error) {
	b, err := json.Marshal(r.Source())
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	return b, nil
}

// Hit is a single ranked index hit with the minimal fields needed downstream.
type Hit struct {
	ID       string
	Score    float64
	Location *geo.Point
}

// Result is the index response.
type Result struct {
	Hits         []Hit
	Total        int
	Aggregations map[string]json.RawMessage
}
