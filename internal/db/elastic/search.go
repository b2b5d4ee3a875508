package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

type searchResponse struct {
	Hits struct {
		Total *struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string   `json:"_id"`
			Score  *float64 `json:"_score"`
			Source struct {
				Location *geo.Point `json:"location"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// Execute runs req and returns its ranked hits. Every failure is returned
// as a domain.IndexExecutionError carrying the request body.
func (c *Client) Execute(ctx context.Context, req *query.Request) (*query.Result, error) {
	body, err := req.Body()
	if err != nil {
		return nil, &domain.IndexExecutionError{Err: err}
	}

	index := req.Index
	if index == "" {
		index = c.index
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, &domain.IndexExecutionError{Query: body, Err: err}
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, &domain.IndexExecutionError{Query: body, Err: responseError(res)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, &domain.IndexExecutionError{
			Query: body,
			Err:   fmt.Errorf("decode search response: %w", err),
		}
	}

	out := &query.Result{
		Hits:         make([]query.Hit, len(parsed.Hits.Hits)),
		Aggregations: parsed.Aggregations,
	}
	for i, h := range parsed.Hits.Hits {
		out.Hits[i] = query.Hit{ID: h.ID, Location: h.Source.Location}
		if h.Score != nil {
			out.Hits[i].Score = *h.Score
		}
	}
	if parsed.Hits.Total != nil {
		out.Total = parsed.Hits.Total.Value
	} else {
		out.Total = len(out.Hits)
	}
	return out, nil
}
