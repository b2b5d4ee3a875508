package search

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
)

// Index executes compiled requests against the search index.
type Index interface {
	Execute(ctx context.Context, req *query.Request) (*query.Result, error)
	DeleteDocuments(ctx context.Context, ids []string) error
}

// RecordStore reads authoritative user records.
type RecordStore interface {
	FetchByIDs(ctx context.Context, ids []int64, elig user.Eligibility) ([]user.Record, error)
	Get(ctx context.Context, id int64) (user.Record, error)
}

// PlaceResolver maps a place name to its canonical place ID.
// Unknown places return domain.ErrNotFound.
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, name string) (int64, error)
}

// StaleSink receives index IDs that no longer have an eligible record.
// Submit must not block.
type StaleSink interface {
	Submit(ids []string)
}
