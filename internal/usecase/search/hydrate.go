package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
)

// hydrate loads the records behind hits in rank order. Hits without an
// eligible record are reported to the stale sink and left out.
func (s *Service) hydrate(ctx context.Context, hits []query.Hit, elig user.Eligibility) ([]user.Record, error) {
	if len(hits) == 0 {
		return []user.Record{}, nil
	}

	var stale []string
	requested := roaring64.New()
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil || id < 0 {
			stale = append(stale, h.ID)
			continue
		}
		if requested.CheckedAdd(uint64(id)) {
			ids = append(ids, id)
		}
	}

	var records []user.Record
	if len(ids) > 0 {
		var err error
		records, err = s.records.FetchByIDs(ctx, ids, elig)
		if err != nil {
			return nil, fmt.Errorf("fetch records: %w", err)
		}
	}

	found := roaring64.New()
	byID := make(map[int64]user.Record, len(records))
	for i := range records {
		r := &records[i]
		if !elig.Allows(r) {
			continue
		}
		byID[r.ID] = *r
		found.Add(uint64(r.ID))
	}

	missing := requested.Clone()
	missing.AndNot(found)
	for _, id := range missing.ToArray() {
		stale = append(stale, strconv.FormatUint(id, 10))
	}
	if len(stale) > 0 && s.stale != nil {
		s.stale.Submit(stale)
	}

	items := make([]user.Record, 0, len(byID))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			items = append(items, r)
		}
	}
	return items, nil
}
