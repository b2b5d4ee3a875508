package user

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain"
	domuser "github.com/kailas-cloud/matchdex/internal/domain/user"
)

// KeyPrefix namespaces user hashes in the record store.
const KeyPrefix = "matchdex:user:"

// store is the consumer interface for user records (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo implements usecase/search.RecordStore.
type Repo struct {
	store store
}

// New creates a user repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// FetchByIDs loads the records of ids that exist and pass elig. Missing or
// ineligible records are simply absent from the result.
func (r *Repo) FetchByIDs(ctx context.Context, ids []int64, elig domuser.Eligibility) ([]domuser.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch %d users: %w", len(ids), err)
	}

	out := make([]domuser.Record, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		rec, err := parseHashFields(m)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keys[i], err)
		}
		if elig.Allows(&rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Get returns a single record regardless of eligibility.
func (r *Repo) Get(ctx context.Context, id int64) (domuser.Record, error) {
	key := userKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domuser.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domuser.Record{}, domain.ErrNotFound
	}
	rec, err := parseHashFields(m)
	if err != nil {
		return domuser.Record{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return rec, nil
}

// Save writes records in one batch.
func (r *Repo) Save(ctx context.Context, records []domuser.Record) error {
	if len(records) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(records))
	for i := range records {
		items[i] = db.HashSetItem{Key: userKey(records[i].ID), Fields: buildHashFields(&records[i])}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("save %d users: %w", len(records), err)
	}
	return nil
}

func userKey(id int64) string {
	return KeyPrefix + strconv.FormatInt(id, 10)
}
