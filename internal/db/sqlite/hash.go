package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/db"
)

const upsertField = `
INSERT INTO hashes (key, field, value) VALUES (?, ?, ?)
ON CONFLICT(key, field) DO UPDATE SET value = excluded.value`

// HSetMulti writes all items in one transaction.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertField)
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		for field, value := range item.Fields {
			if _, err := stmt.ExecContext(ctx, item.Key, field, value); err != nil {
				return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("%s: %w", item.Key, err)}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash; a missing hash is an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	results, err := s.HGetAllMulti(ctx, []string{key})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// HGetAllMulti reads many hashes with a single query. Results follow the
// order of keys.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := "SELECT key, field, value FROM hashes WHERE key IN (?" +
		strings.Repeat(", ?", len(keys)-1) + ")"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	defer func() { _ = rows.Close() }()

	byKey := make(map[string]map[string]string, len(keys))
	for rows.Next() {
		var key, field, value string
		if err := rows.Scan(&key, &field, &value); err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: err}
		}
		m, ok := byKey[key]
		if !ok {
			m = make(map[string]string)
			byKey[key] = m
		}
		m[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}

	results := make([]map[string]string, len(keys))
	for i, k := range keys {
		if m, ok := byKey[k]; ok {
			results[i] = m
			continue
		}
		results[i] = map[string]string{}
	}
	return results, nil
}
