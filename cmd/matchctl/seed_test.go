package main

import (
	"context"
	"strings"
	"testing"

	dbSQLite "github.com/kailas-cloud/matchdex/internal/db/sqlite"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	placerepo "github.com/kailas-cloud/matchdex/internal/repository/place"
	userrepo "github.com/kailas-cloud/matchdex/internal/repository/user"
)

const seedJSON = `{
	"users": [
		{"id": 7, "role": 2, "first_name": "Anna", "place_id": 42,
		 "location": {"lat": 51.05, "lon": 3.72},
		 "created": "2025-01-02T00:00:00Z", "last_login": "2026-09-01T00:00:00Z",
		 "active": true, "completed": true},
		{"id": 8, "role": 1, "first_name": "Bart",
		 "created": "2025-01-02T00:00:00Z", "last_login": "2026-09-01T00:00:00Z",
		 "active": true, "disabled": true}
	],
	"places": {"Gent": 42, "Liège": 43}
}`

func TestParseSeed(t *testing.T) {
	f, err := parseSeed(strings.NewReader(seedJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recs := f.records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 users, got %d", len(recs))
	}
	if !recs[0].Active || !recs[0].Completed || recs[0].Role != user.RoleBabysitter {
		t.Errorf("status flags not carried: %+v", recs[0])
	}
	if !recs[1].Disabled {
		t.Error("expected disabled flag on second user")
	}
}

func TestParseSeed_Invalid(t *testing.T) {
	for _, in := range []string{
		`{"users": [{"id": 0}]}`,
		`{"users": [], "unknown": 1}`,
		`{`,
	} {
		if _, err := parseSeed(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}

func TestSeedApply(t *testing.T) {
	ctx := context.Background()
	store, err := dbSQLite.NewStore(ctx, dbSQLite.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	f, err := parseSeed(strings.NewReader(seedJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := f.apply(ctx, store); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, err := userrepo.New(store).Get(ctx, 7)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.FirstName != "Anna" || got.Location == nil || !got.Active {
		t.Errorf("unexpected record %+v", got)
	}

	id, err := placerepo.New(store).ResolvePlace(ctx, "liege")
	if err != nil || id != 43 {
		t.Errorf("expected place 43, got %d (%v)", id, err)
	}
}

func TestParseFilters(t *testing.T) {
	set, err := parseFilters(`{"role": "babysitter", "distance": 5}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set) != 2 || set["role"] != "babysitter" {
		t.Errorf("unexpected set %v", set)
	}
	if _, err := parseFilters(`[1]`); err == nil {
		t.Error("expected error for non-object filters")
	}
}
