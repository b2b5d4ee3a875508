package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	domuser "github.com/kailas-cloud/matchdex/internal/domain/user"
)

func sampleRecord(id int64) domuser.Record {
	return domuser.Record{
		ID:         id,
		Role:       domuser.RoleBabysitter,
		FirstName:  "Anna",
		Gender:     "f",
		PlaceID:    42,
		PlaceName:  "Gent",
		Location:   &geo.Point{Lat: 51.05, Lon: 3.72},
		BirthYear:  1998,
		HourlyRate: 12.5,
		AvgScore:   4.5,
		Recommends: 3,
		About:      "Student pedagogy",
		Active:     true,
		Completed:  true,
		Created:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		LastLogin:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

// memStore is a map-backed store for round-trip tests.
func memStore() (*mockStore, map[string]map[string]string) {
	data := map[string]map[string]string{}
	return &mockStore{
		hsetMultiFn: func(_ context.Context, items []db.HashSetItem) error {
			for _, it := range items {
				data[it.Key] = it.Fields
			}
			return nil
		},
		hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
			if m, ok := data[key]; ok {
				return m, nil
			}
			return map[string]string{}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			out := make([]map[string]string, len(keys))
			for i, k := range keys {
				out[i] = data[k]
			}
			return out, nil
		},
	}, data
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	s, data := memStore()
	repo := New(s)
	want := sampleRecord(7)

	if err := repo.Save(context.Background(), []domuser.Record{want}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := data["matchdex:user:7"]; !ok {
		t.Fatalf("expected key matchdex:user:7, got %v", data)
	}

	got, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != 7 || got.Role != domuser.RoleBabysitter || got.FirstName != "Anna" {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.Location == nil || *got.Location != *want.Location {
		t.Errorf("location mismatch: %+v", got.Location)
	}
	if !got.Created.Equal(want.Created) || !got.LastLogin.Equal(want.LastLogin) {
		t.Errorf("timestamps mismatch: %v %v", got.Created, got.LastLogin)
	}
	if got.HourlyRate != 12.5 || got.AvgScore != 4.5 || got.Recommends != 3 || got.BirthYear != 1998 {
		t.Errorf("numeric fields mismatch: %+v", got)
	}
	if !got.Active || !got.Completed || got.Disabled {
		t.Errorf("flags mismatch: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockStore{})
	if _, err := repo.Get(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	storeErr := &db.Error{Op: db.OpHGetAll, Err: errors.New("timeout")}
	repo := New(&mockStore{
		hgetAllFn: func(context.Context, string) (map[string]string, error) { return nil, storeErr },
	})
	_, err := repo.Get(context.Background(), 1)
	if !errors.Is(err, storeErr) || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestFetchByIDs_SkipsMissingAndIneligible(t *testing.T) {
	s, _ := memStore()
	repo := New(s)

	hidden := sampleRecord(2)
	hidden.Invisible = true
	disabled := sampleRecord(3)
	disabled.Disabled = true
	if err := repo.Save(context.Background(), []domuser.Record{sampleRecord(1), hidden, disabled}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.FetchByIDs(context.Background(), []int64{1, 2, 3, 99}, domuser.Eligibility{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected only record 1, got %+v", got)
	}

	got, err = repo.FetchByIDs(context.Background(), []int64{1, 3}, domuser.Eligibility{IncludeDisabled: true})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("includeDisabled must return disabled records, got %+v", got)
	}
}

func TestFetchByIDs_Empty(t *testing.T) {
	called := false
	repo := New(&mockStore{
		hgetAllMultiFn: func(context.Context, []string) ([]map[string]string, error) {
			called = true
			return nil, nil
		},
	})
	got, err := repo.FetchByIDs(context.Background(), nil, domuser.Eligibility{})
	if err != nil || got != nil || called {
		t.Errorf("expected no store call, got %v %v called=%v", got, err, called)
	}
}

func TestFetchByIDs_MalformedRecord(t *testing.T) {
	repo := New(&mockStore{
		hgetAllMultiFn: func(context.Context, []string) ([]map[string]string, error) {
			return []map[string]string{{fieldID: "1", fieldBirthYear: "nineteen"}}, nil
		},
	})
	if _, err := repo.FetchByIDs(context.Background(), []int64{1}, domuser.Eligibility{}); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseHashFields_NoLocation(t *testing.T) {
	rec, err := parseHashFields(map[string]string{fieldID: "5", fieldRole: "1", fieldLat: "51.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Location != nil {
		t.Errorf("a single coordinate must not produce a location, got %+v", rec.Location)
	}
	if rec.Role != domuser.RoleParent {
		t.Errorf("expected parent, got %v", rec.Role)
	}
}
