package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	placerepo "github.com/kailas-cloud/matchdex/internal/repository/place"
	userrepo "github.com/kailas-cloud/matchdex/internal/repository/user"
)

// seedUser carries the status flags that the API never serializes.
type seedUser struct {
	user.Record
	Active        bool `json:"active"`
	Completed     bool `json:"completed"`
	Inappropriate bool `json:"inappropriate"`
	Invisible     bool `json:"invisible"`
	Disabled      bool `json:"disabled"`
}

type seedFile struct {
	Users  []seedUser       `json:"users"`
	Places map[string]int64 `json:"places"`
}

func parseSeed(r io.Reader) (*seedFile, error) {
	var f seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range f.Users {
		if u.ID <= 0 {
			return nil, fmt.Errorf("user %d: id must be positive", i)
		}
	}
	return &f, nil
}

func (f *seedFile) records() []user.Record {
	out := make([]user.Record, len(f.Users))
	for i, u := range f.Users {
		rec := u.Record
		rec.Active = u.Active
		rec.Completed = u.Completed
		rec.Inappropriate = u.Inappropriate
		rec.Invisible = u.Invisible
		rec.Disabled = u.Disabled
		out[i] = rec
	}
	return out
}

func (f *seedFile) apply(ctx context.Context, store db.Store) error {
	if err := userrepo.New(store).Save(ctx, f.records()); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	places := placerepo.New(store)
	for name, id := range f.Places {
		if err := places.Register(ctx, name, id); err != nil {
			return fmt.Errorf("register place %q: %w", name, err)
		}
	}
	return nil
}
