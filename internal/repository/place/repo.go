package place

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain"
)

// KeyPrefix namespaces place-name lookups in the record store.
const KeyPrefix = "matchdex:place:"

// store is the consumer interface for place lookups (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo resolves place names to place IDs. Concurrent lookups of the same
// name share one store round trip.
type Repo struct {
	store store
	group singleflight.Group
}

// New creates a place repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// ResolvePlace returns the ID of the named place or domain.ErrNotFound.
// Matching ignores case, accents and surrounding whitespace.
func (r *Repo) ResolvePlace(ctx context.Context, name string) (int64, error) {
	key, err := r.key(name)
	if err != nil {
		return 0, err
	}

	// The flight is shared by every waiter and outlives a cancelled caller.
	flight := r.group.DoChan(key, func() (any, error) {
		return r.lookup(context.WithoutCancel(ctx), key, name)
	})
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("resolve place %q: %w", name, ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return 0, res.Err //nolint:wrapcheck // already wrapped in the flight
		}
		return res.Val.(int64), nil
	}
}

func (r *Repo) lookup(ctx context.Context, key, name string) (int64, error) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse place id of %q: %w", name, err)
	}
	return id, nil
}

// Register maps name to id.
func (r *Repo) Register(ctx context.Context, name string, id int64) error {
	key, err := r.key(name)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, key, []byte(strconv.FormatInt(id, 10))); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(name string) (string, error) {
	folded := Fold(name)
	if folded == "" {
		return "", domain.ErrNotFound
	}
	return KeyPrefix + folded, nil
}

// Fold normalizes a place name for lookup: accents are stripped, case is
// folded and inner whitespace collapsed.
func Fold(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, name)
	if err != nil {
		out = strings.ToLower(name)
	}
	return strings.Join(strings.Fields(out), " ")
}
