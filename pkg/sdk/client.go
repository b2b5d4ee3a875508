package matchdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/app"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	searchuc "github.com/kailas-cloud/matchdex/internal/usecase/search"
)

// Internal interfaces, swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, set filter.Set, opts searchuc.Options) (*searchuc.Result, error)
	SimilarByID(ctx context.Context, id int64, opts searchuc.SimilarOptions) (*searchuc.Result, error)
}

type recordWriter interface {
	Save(ctx context.Context, records []user.Record) error
}

type placeWriter interface {
	Register(ctx context.Context, name string, id int64) error
}

// Client is the matchdex SDK entry point.
type Client struct {
	closer    func()
	searchSvc searchUseCase
	healthSvc healthUseCase
	users     recordWriter
	places    placeWriter
	obs       *observer
}

// New creates a Client, connects to the record store and the index and
// waits for both to be ready.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}

	if cc.cfg.Database.Driver == "" {
		return nil, errors.New("matchdex: record store required (use WithRedis or WithSQLite)")
	}
	if len(cc.cfg.Index.Addresses) == 0 {
		return nil, errors.New("matchdex: index address required (use WithElasticsearch)")
	}
	cfg := cc.cfg
	cfg.ApplyDefaults()

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("matchdex: %w", err)
	}

	return &Client{
		closer:    a.Close,
		searchSvc: a.Search,
		healthSvc: a.Health,
		users:     a.Users,
		places:    a.Places,
		obs:       obs,
	}, nil
}

// Close drains pending index cleanup and releases all resources.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Search compiles filters into an index query and returns matching users
// or clusters.
func (c *Client) Search(ctx context.Context, f Filters, o SearchOptions) (_ *Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	opts, err := toSearchOptions(o)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	res, err := c.searchSvc.Search(ctx, toFilterSet(f), opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out := fromResult(res)
	c.obs.observeResult("search", out)
	return out, nil
}

// Similar finds users similar to the user with the given ID.
func (c *Client) Similar(ctx context.Context, id int64, o SimilarOptions) (_ *Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	res, err := c.searchSvc.SimilarByID(ctx, id, searchuc.SimilarOptions{
		Locale:     o.Locale,
		Page:       o.Page,
		PerPage:    o.PerPage,
		DistanceKm: o.DistanceKm,
	})
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	out := fromResult(res)
	c.obs.observeResult("similar", out)
	return out, nil
}

// SaveUsers writes authoritative user records to the record store.
// Indexing them in Elasticsearch is left to the caller.
func (c *Client) SaveUsers(ctx context.Context, users []User) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("save_users", start, err) }()

	records := make([]user.Record, len(users))
	for i, u := range users {
		r, convErr := toRecord(u)
		if convErr != nil {
			return fmt.Errorf("save users: user %d: %w", u.ID, convErr)
		}
		records[i] = r
	}
	if err = c.users.Save(ctx, records); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// RegisterPlace maps a place name to its canonical ID for the place_name filter.
func (c *Client) RegisterPlace(ctx context.Context, name string, id int64) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("register_place", start, err) }()

	if err = c.places.Register(ctx, name, id); err != nil {
		return fmt.Errorf("register place: %w", err)
	}
	return nil
}
