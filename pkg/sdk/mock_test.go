package matchdex

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	healthuc "github.com/kailas-cloud/matchdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/matchdex/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn  func(ctx context.Context, set filter.Set, opts searchuc.Options) (*searchuc.Result, error)
	similarFn func(ctx context.Context, id int64, opts searchuc.SimilarOptions) (*searchuc.Result, error)
}

func (m *mockSearchUC) Search(ctx context.Context, set filter.Set, opts searchuc.Options) (*searchuc.Result, error) {
	return m.searchFn(ctx, set, opts)
}

func (m *mockSearchUC) SimilarByID(
	ctx context.Context, id int64, opts searchuc.SimilarOptions,
) (*searchuc.Result, error) {
	return m.similarFn(ctx, id, opts)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- writer mocks ---

type mockUsers struct {
	saved []user.Record
	err   error
}

func (m *mockUsers) Save(_ context.Context, records []user.Record) error {
	m.saved = append(m.saved, records...)
	return m.err
}

type mockPlaces struct {
	names map[string]int64
	err   error
}

func (m *mockPlaces) Register(_ context.Context, name string, id int64) error {
	if m.err != nil {
		return m.err
	}
	if m.names == nil {
		m.names = map[string]int64{}
	}
	m.names[name] = id
	return nil
}

// --- helpers ---

func testClient(searchSvc searchUseCase, users recordWriter, places placeWriter) *Client {
	return &Client{
		searchSvc: searchSvc,
		users:     users,
		places:    places,
	}
}
