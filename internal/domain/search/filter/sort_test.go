package filter

import (
	"testing"

	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

func TestSort_CallerOrder(t *testing.T) {
	req, err := apply(t, NewDispatcher(nil), Set{KeySort: "rate, experience,created"}, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []query.SortEntry{
		query.FieldSort{Field: FieldHourlyRate, Order: query.Asc},
		query.FieldSort{Field: FieldExperienceYears, Order: query.Desc},
		query.FieldSort{Field: FieldCreated, Order: query.Desc},
	}
	if len(req.Sort) != len(want) {
		t.Fatalf("expected %d sort entries, got %d", len(want), len(req.Sort))
	}
	for i := range want {
		if req.Sort[i] != want[i] {
			t.Errorf("sort[%d] = %v, want %v", i, req.Sort[i], want[i])
		}
	}
}

func TestSort_CreatedAfterFirst(t *testing.T) {
	set := Set{KeySort: []any{"relevance", "created-after:2026-01-01T00:00:00Z"}}
	req, err := apply(t, NewDispatcher(nil), set, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Sort) != 2 {
		t.Fatalf("expected 2 sort entries, got %d", len(req.Sort))
	}
	script, ok := req.Sort[0].(query.ScriptSort)
	if !ok {
		t.Fatalf("created-after must be first, got %T", req.Sort[0])
	}
	if script.Params["ts"] != int64(1767225600) {
		t.Errorf("unexpected ts param %v", script.Params["ts"])
	}
	if req.Sort[1] != (query.FieldSort{Field: "_score", Order: query.Desc}) {
		t.Errorf("unexpected second entry %v", req.Sort[1])
	}

	req, err = apply(t, NewDispatcher(nil), Set{KeySort: "created-after:1767225600"}, "en")
	if err != nil {
		t.Fatalf("unix timestamp must be accepted: %v", err)
	}
	if req.Sort[0].(query.ScriptSort).Params["ts"] != int64(1767225600) {
		t.Errorf("unexpected ts param %v", req.Sort[0].(query.ScriptSort).Params["ts"])
	}

	_, err = apply(t, NewDispatcher(nil), Set{KeySort: "created-after:yesterday"}, "en")
	requireConfigErr(t, err)
}

func TestSort_Recommendations(t *testing.T) {
	floor := query.NewRange(FieldAvgScore, query.Below(RecommendationFloor))

	req, err := apply(t, NewDispatcher(nil), Set{KeySort: "recommendations"}, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Sort) != 2 ||
		req.Sort[0] != (query.FieldSort{Field: FieldAvgScore, Order: query.Desc}) ||
		req.Sort[1] != (query.FieldSort{Field: FieldRecommendations, Order: query.Desc}) {
		t.Errorf("unexpected recommendation sort %v", req.Sort)
	}
	if !contains(req.Query.MustNot, floor) {
		t.Errorf("low ratings must be excluded, got %v", req.Query.Source())
	}

	req, err = apply(t, NewDispatcher(nil), Set{KeySort: []any{"recommendations", "last-login"}}, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Sort) != 1 {
		t.Fatalf("last-login must be absorbed, got %v", req.Sort)
	}
	script, ok := req.Sort[0].(query.ScriptSort)
	if !ok {
		t.Fatalf("expected script sort, got %T", req.Sort[0])
	}
	if script.Params["since"] != fixedNow.AddDate(0, 0, -RecentLoginDays).Unix() {
		t.Errorf("unexpected since param %v", script.Params["since"])
	}
	if !contains(req.Query.MustNot, floor) {
		t.Errorf("low ratings must be excluded, got %v", req.Query.Source())
	}
}

func TestSort_AgeWindow(t *testing.T) {
	req, err := apply(t, NewDispatcher(nil), Set{KeySort: "age-18-25"}, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	script, ok := req.Sort[0].(query.ScriptSort)
	if !ok {
		t.Fatalf("expected script sort, got %T", req.Sort[0])
	}
	if script.Params["year"] != 2026 || script.Params["min"] != 18 || script.Params["max"] != 25 {
		t.Errorf("unexpected params %v", script.Params)
	}

	for _, bad := range []string{"age-25", "age-30-20", "age-a-b"} {
		_, err := apply(t, NewDispatcher(nil), Set{KeySort: bad}, "en")
		requireConfigErr(t, err)
	}
}

func TestSort_UnknownToken(t *testing.T) {
	_, err := apply(t, NewDispatcher(nil), Set{KeySort: "popularity"}, "en")
	requireConfigErr(t, err)

	_, err = apply(t, NewDispatcher(nil), Set{KeySort: " , "}, "en")
	requireConfigErr(t, err)
}
