package query

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/geo"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestBuilder(opts ...Option) *Builder {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewBuilder("users", opts...)
}

func termValue(t *testing.T, c Clause, field string) (any, bool) {
	t.Helper()
	term, ok := c.Source()["term"].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := term[field]
	return v, ok
}

func countTerm(t *testing.T, clauses []Clause, field string, value any) int {
	t.Helper()
	n := 0
	for _, c := range clauses {
		if v, ok := termValue(t, c, field); ok && v == value {
			n++
		}
	}
	return n
}

func rangeClauses(clauses []Clause, field string) []*RangeClause {
	var out []*RangeClause
	for _, c := range clauses {
		if rc, ok := c.(*RangeClause); ok && rc.field == field {
			out = append(out, rc)
		}
	}
	return out
}

func TestNewBuilder_BaselineEligibility(t *testing.T) {
	req := newTestBuilder().Build()
	must := req.Query.Must

	for _, want := range []struct {
		field string
		value int
	}{
		{FieldActive, 1},
		{FieldCompleted, 1},
		{FieldInappropriate, 0},
		{FieldInvisible, 0},
		{FieldDisabled, 0},
	} {
		if countTerm(t, must, want.field, want.value) != 1 {
			t.Errorf("expected must %s=%d", want.field, want.value)
		}
	}
}

func TestNewBuilder_IncludeDisabled(t *testing.T) {
	req := newTestBuilder(WithIncludeDisabled()).Build()
	must := req.Query.Must

	if countTerm(t, must, FieldDisabled, 0) != 0 {
		t.Error("disabled clause should be omitted")
	}
	if len(must) != 4 {
		t.Errorf("expected 4 baseline clauses, got %d", len(must))
	}
	if countTerm(t, must, FieldActive, 1) != 1 || countTerm(t, must, FieldInvisible, 0) != 1 {
		t.Error("other baseline clauses must remain")
	}
}

func TestWhere_UndefinedValue(t *testing.T) {
	b := newTestBuilder()
	err := b.Where("gender", nil)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if err := b.WhereNot("gender", nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestWhere_AddsMustAndMustNot(t *testing.T) {
	b := newTestBuilder()
	if err := b.Where("gender", "f"); err != nil {
		t.Fatal(err)
	}
	if err := b.WhereNot("smoker", 1); err != nil {
		t.Fatal(err)
	}
	req := b.Build()
	if countTerm(t, req.Query.Must, "gender", "f") != 1 {
		t.Error("expected gender in must")
	}
	if countTerm(t, req.Query.MustNot, "smoker", 1) != 1 {
		t.Error("expected smoker in must_not")
	}
}

func TestWhereIn_Empty(t *testing.T) {
	b := newTestBuilder()
	if err := WhereIn(b, "webrole_id", []int{}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if err := WhereNotIn(b, "_id", []string{}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if err := WhereIn(b, "webrole_id", []int{2, 3}); err != nil {
		t.Fatal(err)
	}
	req := b.Build()
	last := req.Query.Must[len(req.Query.Must)-1].Source()
	terms := last["terms"].(map[string]any)
	if ids, ok := terms["webrole_id"].([]int); !ok || len(ids) != 2 {
		t.Errorf("unexpected terms clause %v", last)
	}
}

func TestRange_MergesSameFieldSameBranch(t *testing.T) {
	b := newTestBuilder()
	if err := b.Range("age_score", AtMost(4), RangeExclude); err != nil {
		t.Fatal(err)
	}
	if err := b.Range("age_score", AtLeast(1), RangeExclude); err != nil {
		t.Fatal(err)
	}
	req := b.Build()

	ranges := rangeClauses(req.Query.MustNot, "age_score")
	if len(ranges) != 1 {
		t.Fatalf("expected exactly one must_not range, got %d", len(ranges))
	}
	got := ranges[0].Bounds()
	if got.GTE == nil || *got.GTE != 1 || got.LTE == nil || *got.LTE != 4 {
		t.Errorf("expected {gte:1, lte:4}, got %+v", ranges[0].Source())
	}
	if len(rangeClauses(req.Query.Must, "age_score")) != 0 {
		t.Error("exclude ranges must not leak into must")
	}
}

func TestRange_MergeKeepsTighterBound(t *testing.T) {
	b := newTestBuilder()
	calls := []Bounds{AtLeast(10), Between(5, 50), AtMost(40), AtLeast(20)}
	for _, c := range calls {
		if err := b.Range("hourly_rate", c, RangeInclude); err != nil {
			t.Fatal(err)
		}
	}
	ranges := rangeClauses(b.Build().Query.Must, "hourly_rate")
	if len(ranges) != 1 {
		t.Fatalf("expected one range, got %d", len(ranges))
	}
	got := ranges[0].Bounds()
	if *got.GTE != 20 || *got.LTE != 40 {
		t.Errorf("expected [20,40], got %+v", ranges[0].Source())
	}
}

func TestRange_DifferentBranchesStaySeparate(t *testing.T) {
	b := newTestBuilder()
	_ = b.Range("birth_year", AtLeast(1990), RangeInclude)
	_ = b.Range("birth_year", AtLeast(2000), RangeExclude)
	req := b.Build()
	if len(rangeClauses(req.Query.Must, "birth_year")) != 1 ||
		len(rangeClauses(req.Query.MustNot, "birth_year")) != 1 {
		t.Error("expected one range per branch")
	}
}

func TestRange_EmptyBounds(t *testing.T) {
	err := newTestBuilder().Range("x", Bounds{}, RangeInclude)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestBuild_DetachesRanges(t *testing.T) {
	b := newTestBuilder()
	_ = b.Range("hourly_rate", AtLeast(5), RangeInclude)
	req := b.Build()
	_ = b.Range("hourly_rate", AtLeast(15), RangeInclude)

	got := rangeClauses(req.Query.Must, "hourly_rate")[0].Bounds()
	if *got.GTE != 5 {
		t.Errorf("built request changed after further builder calls: gte=%v", *got.GTE)
	}
}

func TestShould_SetsMinimumShouldMatch(t *testing.T) {
	b := newTestBuilder()
	if b.Build().Query.MinimumShouldMatch != 0 {
		t.Fatal("expected no minimum_should_match without should clauses")
	}
	if err := b.WhereContains("first_name", "ann", BranchShould); err != nil {
		t.Fatal(err)
	}
	req := b.Build()
	if req.Query.MinimumShouldMatch != 1 {
		t.Errorf("expected minimum_should_match=1, got %d", req.Query.MinimumShouldMatch)
	}
	body := req.Query.Source()["bool"].(map[string]any)
	if body["minimum_should_match"] != 1 {
		t.Errorf("expected minimum_should_match in body, got %v", body)
	}

	b2 := newTestBuilder()
	b2.Should(Term("availability.monday", 1))
	if b2.Build().Query.MinimumShouldMatch != 1 {
		t.Error("Should must set minimum_should_match")
	}
}

func TestWhereContains_InvalidBranch(t *testing.T) {
	err := newTestBuilder().WhereContains("first_name", "x", BranchFilter)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestMatch_Operator(t *testing.T) {
	b := newTestBuilder()
	b.Match("about", "piano lessons", OperatorOr)
	req := b.Build()
	last := req.Query.Must[len(req.Query.Must)-1].Source()
	m := last["match"].(map[string]any)["about"].(map[string]any)
	if m["operator"] != "or" || m["query"] != "piano lessons" {
		t.Errorf("unexpected match clause %v", m)
	}
}

func TestFilter_GeoBoundingBox(t *testing.T) {
	b := newTestBuilder()
	box := geo.BoundingBox{TopLeft: geo.Point{Lat: 53, Lon: 4}, BottomRight: geo.Point{Lat: 52, Lon: 5}}
	if err := b.Filter("geo_bounding_box", box.Source("location")); err != nil {
		t.Fatal(err)
	}
	if err := b.Filter("geo_distance", nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	req := b.Build()
	if len(req.Query.Filter) != 1 {
		t.Fatalf("expected 1 filter clause, got %d", len(req.Query.Filter))
	}
	if _, ok := req.Query.Filter[0].Source()["geo_bounding_box"]; !ok {
		t.Error("expected geo_bounding_box filter")
	}
}

func TestBuild_ScoringInjectsRecency(t *testing.T) {
	b := newTestBuilder(WithRecencyDays(30))
	b.SetScoringOptions(ScoringOptions{"boost_mode": "multiply"})
	req := b.Build()

	ranges := rangeClauses(req.Query.Must, FieldLastLogin)
	if len(ranges) != 1 {
		t.Fatalf("expected injected last_login range, got %d", len(ranges))
	}
	want := float64(fixedNow.AddDate(0, 0, -30).Unix())
	if got := ranges[0].Bounds().GTE; got == nil || *got != want {
		t.Errorf("expected gte %v, got %+v", want, ranges[0].Source())
	}
	body := ranges[0].Source()["range"].(map[string]any)[FieldLastLogin].(map[string]any)
	if body["format"] != EpochSecond {
		t.Errorf("unix seconds on a date field need format %q, got %v", EpochSecond, body)
	}

	fs, ok := req.QuerySource()["function_score"].(map[string]any)
	if !ok {
		t.Fatalf("expected function_score wrapper, got %v", req.QuerySource())
	}
	if fs["boost_mode"] != "multiply" {
		t.Errorf("scoring options not applied: %v", fs)
	}
	if _, ok := fs["query"].(map[string]any)["bool"]; !ok {
		t.Error("expected bool query inside function_score")
	}
}

func TestBuild_ScoringKeepsExplicitRecency(t *testing.T) {
	b := newTestBuilder()
	since := float64(fixedNow.AddDate(0, 0, -7).Unix())
	_ = b.Range(FieldLastLogin, AtLeast(since), RangeInclude)
	// scoring set after the range: order of calls must not matter
	b.SetScoringOptions(ScoringOptions{"score_mode": "sum"})
	req := b.Build()

	ranges := rangeClauses(req.Query.Must, FieldLastLogin)
	if len(ranges) != 1 || *ranges[0].Bounds().GTE != since {
		t.Errorf("explicit recency must be kept as-is, got %d ranges", len(ranges))
	}
}

func TestBuild_NoScoringNoRecency(t *testing.T) {
	req := newTestBuilder().Build()
	if len(rangeClauses(req.Query.Must, FieldLastLogin)) != 0 {
		t.Error("recency must only be injected with scoring options")
	}
	if _, ok := req.QuerySource()["bool"]; !ok {
		t.Error("expected plain bool query")
	}
}

func TestBuild_RequestBody(t *testing.T) {
	b := newTestBuilder()
	b.Sort(FieldSort{Field: "last_login", Order: Desc})
	b.Limit(500)
	b.Offset(40)
	b.TrackTotalHits()
	b.Explain()
	b.Source("location")
	b.Aggregations(map[string]any{"roles": map[string]any{"terms": map[string]any{"field": "webrole_id"}}})

	req := b.Build()
	if req.Page.Size != MaxPageSize {
		t.Errorf("expected size clamped to %d, got %d", MaxPageSize, req.Page.Size)
	}

	raw, err := req.Body()
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatal(err)
	}
	if body["from"] != 40.0 || body["size"] != 100.0 {
		t.Errorf("unexpected window from=%v size=%v", body["from"], body["size"])
	}
	if body["track_total_hits"] != true || body["explain"] != true {
		t.Errorf("expected track_total_hits and explain, got %v", body)
	}
	if _, ok := body["aggs"]; !ok {
		t.Error("expected aggs")
	}
	sorts := body["sort"].([]any)
	if len(sorts) != 1 {
		t.Fatalf("expected 1 sort, got %d", len(sorts))
	}
	if src := body["_source"].([]any); len(src) != 1 || src[0] != "location" {
		t.Errorf("unexpected _source %v", src)
	}
}

func TestWindow_Ceiling(t *testing.T) {
	b := newTestBuilder()
	b.Window(Page{Size: MaxWindow, Offset: 50})
	req := b.Build()
	if req.Page.Size != MaxWindow || req.Page.Offset != 0 {
		t.Errorf("expected window clamped to ceiling, got %+v", req.Page)
	}
}

func TestCenter(t *testing.T) {
	b := newTestBuilder()
	if b.Center() != nil {
		t.Fatal("expected no center")
	}
	b.SetCenter(geo.Point{Lat: 52, Lon: 5})
	if c := b.Center(); c == nil || c.Lat != 52 {
		t.Errorf("unexpected center %v", c)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		page, size     int
		wantSize, want int
	}{
		{0, 0, DefaultPageSize, 0},
		{1, 10, 10, 0},
		{3, 10, 10, 20},
		{2, 1000, MaxPageSize, MaxPageSize},
		{1000, 100, 100, MaxWindow - 100},
	}
	for _, tt := range tests {
		p := NewPage(tt.page, tt.size)
		if p.Size != tt.wantSize || p.Offset != tt.want {
			t.Errorf("NewPage(%d,%d) = %+v, want size=%d offset=%d", tt.page, tt.size, p, tt.wantSize, tt.want)
		}
	}
	if NewPage(3, 10).Number() != 3 {
		t.Error("expected page number 3")
	}
}

func TestSortSources(t *testing.T) {
	script := ScriptSort{Script: "1", Params: map[string]any{"ts": 1}, Order: Desc}.Source()
	s := script["_script"].(map[string]any)
	if s["type"] != "number" || s["order"] != "desc" {
		t.Errorf("unexpected script sort %v", s)
	}
	gd := GeoDistanceSort{Field: "location", Center: geo.Point{Lat: 1, Lon: 2}, Order: Asc}.Source()
	d := gd["_geo_distance"].(map[string]any)
	if d["unit"] != "km" || d["order"] != "asc" {
		t.Errorf("unexpected geo sort %v", d)
	}
}
