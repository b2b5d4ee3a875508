package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

// --- Mocks ---

type fakeTransport struct {
	mu       sync.Mutex
	status   int
	body     string
	err      error
	requests []*http.Request
	bodies   []string
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(b))
	} else {
		f.bodies = append(f.bodies, "")
	}
	if f.err != nil {
		return nil, f.err
	}

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func newTestClient(t *testing.T, tr *fakeTransport) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Addresses:  []string{"http://es.test:9200"},
		Index:      "users",
		MaxRetries: 0,
		Transport:  tr,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func testRequest() *query.Request {
	b := query.NewBuilder("users")
	_ = b.Where("webrole_id", 2)
	req := b.Build()
	return &req
}

// --- Tests ---

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{Index: "users"}); err == nil {
		t.Error("expected error without addresses")
	}
	if _, err := NewClient(Config{Addresses: []string{"http://x"}}); err == nil {
		t.Error("expected error without index")
	}
}

func TestExecute_ParsesHits(t *testing.T) {
	tr := &fakeTransport{body: `{
		"hits": {
			"total": {"value": 57, "relation": "eq"},
			"hits": [
				{"_id": "12", "_score": 3.5, "_source": {"location": {"lat": 51.05, "lon": 3.72}}},
				{"_id": "9", "_score": null, "_source": {}}
			]
		},
		"aggregations": {"roles": {"buckets": []}}
	}`}
	c := newTestClient(t, tr)
	req := testRequest()

	res, err := c.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 57 || len(res.Hits) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Hits[0].ID != "12" || res.Hits[0].Score != 3.5 || res.Hits[0].Location == nil || res.Hits[0].Location.Lat != 51.05 {
		t.Errorf("unexpected first hit: %+v", res.Hits[0])
	}
	if res.Hits[1].Location != nil || res.Hits[1].Score != 0 {
		t.Errorf("unexpected second hit: %+v", res.Hits[1])
	}
	if _, ok := res.Aggregations["roles"]; !ok {
		t.Error("aggregations must be forwarded")
	}

	if got := tr.requests[0].URL.Path; got != "/users/_search" {
		t.Errorf("unexpected path %q", got)
	}
	want, _ := req.Body()
	if !jsonEqual(t, tr.bodies[0], string(want)) {
		t.Errorf("request body mismatch:\n got %s\nwant %s", tr.bodies[0], want)
	}
}

func TestExecute_RequestIndexOverridesDefault(t *testing.T) {
	tr := &fakeTransport{body: `{"hits": {"total": {"value": 0}, "hits": []}}`}
	c := newTestClient(t, tr)
	req := testRequest()
	req.Index = "users_v2"

	if _, err := c.Execute(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.requests[0].URL.Path; got != "/users_v2/_search" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestExecute_ErrorResponse(t *testing.T) {
	tr := &fakeTransport{
		status: http.StatusBadRequest,
		body:   `{"error": {"type": "parsing_exception", "reason": "unknown query [nope]"}, "status": 400}`,
	}
	c := newTestClient(t, tr)

	_, err := c.Execute(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrIndexExecution) {
		t.Fatalf("expected ErrIndexExecution, got %v", err)
	}
	var execErr *domain.IndexExecutionError
	if !errors.As(err, &execErr) || len(execErr.Query) == 0 {
		t.Fatalf("expected query body on error, got %v", err)
	}
	if !strings.Contains(err.Error(), "parsing_exception") {
		t.Errorf("expected index reason in error, got %v", err)
	}
}

func TestExecute_TransportError(t *testing.T) {
	tr := &fakeTransport{err: errors.New("connection refused")}
	c := newTestClient(t, tr)

	_, err := c.Execute(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrIndexExecution) {
		t.Fatalf("expected ErrIndexExecution, got %v", err)
	}
}

func TestExecute_MalformedResponse(t *testing.T) {
	tr := &fakeTransport{body: `{"hits": `}
	c := newTestClient(t, tr)

	_, err := c.Execute(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrIndexExecution) {
		t.Fatalf("expected ErrIndexExecution, got %v", err)
	}
}

func TestDeleteDocuments_Bulk(t *testing.T) {
	tr := &fakeTransport{body: `{"errors": false, "items": [
		{"delete": {"_id": "1", "status": 200}},
		{"delete": {"_id": "2", "status": 200}}
	]}`}
	c := newTestClient(t, tr)

	if err := c.DeleteDocuments(context.Background(), []string{"1", "2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.requests[0].URL.Path; got != "/users/_bulk" {
		t.Errorf("unexpected path %q", got)
	}

	lines := strings.Split(strings.TrimSpace(tr.bodies[0]), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d: %q", len(lines), tr.bodies[0])
	}
	var action map[string]map[string]string
	if err := json.Unmarshal([]byte(lines[1]), &action); err != nil {
		t.Fatalf("decode action: %v", err)
	}
	if action["delete"]["_id"] != "2" || action["delete"]["_index"] != "users" {
		t.Errorf("unexpected action %v", action)
	}
}

func TestDeleteDocuments_MissingIsNotAnError(t *testing.T) {
	tr := &fakeTransport{body: `{"errors": true, "items": [
		{"delete": {"_id": "1", "status": 404}}
	]}`}
	c := newTestClient(t, tr)

	if err := c.DeleteDocuments(context.Background(), []string{"1"}); err != nil {
		t.Fatalf("404 items must not fail the batch: %v", err)
	}
}

func TestDeleteDocuments_ItemFailure(t *testing.T) {
	tr := &fakeTransport{body: `{"errors": true, "items": [
		{"delete": {"_id": "1", "status": 200}},
		{"delete": {"_id": "2", "status": 429, "error": {"type": "es_rejected_execution_exception"}}}
	]}`}
	c := newTestClient(t, tr)

	err := c.DeleteDocuments(context.Background(), []string{"1", "2"})
	if err == nil || !strings.Contains(err.Error(), "[2]") {
		t.Fatalf("expected failure naming id 2, got %v", err)
	}
}

func TestDeleteDocuments_Empty(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)

	if err := c.DeleteDocuments(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.requests) != 0 {
		t.Errorf("expected no request, got %d", len(tr.requests))
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	down := newTestClient(t, &fakeTransport{status: http.StatusServiceUnavailable})
	if err := down.Ping(context.Background()); err == nil {
		t.Fatal("expected error for 503")
	}
}

func jsonEqual(t *testing.T, a, b string) bool {
	t.Helper()
	var va, vb any
	if err := json.Unmarshal([]byte(a), &va); err != nil {
		t.Fatalf("decode %q: %v", a, err)
	}
	if err := json.Unmarshal([]byte(b), &vb); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	ja, _ := json.Marshal(va)
	jb, _ := json.Marshal(vb)
	return bytes.Equal(ja, jb)
}
