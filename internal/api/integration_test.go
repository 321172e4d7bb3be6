package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/randytsao24/heisenberg/internal/api"
	"github.com/randytsao24/heisenberg/internal/poller"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type panicSources struct{}

func (panicSources) Snapshot() []poller.Status { panic("tracker exploded") }

func newTracker() *poller.Tracker {
	tr := poller.NewTracker()
	tr.Register("transit", 30*time.Second)
	tr.Register("weather", time.Minute)
	tr.RecordSuccess("transit")
	tr.RecordSuccess("weather")
	return tr
}

func newTestServer(t *testing.T, sources interface{ Snapshot() []poller.Status }) (*httptest.Server, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	router := api.NewRouter(sources, zap.New(core).Sugar())
	return httptest.NewServer(router), logs
}

func get(t *testing.T, server *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return m
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}

func assertField(t *testing.T, body map[string]any, field string) {
	t.Helper()
	if _, ok := body[field]; !ok {
		t.Errorf("missing field %q in response: %v", field, body)
	}
}

// ---------------------------------------------------------------------------
// Health & root
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, newTracker())
	defer srv.Close()

	resp := get(t, srv, "/health")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	assertField(t, body, "status")
	assertField(t, body, "uptime")
	assertField(t, body, "timestamp")

	if body["status"] != "OK" {
		t.Errorf("status = %v, want OK", body["status"])
	}
}

func TestHealthDegraded(t *testing.T) {
	tr := newTracker()
	tr.RecordFailure("weather", errors.New("temporarily unavailable"))

	srv, _ := newTestServer(t, tr)
	defer srv.Close()

	body := decodeBody(t, get(t, srv, "/health"))
	if body["status"] != "DEGRADED" {
		t.Errorf("status = %v, want DEGRADED", body["status"])
	}

	// A later success clears it
	tr.RecordSuccess("weather")
	body = decodeBody(t, get(t, srv, "/health"))
	if body["status"] != "OK" {
		t.Errorf("status = %v, want OK", body["status"])
	}
}

func TestAPIRoot(t *testing.T) {
	srv, _ := newTestServer(t, newTracker())
	defer srv.Close()

	resp := get(t, srv, "/")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	assertField(t, body, "name")
	assertField(t, body, "endpoints")
	if body["name"] != "heisenberg" {
		t.Errorf("name = %v", body["name"])
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t, newTracker())
	defer srv.Close()

	resp := get(t, srv, "/transit/subway/station/127")
	assertStatus(t, resp, http.StatusNotFound)
	assertField(t, decodeBody(t, resp), "error")
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, newTracker())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/health", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /health: %v", err)
	}
	resp.Body.Close()
	assertStatus(t, resp, http.StatusMethodNotAllowed)
}

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

func TestSources(t *testing.T) {
	tr := newTracker()
	tr.RecordFailure("transit", errors.New("temporarily unavailable"))

	srv, _ := newTestServer(t, tr)
	defer srv.Close()

	resp := get(t, srv, "/api/sources")
	assertStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body struct {
		Success bool            `json:"success"`
		Count   int             `json:"count"`
		Sources []poller.Status `json:"sources"`
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !body.Success || body.Count != 2 || len(body.Sources) != 2 {
		t.Fatalf("body = %+v", body)
	}
	transit := body.Sources[0]
	if transit.Name != "transit" || transit.Interval != "30s" {
		t.Errorf("transit = %+v", transit)
	}
	if transit.ConsecutiveFailures != 1 || transit.LastError != "temporarily unavailable" || transit.LastFailure == nil {
		t.Errorf("transit failure not reported: %+v", transit)
	}
	if body.Sources[1].Name != "weather" || body.Sources[1].LastSuccess == nil {
		t.Errorf("weather = %+v", body.Sources[1])
	}
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func TestRequestsAreLogged(t *testing.T) {
	srv, logs := newTestServer(t, newTracker())
	defer srv.Close()

	get(t, srv, "/health").Body.Close()

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d request logs, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/health" || fields["method"] != http.MethodGet {
		t.Errorf("fields = %v", fields)
	}
	if status, ok := fields["status"].(int64); !ok || status != http.StatusOK {
		t.Errorf("status field = %#v", fields["status"])
	}
}

func TestRecovery(t *testing.T) {
	srv, logs := newTestServer(t, panicSources{})
	defer srv.Close()

	resp := get(t, srv, "/api/sources")
	resp.Body.Close()
	assertStatus(t, resp, http.StatusInternalServerError)

	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic was not logged")
	}
}

func TestServerShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := api.NewServer(l.Addr().String(), newTracker(), zap.NewNop().Sugar())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	assertStatus(t, resp, http.StatusOK)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
