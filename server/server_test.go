package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onnwee/engage-tender/session"
)

func newTestServer(t *testing.T) (*session.Store, *httptest.Server) {
	t.Helper()
	store := session.NewStore(false, 2)
	srv := httptest.NewServer(NewMux(store, nil))
	t.Cleanup(srv.Close)
	return store, srv
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if corr := resp.Header.Get("X-Correlation-ID"); corr == "" {
		t.Errorf("missing X-Correlation-ID header")
	}
}

func TestReadyzWithoutArchive(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ready" {
		t.Errorf("status field = %q, want ready", body["status"])
	}
}

func TestStatusReflectsStore(t *testing.T) {
	store, srv := newTestServer(t)
	store.Open(-1)
	if _, err := store.RecordLink(-1, 1, "@alice", "x.com/alice/status/1", "alice"); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	var sum session.Summary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Chats != 1 || sum.OpenRounds != 1 || sum.Links != 1 {
		t.Errorf("summary = %+v, want 1 chat, 1 open, 1 link", sum)
	}
}

func TestCorrelationHeaderReused(t *testing.T) {
	_, srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Correlation-ID", "fixed-id")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Correlation-ID"); got != "fixed-id" {
		t.Errorf("correlation header = %q, want fixed-id", got)
	}
}
