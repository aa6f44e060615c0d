package simserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/source"
)

func TestServer_List(t *testing.T) {
	srv := httptest.NewServer(New(Options{Seed: 42}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/compliance_alerts?status=open&limit=40&offset=0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var body struct {
		Status string   `json:"status"`
		Count  int      `json:"count"`
		Total  int      `json:"total"`
		Data   []string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 40 || len(body.Data) != 40 {
		t.Errorf("count = %d, data = %d, want 40", body.Count, len(body.Data))
	}
	if body.Total < 200 {
		t.Errorf("total = %d, want >= 200", body.Total)
	}
}

func TestServer_Detail(t *testing.T) {
	srv := httptest.NewServer(New(Options{Seed: 42}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/compliance_alerts/ALRT-12345-0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["alert_id"] != "ALRT-12345-0" {
		t.Errorf("alert_id = %v", payload["alert_id"])
	}
}

func TestServer_FaultInjection(t *testing.T) {
	srv := httptest.NewServer(New(Options{Seed: 1, ErrorRate: 1}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/compliance_alerts?status=open&limit=10&offset=0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 with ErrorRate=1", resp.StatusCode)
	}
}

func TestServer_NotFoundInjection(t *testing.T) {
	srv := httptest.NewServer(New(Options{Seed: 1, NotFoundRate: 1}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/compliance_alerts/ALRT-1-0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 with NotFoundRate=1", resp.StatusCode)
	}
}

// The HTTP source against the served simulator must agree with the
// in-process simulator byte for byte (modulo timestamps, which both
// sides derive from the same seeded offsets of their own clocks).
func TestServer_EndToEndWithHTTPSource(t *testing.T) {
	srv := httptest.NewServer(New(Options{Seed: 123}).Router())
	defer srv.Close()

	src := source.NewHTTPSource(srv.URL, source.HTTPOptions{
		Timeout:       2 * time.Second,
		MaxRetries:    1,
		BackoffFactor: time.Millisecond,
	})

	ids, err := src.ListIDs(context.Background(), "open", 20, 0)
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 20 {
		t.Fatalf("got %d IDs, want 20", len(ids))
	}

	d, err := src.Detail(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if d.String("alert_id") != ids[0] {
		t.Errorf("alert_id = %q, want %q", d.String("alert_id"), ids[0])
	}
	if d["status"] == nil {
		t.Error("payload missing status")
	}
}
