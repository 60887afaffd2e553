package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

func newFastClient(url string) *Client {
	c := NewClient(url+"/", "secret")
	c.backoff = time.Millisecond
	return c
}

// TestSendExport verifies headers, gzip body and response decoding.
func TestSendExport(t *testing.T) {
	const export = `{"trainings": []}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/import" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("force") != "true" {
			t.Errorf("force query missing: %q", r.URL.RawQuery)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("X-API-Key = %q", got)
		}
		if got := r.Header.Get("Content-Encoding"); got != "gzip" {
			t.Errorf("Content-Encoding = %q", got)
		}
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Fatalf("gzip reader: %v", err)
		}
		body, _ := io.ReadAll(zr)
		if string(body) != export {
			t.Errorf("body = %q", body)
		}
		w.Write([]byte(`{"log_id":"00000000-0000-0000-0000-000000000001","received":4,"upserted":3,"skipped":false}`)) //nolint:errcheck
	}))
	defer ts.Close()

	body, err := Gzip([]byte(export))
	if err != nil {
		t.Fatal(err)
	}
	result, err := newFastClient(ts.URL).SendExport(context.Background(), body, true)
	if err != nil {
		t.Fatalf("SendExport: %v", err)
	}
	if result.Received != 4 || result.Upserted != 3 || result.Skipped {
		t.Errorf("result = %+v", result)
	}
}

// TestSendExportRetries verifies that 5xx responses are retried.
func TestSendExportRetries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":"busy"}`, http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"received":1,"upserted":1}`)) //nolint:errcheck
	}))
	defer ts.Close()

	result, err := newFastClient(ts.URL).SendExport(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("SendExport: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if result.Upserted != 1 {
		t.Errorf("upserted = %d, want 1", result.Upserted)
	}
}

// TestSendExportNoRetryOnClientError verifies that 4xx fails immediately.
func TestSendExportNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
	}))
	defer ts.Close()

	if _, err := newFastClient(ts.URL).SendExport(context.Background(), nil, false); err == nil {
		t.Fatal("expected error for 403")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

// TestSendExportGivesUp verifies the error after three failed attempts.
func TestSendExportGivesUp(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	if _, err := newFastClient(ts.URL).SendExport(context.Background(), nil, false); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}
