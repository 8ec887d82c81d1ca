package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghalamif/BrickWatch/internal/ports"
)

func TestHTTPDispatcherPostsJob(t *testing.T) {
	var got ports.OracleRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jobs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d, err := NewHTTPDispatcher(Config{Endpoint: srv.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	req := ports.OracleRequest{
		JobID:        "job-temp-1",
		RequestID:    "r-42",
		Channel:      "temperature",
		CallbackURL:  "http://node:8080",
		CallbackPath: "/api/fulfill",
		Fee:          5,
	}
	if err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if auth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", auth)
	}
	if got != req {
		t.Fatalf("payload mismatch: got %+v want %+v", got, req)
	}
}

func TestHTTPDispatcherRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))
	defer srv.Close()

	d, err := NewHTTPDispatcher(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	if err := d.Dispatch(context.Background(), ports.OracleRequest{JobID: "j", RequestID: "r"}); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}

func TestHTTPDispatcherConfigValidation(t *testing.T) {
	if _, err := NewHTTPDispatcher(Config{}); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
}
