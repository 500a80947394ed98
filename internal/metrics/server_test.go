package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServerRoutes(t *testing.T) {
	ActionPerformed("like") // ensure at least one metric family exists

	srv := NewServer(":0", func(context.Context) any {
		return map[string]int{"like": 3}
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec := get("/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("status body: %v", err)
	}
	if payload["like"] != 3 {
		t.Fatalf("payload = %v", payload)
	}

	if rec := get("/metrics"); rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /status = %d", rec.Code)
	}
}

func TestServerNilStatusFunc(t *testing.T) {
	srv := NewServer(":0", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "{}\n" {
		t.Fatalf("status = %d %q", rec.Code, rec.Body.String())
	}
}
