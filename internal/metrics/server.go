package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusFunc supplies the /status payload: current daily usage per action.
type StatusFunc func(ctx context.Context) any

// NewServer builds the HTTP server exposing /metrics, /healthz, and
// /status. statusFn may be nil, in which case /status returns an empty
// object.
func NewServer(addr string, statusFn StatusFunc) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		var payload any = map[string]any{}
		if statusFn != nil {
			payload = statusFn(req.Context())
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}).Methods(http.MethodGet)

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
