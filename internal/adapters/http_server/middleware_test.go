package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	httpserver "place_pulse/internal/adapters/http_server"
)

func TestLogger_RequestFields(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(httpserver.Logger(l))
	mux.Get("/v1/sentiment/overview", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest("GET", "/v1/sentiment/overview", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var entry struct {
		RequestID string `json:"request_id"`
		Route     string `json:"route"`
		Method    string `json:"method"`
		Status    int    `json:"status"`
		Bytes     int    `json:"bytes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry.RequestID == "" {
		t.Fatal("log line missing request_id")
	}
	if entry.Route != "/v1/sentiment/overview" || entry.Method != "GET" {
		t.Fatalf("unexpected route/method: %+v", entry)
	}
	if entry.Status != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", entry.Status, http.StatusTeapot)
	}
	if entry.Bytes != len("short and stout") {
		t.Fatalf("bytes = %d, want %d", entry.Bytes, len("short and stout"))
	}
}
