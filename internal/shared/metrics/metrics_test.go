package metrics

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/bets/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bets/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/bets/{id}", http.MethodGet, "404"))
	if got != 3 {
		t.Fatalf("requests=%v want 3", got)
	}
}

func TestHandlerHealthz(t *testing.T) {
	reg := prometheus.NewRegistry()

	ok := Handler(reg, func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rec.Code)
	}

	bad := Handler(reg, func(context.Context) error { return errors.New("pg down") })
	rec = httptest.NewRecorder()
	bad.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "pg down") {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestWorkerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkerMetrics(reg, "bet-audit")
	m.Consumed.Inc()
	m.Errors.WithLabelValues("decode").Inc()

	if got := testutil.ToFloat64(m.Consumed); got != 1 {
		t.Fatalf("consumed=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("decode")); got != 1 {
		t.Fatalf("decode errors=%v want 1", got)
	}
}

type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestStatusWriterPassesHijack(t *testing.T) {
	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	var w http.ResponseWriter = &StatusWriter{ResponseWriter: rec, Status: http.StatusOK}

	hj, ok := w.(http.Hijacker)
	if !ok {
		t.Fatal("StatusWriter must implement http.Hijacker")
	}
	if _, _, err := hj.Hijack(); err != nil {
		t.Fatalf("hijack: %v", err)
	}
	if !rec.hijacked {
		t.Fatal("hijack not forwarded")
	}
	if got := w.(*StatusWriter).Status; got != http.StatusSwitchingProtocols {
		t.Fatalf("status=%d want 101", got)
	}

	plain := &StatusWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := plain.Hijack(); err == nil {
		t.Fatal("expected error when the underlying writer cannot hijack")
	}
}
