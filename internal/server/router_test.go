package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trolleybot-systems/trolleybot/internal/dedup"
	"github.com/trolleybot-systems/trolleybot/internal/handlers"
	"github.com/trolleybot-systems/trolleybot/internal/logging"
	"github.com/trolleybot-systems/trolleybot/internal/ratelimit"
	"github.com/trolleybot-systems/trolleybot/internal/service"
	"github.com/trolleybot-systems/trolleybot/internal/slack"
)

type noopDispatcher struct{}

func (noopDispatcher) HandleMention(context.Context, service.GroceryRequest) {}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := dedup.NewStore(time.Hour, time.Hour)
	t.Cleanup(store.Close)

	handler := handlers.NewEventsHandler(
		slack.NewVerifier("secret"),
		slack.NewParser("@trolley-bot"),
		store,
		&ratelimit.NoOpRateLimiter{},
		noopDispatcher{},
		&logging.Logger{Logger: slog.New(slog.DiscardHandler)},
		true,
		true,
	)
	return NewRouter(handler)
}

func TestRouter_EventsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/slack/events", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	// Routed to the handler (rejected for the missing signature, not 404)
	if rr.Code == http.StatusNotFound {
		t.Error("/slack/events endpoint not registered")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("/slack/events without signature returned %d, want 401", rr.Code)
	}
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("%s returned %d, want 200", path, rr.Code)
		}
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("/metrics returned %d, want 200", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("/metrics returned empty body")
	}
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("/nonexistent returned %d, want 404", rr.Code)
	}
}

func TestRouter_RequestIDMiddleware(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set by middleware")
	}
}
