package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/trolleybot-systems/trolleybot/internal/logging"
	"github.com/trolleybot-systems/trolleybot/internal/metrics"
	"github.com/trolleybot-systems/trolleybot/internal/ratelimit"
	"github.com/trolleybot-systems/trolleybot/internal/service"
	"github.com/trolleybot-systems/trolleybot/internal/slack"
)

// maxBodyBytes bounds how much of a webhook body is read. Slack event
// payloads are small; anything past this is not a legitimate delivery.
const maxBodyBytes = 1 << 20

// DedupStore reports whether an event delivery should be processed.
type DedupStore interface {
	ShouldProcess(eventID string) bool
}

// OrderDispatcher handles a parsed mention.
type OrderDispatcher interface {
	HandleMention(ctx context.Context, req service.GroceryRequest)
}

// EventsHandler terminates the Slack Events API webhook: signature
// verification, challenge handshake, delivery dedup, and dispatch of
// app_mention events to the order service.
type EventsHandler struct {
	verifier *slack.Verifier
	parser   *slack.Parser
	dedup    DedupStore
	limiter  ratelimit.RateLimiter
	orders   OrderDispatcher
	logger   *logging.Logger

	tokenPresent  bool
	secretPresent bool
}

func NewEventsHandler(
	verifier *slack.Verifier,
	parser *slack.Parser,
	dedup DedupStore,
	limiter ratelimit.RateLimiter,
	orders OrderDispatcher,
	logger *logging.Logger,
	tokenPresent, secretPresent bool,
) *EventsHandler {
	return &EventsHandler{
		verifier:      verifier,
		parser:        parser,
		dedup:         dedup,
		limiter:       limiter,
		orders:        orders,
		logger:        logger,
		tokenPresent:  tokenPresent,
		secretPresent: secretPresent,
	}
}

// HandleEvents processes one webhook delivery. Slack retries deliveries
// that are not acknowledged within 3 seconds, so everything slow happens
// after the response: the handler only verifies, dedups, and dispatches.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	sourceIP := getClientIP(r)
	allowed, err := h.limiter.Allow(ctx, "slack:"+sourceIP)
	if err != nil {
		// Fail open: a limiter outage must not drop deliveries.
		h.logger.WarnContext(ctx, "rate limiter unavailable", logging.Error(err))
		allowed = true
	}
	if !allowed {
		metrics.RateLimitHits.WithLabelValues("slack:" + sourceIP).Inc()
		h.logger.WarnContext(ctx, "rate limited", logging.IP(sourceIP))
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	timestamp := r.Header.Get("X-Slack-Request-Timestamp")
	signature := r.Header.Get("X-Slack-Signature")
	if !h.verifier.Verify(body, timestamp, signature) {
		metrics.SignatureFailures.Inc()
		h.logger.WarnContext(ctx, "invalid request signature", logging.IP(sourceIP))
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var envelope slack.EventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		metrics.EventsTotal.WithLabelValues("unknown", "malformed").Inc()
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case slack.TypeURLVerification:
		metrics.EventsTotal.WithLabelValues(envelope.Type, "accepted").Inc()
		writeJSON(w, map[string]string{"challenge": envelope.Challenge})

	case slack.TypeEventCallback:
		h.handleEventCallback(ctx, w, envelope)

	default:
		// Unknown envelope types are acknowledged so Slack stops retrying.
		metrics.EventsTotal.WithLabelValues(envelope.Type, "ignored").Inc()
		w.WriteHeader(http.StatusOK)
	}
}

func (h *EventsHandler) handleEventCallback(ctx context.Context, w http.ResponseWriter, envelope slack.EventEnvelope) {
	if !h.dedup.ShouldProcess(envelope.EventID) {
		metrics.EventsDeduplicated.Inc()
		metrics.EventsTotal.WithLabelValues(envelope.Type, "duplicate").Inc()
		h.logger.InfoContext(ctx, "duplicate event delivery skipped", logging.EventID(envelope.EventID))
		w.WriteHeader(http.StatusOK)
		return
	}

	event := envelope.Event
	if event.Type != slack.EventAppMention || event.BotID != "" {
		metrics.EventsTotal.WithLabelValues(envelope.Type, "ignored").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	metrics.EventsTotal.WithLabelValues(envelope.Type, "accepted").Inc()
	h.logger.InfoContext(ctx, "app mention received",
		logging.EventID(envelope.EventID),
		logging.Channel(event.Channel),
		logging.ThreadTS(event.ReplyThreadTS()),
	)

	h.orders.HandleMention(ctx, service.GroceryRequest{
		Items:    h.parser.Parse(event.Text),
		Channel:  event.Channel,
		ThreadTS: event.ReplyThreadTS(),
	})

	w.WriteHeader(http.StatusOK)
}

// Health reports liveness plus whether the Slack credentials were
// configured, so a misconfigured deploy is visible without reading logs.
func (h *EventsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":                 "healthy",
		"slack_token_present":    h.tokenPresent,
		"signing_secret_present": h.secretPresent,
	})
}

func (h *EventsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "ready",
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
