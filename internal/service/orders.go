package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trolleybot-systems/trolleybot/internal/automation"
	"github.com/trolleybot-systems/trolleybot/internal/logging"
	"github.com/trolleybot-systems/trolleybot/internal/metrics"
)

// ackItemLimit caps how many items the acknowledgment message lists.
const ackItemLimit = 5

// Notifier posts status messages back to the originating channel/thread.
type Notifier interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) error
}

// AutomationRunner executes one grocery order through the external browser
// agent and returns its final output text.
type AutomationRunner interface {
	Run(ctx context.Context, items []string, onLivePreview func(url string)) (string, error)
}

// GroceryRequest is one parsed order: the items to buy and where to report
// progress.
type GroceryRequest struct {
	Items    []string
	Channel  string
	ThreadTS string
}

// OrderService drives a grocery order from mention to final notification:
// a synchronous acknowledgment, a detached automation run, and a terminal
// success or failure message routed back to the thread. Notification
// delivery is best effort; failures are logged, never returned.
type OrderService struct {
	notifier Notifier
	runner   AutomationRunner
	botName  string
	logger   *logging.Logger
	wg       sync.WaitGroup
}

// NewOrderService creates an OrderService. botName appears in the help
// message shown for empty mentions.
func NewOrderService(notifier Notifier, runner AutomationRunner, botName string, logger *logging.Logger) *OrderService {
	return &OrderService{
		notifier: notifier,
		runner:   runner,
		botName:  botName,
		logger:   logger,
	}
}

// HandleMention processes one parsed mention. An empty item list gets a
// help reply and nothing else. Otherwise the acknowledgment is posted
// synchronously and the automation run is dispatched in the background;
// HandleMention returns without waiting for it, so the webhook response is
// never held up by a slow run.
func (s *OrderService) HandleMention(ctx context.Context, req GroceryRequest) {
	if len(req.Items) == 0 {
		s.notify(ctx, req.Channel, s.helpText(), req.ThreadTS)
		return
	}

	runID := uuid.New().String()
	s.logger.InfoContext(ctx, "starting grocery order",
		logging.RunID(runID),
		logging.Channel(req.Channel),
		logging.Items(len(req.Items)),
	)

	s.notify(ctx, req.Channel, ackText(req.Items), req.ThreadTS)

	s.wg.Add(1)
	go s.runOrder(req, runID)
}

// Wait blocks until all dispatched automation runs have finished. Used
// during shutdown.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

// runOrder executes one automation run to completion and routes the
// outcome to the thread. It owns its own lifetime: every fault, including
// a panic, ends in a failure notification rather than an unobserved crash.
func (s *OrderService) runOrder(req GroceryRequest, runID string) {
	defer s.wg.Done()

	ctx := context.Background()
	log := s.logger.With(logging.RunID(runID), logging.Channel(req.Channel))

	defer func() {
		if r := recover(); r != nil {
			log.Error("automation run panicked", slog.Any("panic", r))
			metrics.OrdersTotal.WithLabelValues("failed").Inc()
			s.notify(ctx, req.Channel, fmt.Sprintf("❌ Error running automation: %v", r), req.ThreadTS)
		}
	}()

	metrics.OrdersInFlight.Inc()
	defer metrics.OrdersInFlight.Dec()

	start := time.Now()
	raw, err := s.runner.Run(ctx, req.Items, func(url string) {
		log.Info("live preview available")
		s.notify(ctx, req.Channel, fmt.Sprintf("👀 Watch the browser live:\n%s", url), req.ThreadTS)
	})
	metrics.OrderDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error("automation run failed", logging.Error(err))
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		s.notify(ctx, req.Channel, fmt.Sprintf("❌ Error running automation: %v", err), req.ThreadTS)
		return
	}

	outcome := automation.ParseOutcome(raw)
	if !outcome.Succeeded() {
		log.Warn("automation finished without a cart URL")
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		s.notify(ctx, req.Channel, fmt.Sprintf("❌ Order failed. Result:\n%s", raw), req.ThreadTS)
		return
	}

	log.Info("order complete", logging.Items(len(outcome.MissingItems)))
	metrics.OrdersTotal.WithLabelValues("success").Inc()
	s.notify(ctx, req.Channel, successText(outcome), req.ThreadTS)
}

// notify posts a message, swallowing and logging any delivery failure.
// One attempt, no retry.
func (s *OrderService) notify(ctx context.Context, channel, text, threadTS string) {
	if err := s.notifier.PostMessage(ctx, channel, text, threadTS); err != nil {
		metrics.NotificationFailures.Inc()
		s.logger.ErrorContext(ctx, "failed to post to slack",
			logging.Channel(channel),
			logging.Error(err),
		)
	}
}

func (s *OrderService) helpText() string {
	return fmt.Sprintf("👋 Hi! Please mention me with a grocery list.\n\nExample: `%s milk, bread, bananas`", s.botName)
}

// ackText summarizes the order, listing at most ackItemLimit items.
func ackText(items []string) string {
	summary := strings.Join(items[:min(len(items), ackItemLimit)], ", ")
	if len(items) > ackItemLimit {
		summary += fmt.Sprintf(" and %d more...", len(items)-ackItemLimit)
	}
	return fmt.Sprintf("🛒 Starting your Tesco order for: %s\n⏳ This will take a few minutes...", summary)
}

func successText(outcome automation.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Your Tesco order is ready!\n\n🛒 Cart URL: %s", outcome.CartURL)
	if len(outcome.MissingItems) > 0 {
		b.WriteString("\n\n⚠️ Some items couldn't be added:")
		for _, item := range outcome.MissingItems {
			fmt.Fprintf(&b, "\n• %s", item)
		}
	}
	return b.String()
}
