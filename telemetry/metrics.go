// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	UpdatesProcessed    prometheus.Counter
	UpdateFailures      prometheus.Counter
	LinksAccepted       prometheus.Counter
	LinksRejected       *prometheus.CounterVec // reason: closed|limit|no_handle
	Confirmations       prometheus.Counter
	ConfirmationsDenied *prometheus.CounterVec // reason: closed|no_submission
	CommandsHandled     *prometheus.CounterVec // command name
	SendFailures        prometheus.Counter
	DeleteFailures      prometheus.Counter

	// Gauges
	OpenRoundsGauge   prometheus.Gauge
	TrackedChatsGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		UpdatesProcessed = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_updates_processed_total", Help: "Number of gateway updates processed"})
		UpdateFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_update_failures_total", Help: "Number of updates whose handler panicked or errored"})
		LinksAccepted = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_links_accepted_total", Help: "Number of link submissions accepted"})
		LinksRejected = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_links_rejected_total", Help: "Number of link submissions rejected"}, []string{"reason"})
		Confirmations = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_confirmations_total", Help: "Number of engagement confirmations recorded"})
		ConfirmationsDenied = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_confirmations_denied_total", Help: "Number of engagement confirmations denied"}, []string{"reason"})
		CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_commands_handled_total", Help: "Number of moderator commands handled"}, []string{"command"})
		SendFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_send_failures_total", Help: "Number of outbound sends that failed after retries"})
		DeleteFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_delete_failures_total", Help: "Number of message deletions that failed after retries"})
		OpenRoundsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_open_rounds", Help: "Current number of chats with an open round"})
		TrackedChatsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_tracked_chats", Help: "Current number of chats with session state"})
	})
}

// SetRoundGauges records current chat/round counts.
func SetRoundGauges(chats, open int) {
	if TrackedChatsGauge != nil {
		TrackedChatsGauge.Set(float64(chats))
	}
	if OpenRoundsGauge != nil {
		OpenRoundsGauge.Set(float64(open))
	}
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
