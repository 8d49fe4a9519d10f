package workers

import (
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/observability"
	"context"
	"log/slog"
	"time"
)

// QueueDepth reports how many jobs are waiting.
type QueueDepth interface {
	Len() int
}

// Heartbeat is one periodic status line.
type Heartbeat struct {
	Connections domain.ConnectionStats
	Pending     int
	Process     *observability.ProcessStats
}

// HeartbeatWorker logs live connections, pending compliance jobs and the
// process footprint at a fixed interval.
type HeartbeatWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	queue    QueueDepth
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, registry contract.IRegistry, queue QueueDepth, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, registry: registry, queue: queue, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			beat := w.beat()
			attrs := []any{
				"connections", beat.Connections.TotalConnections,
				"users_connected", beat.Connections.UsersConnected,
				"compliance_pending", beat.Pending,
			}
			if beat.Process != nil {
				attrs = append(attrs, "rss_bytes", beat.Process.RSSBytes,
					"cpu_percent", beat.Process.CPUPercent, "goroutines", beat.Process.Goroutines)
			}
			w.log.Info("Heartbeat", attrs...)
		}
	}
}

func (w *HeartbeatWorker) beat() Heartbeat {
	beat := Heartbeat{Connections: w.registry.Stats(), Pending: w.queue.Len()}
	stats, err := observability.SelfStats()
	if err != nil {
		w.log.Debug("Failed to collect self stats", "error", err)
		return beat
	}
	beat.Process = &stats
	return beat
}
