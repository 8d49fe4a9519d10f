package runtime

import (
	"bank-lab/domain"
	"bank-lab/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ComplianceQueue is the bounded hand-off between the transaction path and the
// compliance workers. Enqueue never waits for room: a full or stopped queue
// rejects the job and the caller carries on.
type ComplianceQueue struct {
	mu     sync.RWMutex
	log    *slog.Logger
	jobs   chan domain.ComplianceJob
	closed bool
}

func NewComplianceQueue(log *slog.Logger, size int) *ComplianceQueue {
	return &ComplianceQueue{log: log, jobs: make(chan domain.ComplianceJob, size)}
}

func (q *ComplianceQueue) Enqueue(ctx context.Context, job domain.ComplianceJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return fmt.Errorf("%w: queue stopped", errors.ErrDispatchRejected)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDispatchRejected, err)
	}
	select {
	case q.jobs <- job:
		q.log.Debug("Compliance job queued", "transaction_id", job.TransactionID, "pending", len(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue full (%d pending)", errors.ErrDispatchRejected, cap(q.jobs))
	}
}

// Jobs is consumed by the compliance workers. It is closed by Close.
func (q *ComplianceQueue) Jobs() <-chan domain.ComplianceJob {
	return q.jobs
}

func (q *ComplianceQueue) Len() int {
	return len(q.jobs)
}

// Close rejects further jobs and lets workers drain what is already queued.
func (q *ComplianceQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}
