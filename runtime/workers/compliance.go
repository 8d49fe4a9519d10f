package workers

import (
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/repositories"
	"context"
	"log/slog"
	"time"
)

// ComplianceWorker drains large-transaction jobs. Each review takes
// reviewDuration, is stored as completed and the owner is told about it.
// Several workers may share the same jobs channel.
type ComplianceWorker struct {
	log            *slog.Logger
	jobs           <-chan domain.ComplianceJob
	repository     repositories.IComplianceRepository
	notifier       contract.INotifier
	reviewDuration time.Duration
	now            func() time.Time
}

func NewComplianceWorker(
	log *slog.Logger,
	jobs <-chan domain.ComplianceJob,
	repository repositories.IComplianceRepository,
	notifier contract.INotifier,
	reviewDuration time.Duration,
) *ComplianceWorker {
	return &ComplianceWorker{
		log:            log,
		jobs:           jobs,
		repository:     repository,
		notifier:       notifier,
		reviewDuration: reviewDuration,
		now:            time.Now,
	}
}

// Run returns nil once the queue is closed and drained, ctx.Err() on cancellation.
func (w *ComplianceWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-w.jobs:
			if !ok {
				return nil
			}
			if err := w.review(ctx, job); err != nil {
				return err
			}
		}
	}
}

func (w *ComplianceWorker) review(ctx context.Context, job domain.ComplianceJob) error {
	w.log.Info("Processing large transaction",
		"transaction_id", job.TransactionID, "amount", domain.FormatMoney(job.Amount))

	if w.reviewDuration > 0 {
		timer := time.NewTimer(w.reviewDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	review := domain.ComplianceReview{
		TransactionID: job.TransactionID,
		Amount:        job.Amount,
		Status:        domain.ReviewCompleted,
		ReviewedAt:    w.now().UTC(),
	}
	if err := w.repository.SaveReview(review); err != nil {
		// The review outcome is still reported, only its record is lost.
		w.log.Error("Unable to store compliance review", "transaction_id", job.TransactionID, "error", err)
	}

	results := w.notifier.NotifyUser(ctx, job.UserID, event.NewLargeTransactionProcessed(review, job.Currency))
	w.log.Info("Transaction processed successfully",
		"transaction_id", job.TransactionID, "sessions", len(results))
	return nil
}
