package workers

import (
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/mocks"
	"bank-lab/sink"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func largeJob(userID domain.UserID) domain.ComplianceJob {
	return domain.ComplianceJob{
		TransactionID: uuid.New(),
		UserID:        userID,
		Amount:        decimal.RequireFromString("15000.00"),
		Currency:      "USD",
		EnqueuedAt:    time.Now().UTC(),
	}
}

func TestComplianceWorker_Reviews_And_Notifies(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIComplianceRepository(ctrl)
	notifier := mocks.NewMockINotifier(ctrl)

	jobs := make(chan domain.ComplianceJob, 1)
	job := largeJob("alice")
	jobs <- job
	close(jobs)

	repository.EXPECT().
		SaveReview(gomock.Any()).
		DoAndReturn(func(review domain.ComplianceReview) error {
			req.Equal(job.TransactionID, review.TransactionID)
			req.Equal(domain.ReviewCompleted, review.Status)
			req.True(job.Amount.Equal(review.Amount))
			return nil
		}).
		Times(1)
	notifier.EXPECT().
		NotifyUser(gomock.Any(), domain.UserID("alice"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.UserID, envelope event.Envelope) []sink.DeliveryResult {
			req.Equal(event.TypeNotification, envelope.Type)
			req.Equal(event.LargeTransactionProcessed, envelope.Event)
			return nil
		}).
		Times(1)

	worker := NewComplianceWorker(slog.Default(), jobs, repository, notifier, time.Millisecond)
	req.NoError(worker.Run(context.Background()))
}

func TestComplianceWorker_Notifies_Even_When_Review_Not_Stored(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIComplianceRepository(ctrl)
	notifier := mocks.NewMockINotifier(ctrl)

	jobs := make(chan domain.ComplianceJob, 1)
	jobs <- largeJob("alice")
	close(jobs)

	repository.EXPECT().SaveReview(gomock.Any()).Return(fmt.Errorf("disk full")).Times(1)
	notifier.EXPECT().NotifyUser(gomock.Any(), domain.UserID("alice"), gomock.Any()).Return(nil).Times(1)

	worker := NewComplianceWorker(slog.Default(), jobs, repository, notifier, 0)
	req.NoError(worker.Run(context.Background()))
}

func TestComplianceWorker_Stops_On_Cancel_During_Review(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIComplianceRepository(ctrl)
	notifier := mocks.NewMockINotifier(ctrl)

	jobs := make(chan domain.ComplianceJob, 1)
	jobs <- largeJob("alice")

	// No review is stored and nobody is notified.
	worker := NewComplianceWorker(slog.Default(), jobs, repository, notifier, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req.ErrorIs(worker.Run(ctx), context.DeadlineExceeded)
}
