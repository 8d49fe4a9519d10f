package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewCompleted ReviewStatus = "completed"
)

// ComplianceJob is the out-of-band work item queued for a large transaction.
type ComplianceJob struct {
	TransactionID uuid.UUID
	UserID        UserID
	Amount        decimal.Decimal
	Currency      string
	EnqueuedAt    time.Time
}

type ComplianceReview struct {
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	Status        ReviewStatus
	ReviewedAt    time.Time
}
