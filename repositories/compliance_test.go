package repositories

import (
	"bank-lab/domain"
	"bank-lab/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_Save_And_Get_Review(t *testing.T) {
	req := require.New(t)
	repository := NewComplianceRepository(openDB(t))

	review := domain.ComplianceReview{
		TransactionID: uuid.New(),
		Amount:        decimal.RequireFromString("15000.00"),
		Status:        domain.ReviewCompleted,
		ReviewedAt:    time.Now().UTC(),
	}
	req.NoError(repository.SaveReview(review))

	stored, err := repository.GetReview(review.TransactionID)
	req.NoError(err)
	req.Equal(domain.ReviewCompleted, stored.Status)
	req.Equal("15000.00", domain.FormatMoney(stored.Amount))
	req.True(review.ReviewedAt.Equal(stored.ReviewedAt))

	_, err = repository.GetReview(uuid.New())
	req.ErrorIs(err, errors.ErrReviewNotFound)
}
