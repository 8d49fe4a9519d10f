//go:generate go run go.uber.org/mock/mockgen -source=compliance.go -destination=../mocks/mock_compliance_repository.go -package=mocks
package repositories

import (
	"bank-lab/domain"
	"bank-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IComplianceRepository interface {
	SaveReview(review domain.ComplianceReview) error
	GetReview(transactionID uuid.UUID) (domain.ComplianceReview, error)
}

// ComplianceRepository keeps one review per transaction under "compliance:{transaction_id}".
// Saving again overwrites the previous review.
type ComplianceRepository struct {
	db *badger.DB
}

func NewComplianceRepository(db *badger.DB) ComplianceRepository {
	return ComplianceRepository{db: db}
}

func reviewKey(id uuid.UUID) string {
	return "compliance:" + id.String()
}

func (c ComplianceRepository) SaveReview(review domain.ComplianceReview) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return setRecord(txn, reviewKey(review.TransactionID), fromReview(review))
	})
}

func (c ComplianceRepository) GetReview(transactionID uuid.UUID) (domain.ComplianceReview, error) {
	var review domain.ComplianceReview
	err := c.db.View(func(txn *badger.Txn) error {
		var disk DiskReview
		if err := getRecord(txn, reviewKey(transactionID), &disk); err != nil {
			return notFound(err, errors.ErrReviewNotFound)
		}
		var err error
		review, err = disk.toDomain()
		return err
	})
	return review, err
}
