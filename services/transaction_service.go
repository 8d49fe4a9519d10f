package services

import (
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/errors"
	"bank-lab/repositories"
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ITransactionService interface {
	CreateTransaction(ctx context.Context, userID domain.UserID, kind string, amount decimal.Decimal, description *string) (domain.Transaction, error)
	ListTransactions(userID domain.UserID, skip, limit int) ([]domain.Transaction, error)
	GetTransaction(userID domain.UserID, id uuid.UUID) (domain.Transaction, error)
}

// TransactionService books transactions against the caller's account.
//
// The ledger commit is the only step that can fail a transaction. What
// follows it (the owner's notifications and the compliance hand-off of
// amounts above threshold) is best effort and never undoes or fails the
// booking.
type TransactionService struct {
	log          *slog.Logger
	ledger       ILedger
	repository   repositories.IAccountRepository
	notifier     contract.INotifier
	dispatcher   contract.IComplianceDispatcher
	threshold    decimal.Decimal
	defaultLimit int
	reference    func() string
	now          func() time.Time
}

func NewTransactionService(
	log *slog.Logger,
	ledger ILedger,
	repository repositories.IAccountRepository,
	notifier contract.INotifier,
	dispatcher contract.IComplianceDispatcher,
	threshold decimal.Decimal,
	defaultLimit int,
) *TransactionService {
	return &TransactionService{
		log:          log,
		ledger:       ledger,
		repository:   repository,
		notifier:     notifier,
		dispatcher:   dispatcher,
		threshold:    threshold,
		defaultLimit: defaultLimit,
		reference:    NewReferenceNumber,
		now:          time.Now,
	}
}

// CreateTransaction books one movement on the caller's account:
// 1. Validates the type and amount against the caller's account.
// 2. Commits the record and the new balance under the account lock.
// 3. Notifies the owner, then hands large amounts to compliance review.
func (s *TransactionService) CreateTransaction(
	ctx context.Context,
	userID domain.UserID,
	kind string,
	amount decimal.Decimal,
	description *string,
) (domain.Transaction, error) {
	account, err := s.ledger.GetAccount(userID)
	if err != nil {
		return domain.Transaction{}, err
	}
	txType, ok := domain.ParseTransactionType(kind)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: %q", errors.ErrInvalidTransactionType, kind)
	}
	if !domain.ValidAmount(amount) {
		return domain.Transaction{}, fmt.Errorf("%w: got %s", errors.ErrInvalidAmount, amount.String())
	}

	tx, change, err := s.commit(account, txType, amount, description)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.log.Info("Transaction committed",
		"user_id", userID, "transaction_id", tx.ID, "type", tx.Type, "amount", domain.FormatMoney(tx.Amount))

	// Client disconnects must not cut post-commit delivery short.
	postCommit := context.WithoutCancel(ctx)
	account.Balance = change.New
	s.notifier.NotifyUser(postCommit, userID, event.NewTransactionCreated(account, tx, change))

	if amount.GreaterThan(s.threshold) {
		job := domain.ComplianceJob{
			TransactionID: tx.ID,
			UserID:        userID,
			Amount:        tx.Amount,
			Currency:      account.Currency,
			EnqueuedAt:    s.now().UTC(),
		}
		if err = s.dispatcher.Enqueue(postCommit, job); err != nil {
			s.log.Error("Compliance dispatch rejected", "transaction_id", tx.ID, "error", err)
		}
		s.notifier.NotifyUser(postCommit, userID, event.NewLargeTransactionProcessing(tx, account.Currency))
	}
	return tx, nil
}

// commit writes the record and the balance in one unit, drawing a new
// reference number when the previous one is already taken.
func (s *TransactionService) commit(
	account domain.Account,
	txType domain.TransactionType,
	amount decimal.Decimal,
	description *string,
) (domain.Transaction, domain.BalanceChange, error) {
	delta := txType.Signed(amount)
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		tx := domain.Transaction{
			ID:              uuid.New(),
			AccountID:       account.ID,
			Type:            txType,
			Amount:          amount,
			Description:     description,
			ReferenceNumber: s.reference(),
		}
		change, err := s.ledger.ApplyDelta(account.ID, delta, &tx)
		if err == nil {
			return tx, change, nil
		}
		if !stdErrors.Is(err, errors.ErrDuplicateKey) {
			return domain.Transaction{}, domain.BalanceChange{}, err
		}
		s.log.Warn("Reference number collision, regenerating", "reference", tx.ReferenceNumber, "attempt", attempt)
	}
	return domain.Transaction{}, domain.BalanceChange{}, fmt.Errorf("%w: reference number", errors.ErrKeyGeneration)
}

// ListTransactions pages through the caller's transactions, oldest first.
// A non-positive limit falls back to the configured default.
func (s *TransactionService) ListTransactions(userID domain.UserID, skip, limit int) ([]domain.Transaction, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative", errors.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	account, err := s.ledger.GetAccount(userID)
	if err != nil {
		return nil, err
	}
	return s.repository.ListTransactions(account.ID, skip, limit)
}

// GetTransaction only returns transactions booked on the caller's own account.
func (s *TransactionService) GetTransaction(userID domain.UserID, id uuid.UUID) (domain.Transaction, error) {
	tx, err := s.repository.GetTransaction(id)
	if err != nil {
		return domain.Transaction{}, err
	}
	account, err := s.ledger.GetAccount(userID)
	if stdErrors.Is(err, errors.ErrAccountNotFound) {
		return domain.Transaction{}, errors.ErrForbidden
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx.AccountID != account.ID {
		return domain.Transaction{}, errors.ErrForbidden
	}
	return tx, nil
}
