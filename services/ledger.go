package services

import (
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/errors"
	"bank-lab/repositories"
	"bank-lab/runtime"
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ILedger interface {
	CreateAccount(ctx context.Context, userID domain.UserID, accountType, currency string) (domain.Account, error)
	GetAccount(userID domain.UserID) (domain.Account, error)
	GetAccountByID(id uuid.UUID) (domain.Account, error)
	ApplyDelta(accountID uuid.UUID, delta decimal.Decimal, record *domain.Transaction) (domain.BalanceChange, error)
}

// Ledger owns the one-account-per-user rule and serialises balance
// mutations per account. Unrelated accounts never wait on each other.
type Ledger struct {
	log           *slog.Logger
	repository    repositories.IAccountRepository
	notifier      contract.INotifier
	locks         *runtime.KeyedMutex
	accountNumber func() string
	now           func() time.Time
}

func NewLedger(log *slog.Logger, repository repositories.IAccountRepository, notifier contract.INotifier) *Ledger {
	return &Ledger{
		log:           log,
		repository:    repository,
		notifier:      notifier,
		locks:         runtime.NewKeyedMutex(),
		accountNumber: NewAccountNumber,
		now:           time.Now,
	}
}

// CreateAccount opens the caller's account with a zero balance and tells the
// owner's live sessions about it once committed.
// Currency defaults to USD and must be a 3-letter code.
func (l *Ledger) CreateAccount(ctx context.Context, userID domain.UserID, accountType, currency string) (domain.Account, error) {
	accountType = strings.TrimSpace(accountType)
	if accountType == "" {
		return domain.Account{}, fmt.Errorf("%w: account type is required", errors.ErrInvalidRequest)
	}
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return domain.Account{}, err
	}

	unlock := l.locks.Lock("user:" + userID.String())
	account, err := l.createAccount(userID, accountType, currency)
	unlock()
	if err != nil {
		return domain.Account{}, err
	}

	l.log.Info("Account created", "user_id", userID, "account_number", account.AccountNumber)
	l.notifier.NotifyUser(context.WithoutCancel(ctx), userID, event.NewAccountCreated(account))
	return account, nil
}

func (l *Ledger) createAccount(userID domain.UserID, accountType, currency string) (domain.Account, error) {
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		now := l.now().UTC()
		account := domain.Account{
			ID:            uuid.New(),
			UserID:        userID,
			AccountNumber: l.accountNumber(),
			AccountType:   accountType,
			Balance:       decimal.Zero,
			Currency:      currency,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		err := l.repository.CreateAccount(account)
		if err == nil {
			return account, nil
		}
		if !stdErrors.Is(err, errors.ErrDuplicateKey) {
			return domain.Account{}, err
		}
		l.log.Warn("Account number collision, regenerating", "account_number", account.AccountNumber, "attempt", attempt)
	}
	return domain.Account{}, fmt.Errorf("%w: account number", errors.ErrKeyGeneration)
}

func (l *Ledger) GetAccount(userID domain.UserID) (domain.Account, error) {
	return l.repository.GetAccountByUser(userID)
}

// GetAccountByID does not check ownership.
func (l *Ledger) GetAccountByID(id uuid.UUID) (domain.Account, error) {
	return l.repository.GetAccount(id)
}

// ApplyDelta holds the account lock only across the store commit.
// The record is stamped under the lock, so creation times on one account
// follow commit order and the history index lists them that way.
func (l *Ledger) ApplyDelta(accountID uuid.UUID, delta decimal.Decimal, record *domain.Transaction) (domain.BalanceChange, error) {
	unlock := l.locks.Lock("account:" + accountID.String())
	defer unlock()
	record.CreatedAt = l.now().UTC()
	return l.repository.ApplyDelta(accountID, delta, record)
}

func normalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return domain.DefaultCurrency, nil
	}
	if len(currency) != 3 {
		return "", errors.ErrInvalidCurrency
	}
	for _, r := range currency {
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			return "", errors.ErrInvalidCurrency
		}
	}
	return currency, nil
}
