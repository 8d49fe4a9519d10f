//go:generate go run go.uber.org/mock/mockgen -source=account.go -destination=../mocks/mock_account_repository.go -package=mocks
package repositories

import (
	"bank-lab/domain"
	"bank-lab/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IAccountRepository interface {
	CreateAccount(account domain.Account) error
	GetAccountByUser(userID domain.UserID) (domain.Account, error)
	GetAccount(id uuid.UUID) (domain.Account, error)
	ListAccounts() ([]domain.Account, error)
	ApplyDelta(accountID uuid.UUID, delta decimal.Decimal, record *domain.Transaction) (domain.BalanceChange, error)
	GetTransaction(id uuid.UUID) (domain.Transaction, error)
	ListTransactions(accountID uuid.UUID, offset, limit int) ([]domain.Transaction, error)
	CountTransactions(accountID uuid.UUID) (int, error)
}

// AccountRepository stores accounts and their transactions in BadgerDB.
//
// Keys:
//
//	account:{id}                               -> DiskAccount
//	account_user:{user_id}                     -> account id (one account per user)
//	account_number:{number}                    -> account id (unique number)
//	txn:{id}                                   -> DiskTransaction
//	txn_ref:{reference}                        -> transaction id (unique reference)
//	account_txn:{account_id}:{nanos}:{txn_id}  -> transaction id, chronological
type AccountRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewAccountRepository(db *badger.DB, log *slog.Logger) AccountRepository {
	return AccountRepository{db: db, log: log}
}

func accountKey(id uuid.UUID) string { return "account:" + id.String() }
func accountUserKey(id domain.UserID) string { return "account_user:" + id.String() }
func accountNumberKey(number string) string { return "account_number:" + number }
func transactionKey(id uuid.UUID) string { return "txn:" + id.String() }
func referenceKey(reference string) string { return "txn_ref:" + reference }
func accountTxnPrefix(id uuid.UUID) string { return "account_txn:" + id.String() + ":" }
func accountTxnKey(t domain.Transaction) string {
	return fmt.Sprintf("%s%019d:%s", accountTxnPrefix(t.AccountID), t.CreatedAt.UnixNano(), t.ID)
}

// CreateAccount persists a new account. Both uniqueness constraints are
// checked inside the same badger transaction as the write:
// an existing account for the user returns ErrAccountAlreadyExists,
// a taken account number returns ErrDuplicateKey so the caller can regenerate it.
func (r AccountRepository) CreateAccount(account domain.Account) error {
	return r.db.Update(func(txn *badger.Txn) error {
		taken, err := exists(txn, accountUserKey(account.UserID))
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrAccountAlreadyExists
		}
		taken, err = exists(txn, accountNumberKey(account.AccountNumber))
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: account number %s", errors.ErrDuplicateKey, account.AccountNumber)
		}
		if err = setRecord(txn, accountKey(account.ID), fromAccount(account)); err != nil {
			return err
		}
		if err = txn.Set([]byte(accountUserKey(account.UserID)), []byte(account.ID.String())); err != nil {
			return err
		}
		return txn.Set([]byte(accountNumberKey(account.AccountNumber)), []byte(account.ID.String()))
	})
}

func (r AccountRepository) GetAccountByUser(userID domain.UserID) (domain.Account, error) {
	var account domain.Account
	err := r.db.View(func(txn *badger.Txn) error {
		rawID, err := getString(txn, accountUserKey(userID))
		if err != nil {
			return notFound(err, errors.ErrAccountNotFound)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return err
		}
		account, err = loadAccount(txn, id)
		return err
	})
	return account, err
}

func (r AccountRepository) GetAccount(id uuid.UUID) (domain.Account, error) {
	var account domain.Account
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		account, err = loadAccount(txn, id)
		return err
	})
	return account, err
}

// ListAccounts scans every stored account. Used by offline inspection only.
func (r AccountRepository) ListAccounts() ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("account:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk DiskAccount
			if err := getRecord(txn, string(it.Item().Key()), &disk); err != nil {
				return err
			}
			account, err := disk.toDomain()
			if err != nil {
				return err
			}
			accounts = append(accounts, account)
		}
		return nil
	})
	return accounts, err
}

// ApplyDelta is the single commit point of a balance mutation.
// Inside one badger transaction it reads the current balance, rejects a
// negative result with ErrInsufficientFunds, then writes the new balance
// and, when record is not nil, the transaction record and its indexes.
// Either everything is committed or nothing is.
//
// Badger transactions are optimistic: concurrent writers on the same account
// abort with badger.ErrConflict. Callers serialise per account beforehand.
func (r AccountRepository) ApplyDelta(accountID uuid.UUID, delta decimal.Decimal, record *domain.Transaction) (domain.BalanceChange, error) {
	var change domain.BalanceChange
	err := r.db.Update(func(txn *badger.Txn) error {
		account, err := loadAccount(txn, accountID)
		if err != nil {
			return err
		}

		newBalance := account.Balance.Add(delta)
		if newBalance.IsNegative() {
			return fmt.Errorf("%w: balance %s, requested %s",
				errors.ErrInsufficientFunds, domain.FormatMoney(account.Balance), domain.FormatMoney(delta.Abs()))
		}

		updatedAt := time.Now().UTC()
		if record != nil {
			if record.AccountID != accountID {
				return fmt.Errorf("%w: transaction belongs to account %s", errors.ErrInvalidRequest, record.AccountID)
			}
			if err = storeTransaction(txn, *record); err != nil {
				return err
			}
			updatedAt = record.CreatedAt
		}

		change = domain.BalanceChange{Old: account.Balance, New: newBalance}
		account.Balance = newBalance
		account.UpdatedAt = updatedAt
		return setRecord(txn, accountKey(account.ID), fromAccount(account))
	})
	if err != nil {
		return domain.BalanceChange{}, err
	}
	r.log.Debug("Balance updated", "account_id", accountID,
		"old_balance", domain.FormatMoney(change.Old), "new_balance", domain.FormatMoney(change.New))
	return change, nil
}

func storeTransaction(txn *badger.Txn, t domain.Transaction) error {
	taken, err := exists(txn, referenceKey(t.ReferenceNumber))
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: reference %s", errors.ErrDuplicateKey, t.ReferenceNumber)
	}
	if err = setRecord(txn, transactionKey(t.ID), fromTransaction(t)); err != nil {
		return err
	}
	if err = txn.Set([]byte(referenceKey(t.ReferenceNumber)), []byte(t.ID.String())); err != nil {
		return err
	}
	return txn.Set([]byte(accountTxnKey(t)), []byte(t.ID.String()))
}

func (r AccountRepository) GetTransaction(id uuid.UUID) (domain.Transaction, error) {
	var transaction domain.Transaction
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		transaction, err = loadTransaction(txn, id)
		return err
	})
	return transaction, err
}

// ListTransactions returns the account's transactions oldest first, skipping
// offset entries and returning at most limit (all of them when limit <= 0).
func (r AccountRepository) ListTransactions(accountID uuid.UUID, offset, limit int) ([]domain.Transaction, error) {
	transactions := make([]domain.Transaction, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(accountTxnPrefix(accountID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(transactions) >= limit {
				break
			}
			rawID, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			id, err := uuid.ParseBytes(rawID)
			if err != nil {
				return err
			}
			transaction, err := loadTransaction(txn, id)
			if err != nil {
				return err
			}
			transactions = append(transactions, transaction)
		}
		return nil
	})
	return transactions, err
}

func (r AccountRepository) CountTransactions(accountID uuid.UUID) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(accountTxnPrefix(accountID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func loadAccount(txn *badger.Txn, id uuid.UUID) (domain.Account, error) {
	var disk DiskAccount
	if err := getRecord(txn, accountKey(id), &disk); err != nil {
		return domain.Account{}, notFound(err, errors.ErrAccountNotFound)
	}
	return disk.toDomain()
}

func loadTransaction(txn *badger.Txn, id uuid.UUID) (domain.Transaction, error) {
	var disk DiskTransaction
	if err := getRecord(txn, transactionKey(id), &disk); err != nil {
		return domain.Transaction{}, notFound(err, errors.ErrTransactionNotFound)
	}
	return disk.toDomain()
}

// notFound swaps badger.ErrKeyNotFound for the domain error and leaves any
// other failure untouched.
func notFound(err, domainErr error) error {
	if err == badger.ErrKeyNotFound {
		return domainErr
	}
	return err
}
