package repositories

import (
	"bank-lab/domain"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Disk records are the CBOR shapes written to badger.
// Money is kept as its decimal string so no precision is lost on the way back.

type DiskAccount struct {
	ID            string `cbor:"id"`
	UserID        string `cbor:"user_id"`
	AccountNumber string `cbor:"account_number"`
	AccountType   string `cbor:"account_type"`
	Balance       string `cbor:"balance"`
	Currency      string `cbor:"currency"`
	CreatedAt     int64  `cbor:"created_at"`
	UpdatedAt     int64  `cbor:"updated_at"`
}

type DiskTransaction struct {
	ID              string  `cbor:"id"`
	AccountID       string  `cbor:"account_id"`
	Type            string  `cbor:"type"`
	Amount          string  `cbor:"amount"`
	Description     *string `cbor:"description,omitempty"`
	ReferenceNumber string  `cbor:"reference_number"`
	CreatedAt       int64   `cbor:"created_at"`
}

type DiskUser struct {
	ID           string   `cbor:"id"`
	Email        string   `cbor:"email"`
	Username     string   `cbor:"username"`
	PasswordHash string   `cbor:"password_hash"`
	Roles        []string `cbor:"roles"`
	IsActive     bool     `cbor:"is_active"`
	CreatedAt    int64    `cbor:"created_at"`
}

type DiskReview struct {
	TransactionID string `cbor:"transaction_id"`
	Amount        string `cbor:"amount"`
	Status        string `cbor:"status"`
	ReviewedAt    int64  `cbor:"reviewed_at"`
}

func fromAccount(a domain.Account) DiskAccount {
	return DiskAccount{
		ID:            a.ID.String(),
		UserID:        a.UserID.String(),
		AccountNumber: a.AccountNumber,
		AccountType:   a.AccountType,
		Balance:       a.Balance.String(),
		Currency:      a.Currency,
		CreatedAt:     a.CreatedAt.UnixNano(),
		UpdatedAt:     a.UpdatedAt.UnixNano(),
	}
}

func (d DiskAccount) toDomain() (domain.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account id: %w", err)
	}
	balance, err := decimal.NewFromString(d.Balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account balance: %w", err)
	}
	return domain.Account{
		ID:            id,
		UserID:        domain.UserID(d.UserID),
		AccountNumber: d.AccountNumber,
		AccountType:   d.AccountType,
		Balance:       balance,
		Currency:      d.Currency,
		CreatedAt:     time.Unix(0, d.CreatedAt).UTC(),
		UpdatedAt:     time.Unix(0, d.UpdatedAt).UTC(),
	}, nil
}

func fromTransaction(t domain.Transaction) DiskTransaction {
	return DiskTransaction{
		ID:              t.ID.String(),
		AccountID:       t.AccountID.String(),
		Type:            string(t.Type),
		Amount:          t.Amount.String(),
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		CreatedAt:       t.CreatedAt.UnixNano(),
	}
}

func (d DiskTransaction) toDomain() (domain.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	accountID, err := uuid.Parse(d.AccountID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction account id: %w", err)
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction amount: %w", err)
	}
	return domain.Transaction{
		ID:              id,
		AccountID:       accountID,
		Type:            domain.TransactionType(d.Type),
		Amount:          amount,
		Description:     d.Description,
		ReferenceNumber: d.ReferenceNumber,
		CreatedAt:       time.Unix(0, d.CreatedAt).UTC(),
	}, nil
}

func fromUser(u domain.User) DiskUser {
	return DiskUser{
		ID:           u.ID.String(),
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Roles:        u.Roles,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.UnixNano(),
	}
}

func (d DiskUser) toDomain() domain.User {
	return domain.User{
		ID:           domain.UserID(d.ID),
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Roles:        d.Roles,
		IsActive:     d.IsActive,
		CreatedAt:    time.Unix(0, d.CreatedAt).UTC(),
	}
}

func fromReview(r domain.ComplianceReview) DiskReview {
	return DiskReview{
		TransactionID: r.TransactionID.String(),
		Amount:        r.Amount.String(),
		Status:        string(r.Status),
		ReviewedAt:    r.ReviewedAt.UnixNano(),
	}
}

func (d DiskReview) toDomain() (domain.ComplianceReview, error) {
	id, err := uuid.Parse(d.TransactionID)
	if err != nil {
		return domain.ComplianceReview{}, fmt.Errorf("review transaction id: %w", err)
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return domain.ComplianceReview{}, fmt.Errorf("review amount: %w", err)
	}
	return domain.ComplianceReview{
		TransactionID: id,
		Amount:        amount,
		Status:        domain.ReviewStatus(d.Status),
		ReviewedAt:    time.Unix(0, d.ReviewedAt).UTC(),
	}, nil
}

// encMode writes records with Core Deterministic Encoding: the same record
// always produces the same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("repositories: CBOR encoder initialization failed: " + err.Error())
	}
}

func setRecord(txn *badger.Txn, key string, record any) error {
	data, err := encMode.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(key), data)
}

// getRecord decodes the value stored at key. A missing key returns badger.ErrKeyNotFound.
func getRecord(txn *badger.Txn, key string, record any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, record)
	})
}

func getString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	switch err {
	case nil:
		return true, nil
	case badger.ErrKeyNotFound:
		return false, nil
	default:
		return false, err
	}
}
