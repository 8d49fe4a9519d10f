// Package domain contains core concepts of the banking system.
// This file defines Transaction records.
// Transactions are immutable once committed.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ReferencePrefix = "TXN"

type TransactionType string

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
	// Transfer has no counterparty in a one-account model and is applied as a debit.
	Transfer TransactionType = "transfer"
)

func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case Deposit, Withdrawal, Transfer:
		return t, true
	}
	return "", false
}

// Signed returns the balance effect of amount for this type.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == Deposit {
		return amount
	}
	return amount.Neg()
}

type Transaction struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Type            TransactionType
	Amount          decimal.Decimal
	Description     *string
	ReferenceNumber string
	CreatedAt       time.Time
}

// ValidAmount reports whether amount can be booked: strictly positive and
// representable at MoneyScale without rounding.
func ValidAmount(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	return amount.Equal(amount.Truncate(MoneyScale))
}
