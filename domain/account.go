// Package domain contains core concepts of the banking system.
// This file defines Account entities and their balance invariants.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccountNumberPrefix = "ACC"
	DefaultCurrency     = "USD"
	// MoneyScale is the number of fractional digits kept for amounts and balances.
	MoneyScale = 2
)

// Account is the single account owned by a user.
// Balance is never negative in a committed state.
type Account struct {
	ID            uuid.UUID
	UserID        UserID
	AccountNumber string
	AccountType   string
	Balance       decimal.Decimal
	Currency      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BalanceChange is the state transition committed by a single balance mutation.
type BalanceChange struct {
	Old decimal.Decimal
	New decimal.Decimal
}

func (b BalanceChange) Delta() decimal.Decimal {
	return b.New.Sub(b.Old)
}

// FormatMoney renders an amount with the fixed scale used on the wire ("1300.00").
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
