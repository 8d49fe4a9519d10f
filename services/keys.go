package services

import (
	"bank-lab/domain"
	"strings"

	"github.com/google/uuid"
)

// maxKeyAttempts bounds how many times a colliding account number or
// reference number is regenerated before giving up.
const maxKeyAttempts = 5

// NewAccountNumber returns "ACC" followed by 10 uppercase hex digits.
func NewAccountNumber() string {
	return domain.AccountNumberPrefix + randomHex(10)
}

// NewReferenceNumber returns "TXN" followed by 12 uppercase hex digits.
func NewReferenceNumber() string {
	return domain.ReferencePrefix + randomHex(12)
}

func randomHex(n int) string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:n])
}
