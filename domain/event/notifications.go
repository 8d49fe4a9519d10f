package event

import (
	"bank-lab/domain"
	"fmt"
	"strings"
)

type AccountView struct {
	ID            string `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
}

type TransactionView struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	Description     *string `json:"description"`
	ReferenceNumber string  `json:"reference_number"`
}

type BalanceView struct {
	ID            string `json:"id"`
	OldBalance    string `json:"old_balance"`
	NewBalance    string `json:"new_balance"`
	BalanceChange string `json:"balance_change"`
	Currency      string `json:"currency"`
}

type accountCreated struct {
	Account AccountView `json:"account"`
	Message string      `json:"message"`
}

type transactionCreated struct {
	Transaction TransactionView `json:"transaction"`
	Account     BalanceView     `json:"account"`
	Message     string          `json:"message"`
}

type largeTransaction struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

type announcement struct {
	Message string `json:"message"`
}

func NewAccountCreated(account domain.Account) Envelope {
	return Envelope{
		Type:  TypeAccount,
		Event: AccountCreated,
		Payload: accountCreated{
			Account: AccountView{
				ID:            account.ID.String(),
				AccountNumber: account.AccountNumber,
				AccountType:   account.AccountType,
				Balance:       domain.FormatMoney(account.Balance),
				Currency:      account.Currency,
			},
			Message: fmt.Sprintf("Your %s account has been created successfully!", account.AccountType),
		},
	}
}

func NewTransactionCreated(account domain.Account, tx domain.Transaction, change domain.BalanceChange) Envelope {
	return Envelope{
		Type:  TypeTransaction,
		Event: TransactionCreated,
		Payload: transactionCreated{
			Transaction: TransactionView{
				ID:              tx.ID.String(),
				Type:            string(tx.Type),
				Amount:          domain.FormatMoney(tx.Amount),
				Description:     tx.Description,
				ReferenceNumber: tx.ReferenceNumber,
			},
			Account: BalanceView{
				ID:            account.ID.String(),
				OldBalance:    domain.FormatMoney(change.Old),
				NewBalance:    domain.FormatMoney(change.New),
				BalanceChange: domain.FormatMoney(change.Delta()),
				Currency:      account.Currency,
			},
			Message: fmt.Sprintf("%s of %s %s completed",
				capitalize(string(tx.Type)), account.Currency, domain.FormatMoney(tx.Amount)),
		},
	}
}

func NewLargeTransactionProcessing(tx domain.Transaction, currency string) Envelope {
	return Envelope{
		Type:  TypeNotification,
		Event: LargeTransactionProcessing,
		Payload: largeTransaction{
			TransactionID: tx.ID.String(),
			Message: fmt.Sprintf("Large transaction of %s %s is being processed for compliance",
				currency, domain.FormatMoney(tx.Amount)),
		},
	}
}

func NewLargeTransactionProcessed(review domain.ComplianceReview, currency string) Envelope {
	return Envelope{
		Type:  TypeNotification,
		Event: LargeTransactionProcessed,
		Payload: largeTransaction{
			TransactionID: review.TransactionID.String(),
			Message: fmt.Sprintf("Large transaction of %s %s passed compliance review",
				currency, domain.FormatMoney(review.Amount)),
		},
	}
}

func NewAnnouncement(message string) Envelope {
	return Envelope{
		Type:    TypeSystem,
		Event:   SystemAnnouncement,
		Payload: announcement{Message: message},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
