package server

import (
	"bank-lab/domain"
	"time"

	"github.com/samber/lo"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AccountResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	AccountNumber string    `json:"account_number"`
	AccountType   string    `json:"account_type"`
	Balance       string    `json:"balance"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

type TransactionResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	TransactionType string    `json:"transaction_type"`
	Amount          string    `json:"amount"`
	Description     *string   `json:"description"`
	ReferenceNumber string    `json:"reference_number"`
	CreatedAt       time.Time `json:"created_at"`
}

type AnnouncementResponse struct {
	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Username:  u.Username,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID.String(),
		UserID:        a.UserID.String(),
		AccountNumber: a.AccountNumber,
		AccountType:   a.AccountType,
		Balance:       domain.FormatMoney(a.Balance),
		Currency:      a.Currency,
		CreatedAt:     a.CreatedAt,
	}
}

func toTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID.String(),
		AccountID:       t.AccountID.String(),
		TransactionType: string(t.Type),
		Amount:          domain.FormatMoney(t.Amount),
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		CreatedAt:       t.CreatedAt,
	}
}

func toTransactionResponses(transactions []domain.Transaction) []TransactionResponse {
	return lo.Map(transactions, func(t domain.Transaction, _ int) TransactionResponse {
		return toTransactionResponse(t)
	})
}
