package auth

import (
	"bank-lab/errors"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest also accepts a form body, the OAuth2 password flow shape.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type CreateAccountRequest struct {
	AccountType string `json:"account_type" validate:"required,max=50"`
	Currency    string `json:"currency" validate:"omitempty,len=3,alpha"`
}

type CreateTransactionRequest struct {
	TransactionType string          `json:"transaction_type" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Description     *string         `json:"description" validate:"omitempty,max=255"`
}

type AnnouncementRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

// ValidateRegister checks the request shape, then asks for a password
// mixing letters and digits.
func ValidateRegister(req RegisterRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

// Validate runs the struct tags of any request and wraps failures in ErrInvalidRequest.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var hasLetter, hasNumber bool
	for _, char := range s {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasLetter && hasNumber
}
