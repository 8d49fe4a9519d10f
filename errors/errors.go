package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrAccountNotFound        = fmt.Errorf("account not found")
	ErrTransactionNotFound    = fmt.Errorf("transaction not found")
	ErrUserNotFound           = fmt.Errorf("user not found")
	ErrAccountAlreadyExists   = fmt.Errorf("user already has an account")
	ErrInsufficientFunds      = fmt.Errorf("insufficient funds")
	ErrInvalidAmount          = fmt.Errorf("amount must be strictly positive with at most 2 decimal places")
	ErrInvalidTransactionType = fmt.Errorf("invalid transaction type")
	ErrInvalidCurrency        = fmt.Errorf("currency must be a 3-letter code")
	ErrInvalidRequest         = fmt.Errorf("invalid request")
	ErrForbidden              = fmt.Errorf("not authorized to access this resource")
	ErrDuplicateKey           = fmt.Errorf("unique key already taken")
	ErrKeyGeneration          = fmt.Errorf("could not generate a unique key")

	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUserAlreadyExists  = fmt.Errorf("username or email already registered")
	ErrInvalidCredentials = fmt.Errorf("incorrect username or password")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")

	ErrInactiveUser = fmt.Errorf("inactive user")

	ErrDispatchRejected = fmt.Errorf("compliance dispatch rejected")
	ErrReviewNotFound   = fmt.Errorf("compliance review not found")
)

var (
	ErrSessionClosed   = fmt.Errorf("session closed")
	ErrDeliveryTimeout = fmt.Errorf("session outbox full past delivery timeout")
)
