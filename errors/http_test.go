package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrAccountNotFound), http.StatusNotFound},
		{"already exists", ErrAccountAlreadyExists, http.StatusBadRequest},
		{"insufficient funds", ErrInsufficientFunds, http.StatusBadRequest},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"store failure", fmt.Errorf("badger: disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MapToHTTPStatus(tt.err))
		})
	}
}
