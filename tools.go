//go:build tools

// Package tools pins the code generators run by `go generate` (mockgen)
// as module dependencies.
package bank_lab

import (
	_ "go.uber.org/mock/mockgen"
)
