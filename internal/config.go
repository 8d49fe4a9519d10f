package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Config struct {
	Host                     string        `env:"HOST,default=0.0.0.0"`
	Port                     int           `env:"PORT,default=8000"`
	HealthPort               int           `env:"HEALTH_PORT,default=8001"`
	DebugPort                int           `env:"DEBUG_PORT,default=8081"`
	BadgerFilepath           string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel                 string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret                string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration        time.Duration `env:"AUTH_TOKEN_DURATION,default=30m"`
	ConnectionBufferSize     int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	DeliveryTimeout          time.Duration `env:"DELIVERY_TIMEOUT,default=1s"`
	RegistryShards           int           `env:"REGISTRY_SHARDS,default=32"`
	LargeTransactionLimit    string        `env:"LARGE_TRANSACTION_THRESHOLD,default=10000"`
	ComplianceQueueSize      int           `env:"COMPLIANCE_QUEUE_SIZE,default=256"`
	ComplianceWorkers        int           `env:"COMPLIANCE_WORKERS,default=2"`
	ComplianceReviewDuration time.Duration `env:"COMPLIANCE_REVIEW_DURATION,default=5s"`
	RestartInterval          time.Duration `env:"RESTART_INTERVAL,default=1s"`
	HeartbeatInterval        time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	LimitTransactions        int           `env:"LIMIT_TRANSACTIONS,default=100"`
	AdminUsernames           string        `env:"ADMIN_USERNAMES"`
	ShutdownTimeout          time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Threshold parses LARGE_TRANSACTION_THRESHOLD.
func (c Config) Threshold() (decimal.Decimal, error) {
	threshold, err := decimal.NewFromString(strings.TrimSpace(c.LargeTransactionLimit))
	if err != nil {
		return decimal.Zero, fmt.Errorf("LARGE_TRANSACTION_THRESHOLD must be a decimal, got %q", c.LargeTransactionLimit)
	}
	if threshold.IsNegative() {
		return decimal.Zero, fmt.Errorf("LARGE_TRANSACTION_THRESHOLD must not be negative, got %s", threshold)
	}
	return threshold, nil
}

// Admins splits the comma separated ADMIN_USERNAMES, dropping blanks.
func (c Config) Admins() []string {
	names := lo.Map(strings.Split(c.AdminUsernames, ","), func(name string, _ int) string {
		return strings.TrimSpace(name)
	})
	return lo.Compact(names)
}

// Validate rejects sizes the runtime cannot work with.
func (c Config) Validate() error {
	switch {
	case c.ConnectionBufferSize <= 0:
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive, got %d", c.ConnectionBufferSize)
	case c.RegistryShards <= 0:
		return fmt.Errorf("REGISTRY_SHARDS must be positive, got %d", c.RegistryShards)
	case c.ComplianceQueueSize <= 0:
		return fmt.Errorf("COMPLIANCE_QUEUE_SIZE must be positive, got %d", c.ComplianceQueueSize)
	case c.ComplianceWorkers <= 0:
		return fmt.Errorf("COMPLIANCE_WORKERS must be positive, got %d", c.ComplianceWorkers)
	case c.LimitTransactions <= 0:
		return fmt.Errorf("LIMIT_TRANSACTIONS must be positive, got %d", c.LimitTransactions)
	case c.HeartbeatInterval <= 0:
		return fmt.Errorf("HEARTBEAT_INTERVAL must be positive, got %s", c.HeartbeatInterval)
	case c.DeliveryTimeout <= 0:
		return fmt.Errorf("DELIVERY_TIMEOUT must be positive, got %s", c.DeliveryTimeout)
	}
	return nil
}
