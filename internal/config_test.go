package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config
	err := env.Unmarshal(env.EnvSet{
		"BADGER_FILEPATH": "/tmp/bank",
		"JWT_SECRET":      "secret",
	}, &config)
	req.NoError(err)

	req.Equal(8000, config.Port)
	req.Equal(30*time.Minute, config.AuthTokenDuration)
	req.Equal(100, config.LimitTransactions)
	req.NoError(config.Validate())

	threshold, err := config.Threshold()
	req.NoError(err)
	req.Equal("10000", threshold.String())
	req.Empty(config.Admins())
}

func TestConfig_Missing_Required(t *testing.T) {
	var config Config
	err := env.Unmarshal(env.EnvSet{"JWT_SECRET": "secret"}, &config)
	require.Error(t, err)
}

func TestConfig_Helpers(t *testing.T) {
	req := require.New(t)
	config := Config{
		LargeTransactionLimit: "2500.50",
		AdminUsernames:        " root, ,ops ",
		ConnectionBufferSize:  1,
		RegistryShards:        1,
		ComplianceQueueSize:   1,
		ComplianceWorkers:     1,
		LimitTransactions:     0,
	}

	threshold, err := config.Threshold()
	req.NoError(err)
	req.Equal("2500.5", threshold.String())
	req.Equal([]string{"root", "ops"}, config.Admins())
	req.Error(config.Validate())

	config.LargeTransactionLimit = "lots"
	_, err = config.Threshold()
	req.Error(err)
	config.LargeTransactionLimit = "-1"
	_, err = config.Threshold()
	req.Error(err)
}

func TestConfig_Rejects_Non_Positive_Delivery_Timeout(t *testing.T) {
	req := require.New(t)
	for _, timeout := range []string{"0s", "-1s"} {
		var config Config
		err := env.Unmarshal(env.EnvSet{
			"BADGER_FILEPATH":  "/tmp/bank",
			"JWT_SECRET":       "secret",
			"DELIVERY_TIMEOUT": timeout,
		}, &config)
		req.NoError(err)
		req.ErrorContains(config.Validate(), "DELIVERY_TIMEOUT")
	}
}
