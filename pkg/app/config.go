package app

import (
	"time"

	"github.com/spf13/viper"

	"github.com/code-payments/vault-client/pkg/solana"
)

const (
	configPathEnvName = "CONFIG_PATH"
)

// BaseConfig contains the process level configuration shared by commands.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	RpcEndpoint string `mapstructure:"rpc_endpoint"`

	// StateDir is where the payer key and vault address are persisted between
	// runs.
	StateDir string `mapstructure:"state_dir"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	// Metrics configuration across many providers
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",

	AppName: "vault-client",

	RpcEndpoint: string(solana.EnvironmentLocal),

	StateDir: ".",

	ShutdownGracePeriod: 5 * time.Second,
}

func newViper() *viper.Viper {
	v := viper.New()

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	_ = v.BindEnv("app_name", "APP_NAME")

	_ = v.BindEnv("rpc_endpoint", "RPC_ENDPOINT")
	_ = v.BindEnv("state_dir", "STATE_DIR")

	_ = v.BindEnv("shutdown_grace_period", "SHUTDOWN_GRACE_PERIOD")

	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	return v
}
