package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-client/pkg/solana"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "APP_NAME", "RPC_ENDPOINT", "STATE_DIR", "SHUTDOWN_GRACE_PERIOD", "NEW_RELIC_LICENSE_KEY", configPathEnvName} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, config)
	assert.Equal(t, string(solana.EnvironmentLocal), config.RpcEndpoint)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RPC_ENDPOINT", string(solana.EnvironmentDev))
	t.Setenv("STATE_DIR", "/var/lib/vault")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "2s")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, string(solana.EnvironmentDev), config.RpcEndpoint)
	assert.Equal(t, "/var/lib/vault", config.StateDir)
	assert.Equal(t, 2*time.Second, config.ShutdownGracePeriod)
	assert.Equal(t, "vault-client", config.AppName)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_dir: /tmp/vault\nrpc_endpoint: https://example.invalid\n"), 0600))

	t.Setenv(configPathEnvName, path)
	t.Setenv("RPC_ENDPOINT", string(solana.EnvironmentTest))

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vault", config.StateDir)
	assert.Equal(t, string(solana.EnvironmentTest), config.RpcEndpoint)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv(configPathEnvName, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

type testCommand struct {
	initErr error
	runErr  error

	config BaseConfig
	args   []string
	hasCtx bool
}

func (c *testCommand) Init(config BaseConfig, _ *newrelic.Application) error {
	c.config = config
	return c.initErr
}

func (c *testCommand) Run(ctx context.Context, args []string) error {
	c.args = args
	c.hasCtx = ctx.Err() == nil
	return c.runErr
}

func TestRun(t *testing.T) {
	t.Setenv("NEW_RELIC_LICENSE_KEY", "")
	t.Setenv("STATE_DIR", "/tmp/state")
	defer logrus.SetOutput(os.Stderr)

	cmd := &testCommand{}
	require.NoError(t, Run(cmd, []string{"42"}))
	assert.Equal(t, []string{"42"}, cmd.args)
	assert.Equal(t, "/tmp/state", cmd.config.StateDir)
	assert.True(t, cmd.hasCtx)

	runErr := errors.New("run failed")
	err := Run(&testCommand{runErr: runErr}, nil)
	assert.Equal(t, runErr, err)

	initErr := errors.New("init failed")
	cmd = &testCommand{initErr: initErr}
	err = Run(cmd, nil)
	assert.True(t, errors.Is(err, initErr))
	assert.Nil(t, cmd.args)
}
