package app

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-client/pkg/metrics"
)

// Command is a single shot unit of work whose lifecycle is tied to the
// process.
type Command interface {
	// Init prepares the command with the loaded configuration. metricsProvider
	// is nil when metrics are disabled.
	Init(config BaseConfig, metricsProvider *newrelic.Application) error

	// Run performs the command. ctx is cancelled when the process receives an
	// interrupt.
	Run(ctx context.Context, args []string) error
}

// Run loads configuration, configures logging and metrics, then runs cmd with
// args. The returned error is the command's outcome.
func Run(cmd Command, args []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}

	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return errors.Wrap(err, "error connecting to new relic")
		}

		metricsProvider = nr
		defer nr.Shutdown(config.ShutdownGracePeriod)
	}

	configureLogger(config, metricsProvider)

	logger := logrus.StandardLogger().WithField("type", "app")

	if err := cmd.Init(config, metricsProvider); err != nil {
		return errors.Wrap(err, "failed to initialize command")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	osSigCh := make(chan os.Signal, 1)
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	defer signal.Stop(osSigCh)

	go func() {
		select {
		case <-osSigCh:
			logger.Info("interrupt received, cancelling")
			cancel()
		case <-ctx.Done():
		}
	}()

	ctx = metrics.WithApplication(ctx, metricsProvider)
	ctx, end := metrics.StartTransaction(ctx, config.AppName)
	defer end()

	return cmd.Run(ctx, args)
}

// LoadConfig reads BaseConfig from the environment, layered over an optional
// config file named by CONFIG_PATH.
func LoadConfig() (BaseConfig, error) {
	v := newViper()

	if path := os.Getenv(configPathEnvName); len(path) > 0 {
		// viper only reports ConfigFileNotFoundError when searching, so an
		// explicit path is checked here.
		if _, err := os.Stat(path); err != nil {
			return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
		}

		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return BaseConfig{}, errors.Wrap(err, "failed to load config")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.AppName) == 0 {
		return BaseConfig{}, errors.New("must specify an application name")
	}
	if len(config.RpcEndpoint) == 0 {
		return BaseConfig{}, errors.New("must specify an rpc endpoint")
	}

	return config, nil
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}
