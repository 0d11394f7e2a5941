package main

import (
	"context"
	"os"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code-payments/vault-client/pkg/app"
	"github.com/code-payments/vault-client/pkg/config/env"
	"github.com/code-payments/vault-client/pkg/solana"
	"github.com/code-payments/vault-client/pkg/vault"
	"github.com/code-payments/vault-client/pkg/vault/rpc"
	"github.com/code-payments/vault-client/pkg/vault/store/file"
)

type command struct {
	client *vault.Client
}

func (c *command) Init(config app.BaseConfig, _ *newrelic.Application) error {
	ctx := context.Background()

	commitment, err := solana.CommitmentFromString(
		env.NewStringConfig(vault.CommitmentConfigEnvName, vault.DefaultCommitment).Get(ctx),
	)
	if err != nil {
		return err
	}

	gateway := rpc.NewGateway(solana.New(config.RpcEndpoint), commitment)

	client, err := vault.NewClient(ctx, gateway, file.New(config.StateDir), vault.NewAddressLabels(), vault.WithEnvConfigs())
	if err != nil {
		return errors.Wrap(err, "error creating vault client")
	}

	c.client = client
	return nil
}

func (c *command) Run(ctx context.Context, args []string) error {
	return c.client.Run(ctx, args)
}

func newRootCommand(cmd app.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "vault-client [lamports]",
		Short: "Initialize a vault, or withdraw lamports from the persisted one",
		Long: "Without arguments a fresh payer is funded and its vault initialized. " +
			"With a lamport amount the persisted vault is withdrawn from.",
		Args: func(_ *cobra.Command, args []string) error {
			_, _, err := vault.ParseArgs(args)
			return err
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return app.Run(cmd, args)
		},
		// Amounts such as -1 must reach the argument check instead of being
		// parsed as shorthand flags.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
}

func main() {
	root := newRootCommand(&command{})
	root.SetArgs(os.Args[1:])

	if err := root.Execute(); err != nil {
		logrus.StandardLogger().WithError(err).Error("vault client failed")
		os.Exit(1)
	}
}
