package vault

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/code-payments/vault-client/pkg/config"
	"github.com/code-payments/vault-client/pkg/config/env"
	"github.com/code-payments/vault-client/pkg/config/memory"
	"github.com/code-payments/vault-client/pkg/config/wrapper"
	"github.com/code-payments/vault-client/pkg/solana"
	vault_program "github.com/code-payments/vault-client/pkg/solana/vault"
)

const (
	envConfigPrefix = "VAULT_CLIENT_"

	ProgramIdConfigEnvName = envConfigPrefix + "PROGRAM_ID"

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	DefaultCommitment       = "confirmed"

	FundingLamportsConfigEnvName = envConfigPrefix + "FUNDING_LAMPORTS"
	defaultFundingLamports       = solana.LamportsPerSol

	DisableFundingConfigEnvName = envConfigPrefix + "DISABLE_FUNDING"
	defaultDisableFunding       = false

	InitialDepositLamportsConfigEnvName = envConfigPrefix + "INITIAL_DEPOSIT_LAMPORTS"
	defaultInitialDepositLamports       = 0

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = 30 * time.Second
)

type conf struct {
	programId              config.PublicKey
	commitment             config.String
	fundingLamports        config.Uint64
	disableFunding         config.Bool
	initialDepositLamports config.Uint64
	confirmationTimeout    config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			programId:              env.NewPublicKeyConfig(ProgramIdConfigEnvName, vault_program.PROGRAM_ID),
			commitment:             env.NewStringConfig(CommitmentConfigEnvName, DefaultCommitment),
			fundingLamports:        env.NewUint64Config(FundingLamportsConfigEnvName, defaultFundingLamports),
			disableFunding:         env.NewBoolConfig(DisableFundingConfigEnvName, defaultDisableFunding),
			initialDepositLamports: env.NewUint64Config(InitialDepositLamportsConfigEnvName, defaultInitialDepositLamports),
			confirmationTimeout:    env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
		}
	}
}

type testOverrides struct {
	programId              ed25519.PublicKey
	commitment             string
	fundingLamports        uint64
	disableFunding         bool
	initialDepositLamports uint64
	confirmationTimeout    time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		programId := overrides.programId
		if programId == nil {
			programId = vault_program.PROGRAM_ID
		}

		commitment := overrides.commitment
		if len(commitment) == 0 {
			commitment = DefaultCommitment
		}

		fundingLamports := overrides.fundingLamports
		if fundingLamports == 0 {
			fundingLamports = defaultFundingLamports
		}

		confirmationTimeout := overrides.confirmationTimeout
		if confirmationTimeout == 0 {
			confirmationTimeout = defaultConfirmationTimeout
		}

		return &conf{
			programId:              wrapper.NewPublicKeyConfig(memory.NewConfig(programId), vault_program.PROGRAM_ID),
			commitment:             wrapper.NewStringConfig(memory.NewConfig(commitment), DefaultCommitment),
			fundingLamports:        wrapper.NewUint64Config(memory.NewConfig(fundingLamports), defaultFundingLamports),
			disableFunding:         wrapper.NewBoolConfig(memory.NewConfig(overrides.disableFunding), defaultDisableFunding),
			initialDepositLamports: wrapper.NewUint64Config(memory.NewConfig(overrides.initialDepositLamports), defaultInitialDepositLamports),
			confirmationTimeout:    wrapper.NewDurationConfig(memory.NewConfig(confirmationTimeout), defaultConfirmationTimeout),
		}
	}
}

func (c *conf) programAndCommitment(ctx context.Context) (ed25519.PublicKey, solana.Commitment, error) {
	programId, err := c.programId.GetSafe(ctx)
	if err != nil {
		return nil, solana.Commitment{}, err
	}

	commitment, err := solana.CommitmentFromString(c.commitment.Get(ctx))
	if err != nil {
		return nil, solana.Commitment{}, err
	}

	return programId, commitment, nil
}
