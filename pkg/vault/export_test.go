package vault

import (
	"crypto/ed25519"
	"io"
	"time"
)

type TestConfig struct {
	ProgramId              ed25519.PublicKey
	Commitment             string
	FundingLamports        uint64
	DisableFunding         bool
	InitialDepositLamports uint64
	ConfirmationTimeout    time.Duration
}

func WithTestConfig(c TestConfig) ConfigProvider {
	return withManualTestOverrides(&testOverrides{
		programId:              c.ProgramId,
		commitment:             c.Commitment,
		fundingLamports:        c.FundingLamports,
		disableFunding:         c.DisableFunding,
		initialDepositLamports: c.InitialDepositLamports,
		confirmationTimeout:    c.ConfirmationTimeout,
	})
}

func (c *Client) SetEntropy(r io.Reader) {
	c.entropy = r
}
