package rpc

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-client/pkg/retry"
	"github.com/code-payments/vault-client/pkg/retry/backoff"
	"github.com/code-payments/vault-client/pkg/solana"
	"github.com/code-payments/vault-client/pkg/vault"
)

const (
	airdropAttempts   = 3
	airdropBaseDelay  = 500 * time.Millisecond
	airdropMaxBackoff = 5 * time.Second
)

type gateway struct {
	log        *logrus.Entry
	client     solana.Client
	commitment solana.Commitment

	airdropAttempts  uint
	airdropBaseDelay time.Duration
}

// NewGateway returns a vault.Gateway backed by a Solana JSON RPC client.
// Submission preflight and funding confirmation use commitment.
func NewGateway(client solana.Client, commitment solana.Commitment) vault.Gateway {
	return &gateway{
		log:        logrus.StandardLogger().WithField("type", "vault/rpc"),
		client:     client,
		commitment: commitment,

		airdropAttempts:  airdropAttempts,
		airdropBaseDelay: airdropBaseDelay,
	}
}

// LatestBlockhash implements vault.Gateway.LatestBlockhash
func (g *gateway) LatestBlockhash(ctx context.Context) (solana.Blockhash, error) {
	if err := ctx.Err(); err != nil {
		return solana.Blockhash{}, err
	}

	return g.client.GetLatestBlockhash()
}

// MinimumRentExemptBalance implements vault.Gateway.MinimumRentExemptBalance
func (g *gateway) MinimumRentExemptBalance(ctx context.Context, size uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return g.client.GetMinimumBalanceForRentExemption(size)
}

// RequestFunding implements vault.Gateway.RequestFunding
func (g *gateway) RequestFunding(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	log := g.log.WithFields(logrus.Fields{
		"method":   "RequestFunding",
		"address":  base58.Encode(address),
		"lamports": lamports,
	})

	var sig solana.Signature
	_, err := retry.Retry(
		func() error {
			var err error
			sig, err = g.client.RequestAirdrop(address, lamports, g.commitment)
			return err
		},
		retry.Context(ctx),
		retry.Limit(g.airdropAttempts),
		retry.Backoff(backoff.BinaryExponential(g.airdropBaseDelay), airdropMaxBackoff),
	)
	if err != nil {
		log.WithError(err).Warn("airdrop request failed")
		return vault.NewFundingUnavailableError(err)
	}

	if err := g.Confirm(ctx, sig, g.commitment); err != nil {
		log.WithError(err).Warn("airdrop did not confirm")
		return vault.NewFundingUnavailableError(err)
	}

	return nil
}

// Submit implements vault.Gateway.Submit
func (g *gateway) Submit(ctx context.Context, txn solana.Transaction) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	sig, err := g.client.SubmitTransaction(txn, g.commitment)
	if err != nil {
		return sig, vault.NewSubmitRejectedError(err)
	}
	return sig, nil
}

// Confirm implements vault.Gateway.Confirm
//
// Polling stops early once ctx is done or its deadline passes.
func (g *gateway) Confirm(ctx context.Context, sig solana.Signature, commitment solana.Commitment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stop := []retry.Strategy{retry.Context(ctx)}
	if deadline, ok := ctx.Deadline(); ok {
		stop = append(stop, retry.Until(deadline))
	}

	status, err := g.client.GetSignatureStatus(sig, commitment, stop...)
	switch {
	case errors.Is(err, solana.ErrSignatureNotFound), errors.Is(err, solana.ErrConfirmationsNotReached):
		return vault.NewConfirmationTimeoutError(err)
	case err != nil:
		return errors.Wrap(err, "error getting signature status")
	case status == nil:
		return vault.NewConfirmationTimeoutError(solana.ErrSignatureNotFound)
	case status.ErrorResult != nil:
		return vault.NewSubmitRejectedError(status.ErrorResult)
	}

	return nil
}

// GetAccountInfo implements vault.Gateway.GetAccountInfo
func (g *gateway) GetAccountInfo(ctx context.Context, address ed25519.PublicKey, commitment solana.Commitment) (*solana.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := g.client.GetAccountInfo(address, commitment)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
