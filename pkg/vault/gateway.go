package vault

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/vault-client/pkg/solana"
)

// Gateway is the network boundary the workflows drive. Every call blocks until
// the remote side resolves it. Retry policy, if any, belongs to the
// implementation.
type Gateway interface {
	// LatestBlockhash returns a recent blockhash to anchor a transaction to.
	LatestBlockhash(ctx context.Context) (solana.Blockhash, error)

	// MinimumRentExemptBalance returns the lamports an account of size bytes
	// must hold to be rent exempt.
	MinimumRentExemptBalance(ctx context.Context, size uint64) (uint64, error)

	// RequestFunding airdrops lamports to address and waits for it to land.
	//
	// Failures match ErrFundingUnavailable.
	RequestFunding(ctx context.Context, address ed25519.PublicKey, lamports uint64) error

	// Submit sends a signed transaction.
	//
	// Rejections match ErrSubmitRejected.
	Submit(ctx context.Context, txn solana.Transaction) (solana.Signature, error)

	// Confirm waits for the transaction to reach commitment.
	//
	// Transactions that never reach it match ErrConfirmationTimeout, and
	// transactions that failed on chain match ErrSubmitRejected.
	Confirm(ctx context.Context, sig solana.Signature, commitment solana.Commitment) error

	// GetAccountInfo returns the account at address as of commitment.
	//
	// Returns solana.ErrNoAccountInfo if the account does not exist.
	GetAccountInfo(ctx context.Context, address ed25519.PublicKey, commitment solana.Commitment) (*solana.AccountInfo, error)
}
