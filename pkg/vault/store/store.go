package store

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/vault-client/pkg/solana"
)

var (
	// ErrNoPersistedRecord indicates no complete record has been saved yet.
	ErrNoPersistedRecord = errors.New("no persisted record")

	ErrInvalidRecord = errors.New("invalid record")
)

// Record is the state carried from an initialize run to later withdraw runs.
type Record struct {
	// SigningKey is the payer that initialized the vault and is its only
	// authorized withdrawer.
	SigningKey ed25519.PrivateKey

	// Vault is the program derived address created for the payer.
	Vault ed25519.PublicKey
}

// Validate checks the key lengths, that the public half of the signing key
// matches the key derived from its seed, and that the vault is a program
// address rather than a point on the curve.
func (r *Record) Validate() error {
	if len(r.SigningKey) != ed25519.PrivateKeySize {
		return errors.Wrapf(ErrInvalidRecord, "signing key must be %d bytes, got %d", ed25519.PrivateKeySize, len(r.SigningKey))
	}
	if len(r.Vault) != ed25519.PublicKeySize {
		return errors.Wrapf(ErrInvalidRecord, "vault address must be %d bytes, got %d", ed25519.PublicKeySize, len(r.Vault))
	}
	if solana.IsOnCurve(r.Vault) {
		return errors.Wrap(ErrInvalidRecord, "vault address is not a program address")
	}

	derived := ed25519.NewKeyFromSeed(r.SigningKey.Seed())
	if !bytes.Equal(derived, r.SigningKey) {
		return errors.Wrap(ErrInvalidRecord, "signing key public half does not match its seed")
	}

	return nil
}

func (r *Record) Payer() ed25519.PublicKey {
	return r.SigningKey.Public().(ed25519.PublicKey)
}

func (r *Record) Clone() Record {
	return Record{
		SigningKey: append(ed25519.PrivateKey(nil), r.SigningKey...),
		Vault:      append(ed25519.PublicKey(nil), r.Vault...),
	}
}

type Store interface {
	// Save replaces the persisted record. A record is never observable in a
	// partially written state.
	Save(ctx context.Context, record *Record) error

	// Load returns the persisted record.
	//
	// Returns ErrNoPersistedRecord if no complete record exists.
	Load(ctx context.Context) (*Record, error)
}
