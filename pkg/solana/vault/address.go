package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/vault-client/pkg/solana"
)

var (
	VaultPrefix = []byte("vault")
)

type GetVaultAddressArgs struct {
	Payer ed25519.PublicKey
}

// GetVaultAddress derives the vault owned by the program for the payer. The
// returned bump must be passed to the initialize instruction.
func GetVaultAddress(program ed25519.PublicKey, args *GetVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		program,
		VaultPrefix,
		args.Payer,
	)
}

// CreateVaultAddress recomputes the vault address for a known bump, as the
// program does when signing for the vault.
func CreateVaultAddress(program ed25519.PublicKey, payer ed25519.PublicKey, bump uint8) (ed25519.PublicKey, error) {
	return solana.CreateProgramAddress(
		program,
		VaultPrefix,
		payer,
		[]byte{bump},
	)
}
