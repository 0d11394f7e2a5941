package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/vault-client/pkg/solana"
	"github.com/code-payments/vault-client/pkg/solana/binary"
)

const (
	InitializeInstructionArgsSize = (1 + // bump
		8) // rent_exempt_lamports
)

// InitializeInstruction creates the vault account, funded with
// RentExemptLamports and owned by the program, at the address derived with
// Bump.
type InitializeInstruction struct {
	Bump               uint8
	RentExemptLamports uint64
}

type InitializeInstructionAccounts struct {
	Payer ed25519.PublicKey
	Vault ed25519.PublicKey
}

func (InitializeInstruction) Type() InstructionType {
	return InstructionTypeInitialize
}

func (InitializeInstruction) size() int {
	return InitializeInstructionArgsSize
}

func (ix InitializeInstruction) marshal(dst []byte, offset *int) {
	binary.PutUint8(dst[*offset:], ix.Bump, offset)
	binary.PutUint64(dst[*offset:], ix.RentExemptLamports, offset)
}

func (ix *InitializeInstruction) unmarshal(src []byte, offset *int) {
	binary.GetUint8(src[*offset:], &ix.Bump, offset)
	binary.GetUint64(src[*offset:], &ix.RentExemptLamports, offset)
}

// InitializeRoles returns the accounts of an initialize instruction in the
// order the program reads them.
func InitializeRoles(payer, vault, systemProgram ed25519.PublicKey) []solana.AccountMeta {
	return []solana.AccountMeta{
		{
			PublicKey:  payer,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  vault,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  systemProgram,
			IsWritable: false,
			IsSigner:   false,
		},
	}
}

func NewInitializeInstruction(
	program ed25519.PublicKey,
	accounts *InitializeInstructionAccounts,
	args *InitializeInstruction,
) solana.Instruction {
	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: Encode(*args),

		// Instruction accounts
		Accounts: InitializeRoles(accounts.Payer, accounts.Vault, SYSTEM_PROGRAM_ID),
	}
}
