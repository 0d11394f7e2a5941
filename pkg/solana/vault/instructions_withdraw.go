package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/vault-client/pkg/solana"
	"github.com/code-payments/vault-client/pkg/solana/binary"
)

const (
	WithdrawInstructionArgsSize = 8 // lamports
)

// WithdrawInstruction moves Lamports from the vault back to the payer that
// initialized it.
type WithdrawInstruction struct {
	Lamports uint64
}

type WithdrawInstructionAccounts struct {
	Payer ed25519.PublicKey
	Vault ed25519.PublicKey
}

func (WithdrawInstruction) Type() InstructionType {
	return InstructionTypeWithdraw
}

func (WithdrawInstruction) size() int {
	return WithdrawInstructionArgsSize
}

func (ix WithdrawInstruction) marshal(dst []byte, offset *int) {
	binary.PutUint64(dst[*offset:], ix.Lamports, offset)
}

func (ix *WithdrawInstruction) unmarshal(src []byte, offset *int) {
	binary.GetUint64(src[*offset:], &ix.Lamports, offset)
}

// WithdrawRoles returns the accounts of a withdraw instruction in the order
// the program reads them.
func WithdrawRoles(payer, vault, systemProgram ed25519.PublicKey) []solana.AccountMeta {
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

func NewWithdrawInstruction(
	program ed25519.PublicKey,
	accounts *WithdrawInstructionAccounts,
	args *WithdrawInstruction,
) solana.Instruction {
	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: Encode(*args),

		// Instruction accounts
		Accounts: WithdrawRoles(accounts.Payer, accounts.Vault, SYSTEM_PROGRAM_ID),
	}
}
