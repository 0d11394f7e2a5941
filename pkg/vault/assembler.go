package vault

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/vault-client/pkg/solana"
)

// Assembler composes instructions into unsigned transactions.
type Assembler struct {
	program ed25519.PublicKey
}

// NewAssembler returns an Assembler that applies the vault program's signer
// requirements to instructions targeting program.
func NewAssembler(program ed25519.PublicKey) *Assembler {
	return &Assembler{
		program: program,
	}
}

// Assemble builds an unsigned transaction paid for by payer and anchored to
// blockhash. Instructions execute in the order provided.
//
// ErrAssembly is returned when there are no instructions, the payer is not a
// valid address, an instruction is missing a program, a vault program
// instruction does not designate exactly one signer, or the result exceeds the
// maximum transaction size.
func (a *Assembler) Assemble(payer ed25519.PublicKey, blockhash solana.Blockhash, instructions ...solana.Instruction) (solana.Transaction, error) {
	if len(instructions) == 0 {
		return solana.Transaction{}, errors.Wrap(ErrAssembly, "no instructions")
	}
	if len(payer) != ed25519.PublicKeySize {
		return solana.Transaction{}, errors.Wrapf(ErrAssembly, "invalid fee payer length: %d", len(payer))
	}
	if blockhash == (solana.Blockhash{}) {
		return solana.Transaction{}, errors.Wrap(ErrAssembly, "missing recent blockhash")
	}

	for i, ix := range instructions {
		if len(ix.Program) != ed25519.PublicKeySize {
			return solana.Transaction{}, errors.Wrapf(ErrAssembly, "instruction %d has an invalid program", i)
		}

		for j, account := range ix.Accounts {
			if len(account.PublicKey) != ed25519.PublicKeySize {
				return solana.Transaction{}, errors.Wrapf(ErrAssembly, "instruction %d account %d has an invalid address", i, j)
			}
		}

		if !bytes.Equal(ix.Program, a.program) {
			continue
		}

		if signers := ix.Signers(); len(signers) != 1 {
			return solana.Transaction{}, errors.Wrapf(ErrAssembly, "vault instruction %d requires exactly one signer, got %d", i, len(signers))
		}
	}

	txn := solana.NewTransaction(payer, instructions...)
	txn.SetBlockhash(blockhash)

	if size := len(txn.Marshal()); size > solana.MaxTransactionSize {
		return solana.Transaction{}, errors.Wrapf(ErrAssembly, "transaction size %d exceeds %d", size, solana.MaxTransactionSize)
	}

	return txn, nil
}
