package vault

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/vault-client/pkg/solana"
)

// DecompiledInstruction is a vault program instruction recovered from a
// compiled message, with the account roles the message grants.
type DecompiledInstruction struct {
	Payload  Instruction
	Accounts []solana.AccountMeta
}

func (d *DecompiledInstruction) Payer() ed25519.PublicKey {
	return d.Accounts[0].PublicKey
}

func (d *DecompiledInstruction) Vault() ed25519.PublicKey {
	return d.Accounts[1].PublicKey
}

// DecompileInstruction decodes the instruction at index, which must target
// program. The payer and vault roles are checked against the message header.
func DecompileInstruction(m solana.Message, index int, program ed25519.PublicKey) (*DecompiledInstruction, error) {
	if index < 0 || index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if int(i.ProgramIndex) >= len(m.Accounts) {
		return nil, errors.Errorf("program index %d out of range", i.ProgramIndex)
	}
	if !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return nil, ErrInvalidProgram
	}

	payload, err := Decode(i.Data)
	if err != nil {
		return nil, err
	}

	if len(i.Accounts) != 3 {
		return nil, errors.Wrapf(ErrInvalidInstructionRole, "invalid number of accounts: %d", len(i.Accounts))
	}

	accounts := make([]solana.AccountMeta, len(i.Accounts))
	for j, accountIndex := range i.Accounts {
		if int(accountIndex) >= len(m.Accounts) {
			return nil, errors.Wrapf(ErrInvalidInstructionRole, "account index %d out of range", accountIndex)
		}

		accounts[j] = solana.AccountMeta{
			PublicKey:  m.Accounts[accountIndex],
			IsSigner:   m.IsSigner(int(accountIndex)),
			IsWritable: m.IsWritable(int(accountIndex)),
		}
	}

	if !accounts[0].IsSigner || !accounts[0].IsWritable {
		return nil, errors.Wrap(ErrInvalidInstructionRole, "payer must be a writable signer")
	}
	if !accounts[1].IsWritable {
		return nil, errors.Wrap(ErrInvalidInstructionRole, "vault must be writable")
	}
	if !bytes.Equal(accounts[2].PublicKey, SYSTEM_PROGRAM_ID) {
		return nil, errors.Wrap(ErrInvalidInstructionRole, "system program expected at index 2")
	}

	return &DecompiledInstruction{
		Payload:  payload,
		Accounts: accounts,
	}, nil
}
