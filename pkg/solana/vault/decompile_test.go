package vault

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-client/pkg/solana"
	"github.com/code-payments/vault-client/pkg/solana/system"
)

func TestDecompileInstruction(t *testing.T) {
	payer, vault := newKey(t), newKey(t)

	initialize := NewInitializeInstruction(
		PROGRAM_ID,
		&InitializeInstructionAccounts{Payer: payer, Vault: vault},
		&InitializeInstruction{Bump: 254, RentExemptLamports: 1113600},
	)
	deposit := system.Transfer(payer, vault, 10)
	withdraw := NewWithdrawInstruction(
		PROGRAM_ID,
		&WithdrawInstructionAccounts{Payer: payer, Vault: vault},
		&WithdrawInstruction{Lamports: 42},
	)

	var tx solana.Transaction
	require.NoError(t, tx.Unmarshal(solana.NewTransaction(payer, initialize, deposit, withdraw).Marshal()))

	decompiled, err := DecompileInstruction(tx.Message, 0, PROGRAM_ID)
	require.NoError(t, err)
	assert.Equal(t, InitializeInstruction{Bump: 254, RentExemptLamports: 1113600}, decompiled.Payload)
	assert.EqualValues(t, payer, decompiled.Payer())
	assert.EqualValues(t, vault, decompiled.Vault())
	assert.Equal(t, InitializeRoles(payer, vault, SYSTEM_PROGRAM_ID), decompiled.Accounts)

	_, err = DecompileInstruction(tx.Message, 1, PROGRAM_ID)
	assert.Equal(t, ErrInvalidProgram, err)

	decompiled, err = DecompileInstruction(tx.Message, 2, PROGRAM_ID)
	require.NoError(t, err)
	assert.Equal(t, WithdrawInstruction{Lamports: 42}, decompiled.Payload)

	_, err = DecompileInstruction(tx.Message, 3, PROGRAM_ID)
	assert.Error(t, err)
}

func TestDecompileInstruction_InvalidRoles(t *testing.T) {
	payer, vault := newKey(t), newKey(t)

	ix := NewWithdrawInstruction(
		PROGRAM_ID,
		&WithdrawInstructionAccounts{Payer: payer, Vault: vault},
		&WithdrawInstruction{Lamports: 42},
	)
	ix.Accounts[1].IsWritable = false

	_, err := DecompileInstruction(solana.NewTransaction(payer, ix).Message, 0, PROGRAM_ID)
	assert.True(t, errors.Is(err, ErrInvalidInstructionRole))

	ix = NewWithdrawInstruction(
		PROGRAM_ID,
		&WithdrawInstructionAccounts{Payer: payer, Vault: vault},
		&WithdrawInstruction{Lamports: 42},
	)
	ix.Accounts = ix.Accounts[:2]

	_, err = DecompileInstruction(solana.NewTransaction(payer, ix).Message, 0, PROGRAM_ID)
	assert.True(t, errors.Is(err, ErrInvalidInstructionRole))

	ix = NewWithdrawInstruction(
		PROGRAM_ID,
		&WithdrawInstructionAccounts{Payer: payer, Vault: vault},
		&WithdrawInstruction{Lamports: 42},
	)
	ix.Data = ix.Data[:4]

	_, err = DecompileInstruction(solana.NewTransaction(payer, ix).Message, 0, PROGRAM_ID)
	assert.True(t, errors.Is(err, ErrMalformedInstruction))
}

func TestDecompileInstruction_MalformedMessage(t *testing.T) {
	payer, vault := newKey(t), newKey(t)

	ix := NewWithdrawInstruction(
		PROGRAM_ID,
		&WithdrawInstructionAccounts{Payer: payer, Vault: vault},
		&WithdrawInstruction{Lamports: 42},
	)
	m := solana.NewTransaction(payer, ix).Message

	_, err := DecompileInstruction(m, -1, PROGRAM_ID)
	assert.Error(t, err)

	badProgram := m
	badProgram.Instructions = []solana.CompiledInstruction{{
		ProgramIndex: byte(len(m.Accounts)),
		Accounts:     m.Instructions[0].Accounts,
		Data:         m.Instructions[0].Data,
	}}
	_, err = DecompileInstruction(badProgram, 0, PROGRAM_ID)
	assert.Error(t, err)

	badAccount := m
	badAccount.Instructions = []solana.CompiledInstruction{{
		ProgramIndex: m.Instructions[0].ProgramIndex,
		Accounts:     []byte{0, 1, byte(len(m.Accounts))},
		Data:         m.Instructions[0].Data,
	}}
	_, err = DecompileInstruction(badAccount, 0, PROGRAM_ID)
	assert.True(t, errors.Is(err, ErrInvalidInstructionRole))
}
