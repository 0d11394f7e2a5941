package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-client/pkg/solana"
)

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := Transfer(keys[0], keys[1], 123456789)

	assert.EqualValues(t, ProgramKey[:], instruction.Program)
	assert.Equal(t, []byte{2, 0, 0, 0}, instruction.Data[0:4])
	assert.EqualValues(t, 123456789, binary.LittleEndian.Uint64(instruction.Data[4:]))

	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	var tx solana.Transaction
	require.NoError(t, tx.Unmarshal(solana.NewTransaction(keys[0], instruction).Marshal()))

	decompiled, err := DecompileTransfer(tx.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.Sender)
	assert.EqualValues(t, keys[1], decompiled.Receiver)
	assert.EqualValues(t, 123456789, decompiled.Lamports)
}

func TestDecompileNonTransfer(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := Transfer(keys[0], keys[1], 10)
	instruction.Accounts = instruction.Accounts[:1]
	_, err := DecompileTransfer(solana.NewTransaction(keys[0], instruction).Message, 0)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"), err)

	instruction = Transfer(keys[0], keys[1], 10)
	binary.LittleEndian.PutUint32(instruction.Data, commandAssign)
	_, err = DecompileTransfer(solana.NewTransaction(keys[0], instruction).Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Data = make([]byte, 3)
	_, err = DecompileTransfer(solana.NewTransaction(keys[0], instruction).Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction = Transfer(keys[0], keys[1], 10)
	instruction.Data = append(instruction.Data, 0)
	_, err = DecompileTransfer(solana.NewTransaction(keys[0], instruction).Message, 0)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid instruction data size"), err)

	instruction = Transfer(keys[0], keys[1], 10)
	instruction.Program = keys[2]
	_, err = DecompileTransfer(solana.NewTransaction(keys[0], instruction).Message, 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = DecompileTransfer(solana.NewTransaction(keys[0], instruction).Message, 1)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "instruction doesn't exist"))
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
