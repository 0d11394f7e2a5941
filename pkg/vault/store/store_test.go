package store

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-client/pkg/testutil"
)

func TestRecord_Validate(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	vault := testutil.GenerateProgramAddress(t)

	record := &Record{SigningKey: priv, Vault: vault}
	require.NoError(t, record.Validate())
	assert.Equal(t, pub, record.Payer())

	for _, invalid := range []*Record{
		{SigningKey: priv[:32], Vault: vault},
		{SigningKey: priv, Vault: vault[:31]},
		{SigningKey: nil, Vault: vault},
		{SigningKey: priv, Vault: nil},
		{SigningKey: priv, Vault: pub},
	} {
		assert.True(t, errors.Is(invalid.Validate(), ErrInvalidRecord))
	}

	mismatched := append(ed25519.PrivateKey(nil), priv...)
	mismatched[63] ^= 0xFF
	assert.True(t, errors.Is((&Record{SigningKey: mismatched, Vault: vault}).Validate(), ErrInvalidRecord))
}

func TestRecord_Clone(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	record := &Record{SigningKey: priv, Vault: testutil.GenerateProgramAddress(t)}

	cloned := record.Clone()
	assert.Equal(t, *record, cloned)

	cloned.Vault[0] ^= 0xFF
	assert.NotEqual(t, record.Vault, cloned.Vault)
}
