package vault

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-client/pkg/testutil"
)

func TestAddressLabels(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	labels := NewAddressLabels()
	labels.Add(LabelPayer, keys[0])
	labels.Add(LabelVault, keys[1])

	address, ok := labels.Resolve(LabelPayer)
	require.True(t, ok)
	assert.Equal(t, keys[0], address)

	label, ok := labels.Label(keys[1])
	require.True(t, ok)
	assert.Equal(t, LabelVault, label)

	_, ok = labels.Label(keys[2])
	assert.False(t, ok)
	_, ok = labels.Resolve("unknown")
	assert.False(t, ok)

	assert.Equal(t, "payer ("+base58.Encode(keys[0])+")", labels.Describe(keys[0]))
	assert.Equal(t, base58.Encode(keys[2]), labels.Describe(keys[2]))

	assert.Equal(t, []string{LabelPayer, LabelVault}, labels.Labels())
	assert.Equal(t, base58.Encode(keys[1]), labels.Fields()[LabelVault])

	// Relabeling drops the previous address
	labels.Add(LabelVault, keys[2])
	_, ok = labels.Label(keys[1])
	assert.False(t, ok)
	label, ok = labels.Label(keys[2])
	require.True(t, ok)
	assert.Equal(t, LabelVault, label)
}

func TestAddressLabels_Independent(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 1)

	first := NewAddressLabels()
	second := NewAddressLabels()

	first.Add(LabelPayer, keys[0])

	_, ok := second.Resolve(LabelPayer)
	assert.False(t, ok)
}
