package tests

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-client/pkg/testutil"
	"github.com/code-payments/vault-client/pkg/vault/store"
)

func RunTests(t *testing.T, s store.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s store.Store){
		testRoundTrip,
		testOverwrite,
		testInvalidRecord,
		testIsolation,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()

	actual, err := s.Load(ctx)
	assert.Equal(t, store.ErrNoPersistedRecord, err)
	assert.Nil(t, actual)

	expected := newRecord(t)
	require.NoError(t, s.Save(ctx, expected))

	actual, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected.SigningKey, actual.SigningKey)
	assert.Equal(t, expected.Vault, actual.Vault)
	assert.Len(t, actual.SigningKey, ed25519.PrivateKeySize)
	assert.Len(t, actual.Vault, ed25519.PublicKeySize)
	require.NoError(t, actual.Validate())
}

func testOverwrite(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := newRecord(t)
	require.NoError(t, s.Save(ctx, first))

	second := newRecord(t)
	require.NoError(t, s.Save(ctx, second))

	actual, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.SigningKey, actual.SigningKey)
	assert.Equal(t, second.Vault, actual.Vault)
}

func testInvalidRecord(t *testing.T, s store.Store) {
	ctx := context.Background()

	record := newRecord(t)
	record.Vault = record.Vault[:16]

	err := s.Save(ctx, record)
	assert.True(t, errors.Is(err, store.ErrInvalidRecord))

	onCurve := newRecord(t)
	onCurve.Vault = onCurve.Payer()

	err = s.Save(ctx, onCurve)
	assert.True(t, errors.Is(err, store.ErrInvalidRecord))

	_, err = s.Load(ctx)
	assert.Equal(t, store.ErrNoPersistedRecord, err)
}

func testIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()

	expected := newRecord(t)
	saved := expected.Clone()
	require.NoError(t, s.Save(ctx, &saved))

	saved.Vault[0] ^= 0xFF

	actual, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected.Vault, actual.Vault)

	actual.SigningKey[0] ^= 0xFF

	actual, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected.SigningKey, actual.SigningKey)
}

func newRecord(t *testing.T) *store.Record {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	return &store.Record{
		SigningKey: priv,
		Vault:      testutil.GenerateProgramAddress(t),
	}
}
