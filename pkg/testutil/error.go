package testutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorIs verifies that the provided error wraps target somewhere in its
// chain.
func AssertErrorIs(t *testing.T, err error, target error) {
	require.Error(t, err)
	assert.True(t, errors.Is(err, target), "expected %v to wrap %v", err, target)
}
