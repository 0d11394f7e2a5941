package vault

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/vault-client/pkg/solana"
)

func TestRemoteError(t *testing.T) {
	reason := solana.NewInstructionError(0, solana.InstructionErrorInsufficientFunds)

	err := errors.Wrap(NewSubmitRejectedError(reason), "error submitting withdraw")
	assert.True(t, errors.Is(err, ErrSubmitRejected))
	assert.False(t, errors.Is(err, ErrConfirmationTimeout))
	assert.Equal(t, "error submitting withdraw: submit rejected: Error processing Instruction 0: InsufficientFunds", err.Error())

	var txErr *solana.TransactionError
	assert.True(t, errors.As(err, &txErr))
	assert.Equal(t, solana.InstructionErrorInsufficientFunds, txErr.InstructionError().ErrorKey())

	assert.True(t, errors.Is(NewConfirmationTimeoutError(solana.ErrSignatureNotFound), ErrConfirmationTimeout))
	assert.True(t, errors.Is(NewConfirmationTimeoutError(solana.ErrSignatureNotFound), solana.ErrSignatureNotFound))
	assert.True(t, errors.Is(NewFundingUnavailableError(nil), ErrFundingUnavailable))
	assert.Equal(t, "funding unavailable", NewFundingUnavailableError(nil).Error())
}
