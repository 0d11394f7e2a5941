package vault

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAssembly indicates a structurally invalid instruction or role
	// combination.
	ErrAssembly = errors.New("invalid transaction assembly")

	ErrSubmitRejected      = errors.New("submit rejected")
	ErrConfirmationTimeout = errors.New("confirmation timeout")
	ErrFundingUnavailable  = errors.New("funding unavailable")

	// ErrVaultMismatch indicates a confirmed vault whose on-chain state does
	// not name the expected program and authority.
	ErrVaultMismatch = errors.New("vault state mismatch")

	// ErrInvalidArguments indicates the process was invoked with arguments
	// that select neither workflow.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// RemoteError is a failure reported by a Gateway. It matches its Kind with
// errors.Is and exposes the collaborator's reason verbatim.
type RemoteError struct {
	Kind   error
	Reason error
}

func (e *RemoteError) Error() string {
	if e.Reason == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *RemoteError) Is(target error) bool {
	return target == e.Kind
}

func (e *RemoteError) Unwrap() error {
	return e.Reason
}

func NewSubmitRejectedError(reason error) error {
	return &RemoteError{Kind: ErrSubmitRejected, Reason: reason}
}

func NewConfirmationTimeoutError(reason error) error {
	return &RemoteError{Kind: ErrConfirmationTimeout, Reason: reason}
}

func NewFundingUnavailableError(reason error) error {
	return &RemoteError{Kind: ErrFundingUnavailable, Reason: reason}
}
