package vault

import (
	"crypto/ed25519"
	"errors"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrMalformedInstruction   = errors.New("malformed instruction")
	ErrInvalidInstructionRole = errors.New("unexpected instruction account roles")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("6ds1BgdmEDDX74bNbpyw8Sm12vFasGL4wqKcbv1wuwDp")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
)
