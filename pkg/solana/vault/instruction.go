package vault

import (
	"github.com/pkg/errors"

	"github.com/code-payments/vault-client/pkg/solana/binary"
)

type InstructionType uint8

const (
	InstructionTypeInitialize InstructionType = iota
	InstructionTypeWithdraw
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitialize:
		return "initialize"
	case InstructionTypeWithdraw:
		return "withdraw"
	}
	return "unknown"
}

// Instruction is the payload of a vault program instruction. It is
// implemented only by InitializeInstruction and WithdrawInstruction.
type Instruction interface {
	Type() InstructionType

	size() int
	marshal(dst []byte, offset *int)
}

// Encode serializes the instruction as its one byte discriminant followed by
// the fixed width little endian arguments.
func Encode(ix Instruction) []byte {
	data := make([]byte, 1+ix.size())

	var offset int
	putInstructionType(data, ix.Type(), &offset)
	ix.marshal(data, &offset)

	return data
}

// Decode parses an encoded instruction. Unknown discriminants and buffers that
// do not exactly match the variant's fixed length fail with
// ErrMalformedInstruction.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrMalformedInstruction, "empty instruction data")
	}

	var ix Instruction
	switch InstructionType(data[0]) {
	case InstructionTypeInitialize:
		ix = &InitializeInstruction{}
	case InstructionTypeWithdraw:
		ix = &WithdrawInstruction{}
	default:
		return nil, errors.Wrapf(ErrMalformedInstruction, "unknown discriminant %d", data[0])
	}

	if len(data) != 1+ix.size() {
		return nil, errors.Wrapf(ErrMalformedInstruction, "%s instruction must be %d bytes, got %d", ix.Type(), 1+ix.size(), len(data))
	}

	offset := 1
	switch v := ix.(type) {
	case *InitializeInstruction:
		v.unmarshal(data, &offset)
		return *v, nil
	case *WithdrawInstruction:
		v.unmarshal(data, &offset)
		return *v, nil
	}

	return nil, errors.Wrapf(ErrMalformedInstruction, "unhandled instruction type %s", ix.Type())
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	binary.PutUint8(dst[*offset:], uint8(v), offset)
}
