package vault

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/vault-client/pkg/solana/binary"
)

const (
	VaultAccountSize = 32 // authority
)

// VaultAccount is the data stored in a vault account. The program records the
// payer that initialized the vault as its only authorized withdrawer.
type VaultAccount struct {
	Authority ed25519.PublicKey
}

func (obj *VaultAccount) Marshal() []byte {
	data := make([]byte, VaultAccountSize)

	var offset int
	binary.PutKey32(data[offset:], obj.Authority, &offset)

	return data
}

func (obj *VaultAccount) Unmarshal(data []byte) error {
	if len(data) < VaultAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	binary.GetKey32(data[offset:], &obj.Authority, &offset)

	return nil
}

func (obj *VaultAccount) String() string {
	return fmt.Sprintf(
		"VaultAccount{authority=%s}",
		base58.Encode(obj.Authority),
	)
}
