package crypto

import (
	"github.com/tendermint/tendermint-rpc/libs/bytes"
)

// AddressSize is the size of a pubkey address.
const AddressSize = TruncatedSize

// An address is a []byte, but hex-encoded even in JSON.
// []byte leaves us the option to change the address length.
// Use an alias so Unmarshal methods (with ptr receivers) are available too.
type Address = bytes.HexBytes

// AddressHash computes a truncated SHA-256 hash of bz for use as
// a validator address.
func AddressHash(bz []byte) Address {
	return Address(SumTruncated(bz))
}

// PubKey is a decoded validator or node public key.
type PubKey interface {
	Address() Address
	Bytes() []byte
	VerifySignature(msg []byte, sig []byte) bool
	Equals(PubKey) bool
	Type() string
}
