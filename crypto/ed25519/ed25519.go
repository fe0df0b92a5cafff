package ed25519

import (
	"bytes"
	"fmt"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/tendermint/tendermint-rpc/crypto"
)

const (
	// PubKeyName is the amino JSON type tag of an Ed25519 public key.
	PubKeyName = "tendermint/PubKeyEd25519"
	// SignatureName is the amino JSON type tag of an Ed25519 signature, only
	// used by 0.20-era nodes.
	SignatureName = "tendermint/SignatureEd25519"
	// KeyType is the ABCI type tag of an Ed25519 validator update key.
	KeyType = "ed25519"

	// PubKeySize is the number of bytes in an Ed25519 public key.
	PubKeySize = ed25519.PublicKeySize
	// SignatureSize is the size of an Edwards25519 signature.
	SignatureSize = ed25519.SignatureSize
)

var _ crypto.PubKey = PubKey{}

// PubKey implements crypto.PubKey for the Ed25519 signature scheme.
type PubKey []byte

// NewPubKey validates the key length and copies bz.
func NewPubKey(bz []byte) (PubKey, error) {
	if len(bz) != PubKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key size: got %d, want %d", len(bz), PubKeySize)
	}
	pk := make(PubKey, PubKeySize)
	copy(pk, bz)
	return pk, nil
}

// Address is the SHA256-20 of the raw pubkey bytes.
func (pubKey PubKey) Address() crypto.Address {
	if len(pubKey) != PubKeySize {
		panic("pubkey is incorrect size")
	}
	return crypto.AddressHash(pubKey)
}

// Bytes returns the PubKey byte format.
func (pubKey PubKey) Bytes() []byte {
	return []byte(pubKey)
}

func (pubKey PubKey) VerifySignature(msg []byte, sig []byte) bool {
	// make sure we use the same algorithm to sign
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig)
}

func (pubKey PubKey) String() string {
	return fmt.Sprintf("PubKeyEd25519{%X}", []byte(pubKey))
}

func (pubKey PubKey) Type() string {
	return KeyType
}

func (pubKey PubKey) Equals(other crypto.PubKey) bool {
	if otherEd, ok := other.(PubKey); ok {
		return bytes.Equal(pubKey[:], otherEd[:])
	}

	return false
}
