package crypto

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // legacy tx hash of 0.20-era nodes
)

const (
	// HashSize is the size in bytes of a full SHA-256 transaction hash.
	HashSize = sha256.Size

	// TruncatedSize is the size in bytes of a truncated SHA-256 hash.
	TruncatedSize = 20
)

// Sha256 returns the SHA-256 digest of bz.
func Sha256(bz []byte) []byte {
	h := sha256.Sum256(bz)
	return h[:]
}

// SumTruncated returns the first 20 bytes of SHA-256 of bz.
func SumTruncated(bz []byte) []byte {
	h := sha256.Sum256(bz)
	return h[:TruncatedSize]
}

// Ripemd160LengthPrefixed returns RIPEMD-160 over bz prefixed with its
// uvarint-encoded length, which is how amino serialized a byte slice before
// hashing it.
func Ripemd160LengthPrefixed(bz []byte) []byte {
	var prefix [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(prefix[:], uint64(len(bz)))

	hasher := ripemd160.New()
	hasher.Write(prefix[:n]) //nolint:errcheck // never errors
	hasher.Write(bz)         //nolint:errcheck // never errors
	return hasher.Sum(nil)
}
