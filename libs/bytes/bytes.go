package bytes

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// HexBytes is a wrapper around []byte that encodes data as uppercase
// hexadecimal strings for use in JSON. Hashes and addresses returned by the
// node are always hex on the wire.
type HexBytes []byte

// MarshalText encodes a HexBytes value as hexadecimal digits.
// This method is used by json.Marshal.
func (bz HexBytes) MarshalText() ([]byte, error) {
	enc := hex.EncodeToString([]byte(bz))
	return []byte(strings.ToUpper(enc)), nil
}

// UnmarshalText handles decoding of HexBytes from JSON strings.
// This method is used by json.Unmarshal.
func (bz *HexBytes) UnmarshalText(data []byte) error {
	dec, err := FromHex(string(data))
	if err != nil {
		return err
	}
	*bz = dec
	return nil
}

// FromHex decodes a hex string in either case. An optional "0x" prefix is
// accepted because the URI transport of older nodes echoes it.
func FromHex(s string) (HexBytes, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return HexBytes{}, nil
	}
	dec, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return HexBytes(dec), nil
}

// Bytes returns the underlying byte slice.
func (bz HexBytes) Bytes() []byte {
	return bz
}

func (bz HexBytes) String() string {
	return strings.ToUpper(hex.EncodeToString(bz))
}

// Format writes either address of 0th element in a slice in base 16 notation,
// with leading 0x (%p), or casts HexBytes to bytes and writes as hexadecimal
// string to s.
func (bz HexBytes) Format(s fmt.State, verb rune) {
	switch verb {
	case 'p':
		s.Write([]byte(fmt.Sprintf("%p", bz))) //nolint:errcheck
	default:
		s.Write([]byte(fmt.Sprintf("%X", []byte(bz)))) //nolint:errcheck
	}
}

func (bz HexBytes) Equal(b []byte) bool {
	return bytes.Equal(bz, b)
}
