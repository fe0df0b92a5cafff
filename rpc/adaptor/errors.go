package adaptor

import (
	"errors"
	"fmt"

	tmmath "github.com/tendermint/tendermint-rpc/libs/math"
)

var (
	// ErrMissingField is wrapped by a DecodeError for a required field that is
	// absent or null.
	ErrMissingField = errors.New("missing required field")

	// ErrHashMismatch is wrapped by a DecodeError when the node reports a
	// transaction hash that differs from the one computed locally.
	ErrHashMismatch = errors.New("transaction hash mismatch")
)

// DecodeError reports a result that violates the shape the adaptor expects.
// Field is the dotted path of the offending field.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WrongTypeError is wrapped by a DecodeError for a field of the wrong JSON
// type.
type WrongTypeError struct {
	Want string
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("expected %s", e.Want)
}

// IntegerOverflowError reports a decimal string outside the int64 range.
type IntegerOverflowError struct {
	Value string
}

func (e *IntegerOverflowError) Error() string {
	return fmt.Sprintf("integer %s is out of range", e.Value)
}

func (e *IntegerOverflowError) Unwrap() error { return tmmath.ErrOverflowInt64 }

// UnknownKeyTypeError reports a public key or signature with an unrecognized
// type tag.
type UnknownKeyTypeError struct {
	Tag string
}

func (e *UnknownKeyTypeError) Error() string {
	return fmt.Sprintf("unknown key type %q", e.Tag)
}

// UnsupportedVersionError is returned when no adaptor serves the node's
// version.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported tendermint version %q", e.Version)
}

func decodeErr(field string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Field: field, Err: err}
}

func missing(field string) error {
	return &DecodeError{Field: field, Err: ErrMissingField}
}

func wrongType(field, want string) error {
	return &DecodeError{Field: field, Err: &WrongTypeError{Want: want}}
}
