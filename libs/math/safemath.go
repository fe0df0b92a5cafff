package math

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrOverflowInt32 = errors.New("int32 overflow")
var ErrOverflowInt64 = errors.New("int64 overflow")

// ErrSyntax is returned when a decimal string is not a plain base-10 integer.
var ErrSyntax = errors.New("invalid decimal integer")

// SafeAdd adds two int64 integers. The second return value reports whether
// the operation overflowed.
func SafeAdd(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return -1, true
	} else if b < 0 && a < math.MinInt64-b {
		return -1, true
	}
	return a + b, false
}

// ParseInt64 parses a base-10 integer as transmitted by the RPC wire format
// ("1234", "-1"). A leading '+', whitespace, or any other base prefix is a
// syntax error; values outside the int64 range return ErrOverflowInt64.
func ParseInt64(s string) (int64, error) {
	if s == "" || s[0] == '+' {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrOverflowInt64, s)
		}
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return n, nil
}

// SafeConvertInt32 takes an int64 and checks if it overflows.
func SafeConvertInt32(a int64) (int32, error) {
	if a > math.MaxInt32 || a < math.MinInt32 {
		return 0, ErrOverflowInt32
	}
	return int32(a), nil
}
