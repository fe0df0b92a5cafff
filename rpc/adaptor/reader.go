package adaptor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	tmbytes "github.com/tendermint/tendermint-rpc/libs/bytes"
	tmmath "github.com/tendermint/tendermint-rpc/libs/math"
)

// object is a JSON object read field by field. Required accessors fail with a
// DecodeError naming the field when it is absent, null or of the wrong type;
// the opt variants return the zero value for absent or null fields only.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func decodeObject(path string, raw json.RawMessage) (object, error) {
	if isNull(raw) {
		return object{}, missing(path)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return object{}, wrongType(path, "object")
	}
	return object{path: path, fields: fields}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s.%d", path, i)
}

func (o object) field(key string) string { return join(o.path, key) }

// has reports whether key is present and not null.
func (o object) has(key string) bool {
	raw, ok := o.fields[key]
	return ok && !isNull(raw)
}

func (o object) get(key string) (json.RawMessage, error) {
	if !o.has(key) {
		return nil, missing(o.field(key))
	}
	return o.fields[key], nil
}

func (o object) object(key string) (object, error) {
	raw, err := o.get(key)
	if err != nil {
		return object{}, err
	}
	return decodeObject(o.field(key), raw)
}

func (o object) optObject(key string) (object, bool, error) {
	if !o.has(key) {
		return object{}, false, nil
	}
	obj, err := o.object(key)
	return obj, err == nil, err
}

func (o object) str(key string) (string, error) {
	raw, err := o.get(key)
	if err != nil {
		return "", err
	}
	return decodeString(o.field(key), raw)
}

func (o object) optStr(key string) (string, error) {
	if !o.has(key) {
		return "", nil
	}
	return o.str(key)
}

func (o object) bool(key string) (bool, error) {
	raw, err := o.get(key)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, wrongType(o.field(key), "boolean")
	}
	return b, nil
}

func (o object) optBool(key string) (bool, error) {
	if !o.has(key) {
		return false, nil
	}
	return o.bool(key)
}

// int64 reads an integer transmitted as a decimal string.
func (o object) int64(key string) (int64, error) {
	s, err := o.str(key)
	if err != nil {
		return 0, err
	}
	return parseDecimal(o.field(key), s)
}

func (o object) optInt64(key string) (int64, error) {
	if !o.has(key) {
		return 0, nil
	}
	return o.int64(key)
}

// uint64 reads a non-negative integer transmitted as a decimal string.
func (o object) uint64(key string) (uint64, error) {
	n, err := o.int64(key)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, decodeErr(o.field(key), fmt.Errorf("negative value %d", n))
	}
	return uint64(n), nil
}

func (o object) optUint64(key string) (uint64, error) {
	if !o.has(key) {
		return 0, nil
	}
	return o.uint64(key)
}

// uint32 reads an integer transmitted as a JSON number.
func (o object) uint32(key string) (uint32, error) {
	raw, err := o.get(key)
	if err != nil {
		return 0, err
	}
	return decodeUint32(o.field(key), raw)
}

func (o object) optUint32(key string) (uint32, error) {
	if !o.has(key) {
		return 0, nil
	}
	return o.uint32(key)
}

// integer reads an integer sent either as a JSON number or as a decimal
// string. Only used for fields whose wire type changed between releases of
// the same dialect.
func (o object) integer(key string) (int64, error) {
	raw, err := o.get(key)
	if err != nil {
		return 0, err
	}
	field := o.field(key)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		s, err := decodeString(field, raw)
		if err != nil {
			return 0, err
		}
		return parseDecimal(field, s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, wrongType(field, "integer")
	}
	return parseDecimal(field, n.String())
}

func (o object) hex(key string) (tmbytes.HexBytes, error) {
	s, err := o.str(key)
	if err != nil {
		return nil, err
	}
	bz, err := tmbytes.FromHex(s)
	if err != nil {
		return nil, decodeErr(o.field(key), err)
	}
	return bz, nil
}

func (o object) optHex(key string) (tmbytes.HexBytes, error) {
	if !o.has(key) {
		return nil, nil
	}
	return o.hex(key)
}

func (o object) base64(key string) ([]byte, error) {
	raw, err := o.get(key)
	if err != nil {
		return nil, err
	}
	return decodeBase64(o.field(key), raw)
}

func (o object) optBase64(key string) ([]byte, error) {
	if !o.has(key) {
		return nil, nil
	}
	return o.base64(key)
}

func (o object) time(key string) (time.Time, error) {
	s, err := o.str(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, decodeErr(o.field(key), err)
	}
	return t, nil
}

func (o object) list(key string) ([]json.RawMessage, error) {
	raw, err := o.get(key)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, wrongType(o.field(key), "array")
	}
	return items, nil
}

func (o object) optList(key string) ([]json.RawMessage, error) {
	if !o.has(key) {
		return nil, nil
	}
	return o.list(key)
}

func (o object) optStrList(key string) ([]string, error) {
	items, err := o.optList(key)
	if err != nil {
		return nil, err
	}
	var out []string
	for i, item := range items {
		s, err := decodeString(index(o.field(key), i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// raw returns the field as is, or nil when absent or null.
func (o object) raw(key string) json.RawMessage {
	if !o.has(key) {
		return nil
	}
	return o.fields[key]
}

func decodeString(field string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", missing(field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", wrongType(field, "string")
	}
	return s, nil
}

func decodeBase64(field string, raw json.RawMessage) ([]byte, error) {
	s, err := decodeString(field, raw)
	if err != nil {
		return nil, err
	}
	bz, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, decodeErr(field, err)
	}
	return bz, nil
}

func decodeUint32(field string, raw json.RawMessage) (uint32, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '"' {
		return 0, wrongType(field, "number")
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return 0, wrongType(field, "number")
	}
	v, err := strconv.ParseUint(n.String(), 10, 32)
	if err != nil {
		return 0, decodeErr(field, err)
	}
	return uint32(v), nil
}

// parseDecimal parses an integer transmitted as a decimal string, failing
// with an IntegerOverflowError outside the int64 range.
func parseDecimal(field, s string) (int64, error) {
	n, err := tmmath.ParseInt64(s)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, tmmath.ErrOverflowInt64):
		return 0, decodeErr(field, &IntegerOverflowError{Value: s})
	default:
		return 0, decodeErr(field, err)
	}
}
