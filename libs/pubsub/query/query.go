// Package query builds, parses and normalizes the filter expressions accepted
// by the node's subscribe and tx_search methods.
//
// A query is a conjunction of conditions joined by AND:
//
//	tm.event='Tx' AND transfer.recipient='abc' AND tx.height>5
//
// Values are either single-quoted strings or unquoted numbers. The normalized
// form of a query, as returned by String, is used to tell whether two
// subscriptions ask for the same events.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Reserved keys.
const (
	// EventTypeKey selects events by type, e.g. tm.event='NewBlock'.
	EventTypeKey = "tm.event"
	// TxHashKey is the hash of a transaction.
	TxHashKey = "tx.hash"
	// TxHeightKey is the height of the block that included a transaction.
	TxHeightKey = "tx.height"
)

// Operator compares the value of an event attribute with the one of a
// condition.
type Operator string

const (
	OpEqual        Operator = "="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpContains     Operator = "CONTAINS"
)

// Condition is a single clause of a query.
type Condition struct {
	Key   string
	Op    Operator
	Value string
	// Number is set for values written without quotes.
	Number bool
}

func (c Condition) String() string {
	value := c.Value
	if !c.Number {
		value = "'" + value + "'"
	}
	if c.Op == OpContains {
		return c.Key + " " + string(c.Op) + " " + value
	}
	return c.Key + string(c.Op) + value
}

// Query is a conjunction of conditions. The zero value matches nothing and
// is not accepted by the node; add at least one condition.
type Query struct {
	conds []Condition
}

// New returns an empty query to be filled with the builder methods.
func New() *Query {
	return &Query{}
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Query {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}

// EventType adds tm.event='typ'.
func (q *Query) EventType(typ string) *Query {
	return q.Equal(EventTypeKey, typ)
}

// Equal adds key='value'.
func (q *Query) Equal(key, value string) *Query {
	return q.add(Condition{Key: key, Op: OpEqual, Value: value})
}

// Contains adds key CONTAINS 'value'.
func (q *Query) Contains(key, value string) *Query {
	return q.add(Condition{Key: key, Op: OpContains, Value: value})
}

// HeightEq adds tx.height=h.
func (q *Query) HeightEq(h int64) *Query {
	return q.number(TxHeightKey, OpEqual, h)
}

// HeightGt adds tx.height>h.
func (q *Query) HeightGt(h int64) *Query {
	return q.number(TxHeightKey, OpGreater, h)
}

// HeightLt adds tx.height<h.
func (q *Query) HeightLt(h int64) *Query {
	return q.number(TxHeightKey, OpLess, h)
}

func (q *Query) number(key string, op Operator, n int64) *Query {
	return q.add(Condition{Key: key, Op: op, Value: strconv.FormatInt(n, 10), Number: true})
}

func (q *Query) add(c Condition) *Query {
	q.conds = append(q.conds, c)
	return q
}

// Conditions returns the conditions of q in normalized order, without
// duplicates.
func (q *Query) Conditions() []Condition {
	seen := make(map[string]bool, len(q.conds))
	out := make([]Condition, 0, len(q.conds))
	for _, c := range q.conds {
		s := c.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].Key == EventTypeKey, out[j].Key == EventTypeKey
		if ei != ej {
			return ei
		}
		return out[i].String() < out[j].String()
	})
	return out
}

// String returns the normalized form of q: event type conditions first, the
// others in lexicographic order, duplicates dropped.
func (q *Query) String() string {
	conds := q.Conditions()
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// Normalize parses s and returns its normalized form.
func Normalize(s string) (string, error) {
	q, err := Parse(s)
	if err != nil {
		return "", err
	}
	return q.String(), nil
}

// Parse parses a query string.
func Parse(s string) (*Query, error) {
	clauses, err := splitClauses(s)
	if err != nil {
		return nil, err
	}
	q := New()
	for _, clause := range clauses {
		c, err := parseCondition(clause)
		if err != nil {
			return nil, fmt.Errorf("parse query %q: %w", s, err)
		}
		q.add(c)
	}
	return q, nil
}

// splitClauses splits s on the AND keyword outside of quoted values.
func splitClauses(s string) ([]string, error) {
	var (
		clauses []string
		start   int
		quoted  bool
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\'':
			quoted = !quoted
		case !quoted && isSpace(s[i]) && strings.HasPrefix(s[i+1:], "AND") &&
			i+4 < len(s) && isSpace(s[i+4]):
			clauses = append(clauses, s[start:i])
			start = i + 4
			i += 3
		}
	}
	if quoted {
		return nil, fmt.Errorf("parse query %q: unterminated string", s)
	}
	clauses = append(clauses, s[start:])
	for i, clause := range clauses {
		clauses[i] = strings.TrimSpace(clause)
		if clauses[i] == "" {
			return nil, fmt.Errorf("parse query %q: empty condition", s)
		}
	}
	return clauses, nil
}

func parseCondition(s string) (Condition, error) {
	var c Condition

	end := 0
	for end < len(s) && isKeyChar(s[end]) {
		end++
	}
	if end == 0 {
		return c, fmt.Errorf("condition %q: missing key", s)
	}
	c.Key = s[:end]
	rest := strings.TrimLeft(s[end:], " \t\r\n")

	switch {
	case strings.HasPrefix(rest, "<="):
		c.Op = OpLessEqual
	case strings.HasPrefix(rest, ">="):
		c.Op = OpGreaterEqual
	case strings.HasPrefix(rest, "="):
		c.Op = OpEqual
	case strings.HasPrefix(rest, "<"):
		c.Op = OpLess
	case strings.HasPrefix(rest, ">"):
		c.Op = OpGreater
	case strings.HasPrefix(rest, string(OpContains)+" "):
		c.Op = OpContains
	default:
		return c, fmt.Errorf("condition %q: missing operator", s)
	}
	rest = strings.TrimSpace(rest[len(c.Op):])

	switch {
	case len(rest) >= 2 && rest[0] == '\'' && rest[len(rest)-1] == '\'':
		c.Value = rest[1 : len(rest)-1]
		if strings.ContainsAny(c.Value, `'"`) {
			return c, fmt.Errorf("condition %q: quote inside value", s)
		}
	case isNumber(rest):
		c.Value, c.Number = rest, true
	default:
		return c, fmt.Errorf("condition %q: value must be a quoted string or a number", s)
	}

	if c.Number && c.Op == OpContains {
		return c, fmt.Errorf("condition %q: CONTAINS takes a string", s)
	}
	if !c.Number && c.Op != OpEqual && c.Op != OpContains {
		return c, fmt.Errorf("condition %q: %s takes a number", s, c.Op)
	}
	return c, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isKeyChar(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\\', '(', ')', '"', '\'', '=', '>', '<':
		return false
	}
	return true
}

// isNumber accepts non-negative decimals such as 5 or 33.2.
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
		case s[i] == '.' && !dot && i > 0 && i < len(s)-1:
			dot = true
		default:
			return false
		}
	}
	return true
}
