package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint-rpc/libs/pubsub/query"
)

func TestParser(t *testing.T) {
	cases := []struct {
		query string
		valid bool
	}{
		{"tm.events.type='NewBlock'", true},
		{"tm.events.type = 'NewBlock'", true},
		{"tm.events.name = ''", true},
		{"tm.events.type='TIME'", true},
		{"tm.events.type='='", true},
		{"tm.events.type='TIME", false},
		{"tm.events.type=TIME'", false},
		{"tm.events.type==", false},
		{"tm.events.type=NewBlock", false},
		{">==", false},
		{"tm.events.type 'NewBlock' =", false},
		{"tm.events.type>'NewBlock'", false},
		{"", false},
		{"=", false},
		{"='NewBlock'", false},
		{"tm.events.type=", false},

		{"tm.events.typeNewBlock", false},
		{"tm.events.type'NewBlock'", false},
		{"'NewBlock'", false},
		{"NewBlock", false},

		{"tm.events.type='NewBlock' AND abci.account.name='Igor'", true},
		{"tm.events.type='NewBlock' AND", false},
		{"tm.events.type='NewBlock' AN", false},
		{"tm.events.type='NewBlock' AN tm.events.type='NewBlockHeader'", false},
		{"AND tm.events.type='NewBlock' ", false},
		{"memo='bread AND butter'", true},

		{"abci.account.name CONTAINS 'Igor'", true},
		{"abci.account.name CONTAINS 5", false},

		{"account.balance=100", true},
		{"account.balance >= 200", true},
		{"account.balance >= -300", false},
		{"account.balance >>= 400", false},
		{"account.balance=33.22.1", false},
		{"account.balance<33.2", true},

		{"hash='136E18F7E4C348B780CF873A0BF43922E5BAFA63'", true},
		{"hash=136E18F7E4C348B780CF873A0BF43922E5BAFA63", false},
	}

	for _, c := range cases {
		_, err := query.Parse(c.query)
		if c.valid {
			assert.NoErrorf(t, err, "Query was '%s'", c.query)
		} else {
			assert.Errorf(t, err, "Query was '%s'", c.query)
		}
	}
}

func TestBuilder(t *testing.T) {
	q := query.New().EventType("Tx").Equal("transfer.recipient", "abc").HeightGt(5)
	assert.Equal(t, "tm.event='Tx' AND transfer.recipient='abc' AND tx.height>5", q.String())

	assert.Equal(t, "tm.event='NewBlock'", query.New().EventType("NewBlock").String())
	assert.Equal(t, "tm.event='Tx' AND tx.height<10 AND tx.height>2",
		query.New().HeightLt(10).HeightGt(2).EventType("Tx").String())
	assert.Equal(t, "tx.height=7", query.New().HeightEq(7).String())
	assert.Equal(t, "memo CONTAINS 'x'", query.New().Contains("memo", "x").String())
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"tm.event='Tx'", "tm.event='Tx'"},
		{"  tm.event = 'Tx'  ", "tm.event='Tx'"},
		{"tx.height > 5 AND tm.event='Tx'", "tm.event='Tx' AND tx.height>5"},
		{"b='1' AND a='2' AND tm.event='Tx'", "tm.event='Tx' AND a='2' AND b='1'"},
		{"tm.event='Tx' AND tm.event='Tx'", "tm.event='Tx'"},
		{"tm.event='Tx'\tAND  a='x'", "tm.event='Tx' AND a='x'"},
		{"a  CONTAINS   'x'", "a CONTAINS 'x'"},
	}
	for _, c := range cases {
		got, err := query.Normalize(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	a, err := query.Normalize("tx.height>5 AND tm.event='Tx'")
	require.NoError(t, err)
	b, err := query.Normalize("tm.event = 'Tx' AND tx.height > 5 AND tm.event='Tx'")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = query.Normalize("tm.event=Tx")
	assert.Error(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	q := query.New().EventType("Tx").Equal("transfer.sender", "a b").HeightGt(100)
	parsed, err := query.Parse(q.String())
	require.NoError(t, err)
	assert.Equal(t, q.Conditions(), parsed.Conditions())
}
