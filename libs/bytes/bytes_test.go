package bytes

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMarshal(t *testing.T) {
	type TestStruct struct {
		B1 []byte
		B2 HexBytes
	}

	cases := []struct {
		input    []byte
		expected string
	}{
		{[]byte(``), `{"B1":"","B2":""}`},
		{[]byte(`a`), `{"B1":"YQ==","B2":"61"}`},
		{[]byte(`abc`), `{"B1":"YWJj","B2":"616263"}`},
	}

	for i, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			ts := TestStruct{B1: tc.input, B2: tc.input}

			jsonBytes, err := json.Marshal(ts)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(jsonBytes))

			ts2 := TestStruct{}
			require.NoError(t, json.Unmarshal(jsonBytes, &ts2))
			assert.Equal(t, ts2.B1, tc.input)
			assert.Equal(t, []byte(ts2.B2), tc.input)
		})
	}
}

func TestFromHex(t *testing.T) {
	for _, in := range []string{"DEADBEEF", "deadbeef", "0xDEADBEEF"} {
		bz, err := FromHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, "DEADBEEF", bz.String())
	}
	_, err := FromHex("XYZ")
	assert.Error(t, err)
}
