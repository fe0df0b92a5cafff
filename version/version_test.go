package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInfo(t *testing.T) {
	info := NewInfo([]string{"v0.32", "v0.33"})
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, ClientSemVer, info.Version[:len(ClientSemVer)])
	assert.Equal(t, []string{"v0.32", "v0.33"}, info.Dialects)
}
