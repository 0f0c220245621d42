package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake(t *testing.T) {
	gen, err := NewSnowflake(1)
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	prev := int64(0)
	for range 1000 {
		id := gen.Generate()
		_, dup := seen[id]
		require.False(t, dup)
		require.Greater(t, id, prev)
		seen[id] = struct{}{}
		prev = id
	}
}

func TestSnowflake_InvalidNode(t *testing.T) {
	_, err := NewSnowflake(4096)
	assert.Error(t, err)
}

func TestSnowflake_HostDerived(t *testing.T) {
	gen, err := NewSnowflake(-1)
	require.NoError(t, err)
	assert.Positive(t, gen.Generate())
}

func TestToken(t *testing.T) {
	gen := NewToken()

	a := gen.Generate()
	b := gen.Generate()

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestUUID(t *testing.T) {
	id := NewUUID().Generate()
	assert.Len(t, id, 36)
}
