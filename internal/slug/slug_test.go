package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := New()
	require.Len(t, s, 8)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
}

func TestNewVaries(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		seen[New()] = struct{}{}
	}
	// 100 draws from 36^8 should effectively never collide.
	assert.Greater(t, len(seen), 95)
}
