package matcher

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/streambench/pattern"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"bg", "ac", "ac-lowmem"}, Names())
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		e, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, e.Name)
		assert.NotNil(t, e.New)
	}
	_, ok := Lookup("hyperscan")
	assert.False(t, ok)
}

// TestRegistryEngines_Contract drives every registered engine through the
// open/compile/stream lifecycle on a tiny dictionary and checks they all
// return the same longest-match ids.
func TestRegistryEngines_Contract(t *testing.T) {
	opts := Options{Rand: rand.New(rand.NewSource(42)), Logger: zerolog.Nop()}
	text := []byte("ababab")
	const (
		idAB pattern.ID = 1
		idABAB pattern.ID = 2
	)
	want := []pattern.ID{pattern.None, idAB, pattern.None, idABAB, pattern.None, idABAB}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			entry, _ := Lookup(name)
			m := entry.New(opts)
			require.NoError(t, m.AddPattern([]byte("ab"), idAB))
			require.NoError(t, m.AddPattern([]byte("abab"), idABAB))
			require.NoError(t, m.Compile())
			for i, c := range text {
				assert.Equal(t, want[i], m.ReadByte(c), "pos %d", i)
			}
			m.Reset()
			assert.Equal(t, pattern.None, m.ReadByte('a'))
			assert.Positive(t, m.TotalMem())
		})
	}
}
