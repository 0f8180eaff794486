// Package matcher defines the contract every dictionary matching engine
// satisfies, and the closed registry of available algorithms.
//
// Engines live through two phases: an open phase (AddPattern calls between
// construction and Compile) and a streaming phase (ReadByte/Reset). Calling
// a phase's methods outside it is a programming bug and panics. ReadByte
// must not allocate.
package matcher

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/coregx/streambench/ac"
	"github.com/coregx/streambench/mpbg"
	"github.com/coregx/streambench/pattern"
)

// Matcher is the engine contract.
//
// AddPattern may be called only before Compile, ReadByte only after.
// Pattern bytes may contain any value including zero; implementations must
// not retain the slice. ReadByte returns the id of the longest dictionary
// pattern whose occurrence ends at the byte just read, or pattern.None.
type Matcher interface {
	AddPattern(pat []byte, id pattern.ID) error
	Compile() error
	ReadByte(c byte) pattern.ID
	Reset()
	TotalMem() int
}

// Options carries construction parameters for registry engines. Engines
// that need no randomness or logging ignore the irrelevant fields.
type Options struct {
	// Prime is the fingerprint field modulus for fingerprint-based
	// engines; zero selects the engine default.
	Prime uint64

	// Rand seeds fingerprint bases; nil means time-seeded.
	Rand *rand.Rand

	// Logger receives engine diagnostics.
	Logger zerolog.Logger
}

// Entry is one registered algorithm.
type Entry struct {
	Name string
	New  func(opts Options) Matcher
}

// The registry is populated once here and never mutated at runtime.
var table = []Entry{
	{Name: "bg", New: func(opts Options) Matcher {
		return mpbg.New(mpbg.Config{Prime: opts.Prime, Rand: opts.Rand, Logger: opts.Logger})
	}},
	{Name: "ac", New: func(Options) Matcher {
		return ac.NewDense()
	}},
	{Name: "ac-lowmem", New: func(Options) Matcher {
		return ac.NewLowMem()
	}},
}

// Lookup returns the registry entry for name.
func Lookup(name string) (Entry, bool) {
	for _, e := range table {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names lists the registered algorithm names in registration order.
func Names() []string {
	names := make([]string, len(table))
	for i, e := range table {
		names[i] = e.Name
	}
	return names
}
