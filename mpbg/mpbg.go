// Package mpbg composes single-pattern Breslauer-Galil engines into a
// dictionary matcher.
//
// There is no cross-pattern structure to exploit: every pattern gets its
// own bg.Engine, each byte fans out to all of them, and the id of the
// longest pattern that reported a match wins. Ties are impossible - an
// engine reports only when its full pattern ends at the current byte, and
// the patterns tree deduplicates patterns, so at most one engine of any
// given length fires per byte.
package mpbg

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/coregx/streambench/bg"
	"github.com/coregx/streambench/pattern"
)

// Config carries the construction parameters shared by all per-pattern
// engines.
type Config struct {
	// Prime is the fingerprint field modulus; zero means bg.DefaultPrime.
	Prime uint64

	// Rand seeds the per-pattern fingerprint bases; nil means time-seeded.
	Rand *rand.Rand

	// Logger receives collision diagnostics from the per-pattern engines.
	Logger zerolog.Logger
}

// DefaultConfig mirrors bg.DefaultConfig.
func DefaultConfig() Config {
	return Config{Prime: bg.DefaultPrime, Logger: zerolog.Nop()}
}

type patternEntry struct {
	eng *bg.Engine
	id  pattern.ID
	n   int
}

// Engine is the multi-pattern Breslauer-Galil matcher.
type Engine struct {
	cfg      Config
	pats     []patternEntry
	compiled bool
}

// New returns an empty engine.
func New(cfg Config) *Engine {
	if cfg.Prime == 0 {
		cfg.Prime = bg.DefaultPrime
	}
	return &Engine{cfg: cfg}
}

// AddPattern builds a dedicated BG engine for the pattern. Patterns are
// independent, so each compiles immediately.
func (e *Engine) AddPattern(pat []byte, id pattern.ID) error {
	if e.compiled {
		panic("mpbg: AddPattern after Compile")
	}
	eng, err := bg.New(pat, bg.Config{
		Prime:  e.cfg.Prime,
		Rand:   e.cfg.Rand,
		Logger: e.cfg.Logger,
	})
	if err != nil {
		return err
	}
	e.pats = append(e.pats, patternEntry{eng: eng, id: id, n: len(pat)})
	return nil
}

// Compile freezes the pattern list.
func (e *Engine) Compile() error {
	if e.compiled {
		panic("mpbg: Compile called twice")
	}
	e.compiled = true
	return nil
}

// ReadByte feeds c to every engine and returns the id of the longest
// pattern whose occurrence ends at this byte, or pattern.None.
func (e *Engine) ReadByte(c byte) pattern.ID {
	if !e.compiled {
		panic("mpbg: ReadByte before Compile")
	}
	longest := 0
	id := pattern.None
	for i := range e.pats {
		p := &e.pats[i]
		if p.eng.ReadByte(c) && p.n > longest {
			longest = p.n
			id = p.id
		}
	}
	return id
}

// Reset resets every per-pattern engine.
func (e *Engine) Reset() {
	for i := range e.pats {
		e.pats[i].eng.Reset()
	}
}

// TotalMem sums the footprint of all per-pattern engines.
func (e *Engine) TotalMem() int {
	mem := 64
	for i := range e.pats {
		mem += e.pats[i].eng.TotalMem()
	}
	return mem
}
