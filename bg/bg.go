// Package bg implements the Breslauer-Galil real-time stream matcher for a
// single pattern.
//
// The engine answers, for every stream byte in O(1) work, whether an
// occurrence of the pattern ends at it. It never rescans: all history it
// keeps is a ring of the last ceil(log2 n) cumulative Karp-Rabin
// fingerprints plus one arithmetic progression of candidate start positions
// per rung of a logarithmic ladder.
//
// The pattern is cut into rungs: rung k covers the prefix of length 2^k
// (the top rung covers the whole pattern). A stream position that might
// still start a full occurrence is a viable occurrence (VO). A VO enters
// the ladder when the first rung's prefix matches ending at the current
// byte, and climbs one rung each time the fingerprint of its next, doubled
// block agrees with the precomputed fingerprint of that rung's prefix. A VO
// that reaches past the top rung is a full match.
//
// The first rung is special. Fingerprints cannot confirm it (there is no
// shorter verified block to extend), so it is detected exactly with Galil's
// real-time KMP - but running KMP over the whole first-rung prefix would
// not bound the VOs per rung. Instead the constructor finds the period pp
// of the prefix of length 2^(ceil(log2 log2 n)+1) and follows it through
// the pattern; the first rung is chosen as the largest power of two inside
// that periodic run. By the periodicity lemma each rung's VOs form an
// arithmetic progression, checked one rung per byte in a round-robin; when
// pp > log2 n same-rung VOs are also at least log2 n apart. A shorter head
// period can feed rung 0 faster than the round-robin drains it, and VOs
// whose window has passed are then dropped. The rung itself is recognized by counting back-to-back
// occurrences of the period (one KMP over the period, one over the
// remainder when 2^firstStage is not a multiple of pp).
//
// The round-robin must visit rungs in decreasing order: a VO promoted out
// of rung i-1 in the same byte must find rung i already drained of any VO
// whose upgrade window has passed, or the progression check would compare
// against a stale anchor and report a spurious collision.
//
// The top rung - and the rung below it when the two are fewer than log2 n
// bytes apart - is checked on every byte rather than waiting for its
// round-robin turn, so a match is reported exactly on its final byte.
//
// Patterns of 8 bytes or fewer skip all of the above and run a single
// real-time KMP.
package bg

import (
	"errors"
	"math/bits"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/coregx/streambench/field"
	"github.com/coregx/streambench/fingerprint"
	"github.com/coregx/streambench/kmp"
)

// DefaultPrime is the default fingerprint field modulus, 2^31 - 1.
// Any prime below 2^32 keeps products inside 64 bits.
const DefaultPrime uint64 = 1<<31 - 1

// shortPatternLen is the length at or below which the engine degenerates to
// a single real-time KMP. Any threshold up to log2 n is sound; 8 matches
// the reference implementation.
const shortPatternLen = 8

// ErrEmptyPattern is returned when constructing an engine for a zero-length
// pattern.
var ErrEmptyPattern = errors.New("bg: empty pattern")

// Config controls engine construction.
type Config struct {
	// Prime is the fingerprint field modulus. Must be prime and below
	// 2^32. Defaults to DefaultPrime when zero.
	Prime uint64

	// Rand supplies the random fingerprint base r in [2, Prime). Tests
	// pass a seeded source for determinism; nil means a time-seeded
	// source.
	Rand *rand.Rand

	// Logger receives fingerprint-collision diagnostics. Collisions are
	// survivable (the affected candidates are discarded), so they are
	// logged rather than returned.
	Logger zerolog.Logger
}

// DefaultConfig returns the configuration used by the multi-pattern
// wrapper: Mersenne-31 field, time-seeded base, no logging.
func DefaultConfig() Config {
	return Config{Prime: DefaultPrime, Logger: zerolog.Nop()}
}

// posInfo pins down one stream position for fingerprint algebra:
// pos itself, the fingerprint of everything before pos (pos excluded), and
// r^pos with its inverse.
type posInfo struct {
	r   field.Val
	pos uint64
	fp  uint64
}

// voProgression stores the viable occurrences of one rung as an arithmetic
// progression: the first VO, the step to the next, and the count. step.fp
// is the fingerprint of the stream between two consecutive VOs, relative to
// the first one; periodicity of the covered region keeps it valid for every
// step.
type voProgression struct {
	first posInfo
	step  posInfo
	n     int
}

// Engine is a single-pattern Breslauer-Galil stream matcher.
//
// Engines are built once and then driven a byte at a time; ReadByte
// performs no allocation. Not safe for concurrent use.
type Engine struct {
	n int
	p uint64
	r field.Val

	logn       int
	loglogn    int
	firstStage int
	nStages    int // rungs above the first stage; 0 when the whole pattern is periodic

	// fps[i] is the fingerprint of the rung-i prefix; fps[nStages] covers
	// the whole pattern.
	fps         []uint64
	firstStageR field.Val // r^(2^firstStage - 1)

	vos     []voProgression
	lastFPs []uint64 // ring of the last logn cumulative fingerprints

	kmpPeriod    *kmp.RealTime
	kmpRemaining *kmp.RealTime // nil when 2^firstStage is a multiple of the period
	nKMPPeriod   int

	currentPos         uint64
	currentFP          uint64
	currentR           field.Val
	currentStage       int
	currentNKMPPeriod  int
	lastPeriodMatchPos uint64

	hasLast        bool
	hasBeforeLast  bool
	needBeforeLast bool
	short          bool

	log zerolog.Logger
}

// New builds an engine for pattern. The pattern bytes are copied where
// retained.
func New(pattern []byte, cfg Config) (*Engine, error) {
	n := len(pattern)
	if n == 0 {
		return nil, ErrEmptyPattern
	}
	if cfg.Prime == 0 {
		cfg.Prime = DefaultPrime
	}
	e := &Engine{
		n:   n,
		p:   cfg.Prime,
		log: cfg.Logger,
	}
	if n <= shortPatternLen {
		e.short = true
		e.kmpPeriod = kmp.New(pattern)
		return e, nil
	}

	e.logn = ceilLog2(uint64(n))
	e.loglogn = ceilLog2(uint64(e.logn)) + 1
	e.initKMP(pattern)

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var rv uint64
	for rv < 2 {
		rv = rng.Uint64() % e.p
	}
	e.r = field.New(rv, e.p)

	e.initFPs(pattern)
	e.lastFPs = make([]uint64, e.logn)
	e.vos = make([]voProgression, e.nStages)
	e.currentR = field.One()
	return e, nil
}

// initKMP finds the period structure of the pattern head and sets up the
// first-stage recognizers.
func (e *Engine) initKMP(pattern []byte) {
	block := 1 << e.loglogn
	if block > e.n {
		block = e.n
	}
	pp := kmp.Period(pattern[:block])

	// Follow the period of the head through the pattern; the largest
	// power-of-two prefix inside the periodic run becomes the first rung.
	stopPos := block
	for stopPos < e.n && pattern[stopPos] == pattern[stopPos%pp] {
		stopPos++
	}
	if stopPos == e.n {
		e.firstStage = e.logn
	} else {
		e.firstStage = floorLog2(uint64(stopPos))
	}
	e.nStages = e.logn - e.firstStage

	stage0 := e.stageLen(0)
	e.kmpPeriod = kmp.New(pattern[:pp])
	e.nKMPPeriod = stage0 / pp
	if rm := stage0 % pp; rm != 0 {
		e.kmpRemaining = kmp.New(pattern[:rm])
	}
}

// initFPs precomputes the per-rung pattern fingerprints and r^(2^firstStage-1).
func (e *Engine) initFPs(pattern []byte) {
	e.fps = make([]uint64, e.nStages+1)
	stage0 := e.stageLen(0)
	fp, rn := fingerprint.Calc(pattern[:stage0], e.r, e.p)
	e.fps[0] = fp
	e.firstStageR = field.Div(rn, e.r, e.p)

	prevLen := stage0
	for real := e.firstStage + 1; real < e.logn; real++ {
		fp, rn = fingerprint.CalcWithPrefix(pattern[:1<<real], prevLen, fp, rn, e.r, e.p)
		e.fps[real-e.firstStage] = fp
		prevLen = 1 << real
	}
	if e.firstStage != e.logn {
		fp, _ = fingerprint.CalcWithPrefix(pattern, prevLen, fp, rn, e.r, e.p)
		e.fps[e.nStages] = fp
		if e.n-(1<<(e.logn-1)) < e.logn {
			e.needBeforeLast = true
		}
	}
}

// stageLen returns the prefix length covered by rung i of the ladder
// (i indexes vos; the underlying rung number is i + firstStage).
func (e *Engine) stageLen(i int) int {
	if real := i + e.firstStage; real < e.logn {
		return 1 << real
	}
	return e.n
}

// ReadByte feeds one stream byte and reports whether an occurrence of the
// pattern ends at it.
func (e *Engine) ReadByte(c byte) bool {
	if e.short {
		return e.kmpPeriod.ReadByte(c)
	}
	if e.nStages == 0 {
		// The whole pattern shares the head's period; the composite KMP
		// check is the entire engine.
		match := e.checkFirstStage(c)
		e.currentPos++
		return match
	}

	e.currentFP = fingerprint.Concat(e.currentFP, uint64(c), e.currentR, e.p)
	e.lastFPs[e.currentPos%uint64(e.logn)] = e.currentFP

	if e.checkFirstStage(c) {
		e.addFirstStageVO()
	}

	match := e.checkLastStages()

	if e.nStages > 1 {
		// One ladder rung per byte, cycling downward over every rung
		// except the top (which checkLastStages already covers).
		e.upgrade(e.currentStage)
		if e.currentStage == 0 {
			e.currentStage = e.nStages - 2
		} else {
			e.currentStage--
		}
	}

	e.currentR = field.Mul(e.currentR, e.r, e.p)
	e.currentPos++
	return match
}

// checkFirstStage feeds c to the period recognizers and reports whether the
// first rung's prefix ends at the current position.
//
// The prefix is nKMPPeriod back-to-back copies of the period followed by
// the remainder, so it ends here iff the remainder ends here, enough
// periods ran back-to-back, and the last of them ended exactly a remainder
// ago.
func (e *Engine) checkFirstStage(c byte) bool {
	periodMatch := e.kmpPeriod.ReadByte(c)
	pp := uint64(e.kmpPeriod.PatternLen())

	remMatch := true
	var rm uint64
	if e.kmpRemaining != nil {
		remMatch = e.kmpRemaining.ReadByte(c)
		rm = uint64(e.kmpRemaining.PatternLen())
	}

	if periodMatch {
		if e.lastPeriodMatchPos+pp == e.currentPos {
			e.currentNKMPPeriod++
		} else {
			e.currentNKMPPeriod = 1
		}
		e.lastPeriodMatchPos = e.currentPos
	} else if e.lastPeriodMatchPos+pp <= e.currentPos {
		// The position where the next back-to-back period had to end has
		// passed without a match; the run is broken.
		e.currentNKMPPeriod = 0
	}

	return remMatch &&
		e.currentNKMPPeriod >= e.nKMPPeriod &&
		e.lastPeriodMatchPos+rm == e.currentPos
}

// addFirstStageVO enters the position starting the just-recognized
// first-rung block into rung 0 of the ladder.
func (e *Engine) addFirstStageVO() {
	voPos := e.currentPos - uint64(e.stageLen(0)) + 1
	voR := field.Div(e.currentR, e.firstStageR, e.p)
	voFP := fingerprint.Prefix(e.currentFP, e.fps[0], voR, e.p)
	if !e.addVO(0, voPos, voFP, voR) {
		// Dropping only the new candidate keeps the existing progression
		// sound; see DESIGN.md for the policy choice.
		e.log.Warn().Uint64("pos", voPos).Msg("fingerprint collision, dropping viable occurrence")
	}
}

// checkLastStages upgrades the top rung (and the rung below it when they
// are too close for the round-robin to be timely) on every byte. Reports
// whether the top rung produced a full match.
func (e *Engine) checkLastStages() bool {
	if e.hasBeforeLast {
		e.upgrade(e.nStages - 2)
	}
	if e.hasLast {
		return e.upgrade(e.nStages - 1)
	}
	return false
}

// upgrade checks whether the first VO of rung stage can climb to the next
// rung, and removes it from the rung either way once its block is decided.
// Reports true only for a confirmed climb out of the top rung, i.e. a full
// pattern match ending at the current byte.
func (e *Engine) upgrade(stage int) bool {
	v := &e.vos[stage]
	if v.n == 0 {
		return false
	}
	// end is the inclusive stream position of the last byte of the
	// next-rung block starting at the first VO.
	end := v.first.pos + uint64(e.stageLen(stage+1)) - 1
	if e.currentPos < end {
		return false
	}
	if e.currentPos >= end+uint64(e.logn) {
		// The cumulative fingerprint for end has been overwritten; the
		// block can no longer be checked. This happens when VOs reach
		// the rung faster than the round-robin visits it; the aged VO is
		// dropped so it does not wedge the rung.
		e.removeFirstVO(stage)
		return false
	}

	blockFP := fingerprint.Suffix(e.lastFPs[end%uint64(e.logn)], v.first.fp, v.first.r, e.p)
	upgraded := false
	if blockFP == e.fps[stage+1] {
		switch {
		case stage == e.nStages-1:
			upgraded = true
		case e.addVO(stage+1, v.first.pos, v.first.fp, v.first.r):
			upgraded = true
		default:
			e.wipeStage(stage + 1)
			e.log.Warn().
				Uint64("pos", v.first.pos).
				Int("stage", stage+1).
				Msg("fingerprint collision, wiping stage")
		}
	}
	e.removeFirstVO(stage)
	return upgraded
}

// addVO offers a VO to rung stage. Reports false when the position is not
// in arithmetic progression with the rung's existing VOs, which under
// correct fingerprints is impossible and therefore flags a collision.
func (e *Engine) addVO(stage int, pos uint64, fp uint64, rn field.Val) bool {
	v := &e.vos[stage]
	switch v.n {
	case 0:
		v.first = posInfo{r: rn, pos: pos, fp: fp}
		v.n = 1
		if stage == e.nStages-1 {
			e.hasLast = true
		} else if e.needBeforeLast && stage == e.nStages-2 {
			e.hasBeforeLast = true
		}
	case 1:
		v.step.pos = pos - v.first.pos
		v.step.fp = fingerprint.Suffix(fp, v.first.fp, v.first.r, e.p)
		v.step.r = field.Div(rn, v.first.r, e.p)
		v.n = 2
	default:
		if v.first.pos+uint64(v.n)*v.step.pos != pos {
			return false
		}
		v.n++
	}
	return true
}

// removeFirstVO drops the first VO of rung stage, advancing the progression
// anchor when more remain.
func (e *Engine) removeFirstVO(stage int) {
	v := &e.vos[stage]
	switch v.n {
	case 0:
	case 1:
		v.n = 0
		if stage == e.nStages-1 {
			e.hasLast = false
		} else if stage == e.nStages-2 {
			e.hasBeforeLast = false
		}
	default:
		// step.fp is relative to the block start, so the old first.r is
		// the multiplier; update fp before touching r.
		v.first.fp = fingerprint.Concat(v.first.fp, v.step.fp, v.first.r, e.p)
		v.first.r = field.Mul(v.first.r, v.step.r, e.p)
		v.first.pos += v.step.pos
		v.n--
	}
}

// wipeStage clears rung stage after a detected collision.
func (e *Engine) wipeStage(stage int) {
	e.vos[stage] = voProgression{}
	if stage == e.nStages-1 {
		e.hasLast = false
	} else if stage == e.nStages-2 {
		e.hasBeforeLast = false
	}
}

// PatternLen returns the length of the compiled pattern.
func (e *Engine) PatternLen() int {
	return e.n
}

// Reset returns the engine to its initial streaming state, keeping all
// compiled structures.
func (e *Engine) Reset() {
	if e.short {
		e.kmpPeriod.Reset()
		return
	}
	e.currentPos = 0
	e.currentFP = 0
	e.currentR = field.One()
	e.currentStage = 0
	e.currentNKMPPeriod = 0
	e.lastPeriodMatchPos = 0
	for i := range e.vos {
		e.vos[i] = voProgression{}
	}
	e.kmpPeriod.Reset()
	if e.kmpRemaining != nil {
		e.kmpRemaining.Reset()
	}
	e.hasLast = false
	e.hasBeforeLast = false
}

// TotalMem reports the static footprint of the engine in bytes.
func (e *Engine) TotalMem() int {
	const wordSize = 8
	mem := 40 * wordSize // fixed fields
	mem += e.kmpPeriod.TotalMem()
	if e.short {
		return mem
	}
	if e.kmpRemaining != nil {
		mem += e.kmpRemaining.TotalMem()
	}
	mem += len(e.fps) * wordSize
	mem += len(e.lastFPs) * wordSize
	mem += len(e.vos) * 7 * wordSize
	return mem
}

// ceilLog2 returns ceil(log2(x)) for x >= 1.
func ceilLog2(x uint64) int {
	if x <= 1 {
		return 0
	}
	return bits.Len64(x - 1)
}

// floorLog2 returns floor(log2(x)) for x >= 1.
func floorLog2(x uint64) int {
	return bits.Len64(x) - 1
}
