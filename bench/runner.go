// Package bench drives matcher engines over byte streams and measures
// them: per-position accuracy against the reference engine, perf_event
// counter groups around the hot loop, and static memory footprint.
package bench

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/coregx/streambench/matcher"
	"github.com/coregx/streambench/pattern"
	"github.com/coregx/streambench/perf"
)

// DefaultChunkSize is the stream read granularity.
const DefaultChunkSize = 100 * 1024

// Config controls a measurement run.
type Config struct {
	// ChunkSize is the stream read buffer size; zero means
	// DefaultChunkSize.
	ChunkSize int

	// EnableCounters turns the perf_event measurement on. When the
	// counters cannot be opened (non-Linux, restricted kernel), the run
	// proceeds without them.
	EnableCounters bool

	// Logger receives run diagnostics.
	Logger zerolog.Logger
}

// DefaultConfig enables counters with the standard chunk size.
func DefaultConfig() Config {
	return Config{ChunkSize: DefaultChunkSize, EnableCounters: true, Logger: zerolog.Nop()}
}

// Stream is one input byte stream.
type Stream struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileStream streams a file from disk.
func FileStream(path string) Stream {
	return Stream{
		Name: path,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// SuccessRate counts the per-byte comparison outcomes against the
// reference engine.
type SuccessRate struct {
	Success  uint64 // engine returned the longest matching pattern
	Partial  uint64 // engine returned a shorter pattern that does match
	FalsePos uint64 // engine returned a pattern that does not match
	FalseNeg uint64 // engine returned no pattern though one matches
}

// InstanceStats is the measurement result for one engine.
type InstanceStats struct {
	Name     string
	TotalMem int
	Rate     SuccessRate
	Counters []perf.Count
}

// Runner measures engines against a fixed oracle over fixed streams.
type Runner struct {
	cfg    Config
	tree   *pattern.Tree
	oracle matcher.Matcher
}

// NewRunner builds a runner. The oracle must already be compiled over the
// same dictionary (same patterns tree) as every engine measured.
func NewRunner(tree *pattern.Tree, oracle matcher.Matcher, cfg Config) *Runner {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Runner{cfg: cfg, tree: tree, oracle: oracle}
}

// Measure runs one engine over all streams and collects its statistics.
// Engines (and the oracle) are reset before the first byte of each stream.
func (r *Runner) Measure(name string, m matcher.Matcher, streams []Stream) (*InstanceStats, error) {
	stats := &InstanceStats{Name: name}

	var groups []*perf.Group
	if r.cfg.EnableCounters {
		for _, events := range perf.Groups() {
			g, err := perf.Open(events)
			if err != nil {
				r.cfg.Logger.Debug().Err(err).Msg("perf counters unavailable, measuring without them")
				for _, og := range groups {
					og.Close()
				}
				groups = nil
				break
			}
			groups = append(groups, g)
		}
		for _, g := range groups {
			if err := g.Reset(); err != nil {
				return nil, err
			}
		}
	}
	defer func() {
		for _, g := range groups {
			g.Close()
		}
	}()

	chunk := make([]byte, r.cfg.ChunkSize)
	algoIDs := make([]pattern.ID, r.cfg.ChunkSize)
	realIDs := make([]pattern.ID, r.cfg.ChunkSize)

	for _, s := range streams {
		if err := r.measureStream(m, s, chunk, algoIDs, realIDs, groups, &stats.Rate); err != nil {
			return nil, fmt.Errorf("stream %s: %w", s.Name, err)
		}
	}

	for _, g := range groups {
		counts, err := g.Read()
		if err != nil {
			return nil, err
		}
		stats.Counters = append(stats.Counters, counts...)
	}
	stats.TotalMem = m.TotalMem()
	return stats, nil
}

func (r *Runner) measureStream(m matcher.Matcher, s Stream, chunk []byte, algoIDs, realIDs []pattern.ID, groups []*perf.Group, rate *SuccessRate) error {
	rc, err := s.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	m.Reset()
	r.oracle.Reset()

	for {
		n, rerr := io.ReadFull(rc, chunk)
		if n > 0 {
			// Only the engine-under-test loop is inside the counter
			// window; the oracle and the comparison run outside it.
			for _, g := range groups {
				if err := g.Enable(); err != nil {
					return err
				}
			}
			for j := 0; j < n; j++ {
				algoIDs[j] = m.ReadByte(chunk[j])
			}
			for _, g := range groups {
				if err := g.Disable(); err != nil {
					return err
				}
			}

			for j := 0; j < n; j++ {
				realIDs[j] = r.oracle.ReadByte(chunk[j])
			}
			r.classify(rate, algoIDs[:n], realIDs[:n])
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// classify buckets one chunk of per-byte results per the oracle contract.
func (r *Runner) classify(rate *SuccessRate, algo, real []pattern.ID) {
	for i := range algo {
		switch {
		case algo[i] == real[i]:
			rate.Success++
		case r.tree.IsSuffix(algo[i], real[i]):
			rate.Partial++
		case algo[i] == pattern.None:
			rate.FalseNeg++
		default:
			rate.FalsePos++
		}
	}
}
