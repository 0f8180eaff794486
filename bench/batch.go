package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/coregx/ahocorasick"
)

// BatchStats is the result of the whole-buffer baseline scan.
type BatchStats struct {
	Matches uint64
	Bytes   uint64
	Elapsed time.Duration
}

// Throughput returns the scan rate in bytes per second.
func (b *BatchStats) Throughput() float64 {
	if b.Elapsed <= 0 {
		return 0
	}
	return float64(b.Bytes) / b.Elapsed.Seconds()
}

// NewBatchAutomaton builds the baseline automaton over the dictionary.
func NewBatchAutomaton(patterns [][]byte) (*ahocorasick.Automaton, error) {
	builder := ahocorasick.NewBuilder()
	for _, p := range patterns {
		builder.AddPattern(p)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("bench: batch automaton: %w", err)
	}
	return auto, nil
}

// BatchScan measures an offline whole-buffer scan over the same streams
// the streaming engines consume byte by byte. It quantifies what real-time
// answers cost relative to batch matching; it has no per-byte contract, so
// it is reported as throughput plus aggregate non-overlapping match counts
// (occurrences spanning a chunk boundary are not counted).
func BatchScan(auto *ahocorasick.Automaton, streams []Stream, chunkSize int) (*BatchStats, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	stats := &BatchStats{}
	chunk := make([]byte, chunkSize)
	for _, s := range streams {
		rc, err := s.Open()
		if err != nil {
			return nil, fmt.Errorf("stream %s: %w", s.Name, err)
		}
		if err := scanStream(auto, rc, chunk, stats); err != nil {
			rc.Close()
			return nil, fmt.Errorf("stream %s: %w", s.Name, err)
		}
		rc.Close()
	}
	return stats, nil
}

func scanStream(auto *ahocorasick.Automaton, rc io.Reader, chunk []byte, stats *BatchStats) error {
	for {
		n, rerr := io.ReadFull(rc, chunk)
		if n > 0 {
			stats.Bytes += uint64(n)
			start := time.Now()
			at := 0
			for at < n {
				m := auto.Find(chunk[:n], at)
				if m == nil {
					break
				}
				stats.Matches++
				if m.End <= at {
					at++
				} else {
					at = m.End
				}
			}
			stats.Elapsed += time.Since(start)
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
