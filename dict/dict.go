// Package dict loads pattern dictionaries.
//
// A dictionary file is a sequence of line-feed-separated byte lines; each
// line decodes to one pattern. Outside |...| blocks bytes are literal; a
// '|' toggles a hex block in which whitespace-separated pairs of hex
// nibbles each decode to one byte. A line whose escape syntax is broken is
// dropped. Every accepted pattern carries its (file index, line number)
// origin for reporting.
package dict

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/coregx/streambench/pattern"
)

// Pattern is one decoded dictionary entry.
type Pattern struct {
	Meta  pattern.Meta
	Bytes []byte
}

// Loader reads patterns from a list of dictionary files in order.
type Loader struct {
	paths []string
	log   zerolog.Logger
}

// NewLoader returns a loader over the given files. File indices in pattern
// metas follow the argument order.
func NewLoader(paths []string, log zerolog.Logger) *Loader {
	return &Loader{paths: paths, log: log}
}

// Load decodes every pattern and hands it to fn. Malformed and empty lines
// are dropped (and counted in the debug log); I/O errors abort the load.
func (l *Loader) Load(fn func(p Pattern) error) error {
	for fileIdx, path := range l.paths {
		if err := l.loadFile(fileIdx, path, fn); err != nil {
			return fmt.Errorf("dictionary %s: %w", path, err)
		}
	}
	return nil
}

func (l *Loader) loadFile(fileIdx int, path string, fn func(p Pattern) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return l.read(fileIdx, f, fn)
}

// read decodes one dictionary stream. Split out from loadFile so tests can
// feed in-memory dictionaries.
func (l *Loader) read(fileIdx int, r io.Reader, fn func(p Pattern) error) error {
	br := bufio.NewReader(r)
	line := 0
	dropped := 0
	for {
		raw, err := br.ReadBytes('\n')
		if len(raw) > 0 {
			line++
			if raw[len(raw)-1] == '\n' {
				raw = raw[:len(raw)-1]
			}
			decoded, ok := DecodeLine(raw)
			if !ok || len(decoded) == 0 {
				dropped++
			} else if ferr := fn(Pattern{
				Meta:  pattern.Meta{File: fileIdx, Line: line},
				Bytes: decoded,
			}); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if dropped > 0 {
		l.log.Debug().Int("file", fileIdx).Int("dropped", dropped).Msg("dropped malformed or empty dictionary lines")
	}
	return nil
}

// DecodeLine decodes one dictionary line. ok is false when a hex block is
// malformed or unterminated.
func DecodeLine(line []byte) (out []byte, ok bool) {
	out = make([]byte, 0, len(line))
	for pos := 0; pos < len(line); {
		if line[pos] != '|' {
			out = append(out, line[pos])
			pos++
			continue
		}
		pos++ // consume the opening '|'
		closed := false
		for pos < len(line) {
			c := line[pos]
			if c == '|' {
				pos++
				closed = true
				break
			}
			if c == ' ' || c == '\t' {
				pos++
				continue
			}
			hi := hexVal(c)
			pos++
			for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
				pos++
			}
			if hi < 0 || pos >= len(line) {
				return nil, false
			}
			lo := hexVal(line[pos])
			pos++
			if lo < 0 {
				return nil, false
			}
			out = append(out, byte(hi*16+lo))
		}
		if !closed {
			return nil, false
		}
	}
	return out, true
}

// hexVal returns the value of a hex digit, or -1.
func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
