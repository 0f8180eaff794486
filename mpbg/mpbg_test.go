package mpbg

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/coregx/streambench/pattern"
)

func testConfig() Config {
	return Config{Rand: rand.New(rand.NewSource(42)), Logger: zerolog.Nop()}
}

// buildEngine compiles the dictionary and returns the engine plus a map
// from pattern text to id. Ids are assigned through a patterns tree so the
// suffix structure matches production wiring.
func buildEngine(t *testing.T, patterns []string) (*Engine, map[string]pattern.ID) {
	t.Helper()
	b := pattern.NewBuilder()
	for i, p := range patterns {
		b.Add([]byte(p), pattern.Meta{Line: i + 1})
	}
	e := New(testConfig())
	ids := make(map[string]pattern.ID)
	_, err := b.Build(func(pat []byte, id pattern.ID) error {
		ids[string(pat)] = id
		return e.AddPattern(pat, id)
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := e.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return e, ids
}

func TestReadByte_LongestWins(t *testing.T) {
	e, ids := buildEngine(t, []string{"fg", "efg", "afg", "cdefg", "abcdefg"})
	text := []byte("xabcdefg")
	var last pattern.ID
	for _, c := range text {
		last = e.ReadByte(c)
	}
	if last != ids["abcdefg"] {
		t.Errorf("at final byte got id %d, want %d (abcdefg)", last, ids["abcdefg"])
	}

	e.Reset()
	want := []pattern.ID{pattern.None, pattern.None, pattern.None, ids["fg"]}
	for i, c := range []byte("zzfg") {
		if got := e.ReadByte(c); got != want[i] {
			t.Errorf("pos %d: got %d, want %d", i, got, want[i])
		}
	}
}

// TestReadByte_SuffixDictionary runs the "ab"/"abab" pair where one
// pattern is a suffix of the other and both end on the same bytes.
func TestReadByte_SuffixDictionary(t *testing.T) {
	e, ids := buildEngine(t, []string{"ab", "abab"})
	text := []byte("ababab")
	want := []pattern.ID{
		pattern.None,   // a
		ids["ab"],      // ab
		pattern.None,   // aba
		ids["abab"],    // abab
		pattern.None,   // ababa
		ids["abab"],    // ababab
	}
	for i, c := range text {
		if got := e.ReadByte(c); got != want[i] {
			t.Errorf("pos %d: got %d, want %d", i, got, want[i])
		}
	}
}

func TestReadByte_PeriodOne(t *testing.T) {
	e, ids := buildEngine(t, []string{"aaaaa"})
	text := []byte("aaaaaaa")
	for i, c := range text {
		got := e.ReadByte(c)
		want := pattern.None
		if i >= 4 {
			want = ids["aaaaa"]
		}
		if got != want {
			t.Errorf("pos %d: got %d, want %d", i, got, want)
		}
	}
}

// TestReadByte_MixedLengths mixes short-pattern (KMP) and ladder engines
// in one dictionary.
func TestReadByte_MixedLengths(t *testing.T) {
	e, ids := buildEngine(t, []string{"abc", "abcdefghijk"})
	text := []byte("xxabcdefghijk")
	for i, c := range text {
		got := e.ReadByte(c)
		var want pattern.ID = pattern.None
		switch i {
		case 4:
			want = ids["abc"]
		case 12:
			want = ids["abcdefghijk"]
		}
		if got != want {
			t.Errorf("pos %d: got %d, want %d", i, got, want)
		}
	}
}

func TestReset_FullReplay(t *testing.T) {
	e, _ := buildEngine(t, []string{"abab", "ba", "abcabcabc"})
	text := []byte("abcabcabcababab")
	run := func() []pattern.ID {
		out := make([]pattern.ID, len(text))
		for i, c := range text {
			out[i] = e.ReadByte(c)
		}
		return out
	}
	first := run()
	e.Reset()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pos %d: %d then %d", i, first[i], second[i])
		}
	}
}

func TestContractViolations(t *testing.T) {
	t.Run("read before compile", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		New(testConfig()).ReadByte('a')
	})
	t.Run("add after compile", func(t *testing.T) {
		e := New(testConfig())
		if err := e.Compile(); err != nil {
			t.Fatalf("Compile: %v", err)
		}
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		_ = e.AddPattern([]byte("x"), 1)
	})
}

func TestTotalMem_SumsEngines(t *testing.T) {
	small, _ := buildEngine(t, []string{"abc"})
	big, _ := buildEngine(t, []string{"abc", "abcdefghijklmnop", "zzzzzzzzzz"})
	if small.TotalMem() <= 0 || big.TotalMem() <= small.TotalMem() {
		t.Errorf("TotalMem small=%d big=%d", small.TotalMem(), big.TotalMem())
	}
}
