package kmp

import (
	"bytes"
	"testing"
)

// naiveEnds returns every position where pattern ends in text.
func naiveEnds(pattern, text []byte) []int {
	var ends []int
	for i := 0; i+len(pattern) <= len(text); i++ {
		if bytes.Equal(text[i:i+len(pattern)], pattern) {
			ends = append(ends, i+len(pattern)-1)
		}
	}
	return ends
}

// streamEnds feeds text byte by byte and collects reported end positions.
func streamEnds(k *RealTime, text []byte) []int {
	var ends []int
	for i, c := range text {
		if k.ReadByte(c) {
			ends = append(ends, i)
		}
	}
	return ends
}

func TestReadByte_MatchPositions(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
	}{
		{"single byte", "a", "banana"},
		{"no match", "abc", "abdabdabd"},
		{"overlapping", "abab", "ababab"},
		{"period one", "aaaaa", "aaaaaaa"},
		{"exact length", "hello", "hello"},
		{"text shorter than pattern", "hello", "hell"},
		{"longer stream", "ABCDABD", "ABC ABCDAB ABCDABCDABDE ABCDABD"},
		{"binary", "\x00\xff\x00", "x\x00\xff\x00\xff\x00y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New([]byte(tt.pattern))
			got := streamEnds(k, []byte(tt.text))
			want := naiveEnds([]byte(tt.pattern), []byte(tt.text))
			if !equalInts(got, want) {
				t.Errorf("ends = %v, want %v", got, want)
			}
		})
	}
}

// TestReadByte_BufferedFailurePath stresses the path where mismatches force
// the failure walk behind the stream: a long run of a single letter with a
// distinct final byte makes every broken run unwind almost the whole table.
func TestReadByte_BufferedFailurePath(t *testing.T) {
	pattern := []byte("AAAAAAAAAAAAAAAAAB")
	text := []byte("AAAAAAAAAAAAAAAAABAAAAAABAAAAAAAAAAAAAAAAABAAAAAAA")
	k := New(pattern)
	got := streamEnds(k, text)
	want := []int{17, 42}
	if !equalInts(got, want) {
		t.Errorf("ends = %v, want %v", got, want)
	}
	if !equalInts(want, naiveEnds(pattern, text)) {
		t.Fatalf("fixture out of sync with naive scan: %v", naiveEnds(pattern, text))
	}
}

// TestReadByte_AfterReset re-runs the same stream and expects identical
// reports.
func TestReadByte_AfterReset(t *testing.T) {
	pattern := []byte("abcabd")
	text := []byte("abcabcabdabcabd")
	k := New(pattern)
	first := streamEnds(k, text)
	k.Reset()
	second := streamEnds(k, text)
	if !equalInts(first, second) {
		t.Errorf("reset changed behavior: %v then %v", first, second)
	}
	if !equalInts(first, naiveEnds(pattern, text)) {
		t.Errorf("ends = %v, want %v", first, naiveEnds(pattern, text))
	}
}

func TestPeriod(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
	}{
		{"a", 1},
		{"aaaa", 1},
		{"abab", 2},
		{"ababa", 2},
		{"abcabc", 3},
		{"abcd", 4},
		{"AAAAAAAB", 8},
		{"aabaabaa", 3},
	}
	for _, tt := range tests {
		if got := Period([]byte(tt.pattern)); got != tt.want {
			t.Errorf("Period(%q) = %d, want %d", tt.pattern, got, tt.want)
		}
	}
}

func TestFailureTable(t *testing.T) {
	got := FailureTable([]byte("abcabd"))
	want := []int{0, 0, 0, 0, 1, 2, 0}
	if !equalInts(got, want) {
		t.Errorf("FailureTable = %v, want %v", got, want)
	}
}

func TestTotalMem_Positive(t *testing.T) {
	if m := New([]byte("abc")).TotalMem(); m <= 0 {
		t.Errorf("TotalMem = %d, want > 0", m)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
