package dict

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/streambench/pattern"
)

func TestDecodeLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{"plain", "hello", "hello", true},
		{"empty", "", "", true},
		{"hex block", "|41 42 43|", "ABC", true},
		{"hex lowercase", "|6162|", "ab", true},
		{"hex split nibbles", "|4 1|", "A", true},
		{"mixed", "ab|00|cd", "ab\x00cd", true},
		{"two blocks", "|41|x|42|", "AxB", true},
		{"tab separated", "|41\t42|", "AB", true},
		{"spaces around", "| 41 42 |", "AB", true},
		{"high byte", "|ff FE|", "\xff\xfe", true},
		{"unterminated", "|41", "", false},
		{"bad digit", "|4g|", "", false},
		{"odd nibbles", "|414|", "", false},
		{"bare close is open", "abc|", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeLine([]byte(tt.line))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, []byte(tt.want), got)
			}
		})
	}
}

func TestLoader_Read(t *testing.T) {
	input := "foo\n|41 42|\n\nbroken|4\nbar"
	var got []Pattern
	l := NewLoader(nil, zerolog.Nop())
	err := l.read(2, strings.NewReader(input), func(p Pattern) error {
		got = append(got, p)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 3, "empty and malformed lines are dropped")
	assert.Equal(t, []byte("foo"), got[0].Bytes)
	assert.Equal(t, pattern.Meta{File: 2, Line: 1}, got[0].Meta)
	assert.Equal(t, []byte("AB"), got[1].Bytes)
	assert.Equal(t, pattern.Meta{File: 2, Line: 2}, got[1].Meta)
	assert.Equal(t, []byte("bar"), got[2].Bytes)
	assert.Equal(t, pattern.Meta{File: 2, Line: 5}, got[2].Meta, "line numbers keep counting past dropped lines")
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader([]string{"/nonexistent/dictionary"}, zerolog.Nop())
	err := l.Load(func(Pattern) error { return nil })
	assert.Error(t, err)
}
