package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"clarifile/internal/text"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"collapses spaces", "hello    world", "hello world"},
		{"collapses newlines and tabs", "hello\n\tworld\r\n again", "hello world again"},
		{"non-breaking space", "hello world", "hello world"},
		{"trims ends", "  hello world  ", "hello world"},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "a  b", "x y\nz", "  lots \t of\n\n space  "}
	for _, in := range inputs {
		once := text.Normalize(in)
		assert.Equal(t, once, text.Normalize(once))
	}
}
