package levenshtein

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"apple", "apply", 1},
		{"banana", "bandana", 1},
		{"book", "boook", 1},
		{"cat", "caat", 1},
		{"test", "test", 0},
		{"test", "", 4},
		{"", "test", 4},
		{"", "", 0},
		{"flaw", "lawn", 2},
		{"apple", "axpyl", 3},
		{"拼音", "拼写", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "Distance(%q, %q)", tt.a, tt.b)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"sunday", "saturday"},
		{"ab", "ba"},
		{"abc", ""},
		{"gumbo", "gambol"},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]), "pair %v", p)
	}
}
