package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialsOf(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{"email with two segments", "jane.doe@example.com", "JD"},
		{"empty", "", "?"},
		{"single segment without at", "bob", "B"},
		{"single segment email", "a@x.com", "A"},
		{"three segments truncated", "mary.ann.lee@example.com", "MA"},
		{"lowercase first letters uppercased", "x.y", "XY"},
		{"empty local part", "@example.com", "?"},
		{"leading dot", ".doe@example.com", "D"},
		{"only dots", "...", "?"},
		{"multiple at signs", "a.b@c@d", "AB"},
		{"non ascii", "élodie.ñu@example.com", "ÉÑ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialsOf(tt.identifier))
		})
	}
}

func TestInitialsOf_NeverLongerThanTwoRunes(t *testing.T) {
	for _, id := range []string{"a.b.c.d.e", "one.two.three@x", "q"} {
		assert.LessOrEqual(t, len([]rune(InitialsOf(id))), 2, id)
	}
}
