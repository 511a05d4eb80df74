package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil stays nil", input: nil, want: nil},
		{name: "case variants collapse", input: []string{"JSON", " json ", "Json"}, want: []string{"json"}},
		{name: "order follows first sighting", input: []string{"XML", "json", "xml"}, want: []string{"xml", "json"}},
		{name: "empty stays empty", input: []string{}, want: []string{}},
		{name: "only blanks", input: []string{" ", ""}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrimLower(tt.input))
		})
	}
}
