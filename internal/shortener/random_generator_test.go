package shortener

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenerator_Generate(t *testing.T) {
	generator := NewRandomGenerator()

	tests := []struct {
		name   string
		length int
	}{
		{name: "default length", length: 6},
		{name: "minimum length", length: 4},
		{name: "maximum length", length: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := generator.Generate(tt.length)
			require.NoError(t, err)
			assert.Len(t, code, tt.length)

			for _, char := range code {
				assert.True(t, strings.ContainsRune(charset, char),
					"code contains character outside alphabet: %c", char)
			}
		})
	}
}

func TestRandomGenerator_GenerateInvalidLength(t *testing.T) {
	generator := NewRandomGenerator()

	for _, length := range []int{0, -1} {
		_, err := generator.Generate(length)
		assert.Error(t, err)
	}
}

func TestRandomGenerator_GenerateUnique(t *testing.T) {
	generator := NewRandomGenerator()

	// With a 62^6 keyspace, 100 draws colliding would signal a broken
	// entropy source rather than chance.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generator.Generate(6)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code generated: %s", code)
		seen[code] = true
	}
}

func TestRandomGenerator_Type(t *testing.T) {
	assert.Equal(t, TypeRandom, NewRandomGenerator().Type())
}
