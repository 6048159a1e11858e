package shortener

import (
	"crypto/rand"
	"fmt"
)

// charset is the alphabet for generated codes. Codes are case-sensitive.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomGenerator produces random short code candidates from a fixed
// 62-character alphabet using crypto/rand.
type RandomGenerator struct{}

// NewRandomGenerator creates a new random generator.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// Generate produces one candidate of the given length.
func (g *RandomGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length: %d", length)
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	chars := make([]byte, length)
	for i, b := range bytes {
		chars[i] = charset[int(b)%len(charset)]
	}

	return string(chars), nil
}

// Type returns the generator type.
func (g *RandomGenerator) Type() string {
	return TypeRandom
}

// Ensure RandomGenerator implements the interface
var _ Generator = (*RandomGenerator)(nil)
