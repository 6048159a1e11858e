package service

import (
	"fmt"
)

// TestGenerator is a deterministic generator for testing purposes.
type TestGenerator struct {
	counter int
	fixed   string
}

// NewTestGenerator creates a generator producing code1, code2, ...
func NewTestGenerator() *TestGenerator {
	return &TestGenerator{}
}

// NewFixedGenerator creates a generator that always returns the same code,
// useful for exercising the collision-exhaustion path.
func NewFixedGenerator(code string) *TestGenerator {
	return &TestGenerator{fixed: code}
}

// Generate produces the next test code.
func (g *TestGenerator) Generate(length int) (string, error) {
	if g.fixed != "" {
		return g.fixed, nil
	}
	g.counter++
	return fmt.Sprintf("code%02d", g.counter), nil
}

// Type returns the generator type.
func (g *TestGenerator) Type() string {
	return "test"
}
