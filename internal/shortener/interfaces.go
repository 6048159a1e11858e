package shortener

// Generator defines the interface for producing short code candidates.
// Candidates are not guaranteed unique; callers check uniqueness against
// the repository and retry a bounded number of times.
type Generator interface {
	// Generate produces one short code candidate of the given length.
	Generate(length int) (string, error)

	// Type returns the type identifier of the generator.
	Type() string
}

// Config holds configuration for short code generation.
type Config struct {
	CodeLength  int `json:"code_length"`  // Length of generated candidates
	MaxAttempts int `json:"max_attempts"` // Candidates tried before giving up
}

// GeneratorType constants
const (
	TypeRandom = "random"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CodeLength:  6,
		MaxAttempts: 5,
	}
}
