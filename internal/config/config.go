package config

import "fmt"

// Config holds the values the session core requires, regardless of whether
// they arrived via CLI flags, a config file, or an API request.
type Config struct {
	// MaxTokens is the absolute token budget for a whole session. The
	// session terminates once the absolute position reaches it.
	MaxTokens int

	// MaxGeneratedTokens caps how many tokens a single turn may generate.
	// Zero means "bounded only by MaxTokens".
	MaxGeneratedTokens int

	// Multiturn keeps conversational context across turns. When false,
	// every turn starts from a fresh context.
	Multiturn bool

	// Deterministic seeds the sampling RNG to a fixed value at session
	// start and at every non-multiturn turn boundary.
	Deterministic bool

	// Verbosity: 0 silent, 1 interactive niceties, 2+ stats and markers.
	Verbosity int

	// NumThreads is forwarded to the engine's worker pool. Values above
	// the pinning threshold also request best-effort core pinning.
	NumThreads int
}

// ValidationError reports a missing or out-of-range configuration value.
// It is fatal at startup and is surfaced together with usage help.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Validate checks the required values. It returns the first problem found
// so the caller can print it next to usage text.
func (c *Config) Validate() error {
	if c.MaxTokens <= 0 {
		return &ValidationError{Field: "max_tokens", Reason: "must be a positive token budget"}
	}
	if c.MaxGeneratedTokens < 0 {
		return &ValidationError{Field: "max_generated_tokens", Reason: "must not be negative"}
	}
	if c.Verbosity < 0 {
		return &ValidationError{Field: "verbosity", Reason: "must not be negative"}
	}
	if c.NumThreads < 0 {
		return &ValidationError{Field: "num_threads", Reason: "must not be negative"}
	}
	return nil
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		MaxTokens:          3072,
		MaxGeneratedTokens: 2048,
		Verbosity:          1,
	}
}
