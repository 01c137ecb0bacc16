package engine

import "fmt"

// EncodeError reports malformed input text. It is fatal to the current
// turn, never to the process; the session continues with the next turn.
type EncodeError struct {
	Text string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %q: %v", truncate(e.Text, 64), e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports malformed or unexpected token ids. Same policy as
// EncodeError: abort the turn, keep the session.
type DecodeError struct {
	Tokens []int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %d token(s): %v", len(e.Tokens), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
