// Package engine defines the boundary between the session controller and
// the token-generation machinery. Everything heavy (tensor math, tokenizer
// internals, worker pools) lives behind the Engine interface; the session
// core only frames, sequences, and renders conversations around it.
package engine

import (
	"context"
	"math/rand"
)

// StreamFunc receives one token event at a time during generation. The
// return value asks the engine to continue (true) or stop early (false).
//
// Delivery contract: an engine invokes the callback from exactly one
// logical thread of control at a time, first once per consumed prompt
// position and then once per generated token, in order. Callbacks must
// return quickly; they run on whatever goroutine drives generation.
type StreamFunc func(tokenID int, score float32) bool

// Engine is the external collaborator the session core drives. It is not
// safe for concurrent Generate calls unless the implementation says so.
type Engine interface {
	// Encode maps text to token ids. Failures are reported as *EncodeError.
	Encode(text string) ([]int, error)

	// Decode maps token ids back to text. Failures are reported as
	// *DecodeError.
	Decode(tokens []int) (string, error)

	// Generate runs one generation call, streaming events into onToken
	// per the StreamFunc contract, and returns once the engine is done
	// or onToken requested a stop.
	Generate(ctx context.Context, req *GenerationRequest, onToken StreamFunc) error

	// InstructionTuned reports whether the model expects structured turn
	// markers in its input.
	InstructionTuned() bool

	// BOSToken is the beginning-of-sequence token id.
	BOSToken() int

	// EOSToken is the end-of-sequence token id.
	EOSToken() int
}

// GenerationRequest describes a single generation call. It is constructed
// fresh per turn, owned by the caller, and discarded after Generate returns.
type GenerationRequest struct {
	// PromptTokens is the formatted, encoded prompt for this turn,
	// including the session BOS token on the first turn.
	PromptTokens []int

	// StartPos is the absolute position the prompt begins at: 0 for a
	// fresh context, the session's absolute position otherwise.
	StartPos int

	// MaxTokens bounds the total positions (prompt + generated) the call
	// may consume.
	MaxTokens int

	// MaxGeneratedTokens bounds newly generated tokens for this call.
	// Zero means no per-turn cap.
	MaxGeneratedTokens int

	// Accept filters candidate tokens during sampling. Nil accepts all.
	Accept func(tokenID int) bool

	// RNG drives sampling. It is owned exclusively by the session state;
	// engines must not retain it past the call.
	RNG *rand.Rand

	// Verbosity is forwarded to the engine for its own diagnostics.
	Verbosity int
}
