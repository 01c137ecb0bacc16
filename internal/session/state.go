// Package session implements the conversation state machine and token
// stream controller that sit between user input and a generation engine:
// position tracking, prompt formatting, token classification, the
// interactive multi-turn loop, and the one-shot completion service.
package session

import (
	"math/rand"
	"time"
)

// fixedSeed is the RNG seed used whenever deterministic sampling is in
// effect. Reseeding to it at every non-multiturn turn boundary is what
// makes independent turns reproducible.
const fixedSeed = 42

// Phase is the lifecycle position of a session.
type Phase int

const (
	// AwaitingTurn: between turns, ready for a new prompt.
	AwaitingTurn Phase = iota
	// TurnInProgress: a generation call is consuming or producing tokens.
	TurnInProgress
	// Terminated: the session is over; no further turns start.
	Terminated
)

func (p Phase) String() string {
	switch p {
	case AwaitingTurn:
		return "awaiting-turn"
	case TurnInProgress:
		return "turn-in-progress"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// State is the mutable record of a conversation session: position counters,
// turn count, and the sampling seed policy. Pure data and transition rules;
// it performs no I/O. One State is active at a time per session and it is
// mutated only by the Loop/Service driving it and by the StreamController's
// termination decisions.
type State struct {
	phase Phase

	absPos     int // total tokens consumed across all turns
	currentPos int // tokens consumed within the current turn
	promptSize int // token count of the current turn's formatted prompt
	turn       int // completed-or-started turn count

	multiturn     bool
	deterministic bool
	maxTokens     int

	rng *rand.Rand
}

// NewState creates the state for a fresh session. When deterministic, the
// RNG starts from the fixed seed; otherwise it is seeded from the clock.
func NewState(multiturn, deterministic bool, maxTokens int) *State {
	s := &State{
		multiturn:     multiturn,
		deterministic: deterministic,
		maxTokens:     maxTokens,
	}
	if deterministic {
		s.rng = rand.New(rand.NewSource(fixedSeed))
	} else {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

func (s *State) Phase() Phase        { return s.phase }
func (s *State) AbsPos() int         { return s.absPos }
func (s *State) CurrentPos() int     { return s.currentPos }
func (s *State) PromptSize() int     { return s.promptSize }
func (s *State) Turn() int           { return s.turn }
func (s *State) Multiturn() bool     { return s.multiturn }
func (s *State) Deterministic() bool { return s.deterministic }
func (s *State) MaxTokens() int      { return s.maxTokens }

// RNG exposes the session-owned sampling source for the duration of one
// generation call. Callers must not retain it.
func (s *State) RNG() *rand.Rand { return s.rng }

// FirstTurn reports whether no context has been consumed yet, which is
// when the single beginning-of-sequence token belongs at the front of the
// prompt.
func (s *State) FirstTurn() bool { return s.absPos == 0 }

// BeginTurn moves AwaitingTurn -> TurnInProgress for a prompt of the given
// token count. The turn-local position restarts at zero.
func (s *State) BeginTurn(promptSize int) {
	s.phase = TurnInProgress
	s.currentPos = 0
	s.promptSize = promptSize
	s.turn++
}

// Advance records one consumed position: absolute first, then turn-local.
// It is called once per emitted token before the token is classified.
func (s *State) Advance() {
	s.absPos++
	s.currentPos++
}

// EndTurn moves TurnInProgress -> AwaitingTurn on an end-of-sequence
// signal. Non-multiturn sessions reset here so each turn is independent;
// multiturn sessions keep their absolute position so context accumulates.
func (s *State) EndTurn() {
	if !s.multiturn {
		s.Reset()
	}
	s.phase = AwaitingTurn
}

// Reset clears accumulated context and, when deterministic, reseeds the
// RNG to the fixed value. It is invoked only from documented transitions:
// EndTurn for non-multiturn sessions, never from stream classification.
func (s *State) Reset() {
	s.absPos = 0
	if s.deterministic {
		s.rng = rand.New(rand.NewSource(fixedSeed))
	}
}

// Exhausted reports whether the session's absolute token budget is spent.
func (s *State) Exhausted() bool {
	return s.absPos >= s.maxTokens
}

// Terminate moves the session to its final phase. Budget exhaustion, the
// quit sentinel, and input exhaustion all land here; none of them re-enter
// AwaitingTurn.
func (s *State) Terminate() {
	s.phase = Terminated
}
