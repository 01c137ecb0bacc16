package session

// Control markup for instruction-tuned models.
const (
	startOfTurnUser  = "<start_of_turn>user\n"
	startOfTurnModel = "<start_of_turn>model\n"
	endOfTurn        = "<end_of_turn>\n"
)

// Formatter builds the text actually sent to the tokenizer for one turn.
// It is deterministic given the same inputs and has no side effects.
type Formatter struct {
	// InstructionTuned wraps prompts in user/model turn markers.
	InstructionTuned bool

	// BOSTokenID is prepended to the first token sequence of a session.
	BOSTokenID int
}

// Format wraps raw user text with model-specific control markup. For
// instruction-tuned models the text becomes a user turn followed by the
// opening of a model turn; continuations of a multiturn session (absolute
// position > 0) additionally get an end-of-turn prefix so the engine sees
// a boundary between turns. Base models pass through unchanged.
func (f Formatter) Format(raw string, st *State) string {
	if !f.InstructionTuned {
		return raw
	}
	formatted := startOfTurnUser + raw + endOfTurn + startOfTurnModel
	if st.AbsPos() > 0 {
		formatted = endOfTurn + formatted
	}
	return formatted
}

// WithBOS prepends the beginning-of-sequence token when this is the very
// first turn of the session. This happens exactly once per session, never
// per turn.
func (f Formatter) WithBOS(tokens []int, st *State) []int {
	if !st.FirstTurn() {
		return tokens
	}
	out := make([]int, 0, len(tokens)+1)
	out = append(out, f.BOSTokenID)
	return append(out, tokens...)
}
