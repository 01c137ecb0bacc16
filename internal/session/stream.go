package session

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// Mode selects what the controller does with generated text.
type Mode int

const (
	// Interactive emits text incrementally to the output writer as each
	// token decodes.
	Interactive Mode = iota
	// Collect accumulates raw token ids for one batched decode after the
	// generation call returns.
	Collect
)

// StreamEvent is one token emission from the engine. Events are ephemeral;
// nothing beyond the controller's current decision retains them.
type StreamEvent struct {
	TokenID int
	Score   float32
}

// Decoder is the slice of the engine the controller needs.
type Decoder interface {
	Decode(tokens []int) (string, error)
}

// StreamController receives one token event at a time from the engine and
// decides: echo it, buffer it, or apply a session transition. Events must
// be delivered from one logical thread of control at a time; the controller
// holds no locks of its own.
type StreamController struct {
	mode      Mode
	decoder   Decoder
	eosID     int
	out       io.Writer
	progress  io.Writer
	verbosity int

	st        *State
	collected []int
	stop      bool
	err       error
}

// NewStreamController wires a controller to the session state it advances.
// out receives generated text in Interactive mode; progress receives the
// lightweight prompt-reading indicator (typically stderr).
func NewStreamController(mode Mode, st *State, decoder Decoder, eosID int, out, progress io.Writer, verbosity int) *StreamController {
	return &StreamController{
		mode:      mode,
		decoder:   decoder,
		eosID:     eosID,
		out:       out,
		progress:  progress,
		verbosity: verbosity,
		st:        st,
	}
}

// RequestStop makes the next event return false to the engine, stopping
// generation early. This implements the consumer quit path; a normal
// end-of-sequence is handled as a classification case instead so the
// engine can finish its call cleanly.
func (c *StreamController) RequestStop() { c.stop = true }

// Err reports the first failure the controller hit (a decode error). The
// turn it occurred in is aborted; session state stays valid.
func (c *StreamController) Err() error { return c.err }

// Collected returns the generated token ids accumulated in Collect mode.
// Prompt echoes and the end-of-sequence marker are never included.
func (c *StreamController) Collected() []int { return c.collected }

// OnToken classifies one event and reports whether generation should
// continue. Position counters advance (absolute first, then turn-local)
// before classification.
func (c *StreamController) OnToken(ev StreamEvent) bool {
	c.st.Advance()

	switch {
	case c.st.CurrentPos() < c.st.PromptSize():
		// Still consuming echoed prompt positions, nothing decoded yet.
		if c.mode == Interactive && c.progress != nil {
			fmt.Fprint(c.progress, ".")
		}

	case ev.TokenID == c.eosID:
		c.st.EndTurn()
		if c.mode == Interactive && c.verbosity >= 2 {
			fmt.Fprintln(c.out, "\n[ End ]")
		}

	default:
		if c.mode == Collect {
			// Position promptSize is still the prompt's final echoed
			// token; only positions past it are generated content.
			if c.st.CurrentPos() > c.st.PromptSize() {
				c.collected = append(c.collected, ev.TokenID)
			}
			break
		}
		text, err := c.decoder.Decode([]int{ev.TokenID})
		if err != nil {
			c.err = err
			return false
		}
		if c.firstGenerated() {
			// Control-token formatting tends to leave a stray leading
			// blank, so the first generated token is trimmed.
			text = strings.TrimLeft(text, " \t\n")
			if c.verbosity >= 1 {
				fmt.Fprint(c.out, "\n\n")
			}
		}
		fmt.Fprint(c.out, text)
	}

	return !c.stop
}

// firstGenerated reports whether the current position is the first token
// past the prompt. CurrentPos was already advanced, hence the +1.
func (c *StreamController) firstGenerated() bool {
	return c.st.CurrentPos() == c.st.PromptSize()+1
}

// Consume drains a finite event sequence through the controller, stopping
// when a decision requests it. It lets tests and pull-style engines drive
// classification without a push callback.
func (c *StreamController) Consume(events iter.Seq[StreamEvent]) {
	for ev := range events {
		if !c.OnToken(ev) {
			return
		}
	}
}

// Callback adapts the controller to the engine's push-style stream
// delivery.
func (c *StreamController) Callback() func(tokenID int, score float32) bool {
	return func(tokenID int, score float32) bool {
		return c.OnToken(StreamEvent{TokenID: tokenID, Score: score})
	}
}
