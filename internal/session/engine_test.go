package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/parley/internal/engine"
)

// fakeEngine is a scripted engine for session tests. Encode interns one
// token per whitespace-separated word; Generate echoes the prompt
// positions and then either replays a scripted reply or samples reply
// tokens from the request RNG, honoring the stream contract.
type fakeEngine struct {
	instructionTuned bool
	bosID, eosID     int

	nextID int
	ids    map[string]int
	words  map[int]string

	// replies are consumed one per Generate call. A nil replies slice
	// switches to RNG-driven sampling instead.
	replies [][]int
	calls   int

	// sampleVocab is drawn from when sampling via the request RNG.
	sampleVocab []int
	sampleLen   int

	encodeErr error
	decodeErr error

	requests []capturedRequest
}

type capturedRequest struct {
	PromptTokens []int
	StartPos     int
	MaxTokens    int
}

func newFakeEngine(instructionTuned bool) *fakeEngine {
	return &fakeEngine{
		instructionTuned: instructionTuned,
		bosID:            2,
		eosID:            1,
		nextID:           10,
		ids:              make(map[string]int),
		words:            make(map[int]string),
	}
}

// intern assigns a stable id to a word and registers its decoded text.
func (e *fakeEngine) intern(word string) int {
	if id, ok := e.ids[word]; ok {
		return id
	}
	id := e.nextID
	e.nextID++
	e.ids[word] = id
	e.words[id] = word
	return id
}

// internText interns every word of text and returns the ids, for scripting
// replies.
func (e *fakeEngine) internText(text string) []int {
	var out []int
	for _, w := range strings.Fields(text) {
		out = append(out, e.intern(w))
	}
	return out
}

func (e *fakeEngine) InstructionTuned() bool { return e.instructionTuned }
func (e *fakeEngine) BOSToken() int          { return e.bosID }
func (e *fakeEngine) EOSToken() int          { return e.eosID }

func (e *fakeEngine) Encode(text string) ([]int, error) {
	if e.encodeErr != nil {
		err := e.encodeErr
		e.encodeErr = nil
		return nil, &engine.EncodeError{Text: text, Err: err}
	}
	var out []int
	for _, w := range strings.Fields(text) {
		out = append(out, e.intern(w))
	}
	return out, nil
}

func (e *fakeEngine) Decode(tokens []int) (string, error) {
	if e.decodeErr != nil {
		return "", &engine.DecodeError{Tokens: tokens, Err: e.decodeErr}
	}
	var b strings.Builder
	for _, id := range tokens {
		w, ok := e.words[id]
		if !ok {
			return "", &engine.DecodeError{Tokens: tokens, Err: fmt.Errorf("unknown token %d", id)}
		}
		b.WriteString(w)
		b.WriteString(" ")
	}
	return strings.TrimSuffix(b.String(), " "), nil
}

func (e *fakeEngine) Generate(ctx context.Context, req *engine.GenerationRequest, onToken engine.StreamFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.requests = append(e.requests, capturedRequest{
		PromptTokens: append([]int(nil), req.PromptTokens...),
		StartPos:     req.StartPos,
		MaxTokens:    req.MaxTokens,
	})

	for _, id := range req.PromptTokens {
		if !onToken(id, 0) {
			return nil
		}
	}

	var reply []int
	if e.replies != nil {
		if e.calls < len(e.replies) {
			reply = e.replies[e.calls]
		}
	} else {
		for i := 0; i < e.sampleLen; i++ {
			reply = append(reply, e.sampleVocab[req.RNG.Intn(len(e.sampleVocab))])
		}
		reply = append(reply, e.eosID)
	}
	e.calls++

	for _, id := range reply {
		if req.Accept != nil && !req.Accept(id) {
			return nil
		}
		if !onToken(id, 0) {
			return nil
		}
	}
	return nil
}

var errBoom = errors.New("boom")
