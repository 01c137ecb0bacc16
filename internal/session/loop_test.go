package session

import (
	"context"
	"strings"
	"testing"

	"github.com/samcharles93/parley/internal/config"
	"github.com/samcharles93/parley/internal/logger"
)

func testConfig() config.Config {
	return config.Config{
		MaxTokens:          200,
		MaxGeneratedTokens: 50,
		Multiturn:          true,
		Verbosity:          0,
	}
}

func newTestLoop(e *fakeEngine, cfg config.Config, input string) (*Loop, *strings.Builder) {
	var out strings.Builder
	loop := NewLoop(e, cfg, strings.NewReader(input), &out, &strings.Builder{}, logger.Discard())
	return loop, &out
}

func TestLoopQuitSentinel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		input     string
		wantTurns int
	}{
		{name: "lowercase sentinel after one turn", input: "hello\n%q\n", wantTurns: 1},
		{name: "uppercase sentinel immediately", input: "%Q\n", wantTurns: 0},
		{name: "sentinel is not case folded beyond its two forms", input: "%x\n%q\n", wantTurns: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newFakeEngine(true)
			e.replies = [][]int{{e.intern("ok"), e.eosID}, {e.intern("ok"), e.eosID}}

			loop, _ := newTestLoop(e, testConfig(), tc.input)
			if err := loop.Run(context.Background()); err != nil {
				t.Fatalf("run: %v", err)
			}
			if e.calls != tc.wantTurns {
				t.Fatalf("generation turns: got %d, want %d", e.calls, tc.wantTurns)
			}
			if loop.State.Phase() != Terminated {
				t.Fatalf("phase: got %v, want %v", loop.State.Phase(), Terminated)
			}
		})
	}
}

func TestLoopInputExhaustion(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.replies = [][]int{{e.intern("ok"), e.eosID}}

	loop, _ := newTestLoop(e, testConfig(), "hello\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("input exhaustion should be a success path, got %v", err)
	}
	if e.calls != 1 {
		t.Fatalf("generation turns: got %d, want 1", e.calls)
	}
}

func TestLoopBudgetTermination(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.replies = [][]int{
		{e.intern("a"), e.intern("b"), e.intern("c"), e.eosID},
		{e.intern("d"), e.eosID},
	}

	cfg := testConfig()
	cfg.MaxTokens = 10 // first turn spends prompt + reply, exceeding this

	loop, out := newTestLoop(e, cfg, "one two three four five six\nnext\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if e.calls != 1 {
		t.Fatalf("no new turn may start past the budget: got %d turns", e.calls)
	}
	if !strings.Contains(out.String(), "max_tokens (10) exceeded") {
		t.Fatalf("expected budget message naming the budget, got %q", out.String())
	}
	if loop.State.Phase() != Terminated {
		t.Fatalf("phase: got %v, want %v", loop.State.Phase(), Terminated)
	}
}

func TestLoopBOSExactlyOncePerSession(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.replies = [][]int{{e.intern("ok"), e.eosID}, {e.intern("ok"), e.eosID}}

	loop, _ := newTestLoop(e, testConfig(), "first\nsecond\n%q\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(e.requests) != 2 {
		t.Fatalf("requests: got %d, want 2", len(e.requests))
	}
	if e.requests[0].PromptTokens[0] != e.bosID {
		t.Fatalf("first turn must start with BOS, got %v", e.requests[0].PromptTokens)
	}
	for _, id := range e.requests[1].PromptTokens {
		if id == e.bosID {
			t.Fatalf("second turn must not contain BOS: %v", e.requests[1].PromptTokens)
		}
	}
}

func TestLoopMultiturnStartPosCarries(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.replies = [][]int{{e.intern("ok"), e.eosID}, {e.intern("ok"), e.eosID}}

	loop, _ := newTestLoop(e, testConfig(), "first\nsecond\n%q\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if e.requests[0].StartPos != 0 {
		t.Fatalf("first turn start pos: got %d, want 0", e.requests[0].StartPos)
	}
	want := len(e.requests[0].PromptTokens) + 2 // prompt echoes + reply incl. EOS
	if e.requests[1].StartPos != want {
		t.Fatalf("second turn start pos: got %d, want %d", e.requests[1].StartPos, want)
	}
}

func TestLoopNonMultiturnRestartsAtZero(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.replies = [][]int{{e.intern("ok"), e.eosID}, {e.intern("ok"), e.eosID}}

	cfg := testConfig()
	cfg.Multiturn = false

	loop, _ := newTestLoop(e, cfg, "first\nsecond\n%q\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if e.requests[1].StartPos != 0 {
		t.Fatalf("non-multiturn second turn start pos: got %d, want 0", e.requests[1].StartPos)
	}
	// Both turns start a fresh session, so both carry BOS.
	if e.requests[1].PromptTokens[0] != e.bosID {
		t.Fatalf("non-multiturn second turn must start with BOS, got %v", e.requests[1].PromptTokens)
	}
}

func TestLoopTurnBoundaryMarkers(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.replies = [][]int{{e.intern("ok"), e.eosID}, {e.intern("ok"), e.eosID}}

	loop, _ := newTestLoop(e, testConfig(), "first\nsecond\n%q\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	boundary := e.ids["<end_of_turn>"]
	first := e.requests[0].PromptTokens
	if first[1] == boundary {
		t.Fatalf("turn 1 must not open with a turn boundary: %v", first)
	}
	second := e.requests[1].PromptTokens
	if second[0] != boundary {
		t.Fatalf("turn 2 must open with a turn boundary: %v", second)
	}
}

func TestLoopEncodeFailureAbortsTurnOnly(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.encodeErr = errBoom // consumed by the first Encode call
	e.replies = [][]int{{e.intern("ok"), e.eosID}}

	loop, _ := newTestLoop(e, testConfig(), "bad\ngood\n%q\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("encode failure must not end the session: %v", err)
	}
	if e.calls != 1 {
		t.Fatalf("generation turns: got %d, want 1 (failed turn skipped)", e.calls)
	}
	if loop.State.AbsPos() == 0 {
		t.Fatal("the surviving turn should have consumed tokens")
	}
}

func TestLoopThroughputReportAtHighVerbosity(t *testing.T) {
	t.Parallel()

	e := newFakeEngine(true)
	e.replies = [][]int{{e.intern("ok"), e.eosID}}

	cfg := testConfig()
	cfg.Verbosity = 2

	loop, out := newTestLoop(e, cfg, "hello\n%q\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "tokens / sec") {
		t.Fatalf("expected throughput report at verbosity 2, got %q", out.String())
	}
}
