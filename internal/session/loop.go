package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/samcharles93/parley/internal/config"
	"github.com/samcharles93/parley/internal/engine"
	"github.com/samcharles93/parley/internal/logger"
)

// Quit sentinels, matched as two literal forms.
const (
	quitSentinel      = "%q"
	quitSentinelUpper = "%Q"
)

// Loop is the interactive multi-turn driver: it reads a prompt, formats
// it, advances session state, invokes the engine, and repeats until the
// quit sentinel arrives, input is exhausted, or the token budget is spent.
// It is single-threaded and blocks on input reads and generation calls.
type Loop struct {
	Engine    engine.Engine
	Formatter Formatter
	State     *State
	Config    config.Config

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	Log    logger.Logger
}

// NewLoop builds an interactive session over the given engine and streams.
func NewLoop(eng engine.Engine, cfg config.Config, in io.Reader, out, errOut io.Writer, log logger.Logger) *Loop {
	return &Loop{
		Engine: eng,
		Formatter: Formatter{
			InstructionTuned: eng.InstructionTuned(),
			BOSTokenID:       eng.BOSToken(),
		},
		State:  NewState(cfg.Multiturn, cfg.Deterministic, cfg.MaxTokens),
		Config: cfg,
		In:     in,
		Out:    out,
		ErrOut: errOut,
		Log:    log,
	}
}

// Run drives the session until a terminal state. Budget exhaustion, the
// quit sentinel, and end of input are all success paths and return nil.
func (l *Loop) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(l.In)

	for !l.State.Exhausted() {
		if l.Config.Verbosity >= 1 {
			fmt.Fprint(l.Out, "> ")
		}
		if !scanner.Scan() {
			// Input exhausted: normal termination, not an error.
			l.State.Terminate()
			return scanner.Err()
		}
		line := scanner.Text()
		if line == quitSentinel || line == quitSentinelUpper {
			l.State.Terminate()
			return nil
		}

		if err := l.runTurn(ctx, line); err != nil {
			if ctx.Err() != nil {
				l.State.Terminate()
				return err
			}
			// Turn-fatal only: report and keep the session going.
			l.Log.Error("turn aborted", "turn", l.State.Turn(), "error", err)
		}
	}

	fmt.Fprintf(l.Out, "max_tokens (%d) exceeded. Use a larger value if desired using the --max-tokens flag.\n",
		l.State.MaxTokens())
	l.State.Terminate()
	return nil
}

func (l *Loop) runTurn(ctx context.Context, raw string) error {
	formatted := l.Formatter.Format(raw, l.State)
	tokens, err := l.Engine.Encode(formatted)
	if err != nil {
		return err
	}
	tokens = l.Formatter.WithBOS(tokens, l.State)

	startPos := l.State.AbsPos()
	l.State.BeginTurn(len(tokens))

	ctrl := NewStreamController(Interactive, l.State, l.Engine, l.Engine.EOSToken(), l.Out, l.ErrOut, l.Config.Verbosity)

	fmt.Fprint(l.ErrOut, "\n[ Reading prompt ] ")

	start := time.Now()
	genErr := l.Engine.Generate(ctx, &engine.GenerationRequest{
		PromptTokens:       tokens,
		StartPos:           startPos,
		MaxTokens:          l.Config.MaxTokens,
		MaxGeneratedTokens: l.Config.MaxGeneratedTokens,
		RNG:                l.State.RNG(),
		Verbosity:          l.Config.Verbosity,
	}, ctrl.Callback())
	elapsed := time.Since(start)

	if genErr != nil {
		return genErr
	}
	if err := ctrl.Err(); err != nil {
		return err
	}

	if l.Config.Verbosity >= 2 {
		turnTokens := l.State.CurrentPos()
		tps := 0.0
		if secs := elapsed.Seconds(); secs > 0 {
			tps = float64(turnTokens) / secs
		}
		fmt.Fprintf(l.Out, "%d tokens (%d total tokens)\n%.2f tokens / sec\n",
			turnTokens, l.State.AbsPos(), tps)
	}
	fmt.Fprint(l.Out, "\n\n")
	return nil
}
