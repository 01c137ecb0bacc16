package session

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/samcharles93/parley/internal/config"
	"github.com/samcharles93/parley/internal/engine"
)

// Service is the one-shot, non-interactive variant of the session core:
// single prompt in, single completion string out, built from the same
// State/StreamController primitives with the turn count fixed at one.
type Service struct {
	Engine engine.Engine
	Config config.Config
}

// Result carries the completion text and per-call accounting.
type Result struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// TPS is the generated-token throughput of the call.
func (r Result) TPS() float64 {
	if secs := r.Duration.Seconds(); secs > 0 {
		return float64(r.CompletionTokens) / secs
	}
	return 0
}

// Complete runs a single turn against a fresh context: multiturn is always
// false and generation starts at position zero, so nothing carries over
// between calls. Tokens are collected rather than streamed and decoded in
// one batch once generation returns.
//
// Only genuinely generated token ids are accumulated, so the batch decode
// contains no echoed prompt content and no character-offset trimming of
// the result is needed.
func (s *Service) Complete(ctx context.Context, prompt string) (Result, error) {
	st := NewState(false, s.Config.Deterministic, s.Config.MaxTokens)

	formatter := Formatter{
		InstructionTuned: s.Engine.InstructionTuned(),
		BOSTokenID:       s.Engine.BOSToken(),
	}

	formatted := formatter.Format(prompt, st)
	tokens, err := s.Engine.Encode(formatted)
	if err != nil {
		return Result{}, err
	}
	tokens = formatter.WithBOS(tokens, st)

	st.BeginTurn(len(tokens))

	ctrl := NewStreamController(Collect, st, s.Engine, s.Engine.EOSToken(), io.Discard, nil, s.Config.Verbosity)

	start := time.Now()
	err = s.Engine.Generate(ctx, &engine.GenerationRequest{
		PromptTokens:       tokens,
		StartPos:           0,
		MaxTokens:          s.Config.MaxTokens,
		MaxGeneratedTokens: s.Config.MaxGeneratedTokens,
		RNG:                st.RNG(),
		Verbosity:          s.Config.Verbosity,
	}, ctrl.Callback())
	duration := time.Since(start)
	if err != nil {
		return Result{}, err
	}
	if err := ctrl.Err(); err != nil {
		return Result{}, err
	}

	generated := ctrl.Collected()
	text := ""
	if len(generated) > 0 {
		text, err = s.Engine.Decode(generated)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		Text:             strings.TrimLeft(text, " \t\n"),
		PromptTokens:     len(tokens),
		CompletionTokens: len(generated),
		Duration:         duration,
	}, nil
}
