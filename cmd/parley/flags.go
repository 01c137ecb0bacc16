package main

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/parley/internal/config"
	"github.com/samcharles93/parley/internal/engine"
)

var (
	endpoint         string
	instructionTuned bool
	bosTokenID       int64
	eosTokenID       int64
	httpTimeout      time.Duration

	maxTokens          int64
	maxGeneratedTokens int64
	multiturn          bool
	deterministic      bool
	verbosity          int64
	numThreads         int64

	logLevel  string
	logFormat string
)

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "endpoint",
			Aliases:     []string{"e"},
			Usage:       "base URL of the llama-server engine",
			Value:       "http://127.0.0.1:8080",
			Destination: &endpoint,
		},
		&cli.BoolFlag{
			Name:        "instruction-tuned",
			Aliases:     []string{"it"},
			Usage:       "model expects user/model turn markers",
			Value:       true,
			Destination: &instructionTuned,
		},
		&cli.Int64Flag{
			Name:        "bos-token",
			Usage:       "beginning-of-sequence token id",
			Value:       2,
			Destination: &bosTokenID,
		},
		&cli.Int64Flag{
			Name:        "eos-token",
			Usage:       "end-of-sequence token id",
			Value:       1,
			Destination: &eosTokenID,
		},
		&cli.DurationFlag{
			Name:        "http-timeout",
			Usage:       "timeout for a single generation call",
			Value:       300 * time.Second,
			Destination: &httpTimeout,
		},
	}
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "max-tokens",
			Aliases:     []string{"max_tokens"},
			Usage:       "absolute token budget for the whole session",
			Value:       3072,
			Destination: &maxTokens,
		},
		&cli.Int64Flag{
			Name:        "max-generated-tokens",
			Aliases:     []string{"max_generated_tokens", "n"},
			Usage:       "cap on generated tokens per turn (0 = budget only)",
			Value:       2048,
			Destination: &maxGeneratedTokens,
		},
		&cli.BoolFlag{
			Name:        "multiturn",
			Usage:       "keep conversational context across turns",
			Destination: &multiturn,
		},
		&cli.BoolFlag{
			Name:        "deterministic",
			Usage:       "use a fixed sampling seed",
			Destination: &deterministic,
		},
		&cli.Int64Flag{
			Name:        "verbosity",
			Aliases:     []string{"v"},
			Usage:       "output verbosity (0 silent, 1 interactive, 2+ stats)",
			Value:       1,
			Destination: &verbosity,
		},
		&cli.Int64Flag{
			Name:        "num-threads",
			Aliases:     []string{"num_threads"},
			Usage:       "engine worker threads (>10 also requests core pinning)",
			Destination: &numThreads,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func sessionConfig() config.Config {
	return config.Config{
		MaxTokens:          int(maxTokens),
		MaxGeneratedTokens: int(maxGeneratedTokens),
		Multiturn:          multiturn,
		Deterministic:      deterministic,
		Verbosity:          int(verbosity),
		NumThreads:         int(numThreads),
	}
}

func buildEngine() *engine.Client {
	return engine.NewClient(engine.ClientConfig{
		Endpoint:         endpoint,
		InstructionTuned: instructionTuned,
		BOSTokenID:       int(bosTokenID),
		EOSTokenID:       int(eosTokenID),
		HTTPTimeout:      httpTimeout,
	})
}
