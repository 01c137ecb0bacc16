package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/parley/internal/engine"
	"github.com/samcharles93/parley/internal/session"
)

func completeCmd() *cli.Command {
	var prompt string

	return &cli.Command{
		Name:      "complete",
		Usage:     "One-shot completion: single prompt in, single completion out",
		ArgsUsage: "[prompt]",
		Flags: joinFlags(engineFlags(), sessionFlags(), loggingFlags(),
			[]cli.Flag{
				&cli.StringFlag{
					Name:        "prompt",
					Aliases:     []string{"p"},
					Usage:       "prompt text (may also be given as the trailing argument)",
					Destination: &prompt,
				},
			}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyFileConfig(cmd, loadFileConfig())

			if prompt == "" {
				prompt = cmd.Args().First()
			}
			if prompt == "" {
				_ = cli.ShowSubcommandHelp(cmd)
				return cli.Exit("error: a prompt is required", 1)
			}

			cfg := sessionConfig()
			if err := cfg.Validate(); err != nil {
				_ = cli.ShowSubcommandHelp(cmd)
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			log := newLogger()
			if engine.PinThreads(cfg.NumThreads) {
				log.Debug("pinned main thread", "threads", cfg.NumThreads)
			}

			svc := &session.Service{Engine: buildEngine(), Config: cfg}
			res, err := svc.Complete(ctx, prompt)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: complete: %v", err), 1)
			}

			fmt.Println(res.Text)
			if cfg.Verbosity >= 2 {
				fmt.Fprintf(os.Stderr, "%d prompt + %d generated tokens in %s (%.2f tokens / sec)\n",
					res.PromptTokens, res.CompletionTokens, res.Duration, res.TPS())
			}
			return nil
		},
	}
}
