package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/parley/internal/engine"
	"github.com/samcharles93/parley/internal/logger"
	"github.com/samcharles93/parley/internal/session"
)

func chatCmd() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive multi-turn session against a generation engine",
		Flags: joinFlags(engineFlags(), sessionFlags(), loggingFlags()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyFileConfig(cmd, loadFileConfig())

			cfg := sessionConfig()
			if err := cfg.Validate(); err != nil {
				_ = cli.ShowSubcommandHelp(cmd)
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			log := newLogger()
			if engine.PinThreads(cfg.NumThreads) {
				log.Debug("pinned main thread", "threads", cfg.NumThreads)
			}

			eng := buildEngine()
			printBanner(os.Stdout, cfg, endpoint)

			loop := session.NewLoop(eng, cfg, os.Stdin, os.Stdout, os.Stderr, log)
			if err := loop.Run(ctx); err != nil {
				return cli.Exit(fmt.Sprintf("error: session: %v", err), 1)
			}
			return nil
		},
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

func newLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.Default()
	default:
		return logger.Pretty(os.Stderr, level)
	}
}
