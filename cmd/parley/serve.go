package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/parley/internal/api"
	"github.com/samcharles93/parley/internal/engine"
	"github.com/samcharles93/parley/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the completion API over HTTP",
		Flags: joinFlags(engineFlags(), sessionFlags(), loggingFlags(),
			[]cli.Flag{
				&cli.StringFlag{
					Name:        "addr",
					Usage:       "listen address",
					Value:       "127.0.0.1:8071",
					Destination: &addr,
				},
				&cli.DurationFlag{
					Name:        "read-timeout",
					Usage:       "read header timeout",
					Value:       30 * time.Second,
					Destination: &readTimeout,
				},
			}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fc := loadFileConfig()
			applyFileConfig(cmd, fc)
			if fc.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = fc.ServerAddress
			}

			cfg := sessionConfig()
			if err := cfg.Validate(); err != nil {
				_ = cli.ShowSubcommandHelp(cmd)
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			log := newLogger()
			ctx = logger.WithContext(ctx, log)

			if engine.PinThreads(cfg.NumThreads) {
				log.Debug("pinned main thread", "threads", cfg.NumThreads)
			}

			server := api.NewServer(buildEngine(), cfg)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
