package tools

import (
	"context"
	"errors"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/smallbiznis/pike/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("tools.server",
	fx.Provide(NewServer),
	fx.Invoke(RegisterStdio),
)

// RegisterStdio serves the tools over stdin/stdout when that transport is
// selected. The app shuts down once the client closes the stream.
func RegisterStdio(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, srv *Server, log *zap.Logger) {
	if cfg.MCP.Transport != config.TransportStdio {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	stdio := server.NewStdioServer(srv.MCP())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := stdio.Listen(ctx, os.Stdin, os.Stdout)
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Error("stdio transport stopped", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			log.Info("serving tools over stdio", zap.String("server", ServerName), zap.String("version", ServerVersion))
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
