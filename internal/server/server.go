package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pike/internal/config"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/smallbiznis/pike/internal/observability"
	obslogger "github.com/smallbiznis/pike/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pike/internal/observability/metrics"
	obstracing "github.com/smallbiznis/pike/internal/observability/tracing"
	"github.com/smallbiznis/pike/internal/storage"
	"github.com/smallbiznis/pike/internal/tools"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultAddr  = ":8080"
	readyTimeout = 3 * time.Second
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(run),
)

type Params struct {
	fx.In

	ObsConfig   observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics
	Tools       *tools.Server
	Store       storage.Store
	Redis       *redis.Client `optional:"true"`
}

const toolPath = "/mcp"

// NewEngine builds the HTTP transport: the tool endpoint at /mcp plus probes
// and Prometheus metrics.
func NewEngine(p Params) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug: p.ObsConfig.Debug(),
	}))
	r.Use(obstracing.GinMiddleware(obstracing.MiddlewareConfig{
		ToolPath:  toolPath,
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}))
	r.Use(p.HTTPMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(p.Store, p.Redis))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mcpHandler := server.NewStreamableHTTPServer(p.Tools.MCP(),
		server.WithEndpointPath(toolPath),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return obslogger.WithRequestID(ctx, obslogger.RequestIDFromContext(r.Context()))
		}),
	)
	r.Any(toolPath, gin.WrapH(mcpHandler))

	return r
}

// readiness verifies the blob store and, when configured, Redis respond.
func readiness(store storage.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		if _, err := store.Exists(ctx, settingsdomain.StorageKey); err != nil {
			AbortWithError(c, errors.Join(ErrServiceUnavailable, err))
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				AbortWithError(c, errors.Join(ErrServiceUnavailable, err))
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	if cfg.MCP.Transport != config.TransportHTTP {
		return
	}

	addr := strings.TrimSpace(cfg.MCP.HTTPAddr)
	if addr == "" {
		addr = defaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("serving tools over http", zap.String("addr", addr), zap.String("path", toolPath))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
