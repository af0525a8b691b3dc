package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HeaderMCPSessionID carries the streamable HTTP session of a tool client.
const HeaderMCPSessionID = "Mcp-Session-Id"

// MiddlewareConfig selects which routes are traced and which one serves tools.
type MiddlewareConfig struct {
	// ToolPath is the route of the streamable tool endpoint.
	ToolPath string
	// SkipPaths are never traced (probes, scrapes).
	SkipPaths []string
}

// GinMiddleware instruments inbound HTTP requests. Requests to the tool
// endpoint are named "MCP <method>" and tagged with the client session.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	tracer := otel.Tracer("pike/http")
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		method := strings.ToUpper(c.Request.Method)
		isTool := cfg.ToolPath != "" && c.Request.URL.Path == cfg.ToolPath

		name := "HTTP " + method
		if isTool {
			name = "MCP " + method
		}
		ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
			if member, err := baggage.NewMember("request_id", requestID); err == nil {
				if bag, err := baggage.New(member); err == nil {
					ctx = baggage.ContextWithBaggage(ctx, bag)
				}
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if isTool {
			attrs := []attribute.KeyValue{attribute.String("mcp.transport", "streamable_http")}
			if session := strings.TrimSpace(c.GetHeader(HeaderMCPSessionID)); session != "" {
				attrs = append(attrs, attribute.String("mcp.session_id", session))
			}
			span.SetAttributes(SafeAttributes(attrs...)...)
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		if !isTool {
			span.SetName(name + " " + route)
		}
		status := c.Writer.Status()
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		}
	}
}
