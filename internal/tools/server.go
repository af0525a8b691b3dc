package tools

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/smallbiznis/pike/internal/config"
	forgedomain "github.com/smallbiznis/pike/internal/forge/domain"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"github.com/smallbiznis/pike/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	ServerName    = "Pike Server"
	ServerVersion = "0.0.1"
)

const (
	outcomeSuccess    = "success"
	outcomeValidation = "validation_error"
	outcomeError      = "error"
)

const instructions = `Pike Server provides invoice generation and Laravel Forge site provisioning capabilities.

Available tools:
- generate-invoice-pdf: Create PDF invoices from invoice data
- get-invoice-settings: View current default settings
- update-invoice-settings: Update default settings (from_address, payment_terms, notes, terms, logo_url, tax_percent)
- reset-invoice-settings: Restore the built-in default settings
- forge-list-sites: List all sites on the Forge server
- forge-get-site: Get detailed information about a specific site
- forge-get-site-domains: Get all domains (primary, aliases and certificates) for a site
- forge-delete-site: Delete a site from the Forge server (irreversible)
- forge-create-site: Create a new site on the Forge server (isolated with quick deploy by default)
- forge-install-git-repository: Install a git repository on a Forge site
- forge-setup-ssl: Obtain a Let's Encrypt SSL certificate for a site
- forge-update-deployment-script: Update the deployment script for a site
- forge-get-deployment-script: Get the current deployment script for a site
- forge-deploy-site: Trigger a deployment for a site
- forge-update-nginx-configuration: Update the nginx configuration for a site
- forge-get-nginx-configuration: Get the current nginx configuration for a site
- forge-provision-site: Full site provisioning (create site, install repo, SSL, deploy script, nginx, deploy)

Default settings are automatically applied when generating invoices unless overridden.`

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Invoices invoicedomain.Service
	Settings settingsdomain.Service
	Forge    forgedomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type toolHandler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Server exposes the invoice, settings and site operations as MCP tools.
type Server struct {
	mcp      *server.MCPServer
	log      *zap.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate

	invoices invoicedomain.Service
	settings settingsdomain.Service
	forge    forgedomain.Service

	tools    []mcp.Tool
	handlers map[string]server.ToolHandlerFunc
}

func NewServer(p Params) *Server {
	s := &Server{
		log:      p.Log.Named("tools.server"),
		metrics:  p.Metrics,
		validate: newValidator(),
		invoices: p.Invoices,
		settings: p.Settings,
		forge:    p.Forge,
		handlers: make(map[string]server.ToolHandlerFunc),
	}
	s.mcp = server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	s.registerInvoiceTools()
	s.registerSettingsTools()
	s.registerForgeTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Tools lists the registered tool definitions in registration order.
func (s *Server) Tools() []mcp.Tool {
	out := make([]mcp.Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

func (s *Server) add(tool mcp.Tool, handler toolHandler) {
	wrapped := s.instrument(tool.Name, handler)
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = wrapped
	s.mcp.AddTool(tool, wrapped)
}

// instrument tags the call with a request id, traces, logs and counts it, and
// turns handler errors into tool error results.
func (s *Server) instrument(name string, next toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, requestID := logger.EnsureRequestID(ctx)
		ctx = logger.WithTool(ctx, name)
		ctx, span := otel.Tracer("pike/tools").Start(ctx, "tool."+name)
		defer span.End()
		span.SetAttributes(
			attribute.String("tool.name", name),
			attribute.String("request.id", requestID),
		)

		start := time.Now()
		res, err := next(ctx, req)
		elapsed := time.Since(start)
		log := logger.WithContext(ctx, s.log)

		if err != nil {
			outcome := outcomeError
			var verr *ValidationError
			if errors.As(err, &verr) {
				outcome = outcomeValidation
				log.Info("tool call rejected", zap.Duration("elapsed", elapsed), zap.String("error", err.Error()))
			} else {
				span.RecordError(err)
				span.SetStatus(codes.Error, "tool_failed")
				log.Warn("tool call failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			}
			s.metrics.RecordToolCall(ctx, name, outcome, elapsed)
			return mcp.NewToolResultError(err.Error()), nil
		}

		s.metrics.RecordToolCall(ctx, name, outcomeSuccess, elapsed)
		log.Info("tool call completed", zap.Duration("elapsed", elapsed))
		return res, nil
	}
}

// bind decodes the call arguments into v and validates it.
func (s *Server) bind(req mcp.CallToolRequest, v any) error {
	if req.Params.Arguments != nil {
		if err := req.BindArguments(v); err != nil {
			return &ValidationError{Fields: []FieldError{{Field: "arguments", Message: err.Error()}}}
		}
	}
	return s.check(v)
}

func (s *Server) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return translate(err)
	}
	return nil
}

// jsonResult renders v as the JSON text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}
