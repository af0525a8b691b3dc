package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pike/internal/clock"
	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/invoice/compute"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	"github.com/smallbiznis/pike/internal/invoice/render"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"github.com/smallbiznis/pike/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultDueDays = 30

// LogoResolver turns logo references into image bytes, or nil when unavailable.
type LogoResolver interface {
	Resolve(ctx context.Context, ref string) []byte
	Decode(ctx context.Context, encoded string) []byte
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Settings settingsdomain.Service
	Logo     LogoResolver
	Renderer render.Renderer
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	settings settingsdomain.Service
	logo     LogoResolver
	renderer render.Renderer
	metrics  *metrics.Metrics
	dueDays  int
}

func NewService(p Params) invoicedomain.Service {
	dueDays := p.Config.Invoice.DueDays
	if dueDays <= 0 {
		dueDays = defaultDueDays
	}
	return &Service{
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		settings: p.Settings,
		logo:     p.Logo,
		renderer: p.Renderer,
		metrics:  p.Metrics,
		dueDays:  dueDays,
	}
}

func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.Document, error) {
	ctx, span := otel.Tracer("pike/invoice").Start(ctx, "invoice.generate")
	defer span.End()

	invoiceNumber := strings.TrimSpace(req.InvoiceNumber)
	if invoiceNumber == "" {
		return nil, invoicedomain.ErrInvalidInvoiceNumber
	}
	if strings.TrimSpace(req.BillToAddress) == "" {
		return nil, invoicedomain.ErrInvalidBillTo
	}
	if len(req.LineItems) == 0 {
		return nil, invoicedomain.ErrEmptyLineItems
	}

	defaults, err := s.settings.All(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load settings")
		return nil, err
	}

	computation := compute.Compute(req, defaults)
	logo := s.resolveLogo(ctx, req, defaults)

	issued := s.clock.Now()
	due := issued.AddDate(0, 0, s.dueDays)

	content, err := s.renderer.Render(ctx, render.Input{
		InvoiceNumber: invoiceNumber,
		IssueDate:     issued,
		DueDate:       due,
		Computation:   computation,
		Logo:          logo,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render")
		return nil, err
	}

	doc := &invoicedomain.Document{
		ID:            s.genID.Generate(),
		InvoiceNumber: invoiceNumber,
		IssueDate:     issued,
		DueDate:       due,
		Computation:   computation,
		HasLogo:       render.SupportsLogo(logo),
		Content:       content,
		MimeType:      invoicedomain.MimeTypePDF,
	}

	span.SetAttributes(
		attribute.Int("invoice.line_items", len(computation.LineItems)),
		attribute.Bool("invoice.logo", doc.HasLogo),
	)
	s.metrics.RecordInvoiceGenerated(ctx, doc.HasLogo)
	logger.WithContext(ctx, s.log).Info("invoice generated",
		zap.String("document_id", doc.ID.String()),
		zap.String("invoice_number", invoiceNumber),
		zap.Int("line_items", len(computation.LineItems)),
		zap.String("total", computation.Total.String()),
		zap.Int("bytes", len(content)),
		zap.Duration("due_in", time.Duration(s.dueDays)*24*time.Hour),
	)
	return doc, nil
}

// resolveLogo prefers inline request data over the stored logo_url.
func (s *Service) resolveLogo(ctx context.Context, req invoicedomain.GenerateRequest, defaults settingsdomain.Settings) []byte {
	if s.logo == nil {
		return nil
	}
	if req.LogoBase64 != nil && strings.TrimSpace(*req.LogoBase64) != "" {
		return s.logo.Decode(ctx, *req.LogoBase64)
	}
	return s.logo.Resolve(ctx, defaults.String(settingsdomain.KeyLogoURL))
}

var _ invoicedomain.Service = (*Service)(nil)
