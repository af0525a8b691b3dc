package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	toolCalls         metric.Int64Counter
	toolDuration      metric.Float64Histogram
	invoicesGenerated metric.Int64Counter
	logoFallbacks     metric.Int64Counter
	settingsWrites    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "pike"
	}
	meter := provider.Meter(name)

	toolCalls, err := meter.Int64Counter("pike_tool_calls_total")
	if err != nil {
		return nil, err
	}
	toolDuration, err := meter.Float64Histogram("pike_tool_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	invoicesGenerated, err := meter.Int64Counter("pike_invoices_generated_total")
	if err != nil {
		return nil, err
	}
	logoFallbacks, err := meter.Int64Counter("pike_logo_fallbacks_total")
	if err != nil {
		return nil, err
	}
	settingsWrites, err := meter.Int64Counter("pike_invoice_settings_writes_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		toolCalls:         toolCalls,
		toolDuration:      toolDuration,
		invoicesGenerated: invoicesGenerated,
		logoFallbacks:     logoFallbacks,
		settingsWrites:    settingsWrites,
	}, nil
}

// RecordToolCall counts a tool invocation and its latency.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("tool", strings.TrimSpace(tool)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.toolCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordInvoiceGenerated counts rendered invoice documents.
func (m *Metrics) RecordInvoiceGenerated(ctx context.Context, withLogo bool) {
	if m == nil {
		return
	}
	m.invoicesGenerated.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.Bool("logo", withLogo))...))
}

// RecordLogoFallback counts logo sources that could not be loaded.
func (m *Metrics) RecordLogoFallback(ctx context.Context, source, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("source", strings.TrimSpace(source)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.logoFallbacks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSettingsWrite counts invoice settings mutations.
func (m *Metrics) RecordSettingsWrite(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.settingsWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"tool":        {},
	"outcome":     {},
	"logo":        {},
	"source":      {},
	"reason":      {},
	"operation":   {},
	"step":        {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
