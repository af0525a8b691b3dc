package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StepOutcomeSuccess = "success"
	StepOutcomeFailure = "failure"
)

const (
	StepReasonDeadlineExceeded = "deadline_exceeded"
	StepReasonCanceled         = "canceled"
	StepReasonUnauthorized     = "unauthorized"
	StepReasonNotFound         = "not_found"
	StepReasonValidation       = "validation"
	StepReasonRateLimited      = "rate_limited"
	StepReasonRemote           = "remote_error"
	StepReasonUnknown          = "unknown"
)

// statusCoder is satisfied by errors that carry an upstream HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// ProvisioningMetrics captures site provisioning health signals.
type ProvisioningMetrics struct {
	runs         *prometheus.CounterVec
	runDuration  prometheus.Observer
	stepRuns     *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	stepErrors   *prometheus.CounterVec
}

var (
	provisioningMetricsOnce sync.Once
	provisioningMetrics     *ProvisioningMetrics
)

// NewProvisioningMetrics returns the singleton provisioning metrics registry.
func NewProvisioningMetrics(cfg Config) *ProvisioningMetrics {
	provisioningMetricsOnce.Do(func() {
		provisioningMetrics = newProvisioningMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return provisioningMetrics
}

func newProvisioningMetrics(registerer prometheus.Registerer, cfg Config) *ProvisioningMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabelsFor(cfg)

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "pike_provisioning_runs_total",
		Help:        "Site provisioning runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "pike_provisioning_run_duration_seconds",
		Help:        "End-to-end site provisioning latency.",
		Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		ConstLabels: constLabels,
	})
	stepRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "pike_provisioning_step_runs_total",
		Help:        "Provisioning step executions by step and outcome.",
		ConstLabels: constLabels,
	}, []string{"step", "outcome"})
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "pike_provisioning_step_duration_seconds",
		Help:        "Provisioning step latency against the remote API.",
		Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	}, []string{"step"})
	stepErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "pike_provisioning_step_errors_total",
		Help:        "Provisioning step failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"step", "reason"})

	registerer.MustRegister(runs, runDuration, stepRuns, stepDuration, stepErrors)

	return &ProvisioningMetrics{
		runs:         runs,
		runDuration:  runDuration,
		stepRuns:     stepRuns,
		stepDuration: stepDuration,
		stepErrors:   stepErrors,
	}
}

// ObserveRun records a completed provisioning run.
func (m *ProvisioningMetrics) ObserveRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

// ObserveStep records a single step execution.
func (m *ProvisioningMetrics) ObserveStep(step string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	step = normalizeLabel(step)
	m.stepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
	if err == nil {
		m.stepRuns.WithLabelValues(step, StepOutcomeSuccess).Inc()
		return
	}
	m.stepRuns.WithLabelValues(step, StepOutcomeFailure).Inc()
	m.stepErrors.WithLabelValues(step, ClassifyStepReason(err)).Inc()
}

// ClassifyStepReason maps a step failure to a bounded reason label.
func ClassifyStepReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StepReasonDeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return StepReasonCanceled
	}

	var coded statusCoder
	if !errors.As(err, &coded) {
		return StepReasonUnknown
	}
	status := coded.HTTPStatus()
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return StepReasonUnauthorized
	case status == http.StatusNotFound:
		return StepReasonNotFound
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return StepReasonValidation
	case status == http.StatusTooManyRequests:
		return StepReasonRateLimited
	case status >= http.StatusInternalServerError:
		return StepReasonRemote
	default:
		return StepReasonUnknown
	}
}

func constLabelsFor(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "pike"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
