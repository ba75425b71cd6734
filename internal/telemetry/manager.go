package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// Manager owns the TracerProvider of one CLI run: it creates the OTLP
// exporter, registers the provider globally and flushes spans on Shutdown.
type Manager struct {
	enabled        bool
	tracerProvider *sdktrace.TracerProvider
	config         Config
}

// Config holds OpenTelemetry settings.
type Config struct {
	// Enabled indicates whether tracing is active
	Enabled bool

	// Endpoint is the OTLP gRPC collector endpoint (e.g., "localhost:4317")
	Endpoint string

	// Insecure uses a plaintext gRPC connection to the collector
	Insecure bool

	// SamplingRate is the fraction of traces sampled (0.0 to 1.0)
	SamplingRate float64

	ServiceName    string
	ServiceVersion string

	// BackupEndpoint is recorded as the peer service when known
	BackupEndpoint string

	// BackupAPIVersion is "1" or "2"
	BackupAPIVersion string
}

// NewManager creates a manager. Nothing happens until Initialize.
func NewManager(cfg Config) *Manager {
	return &Manager{
		enabled: cfg.Enabled,
		config:  cfg,
	}
}

// Initialize registers a batching TracerProvider and the W3C propagator
// globally. Failures are logged and leave the manager disabled, so the
// command runs untraced.
func (m *Manager) Initialize(ctx context.Context) error {
	if !m.config.Enabled {
		logrus.Debug("Tracing disabled")
		return nil
	}

	tp, err := m.newProvider(ctx)
	if err != nil {
		logrus.Warnf("Tracing unavailable, continuing without it: %v", err)
		m.enabled = false
		return nil
	}

	m.tracerProvider = tp
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logrus.WithFields(logrus.Fields{
		"collector": m.config.Endpoint,
		"sampling":  m.config.SamplingRate,
	}).Debug("Tracing enabled")
	return nil
}

func (m *Manager) newProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exporter, err := m.createExporter(ctx)
	if err != nil {
		return nil, err
	}
	res, err := m.createResource()
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(m.createSampler()),
	), nil
}

func (m *Manager) createExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(m.config.Endpoint),
	}
	if m.config.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exporter, nil
}

// createResource describes this CLI run: service, host and, when known,
// the backup API it talks to.
func (m *Manager) createResource() (*resource.Resource, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	kvs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(m.config.ServiceName),
		semconv.ServiceVersionKey.String(m.config.ServiceVersion),
		semconv.HostNameKey.String(hostname),
	}
	if m.config.BackupEndpoint != "" {
		kvs = append(kvs, semconv.PeerServiceKey.String(m.config.BackupEndpoint))
	}
	if m.config.BackupAPIVersion != "" {
		kvs = append(kvs, attribute.String(AttrBackupAPIVersion, m.config.BackupAPIVersion))
	}

	return resource.New(context.Background(), resource.WithAttributes(kvs...))
}

// createSampler keeps whole traces: a remote parent's decision wins,
// otherwise the configured rate applies.
func (m *Manager) createSampler() sdktrace.Sampler {
	rate := m.config.SamplingRate
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// Shutdown flushes pending spans. Call it before the process exits.
func (m *Manager) Shutdown(ctx context.Context) error {
	if !m.enabled || m.tracerProvider == nil {
		return nil
	}

	if err := m.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to flush spans: %w", err)
	}
	logrus.Debug("Spans flushed")
	return nil
}

// IsEnabled reports whether tracing is operational.
func (m *Manager) IsEnabled() bool {
	return m.enabled
}

// TracerProvider returns the provider for explicit injection, or nil when
// tracing is not initialized.
func (m *Manager) TracerProvider() trace.TracerProvider {
	if m.tracerProvider == nil {
		return nil
	}
	return m.tracerProvider
}
