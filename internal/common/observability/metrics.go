package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"music-store-agent/internal/common/logger"
)

// Observability records upstream call metrics through OpenTelemetry and
// exposes them on the default Prometheus registry.
type Observability struct {
	meterProvider    *metric.MeterProvider
	upstreamCalls    otelmetric.Int64Counter
	upstreamDuration otelmetric.Float64Histogram
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	calls, _ := meter.Int64Counter(
		"upstream.calls",
		otelmetric.WithDescription("Calls made to the SQL store, key-value store, concert index and embedding API"),
	)

	duration, _ := meter.Float64Histogram(
		"upstream.duration",
		otelmetric.WithDescription("Upstream call duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		upstreamCalls:    calls,
		upstreamDuration: duration,
	}
}

// RecordUpstreamCall records one call to an upstream dependency.
func (o *Observability) RecordUpstreamCall(ctx context.Context, dependency, operation string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("dependency", dependency),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	if o.upstreamCalls != nil {
		o.upstreamCalls.Add(ctx, 1, attrs)
	}
	if o.upstreamDuration != nil {
		o.upstreamDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
