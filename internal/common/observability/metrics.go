package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"booking-workers/internal/common/logger"
)

const instrumentationName = "booking-workers"

// Observability owns the OpenTelemetry meter and tracer providers of the process.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

type Options struct {
	ServiceName string
	// Registerer receives the otel collector; nil means the default Prometheus registry.
	Registerer prom.Registerer
	Logger     logger.Logger
}

// New installs global meter and tracer providers. Metrics are exposed through the
// Prometheus registry; finished spans are written to the logger at debug level.
func New(opts Options) (*Observability, error) {
	var exporterOpts []prometheus.Option
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(opts.Registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(meterProvider)

	tracerProvider := newTracerProvider(opts.ServiceName, opts.Logger)
	otel.SetTracerProvider(tracerProvider)

	return &Observability{meterProvider: meterProvider, tracerProvider: tracerProvider}, nil
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type jobInstruments struct {
	processed otelmetric.Int64Counter
	duration  otelmetric.Float64Histogram
}

var (
	instrumentsOnce sync.Once
	instruments     jobInstruments
)

// Instruments are created on the global meter, which forwards to whatever provider
// New installs, even when that happens later.
func loadInstruments() jobInstruments {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		instruments.processed, _ = meter.Int64Counter(
			"jobs.processed",
			otelmetric.WithDescription("Number of jobs processed"),
		)
		instruments.duration, _ = meter.Float64Histogram(
			"jobs.duration",
			otelmetric.WithDescription("Job processing duration"),
			otelmetric.WithUnit("ms"),
		)
	})
	return instruments
}

// RecordJob counts one processed job and its duration.
func RecordJob(ctx context.Context, taskType, status string, d time.Duration) {
	inst := loadInstruments()
	attrs := otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	)
	if inst.processed != nil {
		inst.processed.Add(ctx, 1, attrs)
	}
	if inst.duration != nil {
		inst.duration.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}
