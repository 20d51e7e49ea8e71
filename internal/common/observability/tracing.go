package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"booking-workers/internal/common/logger"
)

func newTracerProvider(serviceName string, log logger.Logger) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}
	if log != nil {
		opts = append(opts, sdktrace.WithSpanProcessor(&logProcessor{logger: log}))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// logProcessor writes every finished span to the logger.
type logProcessor struct {
	logger logger.Logger
}

func (p *logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := map[string]interface{}{
		"span":       s.Name(),
		"traceId":    s.SpanContext().TraceID().String(),
		"durationMs": s.EndTime().Sub(s.StartTime()).Milliseconds(),
		"status":     s.Status().Code.String(),
	}
	if desc := s.Status().Description; desc != "" {
		fields["statusDescription"] = desc
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}
	p.logger.Debug("Span finished", fields)
}

func (p *logProcessor) Shutdown(context.Context) error { return nil }
func (p *logProcessor) ForceFlush(context.Context) error { return nil }
