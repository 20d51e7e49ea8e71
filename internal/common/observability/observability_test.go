package observability

import (
	"context"
	"sync"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"booking-workers/internal/common/logger"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []map[string]interface{}
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fields)
}

func (l *recordingLogger) Info(string, map[string]interface{}) {}
func (l *recordingLogger) Warn(string, map[string]interface{}) {}
func (l *recordingLogger) Error(string, map[string]interface{}) {}
func (l *recordingLogger) WithFields(map[string]interface{}) logger.Logger { return l }
func (l *recordingLogger) WithError(error) logger.Logger { return l }
func (l *recordingLogger) With(map[string]interface{}) logger.Logger { return l }

func TestObservability_RecordsJobsAndSpans(t *testing.T) {
	registry := prom.NewRegistry()
	spans := &recordingLogger{}

	obs, err := New(Options{ServiceName: "booking-workers-test", Registerer: registry, Logger: spans})
	require.NoError(t, err)
	defer func() { _ = obs.Shutdown(context.Background()) }()

	RecordJob(context.Background(), "booking-pricing-calculate", "completed", 42*time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	// the exporter keeps the dotted instrument names and appends unit and type suffixes
	assert.Contains(t, names, "jobs.processed_total")
	assert.Contains(t, names, "jobs.duration_milliseconds")

	_, span := otel.Tracer("test").Start(context.Background(), "booking.submit")
	span.SetAttributes(attribute.String("booking.unit_id", "u-101"))
	span.SetStatus(codes.Error, "rejected")
	span.End()

	spans.mu.Lock()
	defer spans.mu.Unlock()
	require.Len(t, spans.entries, 1)
	assert.Equal(t, "booking.submit", spans.entries[0]["span"])
	assert.Equal(t, "u-101", spans.entries[0]["booking.unit_id"])
	assert.Equal(t, "rejected", spans.entries[0]["statusDescription"])
}
