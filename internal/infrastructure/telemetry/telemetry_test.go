package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stockpulse/invsync/internal/infrastructure/config"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{Enabled: false, ServiceName: "invsync-test"}

	tp, err := NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	l := zap.NewNop()
	assert.Same(t, l, lp.Attach(l, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	assert.NoError(t, InstrumentDB(nil, cfg, zap.NewNop()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestStartSpan_RecordsAttributesAndErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "sync.one",
		SpanAttrStoreID, uint64(7),
		SpanAttrPlatform, "shopify",
		42, "ignored non-string key",
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, SpanAttrQuantity, 3)
	AddEvent(span, "reconciled", "created", 2)
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "sync.one", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Len(t, got.Events(), 2) // reconciled + exception

	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "7", attrs[SpanAttrStoreID])
	assert.Equal(t, "shopify", attrs[SpanAttrPlatform])
	assert.Equal(t, "3", attrs[SpanAttrQuantity])
	assert.Len(t, attrs, 3)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestSyncMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewSyncMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSync(ctx, "shopify", "manual", "completed", "", 3, 1, 2*time.Second)
	m.RecordAlerts(ctx, 2, 1)
	m.RecordNotification(ctx, "email", nil)
	m.RecordNotification(ctx, "slack", errors.New("down"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), sums["invsync.sync.runs"])
	assert.Equal(t, int64(3), sums["invsync.sync.products_synced"])
	assert.Equal(t, int64(1), sums["invsync.sync.products_failed"])
	assert.Equal(t, int64(2), sums["invsync.alerts.triggered"])
	assert.Equal(t, int64(1), sums["invsync.alerts.resolved"])
	assert.Equal(t, int64(2), sums["invsync.notifications"])
}

func TestSyncMetrics_NilIsNoop(t *testing.T) {
	var m *SyncMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordSync(ctx, "etsy", "scheduled", "failed", "transport", 0, 0, time.Second)
		m.RecordAlerts(ctx, 1, 1)
		m.RecordNotification(ctx, "email", nil)
	})
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	l := zap.New(core).With(zap.String("k", "v"))

	l.Info("dropped")
	l.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])
}
