package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumWhere(t *testing.T, rm metricdata.ResourceMetrics, name, key, value string) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not a sum", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestRecordTurn(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTurn(ctx, "phin", "success")
	m.RecordTurn(ctx, "phin", "success")
	m.RecordTurn(ctx, "phin", "soft_failure")

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "npc_dialogue.turns", "outcome", "success"); got != 2 {
		t.Errorf("success turns = %d, want 2", got)
	}
	if got := sumWhere(t, rm, "npc_dialogue.turns", "outcome", "soft_failure"); got != 1 {
		t.Errorf("soft_failure turns = %d, want 1", got)
	}
}

func TestRecordBackend(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordBackend(ctx, "elara", "200", 300*time.Millisecond)
	m.RecordBackend(ctx, "elara", "200", 2*time.Second)

	met := findMetric(collect(t, reader), "npc_dialogue.backend.duration")
	if met == nil {
		t.Fatal("histogram not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 2 {
		t.Errorf("unexpected data points: %+v", hist.DataPoints)
	}
}

func TestRecordParseFallbackAndImage(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordParseFallback(ctx, "seraphina", "stream")
	m.RecordImage(ctx, "seraphina", "ok")
	m.RecordImage(ctx, "seraphina", "error")

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "npc_dialogue.parse.fallbacks", "format", "stream"); got != 1 {
		t.Errorf("stream fallbacks = %d, want 1", got)
	}
	if got := sumWhere(t, rm, "npc_dialogue.images", "status", "error"); got != 1 {
		t.Errorf("image errors = %d, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordTurn(ctx, "p", "success")
	m.RecordBackend(ctx, "p", "200", time.Second)
	m.RecordParseFallback(ctx, "p", "stream")
	m.RecordImage(ctx, "p", "ok")
}

func TestDefaultMetrics(t *testing.T) {
	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics should return the same instance")
	}
}
