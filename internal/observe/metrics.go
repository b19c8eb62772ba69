// Package observe holds the OpenTelemetry instruments recorded by the
// dialogue engine. Tests should build a Metrics from their own
// MeterProvider with NewMetrics.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jwebster45206/npc-dialogue"

// Metrics holds the engine's instruments. A nil *Metrics records nothing.
type Metrics struct {
	// Turns counts finished turns. Attributes: persona, outcome.
	Turns metric.Int64Counter

	// BackendDuration tracks backend round-trip latency in seconds.
	// Attributes: persona, status.
	BackendDuration metric.Float64Histogram

	// ParseFallbacks counts replies not decoded from the chat-completion
	// shape. Attributes: persona, format.
	ParseFallbacks metric.Int64Counter

	// ImagesShown counts image viewer overlays. Attributes: persona, status.
	ImagesShown metric.Int64Counter
}

var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Turns, err = m.Int64Counter("npc_dialogue.turns",
		metric.WithDescription("Dialogue turns by outcome."),
		metric.WithUnit("{turn}"),
	); err != nil {
		return nil, err
	}
	if met.BackendDuration, err = m.Float64Histogram("npc_dialogue.backend.duration",
		metric.WithDescription("Latency of backend chat requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ParseFallbacks, err = m.Int64Counter("npc_dialogue.parse.fallbacks",
		metric.WithDescription("Replies decoded by a fallback shape."),
		metric.WithUnit("{reply}"),
	); err != nil {
		return nil, err
	}
	if met.ImagesShown, err = m.Int64Counter("npc_dialogue.images",
		metric.WithDescription("Image viewer overlays opened."),
		metric.WithUnit("{image}"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a process-wide Metrics on the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTurn counts one finished turn.
func (m *Metrics) RecordTurn(ctx context.Context, persona, outcome string) {
	if m == nil {
		return
	}
	m.Turns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("persona", persona),
		attribute.String("outcome", outcome),
	))
}

// RecordBackend records one backend round trip.
func (m *Metrics) RecordBackend(ctx context.Context, persona, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("persona", persona),
		attribute.String("status", status),
	))
}

// RecordParseFallback counts a reply decoded by format.
func (m *Metrics) RecordParseFallback(ctx context.Context, persona, format string) {
	if m == nil {
		return
	}
	m.ParseFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("persona", persona),
		attribute.String("format", format),
	))
}

// RecordImage counts an image overlay attempt.
func (m *Metrics) RecordImage(ctx context.Context, persona, status string) {
	if m == nil {
		return
	}
	m.ImagesShown.Add(ctx, 1, metric.WithAttributes(
		attribute.String("persona", persona),
		attribute.String("status", status),
	))
}
