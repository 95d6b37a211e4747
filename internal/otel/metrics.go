package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tmux-bridge"

// Metrics holds all OTEL metric instruments for tmux-bridge.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Commands executed via the marker protocol, partitioned by outcome
	// (ok, timeout, error).
	Commands metric.Int64Counter
	// CommandDuration is wall-clock submit-to-match time in milliseconds.
	CommandDuration metric.Float64Histogram

	// Transport operation counters.
	Polls    metric.Int64Counter
	KeysSent metric.Int64Counter
	Captures metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Commands, err = meter.Int64Counter("bridge.commands",
		metric.WithDescription("Commands executed through the marker protocol"),
		metric.WithUnit("{command}"))
	if err != nil {
		return nil, err
	}

	m.CommandDuration, err = meter.Float64Histogram("bridge.command.duration",
		metric.WithDescription("Wall-clock time from command submission to end-marker match"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	m.Polls, err = meter.Int64Counter("bridge.polls",
		metric.WithDescription("Pane captures performed while waiting for an end marker"),
		metric.WithUnit("{poll}"))
	if err != nil {
		return nil, err
	}

	m.KeysSent, err = meter.Int64Counter("bridge.keys_sent",
		metric.WithDescription("send-keys operations issued to the multiplexer"),
		metric.WithUnit("{send}"))
	if err != nil {
		return nil, err
	}

	m.Captures, err = meter.Int64Counter("bridge.captures",
		metric.WithDescription("capture-pane operations issued to the multiplexer"),
		metric.WithUnit("{capture}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCommand records one completed Execute call. Nil-safe.
func (m *Metrics) RecordCommand(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.Commands.Add(ctx, 1, attrs)
	m.CommandDuration.Record(ctx, float64(d.Milliseconds()), attrs)
}

// RecordPoll records one capture performed by the poll loop. Nil-safe.
func (m *Metrics) RecordPoll(ctx context.Context) {
	if m == nil {
		return
	}
	m.Polls.Add(ctx, 1)
}

// RecordSend records one send-keys operation. Nil-safe.
func (m *Metrics) RecordSend(ctx context.Context) {
	if m == nil {
		return
	}
	m.KeysSent.Add(ctx, 1)
}

// RecordCapture records one capture-pane operation. Nil-safe.
func (m *Metrics) RecordCapture(ctx context.Context) {
	if m == nil {
		return
	}
	m.Captures.Add(ctx, 1)
}
