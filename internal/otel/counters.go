package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counters are the tool-level metrics.
type Counters struct {
	RidesDecoded     metric.Int64Counter
	DecodeFailures   metric.Int64Counter
	MergesWritten    metric.Int64Counter
	ReplaysCollected metric.Int64Counter
}

// NewCounters registers the counters on m.
func NewCounters(m metric.Meter) (*Counters, error) {
	var c Counters
	var err error
	if c.RidesDecoded, err = m.Int64Counter("elmarec.rides.decoded",
		metric.WithDescription("Rides decoded from replay files")); err != nil {
		return nil, err
	}
	if c.DecodeFailures, err = m.Int64Counter("elmarec.decode.failures",
		metric.WithDescription("Replay or level files that failed to decode")); err != nil {
		return nil, err
	}
	if c.MergesWritten, err = m.Int64Counter("elmarec.merges.written",
		metric.WithDescription("Merged comparison replays written")); err != nil {
		return nil, err
	}
	if c.ReplaysCollected, err = m.Int64Counter("elmarec.replays.collected",
		metric.WithDescription("Replays copied into the collection")); err != nil {
		return nil, err
	}
	return &c, nil
}

// Inc adds one to c, tagged with the level name.
func Inc(ctx context.Context, c metric.Int64Counter, level string) {
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("level", level)))
}
