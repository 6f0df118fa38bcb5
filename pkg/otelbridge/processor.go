// Package otelbridge feeds OpenTelemetry spans into a profile
// recorder, so code instrumented with OTel lands in the same trace
// file as Timer scopes.
package otelbridge

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/eren/chronotrace/pkg/profile"
)

// SpanProcessor converts ended spans into records. Spans sharing a
// trace id share a thread id, grouping each trace onto one viewer row.
type SpanProcessor struct {
	recorder *profile.Recorder
	stopped  atomic.Bool
}

var _ sdktrace.SpanProcessor = (*SpanProcessor)(nil)

// NewSpanProcessor creates a processor writing through rec. A nil rec
// uses the process-wide default recorder.
func NewSpanProcessor(rec *profile.Recorder) *SpanProcessor {
	if rec == nil {
		rec = profile.Default()
	}
	return &SpanProcessor{recorder: rec}
}

// OnStart implements sdktrace.SpanProcessor. No-op.
func (p *SpanProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {}

// OnEnd writes the finished span as a record.
func (p *SpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if p.stopped.Load() {
		return
	}

	p.recorder.WriteRecord(profile.Record{
		Name:     s.Name(),
		Start:    s.StartTime().UnixMicro(),
		End:      s.EndTime().UnixMicro(),
		ThreadID: traceRow(s.SpanContext().TraceID()),
	})
}

// Shutdown stops forwarding spans. Safe to call multiple times.
func (p *SpanProcessor) Shutdown(ctx context.Context) error {
	p.stopped.Store(true)
	return nil
}

// ForceFlush implements sdktrace.SpanProcessor. Records reach the file
// on write; nothing is buffered.
func (p *SpanProcessor) ForceFlush(ctx context.Context) error {
	return nil
}

func traceRow(id oteltrace.TraceID) uint32 {
	h := fnv.New32a()
	h.Write(id[:])
	return h.Sum32()
}
