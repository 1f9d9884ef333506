package metrics

import "time"

// ResultLabel enumerates per-document render result categories.
type ResultLabel string

const (
	ResultRendered ResultLabel = "rendered"
	ResultCached   ResultLabel = "cached"
	ResultFailed   ResultLabel = "failed"
)

// OutcomeLabel enumerates render pass outcomes. A pass is partial when some
// documents failed but the pass itself completed.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomePartial OutcomeLabel = "partial"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for render passes. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for
// nil receivers when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveDocDuration(d time.Duration)
	ObservePassDuration(d time.Duration)
	IncDocResult(result ResultLabel)
	IncPassOutcome(outcome OutcomeLabel)
	IncCacheLookup(hit bool)
	SetDocsTotal(n int)
	SetFiguresTotal(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveDocDuration(time.Duration)  {}
func (NoopRecorder) ObservePassDuration(time.Duration) {}
func (NoopRecorder) IncDocResult(ResultLabel)          {}
func (NoopRecorder) IncPassOutcome(OutcomeLabel)       {}
func (NoopRecorder) IncCacheLookup(bool)               {}
func (NoopRecorder) SetDocsTotal(int)                  {}
func (NoopRecorder) SetFiguresTotal(int)               {}
