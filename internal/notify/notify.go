// Package notify publishes render pass results to NATS. Notification
// failures are reported to the caller but must never fail a pass; callers
// log them and move on.
package notify

import (
	"context"
	"time"

	"github.com/inful/mdfigure/internal/render"
)

// Event is the JSON payload published after each render pass.
type Event struct {
	PassID     string    `json:"pass_id"`
	Outcome    string    `json:"outcome"`
	Docs       int       `json:"docs"`
	Rendered   int       `json:"rendered"`
	CacheHits  int       `json:"cache_hits"`
	Figures    int       `json:"figures"`
	SetHash    string    `json:"set_hash"`
	DurationMS int64     `json:"duration_ms"`
	Errors     []string  `json:"errors,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent flattens a report into the wire payload. The timestamp is stamped
// at publish time, not here.
func NewEvent(report *render.Report) Event {
	event := Event{
		PassID:     report.PassID,
		Outcome:    string(report.Outcome()),
		Docs:       report.Docs,
		Rendered:   report.Rendered,
		CacheHits:  report.CacheHits,
		Figures:    report.Figures,
		SetHash:    report.SetHash,
		DurationMS: report.Duration.Milliseconds(),
	}
	for _, err := range report.Errors {
		event.Errors = append(event.Errors, err.Error())
	}
	return event
}

// Notifier publishes pass completion events.
type Notifier interface {
	PublishReport(ctx context.Context, report *render.Report) error
	Close() error
}

// NoopNotifier is the Notifier used when notifications are not configured.
type NoopNotifier struct{}

func (NoopNotifier) PublishReport(context.Context, *render.Report) error { return nil }
func (NoopNotifier) Close() error                                        { return nil }
