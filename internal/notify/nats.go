package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/inful/mdfigure/internal/config"
	"github.com/inful/mdfigure/internal/logfields"
	"github.com/inful/mdfigure/internal/render"
)

// NATSNotifier publishes pass events to a NATS subject over a plain core
// connection.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to the configured NATS server.
func NewNATSNotifier(cfg config.NotifyConfig) (*NATSNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("notify URL is required")
	}
	if cfg.Subject == "" {
		return nil, fmt.Errorf("notify subject is required")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS notifier initialized", slog.String("url", cfg.URL), logfields.Subject(cfg.Subject))

	return &NATSNotifier{conn: conn, subject: cfg.Subject}, nil
}

// PublishReport publishes the pass event and flushes the connection so the
// message is on the wire before the process may exit.
func (n *NATSNotifier) PublishReport(ctx context.Context, report *render.Report) error {
	event := NewEvent(report)
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	flushCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("failed to flush connection: %w", err)
	}

	slog.Debug("Published pass event",
		logfields.PassID(report.PassID),
		logfields.Subject(n.subject))

	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
