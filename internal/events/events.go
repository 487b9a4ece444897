// Package events publishes build lifecycle events for external consumers.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/timemory/doxsite/internal/config"
)

// Event types published on the configured subject.
const (
	TypeBuildStarted  = "build.started"
	TypeBuildFinished = "build.finished"
)

// Event is one build lifecycle notification.
type Event struct {
	Type      string    `json:"type"`
	BuildID   string    `json:"build_id"`
	Timestamp time.Time `json:"timestamp"`
	Outcome   string    `json:"outcome,omitempty"`
	Trigger   string    `json:"trigger,omitempty"`
	Commit    string    `json:"commit,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Publisher delivers build events. Implementations must tolerate being
// called from the build loop; publish failures are the caller's to log,
// never to fail a build on.
type Publisher interface {
	Publish(event Event) error
	Close()
}

// NATSPublisher publishes events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS using the daemon event configuration.
func NewNATSPublisher(cfg config.NATSConfig) (*NATSPublisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("doxsite"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("Connected event publisher", "url", cfg.URL, "subject", cfg.Subject)
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

func (p *NATSPublisher) Publish(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher drops all events (default when publishing is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) error { return nil }
func (NoopPublisher) Close()              {}
