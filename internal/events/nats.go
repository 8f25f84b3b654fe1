package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to the event type to form the NATS subject.
const SubjectPrefix = "recipes.events."

// Subject returns the NATS subject an event type is published on.
func Subject(t domain.EventType) string {
	return SubjectPrefix + string(t)
}

// NATSPublisher publishes events as JSON on NATS.
type NATSPublisher struct {
	conn *nats.Conn
}

// ConnectNATS dials the NATS server at url. The connection reconnects on its
// own for the life of the process.
func ConnectNATS(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("recipe-community"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return NewNATSPublisher(conn), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Publish implements domain.EventPublisher. Failures are logged, not returned.
func (p *NATSPublisher) Publish(_ context.Context, event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("encode event", "type", event.Type, "error", err)
		return
	}
	subject := Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		slog.Warn("publish event", "subject", subject, "error", err)
	}
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
