// Package eventbus publishes domain events to NATS.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"go.uber.org/zap"
)

// Event is the envelope published on every subject
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Publisher is what domain services depend on
type Publisher interface {
	Publish(ctx context.Context, subject, eventType string, data interface{}) error
}

// NewEvent wraps data in an Event envelope
func NewEvent(source, eventType string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Bus publishes events over a NATS connection
type Bus struct {
	conn   *nats.Conn
	source string
}

// Connect opens a NATS connection that reconnects in the background
func Connect(url, source string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(source),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("eventbus: disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("eventbus: reconnected to NATS", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Bus{conn: conn, source: source}, nil
}

// Publish sends an event on subject
func (b *Bus) Publish(ctx context.Context, subject, eventType string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event, err := NewEvent(b.source, eventType, data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Ping reports whether the connection is usable
func (b *Bus) Ping(ctx context.Context) error {
	if !b.conn.IsConnected() {
		return fmt.Errorf("nats status %s", b.conn.Status())
	}
	return nil
}

// Close drains pending messages and closes the connection
func (b *Bus) Close() {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// NopPublisher discards events; used when NATS is disabled
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(ctx context.Context, subject, eventType string, data interface{}) error {
	return nil
}
