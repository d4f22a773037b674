package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pixelfeed/internal/middleware"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix namespaces every NATS subject published by the service.
const SubjectPrefix = "pixelfeed."

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSConfig configures the broker connection.
type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	ClientName    string
}

// NATSPublisher mirrors domain events onto NATS subjects `pixelfeed.<type>`.
type NATSPublisher struct {
	conn Conn
}

// ConnectNATS dials the broker and returns a publisher over the connection.
func ConnectNATS(cfg NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				middleware.Logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			middleware.Logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATSPublisher(conn), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Subject returns the NATS subject for an event type.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return record(e, "nats", fmt.Errorf("marshal event: %w", err))
	}
	return record(e, "nats", p.conn.Publish(Subject(e.Type), data))
}

// Close closes the broker connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
