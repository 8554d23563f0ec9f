// Package kafka publishes emergency audit events. Call placements,
// call terminations, and computed evacuation plans are emitted to a
// single events topic so downstream consumers (dashboards, incident
// review) can replay what the service did during an emergency.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/evac-response/internal/config"
)

// Event is one audit record on the events topic.
type Event struct {
	Type       string    `json:"type"` // call_placed, call_terminated, routes_computed
	CallID     string    `json:"call_id,omitempty"`
	ProfileID  string    `json:"profile_id,omitempty"`
	Emergency  string    `json:"emergency,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RouteCount int       `json:"route_count,omitempty"`
	Fallbacks  int       `json:"fallbacks,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher produces audit events to the configured topic. A nil
// *Publisher is valid and drops every event, so call sites need no
// feature-flag checks.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the events topic. Returns
// nil when publishing is disabled.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	if !cfg.KafkaEnabled {
		return nil
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish emits one event. Failures are logged, never propagated: audit
// publishing must not interfere with an active emergency.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	msg, err := serializeEvent(event)
	if err != nil {
		p.logger.Warn("serialize audit event failed", "type", event.Type, "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("publish audit event failed", "type", event.Type, "error", err)
	}
}

// Close flushes and closes the producer. Safe on nil.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

func serializeEvent(event Event) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event: %w", err)
	}
	key := event.CallID
	if key == "" {
		key = event.Type
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}
