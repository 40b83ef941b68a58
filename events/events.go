// Package events publishes run lifecycle notifications so that
// downstream consumers can follow harness progress.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/swiftlab/routing/conf"
)

const (
	RunCreated        = "created"
	MessagesGenerated = "messages_generated"
	ModelTrained      = "model_trained"
	RunTested         = "tested"
	RunEvaluated      = "evaluated"
	RunCompleted      = "completed"
)

// Event is the wire envelope. Topic layout is
// <subject>.runs.<run_id>.<name>.
type Event struct {
	ID         string         `json:"id"`
	RunID      string         `json:"run_id"`
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(runID, name string, payload map[string]any) error
	Close() error
}

func NewPublisher(cfg conf.EventBus) (Publisher, error) {
	switch cfg.Provider {
	case conf.NATS:
		return NewNATSPublisher(cfg)
	default:
		return NopPublisher(), nil
	}
}

type natsPublisher struct {
	nc      *nats.Conn
	subject string
	log     *zap.Logger
}

func NewNATSPublisher(cfg conf.EventBus) (Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}

	return &natsPublisher{
		nc:      nc,
		subject: cfg.Subject,
		log:     zap.L().With(zap.String("publisher", "nats")),
	}, nil
}

func (p *natsPublisher) Publish(runID, name string, payload map[string]any) error {
	event := &Event{
		ID:         uuid.NewString(),
		RunID:      runID,
		Name:       name,
		OccurredAt: time.Now(),
		Payload:    payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := p.subject + ".runs." + runID + "." + name
	if err := p.nc.Publish(topic, data); err != nil {
		return errors.Wrap(err, "publish event")
	}

	p.log.Debug("event published", zap.String("topic", topic))
	return nil
}

// Close drains the connection; nats closes it once the pending
// messages are flushed.
func (p *natsPublisher) Close() error {
	return p.nc.Drain()
}

type nopPublisher struct{}

// NopPublisher drops every event. Used when no event bus is
// configured.
func NopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(runID, name string, payload map[string]any) error {
	return nil
}

func (nopPublisher) Close() error {
	return nil
}
