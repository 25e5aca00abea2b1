package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Subjects carrying plan traffic.
const (
	SubjectPlanRequested = "cartozen.plans.requested"
	SubjectPlanCompleted = "cartozen.plans.completed"
	SubjectPlanFailed    = "cartozen.plans.failed"
	// SubjectPlanEvents matches completed and failed events.
	SubjectPlanEvents = "cartozen.plans.*"
)

// Streams backing the subjects above.
var streams = []nats.StreamConfig{
	{
		Name:      "CARTOZEN_PLAN_REQUESTS",
		Subjects:  []string{SubjectPlanRequested},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	},
	{
		Name:      "CARTOZEN_PLAN_EVENTS",
		Subjects:  []string{SubjectPlanCompleted, SubjectPlanFailed},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	},
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	for _, cfg := range streams {
		cfg := cfg
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishPlanEvent publishes to the completed or failed subject by status.
func (p *Publisher) PublishPlanEvent(ctx context.Context, ev *domain.PlanEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(EventSubject(ev.Status), data, nats.Context(ctx))
	return err
}

// PublishPlanRequest queues a plan job for a worker.
func (p *Publisher) PublishPlanRequest(ctx context.Context, req *domain.PlanRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectPlanRequested, data, nats.MsgId(req.ID), nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// EventSubject maps an event status to its subject.
func EventSubject(status string) string {
	if status == "failed" {
		return SubjectPlanFailed
	}
	return SubjectPlanCompleted
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("cartozen"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
