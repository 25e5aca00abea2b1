package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Subscriber implements ports.PlanRequestSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and makes sure the plan streams exist.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribePlanRequests delivers queued plan jobs to handler through a
// durable queue consumer, so several workers share the load. Undecodable
// messages are terminated; handler errors are redelivered up to 3 times.
func (s *Subscriber) SubscribePlanRequests(ctx context.Context, handler func(ctx context.Context, req *domain.PlanRequest) error) error {
	sub, err := s.js.QueueSubscribe(SubjectPlanRequested, "plan-workers", func(msg *nats.Msg) {
		var req domain.PlanRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Warn("drop malformed plan request", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &req); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("plan-worker"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
