package ports

import (
	"context"
	"errors"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// EventPublisher publishes plan lifecycle messages to a message broker.
type EventPublisher interface {
	PublishPlanEvent(ctx context.Context, event *domain.PlanEvent) error
	PublishPlanRequest(ctx context.Context, req *domain.PlanRequest) error
}

// PlanRequestSubscriber delivers queued plan jobs to a handler. A handler
// error asks the broker to redeliver.
type PlanRequestSubscriber interface {
	SubscribePlanRequests(ctx context.Context, handler func(ctx context.Context, req *domain.PlanRequest) error) error
}

// CacheService stores serialized plans with a TTL.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
