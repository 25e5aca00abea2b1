package http

import (
	"github.com/nats-io/nats.go"

	"github.com/rook-prog/CartoZen/internal/adapters/postgres"
	"github.com/rook-prog/CartoZen/internal/adapters/valkey"
	"github.com/rook-prog/CartoZen/internal/core/domain"
	"github.com/rook-prog/CartoZen/internal/core/ports"
	"github.com/rook-prog/CartoZen/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. NATS, DB and
// Cache are optional; nil means the backend is not configured.
type Dependencies struct {
	Plans    *usecases.PlanService
	Reader   ports.TableReader
	Defaults domain.PlanConfig
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
