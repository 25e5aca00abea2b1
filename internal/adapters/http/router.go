package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/rook-prog/CartoZen/internal/pkg/metrics"
)

// requestTimeout bounds a single pipeline run behind the REST API.
const requestTimeout = 30 * time.Second

// convertSunset is when POST /v1/convert goes away.
var convertSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/convert", SunsetDate: convertSunset, Alternative: "/v1/plans"},
	}))

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/formats", FormatsHandler())
	v1.Get("/aliases", AliasesHandler())
	v1.Post("/coordinates/parse", ParseCoordinateHandler(deps))

	v1.Post("/plans", timeout.NewWithContext(CreatePlanHandler(deps), requestTimeout))
	v1.Post("/plans/upload", timeout.NewWithContext(UploadPlanHandler(deps), requestTimeout))
	v1.Post("/plans/jobs", timeout.NewWithContext(EnqueuePlanHandler(deps), requestTimeout))
	v1.Get("/plans/:id", timeout.NewWithContext(GetPlanHandler(deps), requestTimeout))
	v1.Get("/plans/:id/stations", timeout.NewWithContext(PlanStationsHandler(deps), requestTimeout))

	v1.Get("/sources", ListSourcesHandler(deps))
	v1.Post("/sources/:name/plans", timeout.NewWithContext(SourcePlanHandler(deps), requestTimeout))

	// Normalized table only; superseded by /v1/plans
	v1.Post("/convert", timeout.NewWithContext(ConvertHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
