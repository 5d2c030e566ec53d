package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ActiveWebSockets is the gauge of currently open WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_active_websockets",
		Help: "Number of active WebSocket connections",
	})

	// PostsCreated counts posts created, labelled by feed ("circle" or "campus").
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"feed"})

	// LikeToggles counts like toggle outcomes ("liked" or "unliked").
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_like_toggles_total",
		Help: "Total number of like toggles by outcome",
	}, []string{"outcome"})

	// CircleJoins counts join attempts by outcome ("member", "pending", "duplicate").
	CircleJoins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_circle_joins_total",
		Help: "Total number of circle join attempts by outcome",
	}, []string{"outcome"})

	// ReportsCreated counts moderation reports filed by target type.
	ReportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_reports_created_total",
		Help: "Total number of moderation reports filed by target type",
	}, []string{"content_type"})

	// WebSocketDrops counts messages dropped on slow or closed clients.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_drops_total",
		Help: "Total number of WebSocket messages dropped by reason",
	}, []string{"reason"})

	// MessagesPublished counts circle messages accepted.
	MessagesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_messages_published_total",
		Help: "Total number of circle messages published",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
// The caller registers it on the app and exposes the scrape endpoint.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware records per-request HTTP metrics (latency, status, route).
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
