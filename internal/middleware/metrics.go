package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by operation.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "snippetly_redis_errors_total",
	Help: "Total number of Redis errors by operation type",
}, []string{"operation"})

// FriendshipTransitions counts friendship state machine transitions by outcome.
var FriendshipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "snippetly_friendship_transitions_total",
	Help: "Total number of friendship transitions by type and result",
}, []string{"transition", "result"})

// InitMetrics constructs the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording per-request metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
