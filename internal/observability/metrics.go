package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quorum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by statement verb.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quorum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// LikeToggles counts like toggles by target type and resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quorum_like_toggles_total",
		Help: "Total number of like toggles by target type and resulting state",
	}, []string{"target_type", "state"})

	// CascadeDeletes counts cascading deletes by root entity type.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quorum_cascade_deletes_total",
		Help: "Total number of cascading deletes by root entity type",
	}, []string{"entity"})
)

// ObserveQuery records the latency of a database statement. The operation
// label is derived from the statement's leading SQL verb.
func ObserveQuery(sql string, elapsed time.Duration) {
	DatabaseQueryLatency.WithLabelValues(queryVerb(sql)).Observe(elapsed.Seconds())
}

func queryVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "other"
	}
	switch verb := strings.ToUpper(fields[0]); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return strings.ToLower(verb)
	default:
		return "other"
	}
}

// RecordLikeToggle increments the like toggle counter.
func RecordLikeToggle(targetType string, liked bool) {
	state := "unliked"
	if liked {
		state = "liked"
	}
	LikeToggles.WithLabelValues(targetType, state).Inc()
}

// RecordCascadeDelete increments the cascade delete counter.
func RecordCascadeDelete(entity string) {
	CascadeDeletes.WithLabelValues(entity).Inc()
}
