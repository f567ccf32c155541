package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement outcomes recorded by ObserveSettlement
const (
	OutcomeSettled          = "settled"
	OutcomeRollover         = "rollover"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeInProgress       = "in_progress"
	OutcomeRejected         = "rejected"
	OutcomeFailed           = "failed"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolgame",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poolgame",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poolgame",
			Subsystem: "settlement",
			Name:      "runs_total",
			Help:      "Total number of settlement attempts by outcome.",
		},
		[]string{"outcome"},
	)

	settlementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "poolgame",
			Subsystem: "settlement",
			Name:      "run_duration_seconds",
			Help:      "Duration of settlement attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	winnersPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poolgame",
			Subsystem: "settlement",
			Name:      "winners_total",
			Help:      "Total number of winner records written.",
		},
	)

	drawsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poolgame",
			Subsystem: "draw",
			Name:      "recorded_total",
			Help:      "Total number of draws recorded.",
		},
	)

	roundsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poolgame",
			Subsystem: "round",
			Name:      "closed_total",
			Help:      "Total number of rounds closed.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		settlements,
		settlementDuration,
		winnersPaid,
		drawsRecorded,
		roundsClosed,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry on a gin route
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveSettlement records one settlement attempt
func ObserveSettlement(outcome string, winners int, d time.Duration) {
	settlements.WithLabelValues(outcome).Inc()
	settlementDuration.Observe(d.Seconds())
	if winners > 0 {
		winnersPaid.Add(float64(winners))
	}
}

// DrawRecorded counts a recorded draw
func DrawRecorded() { drawsRecorded.Inc() }

// RoundClosed counts a closed round
func RoundClosed() { roundsClosed.Inc() }
