package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kassa_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kassa_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ticketsPurchased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kassa_tickets_purchased_total",
			Help: "Number of completed ticket purchases",
		},
	)

	ticketsVerified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kassa_tickets_verified_total",
			Help: "Ticket verification attempts by outcome",
		},
		[]string{"outcome"},
	)

	couponsRedeemed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kassa_coupons_redeemed_total",
			Help: "Number of coupon redemptions applied to purchases",
		},
	)

	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kassa_events_cache_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)
)

// HTTPMiddleware records request counts and latencies per route template.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(route, c.Request.Method, status).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func TicketPurchased() {
	ticketsPurchased.Inc()
}

func TicketVerified(outcome string) {
	ticketsVerified.WithLabelValues(outcome).Inc()
}

func CouponRedeemed() {
	couponsRedeemed.Inc()
}

func CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheHits.WithLabelValues(result).Inc()
}
