// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agora"

// Metrics bundles the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rpcCalls *prometheus.CounterVec
	dbOps    *prometheus.HistogramVec
}

// New registers the collectors at reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of handled http requests.",
		}, []string{"route", "method", "status", "tenant"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of handled http requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		rpcCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_rpc_calls_total",
			Help:      "Number of blockchain rpc calls by chain, method and result.",
		}, []string{"chain", "method", "result"}),
		dbOps: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of named data access operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
	}
}

// Middleware counts and times every request. tenantLocal names the fiber local holding the tenant namespace.
func (m *Metrics) Middleware(tenantLocal string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok { //nolint:errorlint // fiber returns the concrete type
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		tenant, _ := c.Locals(tenantLocal).(string)

		m.requests.WithLabelValues(route, c.Method(), strconv.Itoa(status), tenant).Inc()
		m.duration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())

		return err
	}
}

// ObserveRPC counts one rpc call.
func (m *Metrics) ObserveRPC(chain, method string, err error) {
	if m == nil {
		return
	}

	m.rpcCalls.WithLabelValues(chain, method, result(err)).Inc()
}

// Handler serves the registry in the prometheus text format.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// Time runs fn and records its duration under operation.
func Time[T any](m *Metrics, operation string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()

	if m != nil {
		m.dbOps.WithLabelValues(operation, result(err)).Observe(time.Since(start).Seconds())
	}

	return out, err
}

func result(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
