package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/table"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "cached_table"

// Config represents metrics configuration.
type Config struct {
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// Collector records table activity into prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	adapterCalls   *prometheus.CounterVec
	adapterLatency *prometheus.HistogramVec
	errors         *prometheus.CounterVec
}

var _ table.Observer = (*Collector)(nil)

// NewCollector creates a collector with its own registry.
func NewCollector(cfg Config) (*Collector, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operations_total",
			Help:      "Total number of table operations",
		},
		[]string{"table", "strategy", "operation"},
	)

	c.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_lookups_total",
			Help:      "Total number of row cache lookups by result",
		},
		[]string{"table", "result"},
	)

	c.adapterCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "adapter_calls_total",
			Help:      "Total number of record store adapter calls",
		},
		[]string{"table", "call"},
	)

	c.adapterLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "adapter_call_duration_seconds",
			Help:      "Duration of record store adapter calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs to ~3s
		},
		[]string{"table", "call"},
	)

	c.errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "errors_total",
			Help:      "Total number of failed table operations by error kind",
		},
		[]string{"table", "kind"},
	)

	for _, m := range []prometheus.Collector{c.operations, c.cacheLookups, c.adapterCalls, c.adapterLatency, c.errors} {
		if err := c.registry.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveOperation counts a finished table operation and, when it failed,
// its error kind.
func (c *Collector) ObserveOperation(tbl string, strategy table.CachingStrategy, op table.Operation, err error) {
	c.operations.WithLabelValues(tbl, string(strategy), string(op)).Inc()
	if err != nil {
		c.errors.WithLabelValues(tbl, classifyError(err)).Inc()
	}
}

func (c *Collector) ObserveCacheLookup(tbl string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(tbl, result).Inc()
}

func (c *Collector) ObserveAdapterCall(tbl string, call string, elapsed time.Duration, _ error) {
	c.adapterCalls.WithLabelValues(tbl, call).Inc()
	c.adapterLatency.WithLabelValues(tbl, call).Observe(elapsed.Seconds())
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func classifyError(err error) string {
	if kind := record.ErrorKind(err); kind != "" {
		return strings.ToLower(kind)
	}
	return "other"
}
