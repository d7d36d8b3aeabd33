// Package prometheus implements metrics.Client on a dedicated Prometheus registry.
//
// Dotted keys become underscore-separated metric names under the configured
// namespace, counters get a _total suffix, durations are histograms in
// seconds. The label set of a metric is fixed by its first use; later
// calls fill missing labels with "" and drop unknown ones.
package prometheus

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
)

type (
	MetricsClient struct {
		namespace  string
		registry   *prometheus.Registry
		mu         sync.Mutex
		counters   map[string]*labelledCounter
		histograms map[string]*labelledHistogram
	}

	labelledCounter struct {
		vec    *prometheus.CounterVec
		labels []string
	}

	labelledHistogram struct {
		vec    *prometheus.HistogramVec
		labels []string
	}
)

func NewMetricsClient(namespace string) *MetricsClient {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsClient{
		namespace:  sanitize(namespace),
		registry:   registry,
		counters:   make(map[string]*labelledCounter),
		histograms: make(map[string]*labelledHistogram),
	}
}

func (c *MetricsClient) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	amount, ok := toFloat(value)
	if !ok || amount < 0 {
		return
	}

	counter := c.counter(key, attributes)
	counter.vec.WithLabelValues(labelValues(counter.labels, attributes)...).Add(amount)
}

func (c *MetricsClient) Observe(_ context.Context, key string, duration time.Duration, attributes ...attribute.KeyValue) {
	histogram := c.histogram(key, attributes)
	histogram.vec.WithLabelValues(labelValues(histogram.labels, attributes)...).Observe(duration.Seconds())
}

func (c *MetricsClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *MetricsClient) Shutdown(_ context.Context) error {
	return nil
}

// Registry exposes the underlying registry for extra collectors.
func (c *MetricsClient) Registry() *prometheus.Registry {
	return c.registry
}

func (c *MetricsClient) counter(key string, attributes []attribute.KeyValue) *labelledCounter {
	name := sanitize(key) + "_total"

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.counters[name]; ok {
		return existing
	}

	labels := labelNames(attributes)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      "Counter for " + key + ".",
	}, labels)
	c.registry.MustRegister(vec)

	counter := &labelledCounter{vec: vec, labels: labels}
	c.counters[name] = counter

	return counter
}

func (c *MetricsClient) histogram(key string, attributes []attribute.KeyValue) *labelledHistogram {
	name := sanitize(key) + "_seconds"

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.histograms[name]; ok {
		return existing
	}

	labels := labelNames(attributes)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      "Duration of " + key + " in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, labels)
	c.registry.MustRegister(vec)

	histogram := &labelledHistogram{vec: vec, labels: labels}
	c.histograms[name] = histogram

	return histogram
}

func labelNames(attributes []attribute.KeyValue) []string {
	names := make([]string, 0, len(attributes))
	for _, attr := range attributes {
		names = append(names, sanitize(string(attr.Key)))
	}

	sort.Strings(names)

	return names
}

func labelValues(names []string, attributes []attribute.KeyValue) []string {
	byName := make(map[string]string, len(attributes))
	for _, attr := range attributes {
		byName[sanitize(string(attr.Key))] = attr.Value.Emit()
	}

	values := make([]string, len(names))
	for index, name := range names {
		values[index] = byName[name]
	}

	return values
}

func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return strings.Trim(b.String(), "_")
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
