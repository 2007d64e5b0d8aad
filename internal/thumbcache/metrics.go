package thumbcache

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ironsheep/thumbnailer/internal/imaging"
)

// Observer captures telemetry for thumbnail requests.
type Observer interface {
	RecordRequest(kind imaging.Kind, status Status, err error)
	RecordLookup(duration time.Duration, err error)
	RecordTransform(kind imaging.Kind, duration time.Duration, err error)
	RecordCacheWrite(duration time.Duration, sizeBytes int, err error)
}

// PrometheusObserver exports thumbnail metrics to Prometheus.
type PrometheusObserver struct {
	requests          *prometheus.CounterVec
	lookupDuration    prometheus.Histogram
	transformDuration *prometheus.HistogramVec
	cacheWrites       *prometheus.CounterVec
	cachedBytes       prometheus.Counter
}

// NewPrometheusObserver registers the request, lookup, transform and cache
// write metrics on reg.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "thumbnailer"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Thumbnail requests by transform kind and cache outcome.",
		}, []string{"kind", "outcome"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_lookup_duration_seconds",
			Help:      "Latency of cache lookups, hit or miss.",
			Buckets:   prometheus.DefBuckets,
		}),
		transformDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_duration_seconds",
			Help:      "Latency of decode, transform and encode.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Cache writes by result.",
		}, []string{"result"}),
		cachedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cached_bytes_total",
			Help:      "Cumulative size of thumbnails written to the cache.",
		}),
	}
	var err error
	if o.requests, err = register(reg, o.requests); err != nil {
		return nil, err
	}
	if o.lookupDuration, err = register(reg, o.lookupDuration); err != nil {
		return nil, err
	}
	if o.transformDuration, err = register(reg, o.transformDuration); err != nil {
		return nil, err
	}
	if o.cacheWrites, err = register(reg, o.cacheWrites); err != nil {
		return nil, err
	}
	if o.cachedBytes, err = register(reg, o.cachedBytes); err != nil {
		return nil, err
	}
	return o, nil
}

// register adds c to reg. When an identical collector is already registered,
// that one is returned so recordings reach the exported series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register thumbnail metric: %w", err)
	}
	return c, nil
}

func kindLabel(kind imaging.Kind) string {
	switch kind {
	case imaging.KindLongEdge:
		return "long-edge"
	case imaging.KindFit:
		return "fit"
	default:
		return "unknown"
	}
}

func (o *PrometheusObserver) RecordRequest(kind imaging.Kind, status Status, err error) {
	if o == nil {
		return
	}
	outcome := "error"
	if err == nil {
		outcome = string(status)
	}
	o.requests.WithLabelValues(kindLabel(kind), outcome).Inc()
}

func (o *PrometheusObserver) RecordLookup(duration time.Duration, _ error) {
	if o == nil {
		return
	}
	o.lookupDuration.Observe(duration.Seconds())
}

func (o *PrometheusObserver) RecordTransform(kind imaging.Kind, duration time.Duration, _ error) {
	if o == nil {
		return
	}
	o.transformDuration.WithLabelValues(kindLabel(kind)).Observe(duration.Seconds())
}

// RecordCacheWrite tracks cache writes and the bytes they stored.
func (o *PrometheusObserver) RecordCacheWrite(_ time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.cacheWrites.WithLabelValues("failed").Inc()
		return
	}
	o.cacheWrites.WithLabelValues("ok").Inc()
	o.cachedBytes.Add(float64(sizeBytes))
}

type nopObserver struct{}

func (nopObserver) RecordRequest(imaging.Kind, Status, error) {}

func (nopObserver) RecordLookup(time.Duration, error) {}

func (nopObserver) RecordTransform(imaging.Kind, time.Duration, error) {}

func (nopObserver) RecordCacheWrite(time.Duration, int, error) {}
