// Package metrics exposes scan activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taigrr/wifi_band_analyzer/classifier"
	"github.com/taigrr/wifi_band_analyzer/parser"
	"github.com/taigrr/wifi_band_analyzer/types"
)

// Warning kinds used as label values.
const (
	KindMalformedRecord       = "malformed_record"
	KindUnclassifiableChannel = "unclassifiable_channel"
	KindOther                 = "other"
)

// Collector bundles the scan metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Passes       *prometheus.CounterVec
	Warnings     *prometheus.CounterVec
	PassDuration prometheus.Histogram
	Networks     prometheus.Gauge
	BandNetworks *prometheus.GaugeVec
}

// NewCollector registers the scan metrics against reg, defaulting to the
// global registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	passes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wifi_scan_passes_total",
		Help: "Scan passes, labeled by result (ok or error).",
	}, []string{"result"}), "wifi_scan_passes_total")
	if err != nil {
		return nil, err
	}
	warnings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wifi_scan_warnings_total",
		Help: "Recoverable parse and classification warnings, labeled by kind.",
	}, []string{"kind"}), "wifi_scan_warnings_total")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wifi_scan_pass_duration_seconds",
		Help:    "Time spent obtaining, parsing and classifying one scan.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "wifi_scan_pass_duration_seconds")
	if err != nil {
		return nil, err
	}
	networks, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wifi_scan_networks",
		Help: "Network records committed by the last scan pass.",
	}), "wifi_scan_networks")
	if err != nil {
		return nil, err
	}
	bands, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wifi_scan_band_networks",
		Help: "Network records per frequency band in the last scan pass.",
	}, []string{"band"}), "wifi_scan_band_networks")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Passes:       passes,
		Warnings:     warnings,
		PassDuration: duration,
		Networks:     networks,
		BandNetworks: bands,
	}, nil
}

// ObservePass records a successful pass.
func (c *Collector) ObservePass(p *types.ScanPass, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Passes.WithLabelValues("ok").Inc()
	c.PassDuration.Observe(elapsed.Seconds())
	c.Networks.Set(float64(p.Catalog.Count()))
	for band, n := range p.Classified.Counts() {
		c.BandNetworks.WithLabelValues(band).Set(float64(n))
	}
	for _, w := range p.Warnings {
		c.Warnings.WithLabelValues(WarningKind(w)).Inc()
	}
}

// ObserveFailure records a pass whose source failed.
func (c *Collector) ObserveFailure(elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Passes.WithLabelValues("error").Inc()
	c.PassDuration.Observe(elapsed.Seconds())
}

// WarningKind maps a warning to its label value.
func WarningKind(err error) string {
	var mw *parser.MalformedRecordWarning
	var uw *classifier.UnclassifiableChannelWarning
	switch {
	case errors.As(err, &mw):
		return KindMalformedRecord
	case errors.As(err, &uw):
		return KindUnclassifiableChannel
	}
	return KindOther
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
