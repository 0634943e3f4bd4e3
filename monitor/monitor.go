// Package monitor drives scan passes: fetch a dump, parse it, classify it and
// hand the result to sinks, once or on a timer.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taigrr/wifi_band_analyzer/classifier"
	"github.com/taigrr/wifi_band_analyzer/metrics"
	"github.com/taigrr/wifi_band_analyzer/netsh"
	"github.com/taigrr/wifi_band_analyzer/parser"
	"github.com/taigrr/wifi_band_analyzer/types"
)

// Sink consumes finished passes.
type Sink interface {
	Record(ctx context.Context, p *types.ScanPass) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, p *types.ScanPass) error

func (f SinkFunc) Record(ctx context.Context, p *types.ScanPass) error { return f(ctx, p) }

// DefaultInterval is the refresh period used when none, or a non-positive
// one, is given.
const DefaultInterval = time.Second

// Option configures a Session.
type Option func(*Session)

func WithParser(p *parser.Parser) Option { return func(s *Session) { s.parser = p } }
func WithSinks(sinks ...Sink) Option { return func(s *Session) { s.sinks = append(s.sinks, sinks...) } }
func WithInterval(d time.Duration) Option { return func(s *Session) { s.interval = d } }
func WithLogger(l log.FieldLogger) Option { return func(s *Session) { s.logger = l } }
func WithMetrics(c *metrics.Collector) Option { return func(s *Session) { s.metrics = c } }
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithTracerProvider sets where pass spans go. The global provider is used
// otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Session) { s.tracer = tp.Tracer(tracerName) }
}

const tracerName = "github.com/taigrr/wifi_band_analyzer/monitor"

// Session is one independent scanning loop. Stopping a session does not
// affect any other.
type Session struct {
	id       string
	source   netsh.Source
	parser   *parser.Parser
	sinks    []Sink
	interval time.Duration
	logger   log.FieldLogger
	metrics  *metrics.Collector
	tracer   trace.Tracer
	now      func() time.Time

	mu     sync.Mutex
	seq    int
	cancel context.CancelFunc
}

func NewSession(src netsh.Source, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		source:   src,
		parser:   parser.New(nil),
		interval: DefaultInterval,
		logger:   log.StandardLogger(),
		now:      time.Now,
	}
	s.tracer = otel.Tracer(tracerName)
	for _, o := range opts {
		o(s)
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	s.logger = s.logger.WithField("session", s.id)
	return s
}

func (s *Session) ID() string { return s.id }

// RunOnce performs a single pass. Only a source failure is returned as an
// error; parse and classification warnings are logged and attached to the
// pass, and sink failures are logged.
func (s *Session) RunOnce(ctx context.Context) (*types.ScanPass, error) {
	ctx, span := s.tracer.Start(ctx, "scan.pass", trace.WithAttributes(attribute.String("session", s.id)))
	defer span.End()

	start := time.Now()
	lines, err := s.source.Lines(ctx)
	if err != nil {
		s.metrics.ObserveFailure(time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		return nil, errors.Wrap(err, "scan failed")
	}

	catalog, parseWarnings := s.parser.Parse(lines)
	classified, classifyWarnings := classifier.Classify(catalog)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	pass := &types.ScanPass{
		Session:    s.id,
		Seq:        seq,
		Time:       s.now(),
		Catalog:    catalog,
		Classified: classified,
		Warnings:   append(parseWarnings, classifyWarnings...),
	}
	s.logWarnings(pass)
	span.SetAttributes(
		attribute.Int("seq", seq),
		attribute.Int("networks", catalog.Count()),
		attribute.Int("warnings", len(pass.Warnings)),
	)
	s.metrics.ObservePass(pass, time.Since(start))
	s.logger.WithFields(log.Fields{
		"seq":      seq,
		"networks": catalog.Count(),
		"2.4GHz":   len(classified[types.Band24GHz]),
		"5GHz":     len(classified[types.Band5GHz]),
	}).Debug("scan pass complete")

	for _, sink := range s.sinks {
		if err := sink.Record(ctx, pass); err != nil {
			s.logger.WithError(err).WithField("seq", seq).Error("recording scan pass")
			span.RecordError(err)
		}
	}
	return pass, nil
}

func (s *Session) logWarnings(p *types.ScanPass) {
	for _, w := range p.Warnings {
		entry := s.logger.WithField("seq", p.Seq).WithField("kind", metrics.WarningKind(w))
		var mw *parser.MalformedRecordWarning
		var uw *classifier.UnclassifiableChannelWarning
		switch {
		case errors.As(w, &mw):
			entry = entry.WithField("value", mw.Value)
		case errors.As(w, &uw):
			entry = entry.WithFields(log.Fields{"ssid": uw.SSID, "channel": uw.Channel})
		}
		entry.Warn(w.Error())
	}
}

// Run scans immediately and then every interval until ctx is done or Stop is
// called. Source failures are logged and the loop carries on.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		cancel()
		return errors.New("session already running")
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	s.logger.WithField("interval", s.interval).Info("scanning started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.WithError(err).Error("scan pass failed")
		}
		select {
		case <-ctx.Done():
			s.logger.Info("scanning stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends a running Run call. It is a no-op when the session is idle.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
