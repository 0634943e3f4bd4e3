package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/wifi_band_analyzer/config"
	"github.com/taigrr/wifi_band_analyzer/export/bq"
	"github.com/taigrr/wifi_band_analyzer/logging"
	"github.com/taigrr/wifi_band_analyzer/metrics"
	"github.com/taigrr/wifi_band_analyzer/monitor"
	"github.com/taigrr/wifi_band_analyzer/netsh"
	"github.com/taigrr/wifi_band_analyzer/parser"
	"github.com/taigrr/wifi_band_analyzer/report"
	"github.com/taigrr/wifi_band_analyzer/store"
	"github.com/taigrr/wifi_band_analyzer/tracing"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if cfg.Version {
		printVersion(os.Stdout)
		return
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// if we receive a signal, shut down cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.WithError(err).Error("exiting")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger, out io.Writer) error {
	grammar, err := parser.ForLocale(cfg.Locale)
	if err != nil {
		return err
	}
	src, err := newSource(cfg)
	if err != nil {
		return err
	}

	sinks := []monitor.Sink{&report.Printer{Out: out, Band: cfg.Band}}
	if cfg.JSONPath != "" {
		sinks = append(sinks, store.JSONDump{Path: cfg.JSONPath})
	}
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.WithError(err).Warn("closing store")
			}
		}
	}()
	var (
		snaps  *store.Snapshots
		series *store.Series
	)
	if cfg.DataDir != "" {
		if snaps, err = store.OpenSnapshots(filepath.Join(cfg.DataDir, "bc")); err != nil {
			return err
		}
		snaps.Retention = cfg.Retention
		closers = append(closers, snaps)
		if series, err = store.NewSeries(filepath.Join(cfg.DataDir, "ts")); err != nil {
			return err
		}
		closers = append(closers, series)
		sinks = append(sinks, snaps, series)
		logHistory(logger, cfg.DataDir, snaps)
	}
	if cfg.BigQuery.Enabled() {
		exp, err := bq.New(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset, cfg.BigQuery.Table)
		if err != nil {
			return err
		}
		closers = append(closers, exp)
		sinks = append(sinks, exp)
	}

	last := &latest{}
	sinks = append(sinks, last)

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return errors.Wrap(err, "registering metrics")
	}

	tp, shutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: Package,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, os.Stderr)
	if err != nil {
		return err
	}
	defer tracing.Shutdown(context.Background(), shutdown)

	session := monitor.NewSession(src,
		monitor.WithParser(parser.New(grammar)),
		monitor.WithSinks(sinks...),
		monitor.WithInterval(cfg.Interval),
		monitor.WithLogger(logger),
		monitor.WithMetrics(collector),
		monitor.WithTracerProvider(tp),
	)

	if cfg.Once {
		_, err := session.RunOnce(ctx)
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		views := &server{last: last, series: series, snaps: snaps, now: time.Now}
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: views.routes(collector.Handler()), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "metrics server")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		return session.Run(ctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Debug("Signal received, shutting down...")
	return nil
}

// logHistory reports where the stored history resumes.
func logHistory(logger log.FieldLogger, dir string, snaps *store.Snapshots) {
	entry := logger.WithFields(log.Fields{"dir": dir, "snapshots": snaps.Len()})
	last, ok, err := snaps.Latest()
	switch {
	case err != nil:
		entry.WithError(err).Warn("reading latest snapshot")
	case ok:
		entry.WithFields(log.Fields{"last": last.Time.Format(time.RFC3339), "networks": last.Catalog.Count()}).Info("resuming history")
	default:
		entry.Info("history enabled")
	}
}

func newSource(cfg config.Config) (netsh.Source, error) {
	if cfg.Input != "" {
		return netsh.NewFileSource(cfg.Input, cfg.Encoding)
	}
	return netsh.NewCommandSource(cfg.Encoding)
}
