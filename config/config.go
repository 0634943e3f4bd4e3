// Package config reads scanner settings from flags and environment
// variables. Flags win over the environment, which wins over defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/taigrr/wifi_band_analyzer/types"
)

const (
	ErrCodeFlags    = "config_flags"
	ErrCodeInvalid  = "config_invalid"
	ErrCodeBigQuery = "config_bigquery"
)

const (
	DefaultEncoding = "cp866"
	DefaultLocale   = "ru"
	DefaultInterval = time.Second
	DefaultJSONPath = "parsed_networks.json"
)

// Error is a configuration failure with a stable code.
type Error struct {
	Code string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the code of a *Error, or "".
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// BigQuery selects the export table. Export is enabled when Project is set.
type BigQuery struct {
	Project string
	Dataset string
	Table   string
}

func (b BigQuery) Enabled() bool { return b.Project != "" }

type Config struct {
	Input       string
	Encoding    string
	Locale      string
	Interval    time.Duration
	Once        bool
	JSONPath    string
	DataDir     string
	Retention   time.Duration
	Band        string
	MetricsAddr string
	LogLevel    string
	LogFormat   string
	Debug       bool
	Version     bool
	BigQuery    BigQuery
	Tracing     Tracing
}

// Tracing turns on stdout span export of scan passes.
type Tracing struct {
	Enabled     bool
	SampleRatio float64
}

// Load parses args (without the program name) on top of the environment.
func Load(args []string, getenv func(string) string, stderr io.Writer) (Config, error) {
	cfg := Config{
		Input:       getenv("SCAN_INPUT"),
		Encoding:    orDefault(getenv("SCAN_ENCODING"), DefaultEncoding),
		Locale:      orDefault(getenv("SCAN_LOCALE"), DefaultLocale),
		Interval:    DefaultInterval,
		JSONPath:    orDefault(getenv("SCAN_JSON_PATH"), DefaultJSONPath),
		DataDir:     getenv("SCAN_DATA_DIR"),
		MetricsAddr: getenv("METRICS_ADDR"),
		LogLevel:    orDefault(getenv("LOG_LEVEL"), "info"),
		LogFormat:   orDefault(getenv("LOG_FORMAT"), "text"),
		BigQuery: BigQuery{
			Project: getenv("GOOGLE_CLOUD_PROJECT"),
			Dataset: getenv("BIGQUERY_DATASET_SSIDS"),
			Table:   getenv("BIGQUERY_TABLE_SSIDS"),
		},
	}
	if v := getenv("SCAN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "SCAN_INTERVAL", Err: err}
		}
		cfg.Interval = d
	}
	if v := getenv("SCAN_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "SCAN_RETENTION", Err: err}
		}
		cfg.Retention = d
	}
	cfg.Tracing.SampleRatio = 1
	if v := getenv("TRACING_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "TRACING_ENABLED", Err: err}
		}
		cfg.Tracing.Enabled = b
	}
	if v := getenv("TRACING_SAMPLE_RATIO"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "TRACING_SAMPLE_RATIO", Err: err}
		}
		cfg.Tracing.SampleRatio = r
	}
	if v := getenv("DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "DEBUG", Err: err}
		}
		cfg.Debug = b
	}

	fs := flag.NewFlagSet("wifi-band-analyzer", flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}
	fs.StringVar(&cfg.Input, "input", cfg.Input, "read a saved netsh dump instead of running netsh")
	fs.StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "console encoding of the dump (cp866, cp1251, utf-8)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "netsh output language (ru, en)")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "delay between scans")
	fs.BoolVar(&cfg.Once, "once", false, "scan once and exit")
	fs.StringVar(&cfg.JSONPath, "json", cfg.JSONPath, "catalog dump path, empty to disable")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "history directory, empty to disable")
	fs.DurationVar(&cfg.Retention, "retention", cfg.Retention, "drop snapshots older than this, 0 keeps all")
	fs.StringVar(&cfg.Band, "band", "", "only report networks in this band (2.4 GHz, 5 GHz)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug output")
	fs.BoolVar(&cfg.Tracing.Enabled, "trace", cfg.Tracing.Enabled, "write a span per scan pass to stdout")
	fs.Float64Var(&cfg.Tracing.SampleRatio, "trace-ratio", cfg.Tracing.SampleRatio, "fraction of scan passes traced (0-1]")
	fs.BoolVar(&cfg.Version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, &Error{Code: ErrCodeFlags, Err: err}
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if !c.Once && c.Interval <= 0 {
		return &Error{Code: ErrCodeInvalid, Key: "interval", Err: errors.Errorf("must be positive, got %s", c.Interval)}
	}
	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		return &Error{Code: ErrCodeInvalid, Key: "trace-ratio", Err: errors.Errorf("must be in (0, 1], got %v", c.Tracing.SampleRatio)}
	}
	switch c.Band {
	case "", types.Band24GHz, types.Band5GHz:
	default:
		return &Error{Code: ErrCodeInvalid, Key: "band", Err: errors.Errorf("unknown band %q", c.Band)}
	}
	switch c.Locale {
	case "ru", "en":
	default:
		return &Error{Code: ErrCodeInvalid, Key: "locale", Err: errors.Errorf("unsupported locale %q", c.Locale)}
	}
	if c.BigQuery.Enabled() && (c.BigQuery.Dataset == "" || c.BigQuery.Table == "") {
		return &Error{Code: ErrCodeBigQuery, Err: errors.New("BIGQUERY_DATASET_SSIDS and BIGQUERY_TABLE_SSIDS must be set with GOOGLE_CLOUD_PROJECT")}
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
