package store

import (
	"context"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"

	"github.com/taigrr/wifi_band_analyzer/types"
)

const signalMetric = "signal_dbm"

// Point is one signal sample of an SSID.
type Point struct {
	Time time.Time `json:"time"`
	DBm  float64   `json:"dbm"`
}

// Series keeps the signal of every SSID over time, one sample per SSID per
// scan pass.
type Series struct {
	storage tstorage.Storage
}

// NewSeries opens a time series database in dir. An empty dir keeps the data
// in memory only.
func NewSeries(dir string) (*Series, error) {
	opts := []tstorage.Option{tstorage.WithTimestampPrecision(tstorage.Seconds)}
	if dir != "" {
		opts = append(opts, tstorage.WithDataPath(dir))
	}
	storage, err := tstorage.NewStorage(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize time series database")
	}
	return &Series{storage: storage}, nil
}

// Record stores the signals of a scan pass.
func (s *Series) Record(_ context.Context, p *types.ScanPass) error {
	return s.Insert(p.Time, p.Catalog)
}

// Insert stores, for each SSID of c, the dBm of its last record that carries
// a signal reading.
func (s *Series) Insert(t time.Time, c *types.NetworkCatalog) error {
	var rows []tstorage.Row
	c.Range(func(ssid string, records []types.NetworkRecord) bool {
		var (
			last float64
			seen bool
		)
		for _, r := range records {
			if _, dbm, ok := r.Signal(); ok {
				last, seen = dbm, true
			}
		}
		if seen {
			rows = append(rows, tstorage.Row{
				Metric:    signalMetric,
				Labels:    []tstorage.Label{{Name: "ssid", Value: ssid}},
				DataPoint: tstorage.DataPoint{Timestamp: t.Unix(), Value: last},
			})
		}
		return true
	})
	if len(rows) == 0 {
		return nil
	}
	return errors.Wrap(s.storage.InsertRows(rows), "inserting signal rows")
}

// Select returns the samples of ssid taken in [from, to), oldest first.
func (s *Series) Select(ssid string, from, to time.Time) ([]Point, error) {
	points, err := s.storage.Select(signalMetric, []tstorage.Label{{Name: "ssid", Value: ssid}}, from.Unix(), to.Unix())
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "selecting signal of %q", ssid)
	}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = append(out, Point{Time: time.Unix(p.Timestamp, 0), DBm: p.Value})
	}
	return out, nil
}

func (s *Series) Close() error {
	return s.storage.Close()
}
