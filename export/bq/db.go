// Package bq exports scan passes to a BigQuery table.
package bq

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/taigrr/wifi_band_analyzer/classifier"
	"github.com/taigrr/wifi_band_analyzer/types"
)

// Row is one exported network record.
type Row struct {
	Session        string
	SSID           string
	BSSID          string
	Channel        string
	Band           string
	HasSignal      bool
	SignalStrength int64
	SignalDBm      float64
	Timestamp      time.Time
}

// Exporter inserts rows into projectID.dataset.table.
type Exporter struct {
	client    *bigquery.Client
	projectID string
	dataset   string
	table     string
}

func New(ctx context.Context, projectID, dataset, table string) (*Exporter, error) {
	if projectID == "" || dataset == "" || table == "" {
		return nil, errors.New("bigquery: project, dataset and table are required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "bigquery.NewClient")
	}
	return &Exporter{client: client, projectID: projectID, dataset: dataset, table: table}, nil
}

func (e *Exporter) Close() error {
	return e.client.Close()
}

// Rows flattens a pass into export rows.
func Rows(p *types.ScanPass) []Row {
	var rows []Row
	for _, r := range p.Catalog.Records() {
		row := Row{
			Session:   p.Session,
			SSID:      r.SSID,
			BSSID:     strings.Join(r.BSSID, ","),
			Channel:   r.Channel,
			Timestamp: p.Time,
		}
		if b, ok := classifier.BandOf(r.Channel); ok {
			row.Band = b.Name
		}
		if pct, dbm, ok := r.Signal(); ok {
			row.HasSignal = true
			row.SignalStrength = int64(pct)
			row.SignalDBm = dbm
		}
		rows = append(rows, row)
	}
	return rows
}

// Record exports every record of p.
func (e *Exporter) Record(ctx context.Context, p *types.ScanPass) error {
	rows := Rows(p)
	if len(rows) == 0 {
		return nil
	}
	qstring, qps := insertQuery(e.projectID+"."+e.dataset+"."+e.table, rows)
	query := e.client.Query(qstring)
	query.Parameters = qps
	job, err := query.Run(ctx)
	if err != nil {
		log.WithError(err).WithField("query", qstring).Error("creating networks query job")
		return errors.Wrap(err, "bigquery insertion fail")
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrap(err, "running networks query")
	}
	return status.Err()
}

func insertQuery(table string, rows []Row) (string, []bigquery.QueryParameter) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO " + table +
		" (session, ssid, bssid, channel, band, has_signal, signal_strength, signal_dbm, timestamp) VALUES ")
	qps := make([]bigquery.QueryParameter, 0, len(rows)*9)
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?,?,?,?,?,?)")
		qps = append(qps,
			bigquery.QueryParameter{Value: row.Session},
			bigquery.QueryParameter{Value: row.SSID},
			bigquery.QueryParameter{Value: row.BSSID},
			bigquery.QueryParameter{Value: row.Channel},
			bigquery.QueryParameter{Value: row.Band},
			bigquery.QueryParameter{Value: row.HasSignal},
			bigquery.QueryParameter{Value: row.SignalStrength},
			bigquery.QueryParameter{Value: row.SignalDBm},
			bigquery.QueryParameter{Value: row.Timestamp},
		)
	}
	sb.WriteByte(';')
	return sb.String(), qps
}
