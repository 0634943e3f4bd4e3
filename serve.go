package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/taigrr/wifi_band_analyzer/classifier"
	"github.com/taigrr/wifi_band_analyzer/report"
	"github.com/taigrr/wifi_band_analyzer/store"
	"github.com/taigrr/wifi_band_analyzer/types"
)

// defaultWindow is how far back /history and /snapshots look without ?from.
const defaultWindow = time.Hour

// latest keeps the most recent pass for the HTTP views.
type latest struct {
	mu   sync.RWMutex
	pass *types.ScanPass
}

func (l *latest) Record(_ context.Context, p *types.ScanPass) error {
	l.mu.Lock()
	l.pass = p
	l.mu.Unlock()
	return nil
}

func (l *latest) get() *types.ScanPass {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pass
}

// server answers the read-only views next to /metrics. series and snaps are
// nil when history is disabled.
type server struct {
	last   *latest
	series *store.Series
	snaps  *store.Snapshots
	now    func() time.Time
}

func (s *server) routes(metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/networks", s.networks)
	mux.HandleFunc("/signals", s.signals)
	mux.HandleFunc("/history", s.history)
	mux.HandleFunc("/snapshots", s.snapshots)
	return mux
}

type networksView struct {
	Session    string                  `json:"session"`
	Seq        int                     `json:"seq"`
	Time       string                  `json:"time"`
	Networks   *types.NetworkCatalog   `json:"networks"`
	Classified types.ClassifiedCatalog `json:"classified"`
}

// networks answers GET /networks[?band=5 GHz] with the last pass.
func (s *server) networks(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	band := r.URL.Query().Get("band")
	switch band {
	case "", types.Band24GHz, types.Band5GHz:
	default:
		http.Error(w, "unknown band", http.StatusBadRequest)
		return
	}
	p := s.last.get()
	if p == nil {
		http.Error(w, "no scan yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, networksView{
		Session:    p.Session,
		Seq:        p.Seq,
		Time:       p.Time.UTC().Format(time.RFC3339),
		Networks:   classifier.Filter(p.Catalog, band),
		Classified: p.Classified,
	})
}

// signals answers GET /signals with the (channel, dBm) readings of the last
// pass per SSID.
func (s *server) signals(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	p := s.last.get()
	if p == nil {
		http.Error(w, "no scan yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, report.ChannelSignals(p.Catalog))
}

type historyView struct {
	SSID   string        `json:"ssid"`
	From   time.Time     `json:"from"`
	To     time.Time     `json:"to"`
	Points []store.Point `json:"points"`
}

// history answers GET /history?ssid=X[&from=RFC3339][&to=RFC3339] with the
// stored signal series of one SSID.
func (s *server) history(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	if s.series == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	ssid := r.URL.Query().Get("ssid")
	if ssid == "" {
		http.Error(w, "ssid is required", http.StatusBadRequest)
		return
	}
	from, to, err := window(r, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	points, err := s.series.Select(ssid, from, to)
	if err != nil {
		log.WithError(err).WithField("ssid", ssid).Error("selecting signal history")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []store.Point{}
	}
	writeJSON(w, historyView{SSID: ssid, From: from, To: to, Points: points})
}

// snapshots answers GET /snapshots[?from=RFC3339][&to=RFC3339] with the
// stored catalogs of that window, oldest first.
func (s *server) snapshots(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	if s.snaps == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	from, to, err := window(r, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snaps, err := s.snaps.Range(from, to)
	if err != nil {
		log.WithError(err).Error("reading snapshots")
		http.Error(w, "snapshots unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, snaps)
}

func readOnly(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "Only GET supported.", http.StatusMethodNotAllowed)
	return false
}

// window reads ?from and ?to. to defaults to now and from to an hour before
// to.
func window(r *http.Request, now time.Time) (from, to time.Time, err error) {
	q := r.URL.Query()
	to = now
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return from, to, errors.Wrap(err, "bad to")
		}
	}
	from = to.Add(-defaultWindow)
	if v := q.Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return from, to, errors.Wrap(err, "bad from")
		}
	}
	if !from.Before(to) {
		return from, to, errors.Errorf("from %s is not before to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return from, to, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("writing response")
	}
}
