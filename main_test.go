package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taigrr/wifi_band_analyzer/classifier"
	"github.com/taigrr/wifi_band_analyzer/config"
	"github.com/taigrr/wifi_band_analyzer/logging"
	"github.com/taigrr/wifi_band_analyzer/parser"
	"github.com/taigrr/wifi_band_analyzer/store"
	"github.com/taigrr/wifi_band_analyzer/types"
)

const dump = "SSID 1 : MyNet\r\n" +
	"    Тип сети            : Инфраструктура\r\n" +
	"    Проверка подлинности : WPA2-Personal\r\n" +
	"    BSSID 1             : aa:bb:cc:dd:ee:ff\r\n" +
	"         Сигнал             : 80%\r\n" +
	"         Канал            : 6\r\n" +
	"\r\n" +
	"SSID 2 : Lab5\r\n" +
	"    BSSID 1             : 11:22:33:44:55:66\r\n" +
	"         Сигнал             : 40%\r\n" +
	"         Канал            : 44\r\n"

func TestRunOnceFromFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "scan.txt")
	if err := os.WriteFile(input, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{
		Input:    input,
		Encoding: "utf-8",
		Locale:   "ru",
		Once:     true,
		JSONPath: filepath.Join(dir, "parsed_networks.json"),
		DataDir:  filepath.Join(dir, "data"),
	}
	var out bytes.Buffer
	if err := run(context.Background(), cfg, logging.Discard(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "SSID: MyNet") || !strings.Contains(out.String(), "--- 5 GHZ ---") {
		t.Fatalf("report missing networks:\n%s", out.String())
	}

	c, err := store.ReadJSON(cfg.JSONPath)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got := c.Keys(); len(got) != 2 || got[0] != "MyNet" || got[1] != "Lab5" {
		t.Fatalf("dumped keys = %v", got)
	}

	snaps, err := store.OpenSnapshots(filepath.Join(cfg.DataDir, "bc"))
	if err != nil {
		t.Fatalf("OpenSnapshots: %v", err)
	}
	defer snaps.Close()
	if snaps.Len() != 1 {
		t.Fatalf("snapshots = %d, want 1", snaps.Len())
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := config.Config{Input: filepath.Join(t.TempDir(), "nope.txt"), Locale: "ru", Once: true}
	if err := run(context.Background(), cfg, logging.Discard(), &bytes.Buffer{}); err == nil {
		t.Fatalf("run succeeded without input file")
	}
}

func newTestServer(t *testing.T) (*server, time.Time) {
	t.Helper()
	c, _ := parser.Parse(strings.Split(strings.ReplaceAll(dump, "\r", ""), "\n"))
	cl, _ := classifier.Classify(c)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	series, err := store.NewSeries("")
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	t.Cleanup(func() { series.Close() })
	snaps, err := store.OpenSnapshots(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSnapshots: %v", err)
	}
	t.Cleanup(func() { snaps.Close() })

	s := &server{last: &latest{}, series: series, snaps: snaps, now: func() time.Time { return at.Add(time.Minute) }}
	pass := &types.ScanPass{Session: "s1", Seq: 4, Time: at, Catalog: c, Classified: cl}
	for _, sink := range []interface {
		Record(context.Context, *types.ScanPass) error
	}{s.last, series, snaps} {
		if err := sink.Record(context.Background(), pass); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	return s, at
}

func get(t *testing.T, h http.Handler, target string, v interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code == http.StatusOK && v != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("decoding %s: %v\n%s", target, err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestNetworksRoute(t *testing.T) {
	empty := (&server{last: &latest{}, now: time.Now}).routes(http.NotFoundHandler())
	if code := get(t, empty, "/networks", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("empty status = %d", code)
	}

	s, _ := newTestServer(t)
	h := s.routes(http.NotFoundHandler())
	var got struct {
		Seq        int                        `json:"seq"`
		Time       string                     `json:"time"`
		Networks   map[string]json.RawMessage `json:"networks"`
		Classified map[string]json.RawMessage `json:"classified"`
	}
	if code := get(t, h, "/networks?band="+url.QueryEscape(types.Band5GHz), &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.Seq != 4 || got.Time != "2024-05-01T12:00:00Z" {
		t.Fatalf("header = %d %s", got.Seq, got.Time)
	}
	if _, ok := got.Networks["Lab5"]; !ok || len(got.Networks) != 1 {
		t.Fatalf("band filter not applied: %v", got.Networks)
	}
	if len(got.Classified) != 2 {
		t.Fatalf("classified bands = %v", got.Classified)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/networks", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d", rec.Code)
	}
	if code := get(t, h, "/networks?band=6GHz", nil); code != http.StatusBadRequest {
		t.Fatalf("bad band status = %d", code)
	}
}

func TestSignalsRoute(t *testing.T) {
	s, _ := newTestServer(t)
	var got map[string][]struct {
		Channel int     `json:"channel"`
		DBm     float64 `json:"dbm"`
	}
	if code := get(t, s.routes(http.NotFoundHandler()), "/signals", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got["MyNet"]) != 1 || got["MyNet"][0].Channel != 6 || got["MyNet"][0].DBm != -44 {
		t.Fatalf("MyNet readings = %+v", got["MyNet"])
	}
	if len(got["Lab5"]) != 1 || got["Lab5"][0].Channel != 44 || got["Lab5"][0].DBm != -72 {
		t.Fatalf("Lab5 readings = %+v", got["Lab5"])
	}
}

func TestHistoryRoute(t *testing.T) {
	s, at := newTestServer(t)
	h := s.routes(http.NotFoundHandler())

	var got struct {
		SSID   string `json:"ssid"`
		Points []struct {
			Time time.Time `json:"time"`
			DBm  float64   `json:"dbm"`
		} `json:"points"`
	}
	if code := get(t, h, "/history?ssid=MyNet", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.SSID != "MyNet" || len(got.Points) != 1 || !got.Points[0].Time.Equal(at) || got.Points[0].DBm != -44 {
		t.Fatalf("history = %+v", got)
	}

	from := url.QueryEscape(at.Add(time.Hour).Format(time.RFC3339))
	to := url.QueryEscape(at.Add(2 * time.Hour).Format(time.RFC3339))
	got.Points = nil
	if code := get(t, h, "/history?ssid=MyNet&from="+from+"&to="+to, &got); code != http.StatusOK || len(got.Points) != 0 {
		t.Fatalf("later window = %d %+v", code, got.Points)
	}

	for _, target := range []string{
		"/history",
		"/history?ssid=MyNet&from=yesterday",
		"/history?ssid=MyNet&from=" + to + "&to=" + from,
	} {
		if code := get(t, h, target, nil); code != http.StatusBadRequest {
			t.Fatalf("%s = %d, want %d", target, code, http.StatusBadRequest)
		}
	}

	disabled := (&server{last: &latest{}, now: time.Now}).routes(http.NotFoundHandler())
	if code := get(t, disabled, "/history?ssid=MyNet", nil); code != http.StatusNotFound {
		t.Fatalf("disabled history status = %d", code)
	}
}

func TestSnapshotsRoute(t *testing.T) {
	s, at := newTestServer(t)
	var got []struct {
		Time     time.Time                  `json:"time"`
		Networks map[string]json.RawMessage `json:"networks"`
	}
	if code := get(t, s.routes(http.NotFoundHandler()), "/snapshots", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got) != 1 || !got[0].Time.Equal(at) || len(got[0].Networks) != 2 {
		t.Fatalf("snapshots = %+v", got)
	}
}
