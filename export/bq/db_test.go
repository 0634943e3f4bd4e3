package bq

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/taigrr/wifi_band_analyzer/types"
)

func testPass() *types.ScanPass {
	c := types.NewNetworkCatalog()
	r := types.NetworkRecord{SSID: "home", BSSID: []string{"aa", "bb"}, Channel: "44"}
	r.SetSignal(50)
	c.Add(r)
	c.Add(types.NetworkRecord{SSID: "old", Channel: "abc"})
	return &types.ScanPass{Session: "s1", Time: time.Unix(1_700_000_000, 0), Catalog: c}
}

func TestRows(t *testing.T) {
	rows := Rows(testPass())
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	home := rows[0]
	if home.BSSID != "aa,bb" || home.Band != types.Band5GHz || !home.HasSignal || home.SignalStrength != 50 || home.SignalDBm != -65 {
		t.Fatalf("rows[0] = %+v", home)
	}
	if rows[1].Band != "" || rows[1].HasSignal {
		t.Fatalf("rows[1] = %+v", rows[1])
	}
}

func TestInsertQueryPlaceholders(t *testing.T) {
	rows := Rows(testPass())
	q, params := insertQuery("p.d.t", rows)
	if !strings.HasPrefix(q, "INSERT INTO p.d.t (") || !strings.HasSuffix(q, ";") {
		t.Fatalf("query = %s", q)
	}
	if got := strings.Count(q, "?"); got != len(params) || got != 18 {
		t.Fatalf("placeholders = %d, params = %d, want 18", got, len(params))
	}
	if params[1].Value != "home" || params[9].Value != "s1" {
		t.Fatalf("params out of order: %+v", params[:10])
	}
}

func TestNewRequiresTable(t *testing.T) {
	if _, err := New(context.Background(), "p", "", "t"); err == nil {
		t.Fatalf("expected error without dataset")
	}
}
