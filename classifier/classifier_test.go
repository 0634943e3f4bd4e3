package classifier

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/taigrr/wifi_band_analyzer/parser"
	"github.com/taigrr/wifi_band_analyzer/types"
)

func catalogOf(recs ...types.NetworkRecord) *types.NetworkCatalog {
	c := types.NewNetworkCatalog()
	for _, r := range recs {
		c.Add(r)
	}
	return c
}

func net(ssid, channel string) types.NetworkRecord {
	return types.NetworkRecord{SSID: ssid, Channel: channel}
}

func ssids(recs []types.NetworkRecord) []string {
	out := []string{}
	for _, r := range recs {
		out = append(out, r.SSID)
	}
	return out
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		channel string
		band    string
	}{
		{"0", ""},
		{"1", types.Band24GHz},
		{"6", types.Band24GHz},
		{"13", types.Band24GHz},
		{"14", ""},
		{"35", ""},
		{"36", types.Band5GHz},
		{"149", types.Band5GHz},
		{"173", types.Band5GHz},
		{"174", ""},
		{"99999999999999999999999", ""},
	}
	for _, tt := range tests {
		got, warnings := Classify(catalogOf(net("n", tt.channel)))
		if len(warnings) != 0 {
			t.Fatalf("channel %s: warnings = %v, want none", tt.channel, warnings)
		}
		if len(got) != 2 {
			t.Fatalf("channel %s: keys = %v, want exactly two bands", tt.channel, got)
		}
		for band, recs := range got {
			want := 0
			if band == tt.band {
				want = 1
			}
			if len(recs) != want {
				t.Fatalf("channel %s: band %s has %d records, want %d", tt.channel, band, len(recs), want)
			}
		}
	}
}

func TestClassifyWarnsOncePerUnparsableRecord(t *testing.T) {
	c := catalogOf(net("a", ""), net("b", "6a"), net("c", "-1"), net("d", " 6"), net("e", "٦"), net("f", "11"))
	got, warnings := Classify(c)
	if len(warnings) != 5 {
		t.Fatalf("warnings = %v, want 5", warnings)
	}
	var uw *UnclassifiableChannelWarning
	if !errors.As(warnings[1], &uw) || uw.SSID != "b" || uw.Channel != "6a" {
		t.Fatalf("warning[1] = %#v", warnings[1])
	}
	if got, want := ssids(got[types.Band24GHz]), []string{"f"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("2.4 GHz = %v, want %v", got, want)
	}
	if c.Count() != 6 {
		t.Fatalf("catalog modified by Classify")
	}
}

func TestClassifyKeepsEncounterOrderAcrossGroups(t *testing.T) {
	c := types.NewNetworkCatalog()
	c.Append("x", net("one", "1"))
	c.Append("y", net("two", "36"))
	c.Append("x", net("three", "11"))
	c.Append("z", net("four", "44"))

	got, _ := Classify(c)
	if want := []string{"one", "three"}; !reflect.DeepEqual(ssids(got[types.Band24GHz]), want) {
		t.Fatalf("2.4 GHz = %v, want %v", ssids(got[types.Band24GHz]), want)
	}
	if want := []string{"two", "four"}; !reflect.DeepEqual(ssids(got[types.Band5GHz]), want) {
		t.Fatalf("5 GHz = %v, want %v", ssids(got[types.Band5GHz]), want)
	}
}

func TestClassifyParsedDump(t *testing.T) {
	catalog, _ := parser.Parse([]string{
		"SSID 1 : MyNet",
		"    Тип сети            : Инфраструктура",
		"    Проверка подлинности    : WPA2-Personal",
		"    Шифрование           : CCMP",
		"    BSSID 1             : aa:bb:cc:dd:ee:ff",
		"         Сигнал             : 80%",
		"         Тип радио          : 802.11n",
		"         Канал                : 6",
	})
	got, warnings := Classify(catalog)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(got[types.Band24GHz]) != 1 || len(got[types.Band5GHz]) != 0 {
		t.Fatalf("classified = %+v", got)
	}
	if got[types.Band24GHz][0].SSID != "MyNet" {
		t.Fatalf("2.4 GHz[0] = %+v", got[types.Band24GHz][0])
	}
}

func TestChannelNumber(t *testing.T) {
	tests := []struct {
		in string
		n  int
		ok bool
	}{
		{"6", 6, true},
		{"007", 7, true},
		{"", 0, false},
		{"1.5", 0, false},
		{"+6", 0, false},
		{"99999999999999999999999", math.MaxInt, true},
		{"99999999999999999999999x", 0, false},
	}
	for _, tt := range tests {
		n, ok := ChannelNumber(tt.in)
		if n != tt.n || ok != tt.ok {
			t.Fatalf("ChannelNumber(%q) = %d, %v; want %d, %v", tt.in, n, ok, tt.n, tt.ok)
		}
	}
}

func TestFilter(t *testing.T) {
	c := types.NewNetworkCatalog()
	c.Add(net("dual", "6"))
	c.Add(net("dual", "44"))
	c.Add(net("low", "11"))
	c.Add(net("high", "149"))
	c.Add(net("broken", "x"))

	if got, want := Filter(c, types.Band5GHz).Keys(), []string{"dual", "high"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter(5 GHz) = %v, want %v", got, want)
	}
	if got := len(Filter(c, types.Band5GHz).Get("dual")); got != 2 {
		t.Fatalf("Filter kept %d dual records, want 2", got)
	}
	if got, want := Filter(c, types.Band24GHz).Keys(), []string{"dual", "low"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter(2.4 GHz) = %v, want %v", got, want)
	}
	if Filter(c, "") != c {
		t.Fatalf("Filter with empty band should return the input")
	}
}
