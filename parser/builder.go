package parser

import "github.com/taigrr/wifi_band_analyzer/types"

// builder is the record under construction.
type builder struct {
	rec     types.NetworkRecord
	touched bool
}

func (b *builder) empty() bool   { return !b.touched }
func (b *builder) hasSSID() bool { return b.rec.SSID != "" }

func (b *builder) reset(ssid string) {
	b.rec = types.NetworkRecord{SSID: ssid}
	b.touched = true
}

func (b *builder) addBSSID(mac string) {
	b.rec.BSSID = append(b.rec.BSSID, mac)
	b.touched = true
}

func (b *builder) setSignal(pct int) {
	b.rec.SetSignal(pct)
	b.touched = true
}

func (b *builder) set(f types.Field, value string) {
	b.rec.Set(f, value)
	b.touched = true
}

func (b *builder) commit() types.NetworkRecord {
	return b.rec.Clone()
}
