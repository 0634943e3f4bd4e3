// Package report renders scan results for a terminal.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/taigrr/wifi_band_analyzer/classifier"
	"github.com/taigrr/wifi_band_analyzer/types"
)

// Printer writes catalogs to Out. Band, when set, limits the listing to SSID
// groups seen in that band.
type Printer struct {
	Out  io.Writer
	Band string
}

// Record prints the pass catalog followed by the per-band listing.
func (p *Printer) Record(_ context.Context, pass *types.ScanPass) error {
	fmt.Fprintf(p.Out, "=== scan %d at %s ===\n", pass.Seq, pass.Time.Format("15:04:05"))
	if err := p.PrintCatalog(classifier.Filter(pass.Catalog, p.Band)); err != nil {
		return err
	}
	return p.PrintClassified(pass.Classified)
}

// PrintCatalog lists every record with its attributes.
func (p *Printer) PrintCatalog(c *types.NetworkCatalog) error {
	if c.Count() == 0 {
		_, err := fmt.Fprintln(p.Out, "No networks available")
		return err
	}
	var b strings.Builder
	idx := 1
	c.Range(func(ssid string, records []types.NetworkRecord) bool {
		for _, r := range records {
			fmt.Fprintf(&b, "Network #%d:\n", idx)
			writeRecord(&b, ssid, r)
			idx++
		}
		return true
	})
	_, err := io.WriteString(p.Out, b.String())
	return err
}

// PrintClassified lists the records of each band, 2.4 GHz first.
func (p *Printer) PrintClassified(c types.ClassifiedCatalog) error {
	var b strings.Builder
	for _, band := range classifier.Bands {
		records := c[band.Name]
		fmt.Fprintf(&b, "\n--- %s ---\n", strings.ToUpper(band.Name))
		if len(records) == 0 {
			b.WriteString("No networks found.\n")
			continue
		}
		for i, r := range records {
			fmt.Fprintf(&b, "Network %d:\n", i+1)
			writeRecord(&b, r.SSID, r)
		}
	}
	_, err := io.WriteString(p.Out, b.String())
	return err
}

func writeRecord(b *strings.Builder, ssid string, r types.NetworkRecord) {
	fmt.Fprintf(b, " SSID: %s\n", ssid)
	if len(r.BSSID) == 0 {
		b.WriteString(" BSSID: N/A\n")
	}
	for _, mac := range r.BSSID {
		fmt.Fprintf(b, " BSSID: %s\n", mac)
	}
	if pct, dbm, ok := r.Signal(); ok {
		fmt.Fprintf(b, " Signal: %d%% (%.2f dBm)\n", pct, dbm)
	} else {
		b.WriteString(" Signal: N/A\n")
	}
	fmt.Fprintf(b, " Network type: %s\n", r.NetworkType)
	fmt.Fprintf(b, " Authentication: %s\n", r.Authentication)
	fmt.Fprintf(b, " Encryption: %s\n", r.Encryption)
	fmt.Fprintf(b, " Radio type: %s\n", r.RadioType)
	fmt.Fprintf(b, " Channel: %s\n", r.Channel)
}

// ChannelSignal is one (channel, dBm) reading of an SSID.
type ChannelSignal struct {
	Channel int     `json:"channel"`
	DBm     float64 `json:"dbm"`
}

// ChannelSignals collects, per SSID key, the readings of records carrying
// both a numeric channel and a signal. Keys without any reading are left out.
func ChannelSignals(c *types.NetworkCatalog) map[string][]ChannelSignal {
	out := make(map[string][]ChannelSignal)
	c.Range(func(ssid string, records []types.NetworkRecord) bool {
		for _, r := range records {
			ch, ok := classifier.ChannelNumber(r.Channel)
			if !ok {
				continue
			}
			if _, dbm, ok := r.Signal(); ok {
				out[ssid] = append(out[ssid], ChannelSignal{Channel: ch, DBm: dbm})
			}
		}
		return true
	})
	return out
}
