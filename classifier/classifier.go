// Package classifier sorts scanned networks into the 2.4 GHz and 5 GHz bands
// by channel number.
package classifier

import (
	"fmt"

	"github.com/taigrr/wifi_band_analyzer/types"
)

// UnclassifiableChannelWarning reports a record skipped because its channel
// was missing or not a number.
type UnclassifiableChannelWarning struct {
	SSID    string
	Channel string
}

func (w *UnclassifiableChannelWarning) Error() string {
	if w.Channel == "" {
		return fmt.Sprintf("network %q has no channel", w.SSID)
	}
	return fmt.Sprintf("network %q has invalid channel %q", w.SSID, w.Channel)
}

// Groupings is any keyed collection of records. The key plays no part in
// classification.
type Groupings interface {
	Range(fn func(key string, records []types.NetworkRecord) bool)
}

// Classify buckets every record of g by band, in encounter order. Records
// with a missing or non-numeric channel produce one warning each; numeric
// channels outside every band are dropped without a warning.
func Classify(g Groupings) (types.ClassifiedCatalog, []error) {
	names := make([]string, 0, len(Bands))
	for _, b := range Bands {
		names = append(names, b.Name)
	}
	out := types.NewClassifiedCatalog(names...)
	var warnings []error

	g.Range(func(_ string, records []types.NetworkRecord) bool {
		for _, r := range records {
			if _, ok := ChannelNumber(r.Channel); !ok {
				warnings = append(warnings, &UnclassifiableChannelWarning{SSID: r.SSID, Channel: r.Channel})
				continue
			}
			if b, ok := BandOf(r.Channel); ok {
				out[b.Name] = append(out[b.Name], r)
			}
		}
		return true
	})
	return out, warnings
}

// Filter returns the groups of c with at least one record in band. An empty
// band returns c unchanged.
func Filter(c *types.NetworkCatalog, band string) *types.NetworkCatalog {
	if band == "" {
		return c
	}
	out := types.NewNetworkCatalog()
	c.Range(func(key string, records []types.NetworkRecord) bool {
		for _, r := range records {
			if b, ok := BandOf(r.Channel); ok && b.Name == band {
				for _, keep := range records {
					out.Append(key, keep)
				}
				break
			}
		}
		return true
	})
	return out
}
