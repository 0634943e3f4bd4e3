// Package parser turns the text dump of `netsh wlan show networks mode=Bssid`
// into a NetworkCatalog.
//
// The dump is read line by line with a single record under construction. A
// new SSID header commits the previous record; every BSSID line until then is
// appended to it, and scalar attributes overwrite each other, so a record
// spanning several BSSID blocks ends up with the values of the last block.
package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/wifi_band_analyzer/types"
)

// MalformedRecordWarning reports a record dropped because it had no SSID when
// the next SSID header (Value) arrived.
type MalformedRecordWarning struct {
	Value string
}

func (w *MalformedRecordWarning) Error() string {
	return fmt.Sprintf("record without ssid dropped before header %q", w.Value)
}

// Parser parses scan dumps with a fixed Grammar. It holds no per-call state
// and is safe for concurrent use.
type Parser struct {
	grammar *Grammar
}

// New returns a parser for g, defaulting to Russian.
func New(g *Grammar) *Parser {
	if g == nil {
		g = Russian
	}
	return &Parser{grammar: g}
}

// Parse parses lines with the Russian grammar.
func Parse(lines []string) (*types.NetworkCatalog, []error) {
	return New(nil).Parse(lines)
}

// Parse builds a catalog from lines. Unrecognised lines are skipped; the
// returned warnings never stop the pass.
func (p *Parser) Parse(lines []string) (*types.NetworkCatalog, []error) {
	catalog := types.NewNetworkCatalog()
	var warnings []error
	var cur builder

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := p.grammar.ssid.FindStringSubmatch(line); m != nil {
			value := strings.TrimSpace(m[1])
			if !cur.empty() {
				if cur.hasSSID() {
					catalog.Add(cur.commit())
				} else {
					warnings = append(warnings, &MalformedRecordWarning{Value: value})
				}
			}
			cur.reset(value)
			continue
		}
		if m := p.grammar.bssid.FindStringSubmatch(line); m != nil {
			cur.addBSSID(strings.TrimSpace(m[1]))
			continue
		}
		if m := p.grammar.signal.FindStringSubmatch(line); m != nil {
			if pct, ok := percent(m[1]); ok {
				cur.setSignal(pct)
				continue
			}
		}
		for _, a := range p.grammar.attrs {
			if m := a.re.FindStringSubmatch(line); m != nil {
				cur.set(a.field, strings.TrimSpace(m[1]))
				break
			}
		}
	}

	if !cur.empty() && cur.hasSSID() {
		catalog.Add(cur.commit())
	}
	return catalog, warnings
}

// percent parses the digits of a signal reading. Values too large for an int
// saturate at math.MaxInt rather than dropping the reading.
func percent(digits string) (int, bool) {
	if digits == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := int(c - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			continue
		}
		n = n*10 + d
	}
	return n, true
}
