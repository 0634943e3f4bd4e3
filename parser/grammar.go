package parser

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/taigrr/wifi_band_analyzer/types"
)

// Attribute maps one "Label : value" line onto a record field.
type Attribute struct {
	Label string
	Field types.Field
}

// Labels is the localized vocabulary of a netsh scan dump.
type Labels struct {
	SSID       string
	BSSID      string
	Signal     string
	Attributes []Attribute
}

// Grammar holds the compiled line patterns for one locale. Attribute
// patterns are tried in order and the first match wins.
type Grammar struct {
	ssid   *regexp.Regexp
	bssid  *regexp.Regexp
	signal *regexp.Regexp
	attrs  []attributePattern
}

type attributePattern struct {
	field types.Field
	re    *regexp.Regexp
}

var (
	// Russian is the grammar of `netsh wlan show networks mode=Bssid` on a
	// Russian-locale Windows.
	Russian = MustGrammar(Labels{
		SSID:   "SSID",
		BSSID:  "BSSID",
		Signal: "Сигнал",
		Attributes: []Attribute{
			{Label: "Тип сети", Field: types.FieldNetworkType},
			{Label: "Проверка подлинности", Field: types.FieldAuthentication},
			{Label: "Шифрование", Field: types.FieldEncryption},
			{Label: "Тип радио", Field: types.FieldRadioType},
			{Label: "Канал", Field: types.FieldChannel},
		},
	})

	// English is the same dump on an English-locale Windows.
	English = MustGrammar(Labels{
		SSID:   "SSID",
		BSSID:  "BSSID",
		Signal: "Signal",
		Attributes: []Attribute{
			{Label: "Network type", Field: types.FieldNetworkType},
			{Label: "Authentication", Field: types.FieldAuthentication},
			{Label: "Encryption", Field: types.FieldEncryption},
			{Label: "Radio type", Field: types.FieldRadioType},
			{Label: "Channel", Field: types.FieldChannel},
		},
	})
)

// NewGrammar compiles the patterns for l.
func NewGrammar(l Labels) (*Grammar, error) {
	if l.SSID == "" || l.BSSID == "" || l.Signal == "" {
		return nil, errors.New("grammar: SSID, BSSID and Signal labels are required")
	}
	g := &Grammar{}
	var err error
	if g.ssid, err = headerPattern(l.SSID); err != nil {
		return nil, errors.Wrap(err, "grammar: ssid header")
	}
	if g.bssid, err = headerPattern(l.BSSID); err != nil {
		return nil, errors.Wrap(err, "grammar: bssid header")
	}
	if g.signal, err = regexp.Compile(regexp.QuoteMeta(l.Signal) + `\s*:\s*(\d+)%`); err != nil {
		return nil, errors.Wrap(err, "grammar: signal")
	}
	for _, a := range l.Attributes {
		re, err := regexp.Compile(regexp.QuoteMeta(a.Label) + `\s*:\s*(.*)`)
		if err != nil {
			return nil, errors.Wrapf(err, "grammar: attribute %q", a.Label)
		}
		g.attrs = append(g.attrs, attributePattern{field: a.Field, re: re})
	}
	return g, nil
}

// MustGrammar is like NewGrammar but panics on error.
func MustGrammar(l Labels) *Grammar {
	g, err := NewGrammar(l)
	if err != nil {
		panic(err)
	}
	return g
}

func headerPattern(label string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)^\s*` + regexp.QuoteMeta(label) + `\s+\d+\s*:\s*(.*)$`)
}

// ForLocale returns the grammar for a locale tag ("ru" or "en").
func ForLocale(locale string) (*Grammar, error) {
	switch locale {
	case "", "ru":
		return Russian, nil
	case "en":
		return English, nil
	}
	return nil, errors.Errorf("grammar: unsupported locale %q", locale)
}
