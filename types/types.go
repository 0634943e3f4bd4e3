package types

import (
	"fmt"
	"strings"

	"github.com/taigrr/wifi_band_analyzer/signal"
)

// Field names a free-text attribute of a NetworkRecord. The values double as
// the interchange keys of the JSON dump.
type Field string

const (
	FieldNetworkType    Field = "тип_сети"
	FieldAuthentication Field = "проверка_подлинности"
	FieldEncryption     Field = "шифрование"
	FieldRadioType      Field = "тип_радио"
	FieldChannel        Field = "канал"
)

// NetworkRecord is one SSID block of a scan: every BSSID listed under the
// header plus the last value seen for each scalar attribute.
type NetworkRecord struct {
	SSID           string   `json:"ssid"`
	BSSID          []string `json:"bssid,omitempty"`
	SignalStrength *int     `json:"signal_strength,omitempty"`
	SignalDBm      *float64 `json:"signal_dbm,omitempty"`
	NetworkType    string   `json:"тип_сети,omitempty"`
	Authentication string   `json:"проверка_подлинности,omitempty"`
	Encryption     string   `json:"шифрование,omitempty"`
	RadioType      string   `json:"тип_радио,omitempty"`
	Channel        string   `json:"канал,omitempty"`
}

// SetSignal stores the percentage and the dBm value derived from it.
func (n *NetworkRecord) SetSignal(percentage int) {
	dbm := signal.PercentToDBm(percentage)
	n.SignalStrength = &percentage
	n.SignalDBm = &dbm
}

// Signal returns the recorded percentage and dBm, if any.
func (n NetworkRecord) Signal() (percentage int, dbm float64, ok bool) {
	if n.SignalStrength == nil || n.SignalDBm == nil {
		return 0, 0, false
	}
	return *n.SignalStrength, *n.SignalDBm, true
}

// Set assigns a free-text attribute. Unknown fields are ignored.
func (n *NetworkRecord) Set(f Field, value string) {
	switch f {
	case FieldNetworkType:
		n.NetworkType = value
	case FieldAuthentication:
		n.Authentication = value
	case FieldEncryption:
		n.Encryption = value
	case FieldRadioType:
		n.RadioType = value
	case FieldChannel:
		n.Channel = value
	}
}

// Get returns a free-text attribute.
func (n NetworkRecord) Get(f Field) string {
	switch f {
	case FieldNetworkType:
		return n.NetworkType
	case FieldAuthentication:
		return n.Authentication
	case FieldEncryption:
		return n.Encryption
	case FieldRadioType:
		return n.RadioType
	case FieldChannel:
		return n.Channel
	}
	return ""
}

// Clone returns a deep copy.
func (n NetworkRecord) Clone() NetworkRecord {
	c := n
	if n.BSSID != nil {
		c.BSSID = append([]string(nil), n.BSSID...)
	}
	if n.SignalStrength != nil {
		v := *n.SignalStrength
		c.SignalStrength = &v
	}
	if n.SignalDBm != nil {
		v := *n.SignalDBm
		c.SignalDBm = &v
	}
	return c
}

func (n NetworkRecord) String() string {
	pct, dbm, ok := n.Signal()
	if !ok {
		return fmt.Sprintf("%s [%s] ch=%s", n.SSID, strings.Join(n.BSSID, ","), n.Channel)
	}
	return fmt.Sprintf("%s [%s] ch=%s %d%% %.2fdBm", n.SSID, strings.Join(n.BSSID, ","), n.Channel, pct, dbm)
}
