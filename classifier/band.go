package classifier

import (
	"math"

	"github.com/taigrr/wifi_band_analyzer/types"
)

// Band is an inclusive range of Wi-Fi channel numbers.
type Band struct {
	Name  string
	First int
	Last  int
}

// Contains indicates if the band contains the given channel.
func (b Band) Contains(ch int) bool {
	return ch >= b.First && ch <= b.Last
}

// Bands is the channel plan used for classification. Channels 14-35 and
// above 173 belong to neither band.
var Bands = []Band{
	{Name: types.Band24GHz, First: 1, Last: 13},
	{Name: types.Band5GHz, First: 36, Last: 173},
}

// ChannelNumber parses a raw channel token. ok is false unless the token is
// non-empty and made of ASCII digits only; a digit string too large for an
// int yields math.MaxInt.
func ChannelNumber(channel string) (n int, ok bool) {
	if channel == "" {
		return 0, false
	}
	for i := 0; i < len(channel); i++ {
		c := channel[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := int(c - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			for _, r := range channel[i+1:] {
				if r < '0' || r > '9' {
					return 0, false
				}
			}
			return n, true
		}
		n = n*10 + d
	}
	return n, true
}

// BandOf returns the band a raw channel token falls into.
func BandOf(channel string) (Band, bool) {
	ch, ok := ChannelNumber(channel)
	if !ok {
		return Band{}, false
	}
	for _, b := range Bands {
		if b.Contains(ch) {
			return b, true
		}
	}
	return Band{}, false
}
