// Package signal converts Wi-Fi signal quality readings between units.
package signal

import "math"

const (
	// MinDBm is the power reported for 0% signal quality.
	MinDBm = -100.0
	// MaxDBm is the power reported for 100% signal quality.
	MaxDBm = -30.0
)

// PercentToDBm maps a 0-100 signal quality percentage linearly onto the
// [MinDBm, MaxDBm] range, rounded to two decimals. Values outside 0-100 are
// not clamped and extrapolate along the same line.
func PercentToDBm(percentage int) float64 {
	dbm := MinDBm + ((MaxDBm-MinDBm)/100)*float64(percentage)
	return math.Round(dbm*100) / 100
}
