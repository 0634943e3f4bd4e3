package types

import "time"

// ScanPass is everything produced from one scan dump.
type ScanPass struct {
	Session    string
	Seq        int
	Time       time.Time
	Catalog    *NetworkCatalog
	Classified ClassifiedCatalog
	Warnings   []error
}
