package types

// Band labels used as ClassifiedCatalog keys.
const (
	Band24GHz = "2.4 GHz"
	Band5GHz  = "5 GHz"
)

// ClassifiedCatalog maps a band label to the records operating in it.
type ClassifiedCatalog map[string][]NetworkRecord

// NewClassifiedCatalog returns a catalog holding every given band with an
// empty record list.
func NewClassifiedCatalog(bands ...string) ClassifiedCatalog {
	c := make(ClassifiedCatalog, len(bands))
	for _, b := range bands {
		c[b] = []NetworkRecord{}
	}
	return c
}

// Counts returns the number of records per band.
func (c ClassifiedCatalog) Counts() map[string]int {
	out := make(map[string]int, len(c))
	for b, recs := range c {
		out[b] = len(recs)
	}
	return out
}
