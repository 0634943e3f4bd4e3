package types

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Group is one catalog key with its records, in encounter order.
type Group struct {
	Key     string
	Records []NetworkRecord
}

// NetworkCatalog maps an SSID key to the records seen under it. Keys keep the
// order in which they were first added and records sharing a key are never
// merged.
type NetworkCatalog struct {
	keys   []string
	groups map[string][]NetworkRecord
}

func NewNetworkCatalog() *NetworkCatalog {
	return &NetworkCatalog{groups: make(map[string][]NetworkRecord)}
}

// Add appends r under its own SSID.
func (c *NetworkCatalog) Add(r NetworkRecord) {
	c.Append(r.SSID, r)
}

// Append appends r under key.
func (c *NetworkCatalog) Append(key string, r NetworkRecord) {
	if c.groups == nil {
		c.groups = make(map[string][]NetworkRecord)
	}
	if _, ok := c.groups[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.groups[key] = append(c.groups[key], r)
}

// Keys returns the keys in insertion order.
func (c *NetworkCatalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Get returns the records stored under key.
func (c *NetworkCatalog) Get(key string) []NetworkRecord {
	return c.groups[key]
}

// Len returns the number of keys.
func (c *NetworkCatalog) Len() int {
	return len(c.keys)
}

// Count returns the number of records across all keys.
func (c *NetworkCatalog) Count() int {
	n := 0
	for _, recs := range c.groups {
		n += len(recs)
	}
	return n
}

// Range calls fn for every key in insertion order until fn returns false.
func (c *NetworkCatalog) Range(fn func(key string, records []NetworkRecord) bool) {
	for _, k := range c.keys {
		if !fn(k, c.groups[k]) {
			return
		}
	}
}

// Records flattens the catalog in encounter order.
func (c *NetworkCatalog) Records() []NetworkRecord {
	out := make([]NetworkRecord, 0, c.Count())
	c.Range(func(_ string, recs []NetworkRecord) bool {
		out = append(out, recs...)
		return true
	})
	return out
}

// Groups returns the catalog as an ordered slice.
func (c *NetworkCatalog) Groups() []Group {
	out := make([]Group, 0, len(c.keys))
	c.Range(func(k string, recs []NetworkRecord) bool {
		out = append(out, Group{Key: k, Records: recs})
		return true
	})
	return out
}

// MarshalJSON writes the catalog as an object whose member order follows
// insertion order.
func (c *NetworkCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalRaw(k)
		if err != nil {
			return nil, err
		}
		recs := c.groups[k]
		if recs == nil {
			recs = []NetworkRecord{}
		}
		val, err := marshalRaw(recs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw encodes v without escaping <, > and & so SSIDs read as scanned.
func marshalRaw(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// UnmarshalJSON reads an object of key -> record array, keeping member order.
func (c *NetworkCatalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("network catalog: expected object, got %v", tok)
	}
	*c = NetworkCatalog{groups: make(map[string][]NetworkRecord)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("network catalog: expected key, got %v", tok)
		}
		var recs []NetworkRecord
		if err := dec.Decode(&recs); err != nil {
			return fmt.Errorf("network catalog: key %q: %w", key, err)
		}
		if _, seen := c.groups[key]; !seen {
			c.keys = append(c.keys, key)
		}
		c.groups[key] = append(c.groups[key], recs...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// GobEncode encodes the ordered groups.
func (c *NetworkCatalog) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.Groups()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores a catalog written by GobEncode.
func (c *NetworkCatalog) GobDecode(b []byte) error {
	var groups []Group
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&groups); err != nil {
		return err
	}
	*c = NetworkCatalog{groups: make(map[string][]NetworkRecord, len(groups))}
	for _, g := range groups {
		for _, r := range g.Records {
			c.Append(g.Key, r)
		}
		if len(g.Records) == 0 {
			c.keys = append(c.keys, g.Key)
			c.groups[g.Key] = nil
		}
	}
	return nil
}
