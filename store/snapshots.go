// Package store keeps scan results: catalog snapshots in bitcask, per-SSID
// signal series in tstorage and the JSON dump consumed by other tools.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sort"
	"strconv"
	"time"

	"git.mills.io/prologic/bitcask"
	"github.com/pkg/errors"

	"github.com/taigrr/wifi_band_analyzer/types"
)

// keyWidth keeps keys fixed-width so byte order matches time order.
const keyWidth = 19

// Snapshot is the catalog produced by one scan pass.
type Snapshot struct {
	Time    time.Time             `json:"time"`
	Catalog *types.NetworkCatalog `json:"networks"`
}

// Snapshots stores catalogs keyed by pass time. When Retention is positive,
// Record drops snapshots older than Retention relative to the new pass.
type Snapshots struct {
	Retention time.Duration

	db *bitcask.Bitcask
}

// OpenSnapshots opens or creates the bitcask database in dir.
func OpenSnapshots(dir string) (*Snapshots, error) {
	db, err := bitcask.Open(dir, bitcask.WithMaxValueSize(1<<22))
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize snapshot database")
	}
	return &Snapshots{db: db}, nil
}

func timeKey(t time.Time) []byte {
	return []byte(fmt.Sprintf("%0*d", keyWidth, t.UnixNano()))
}

func parseKey(k []byte) (time.Time, error) {
	ns, err := strconv.ParseInt(string(k), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ns), nil
}

func encodeCatalog(c *types.NetworkCatalog) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCatalog(b []byte) (*types.NetworkCatalog, error) {
	c := types.NewNetworkCatalog()
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Put stores c as the snapshot taken at t.
func (s *Snapshots) Put(t time.Time, c *types.NetworkCatalog) error {
	b, err := encodeCatalog(c)
	if err != nil {
		return errors.Wrap(err, "encoding catalog")
	}
	return errors.Wrap(s.db.Put(timeKey(t), b), "storing snapshot")
}

// Record stores the catalog of a scan pass.
func (s *Snapshots) Record(_ context.Context, p *types.ScanPass) error {
	if err := s.Put(p.Time, p.Catalog); err != nil {
		return err
	}
	if s.Retention > 0 {
		if _, err := s.Prune(p.Time.Add(-s.Retention)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the snapshot taken exactly at t.
func (s *Snapshots) Get(t time.Time) (*types.NetworkCatalog, error) {
	b, err := s.db.Get(timeKey(t))
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot %s", t.Format(time.RFC3339Nano))
	}
	return decodeCatalog(b)
}

// Range returns the snapshots taken in [from, to], oldest first.
func (s *Snapshots) Range(from, to time.Time) ([]Snapshot, error) {
	start, end := timeKey(from), timeKey(to)
	var keyset [][]byte
	for key := range s.db.Keys() {
		if bytes.Compare(key, start) >= 0 && bytes.Compare(key, end) <= 0 {
			keyset = append(keyset, key)
		}
	}
	sort.Slice(keyset, func(i, j int) bool { return bytes.Compare(keyset[i], keyset[j]) < 0 })

	out := make([]Snapshot, 0, len(keyset))
	for _, key := range keyset {
		t, err := parseKey(key)
		if err != nil {
			continue
		}
		val, err := s.db.Get(key)
		if err != nil {
			return nil, errors.Wrapf(err, "getting key %s", key)
		}
		c, err := decodeCatalog(val)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding key %s", key)
		}
		out = append(out, Snapshot{Time: t, Catalog: c})
	}
	return out, nil
}

// Latest returns the most recent snapshot. ok is false when none is stored.
func (s *Snapshots) Latest() (snap Snapshot, ok bool, err error) {
	var latest []byte
	for key := range s.db.Keys() {
		if latest == nil || bytes.Compare(key, latest) > 0 {
			latest = key
		}
	}
	if latest == nil {
		return Snapshot{}, false, nil
	}
	t, err := parseKey(latest)
	if err != nil {
		return Snapshot{}, false, errors.Wrapf(err, "bad key %s", latest)
	}
	c, err := s.Get(t)
	if err != nil {
		return Snapshot{}, false, err
	}
	return Snapshot{Time: t, Catalog: c}, true, nil
}

// Prune deletes every snapshot older than before and returns how many were
// removed.
func (s *Snapshots) Prune(before time.Time) (int, error) {
	cutoff := timeKey(before)
	var keyset [][]byte
	for key := range s.db.Keys() {
		if bytes.Compare(key, cutoff) < 0 {
			keyset = append(keyset, key)
		}
	}
	for _, key := range keyset {
		if err := s.db.Delete(key); err != nil {
			return 0, errors.Wrapf(err, "deleting key %s", key)
		}
	}
	return len(keyset), nil
}

// Len returns the number of stored snapshots.
func (s *Snapshots) Len() int {
	return s.db.Len()
}

func (s *Snapshots) Close() error {
	return s.db.Close()
}
