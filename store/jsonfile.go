package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/taigrr/wifi_band_analyzer/types"
)

// DefaultJSONPath is where the catalog dump is written when no path is given.
const DefaultJSONPath = "parsed_networks.json"

// JSONDump rewrites the catalog dump after every scan pass.
type JSONDump struct {
	Path string
}

func (d JSONDump) Record(_ context.Context, p *types.ScanPass) error {
	return WriteJSON(d.Path, p.Catalog)
}

// WriteJSON replaces the file at path with the indented JSON of c. Readers
// never see a partially written file.
func WriteJSON(path string, c *types.NetworkCatalog) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encoding catalog")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing catalog")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "writing catalog")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "replacing catalog")
}

// ReadJSON loads a catalog written by WriteJSON.
func ReadJSON(path string) (*types.NetworkCatalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading catalog")
	}
	c := types.NewNetworkCatalog()
	if err := json.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return c, nil
}
