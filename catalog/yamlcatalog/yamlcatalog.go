// Package yamlcatalog reads catalogs from YAML and writes param snapshots as YAML
package yamlcatalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calvinmclean/spin360/catalog"
)

// Load decodes a Catalog from r. Unknown fields are rejected.
func Load(r io.Reader) (catalog.Catalog, error) {
	var c catalog.Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return catalog.Catalog{}, fmt.Errorf("error decoding catalog: %w", err)
	}
	return c, nil
}

// LoadFile reads a Catalog from path. An empty path returns catalog.Default.
func LoadFile(path string) (catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("error opening catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Write encodes v as YAML to w
func Write(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
