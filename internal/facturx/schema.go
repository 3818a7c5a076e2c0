package facturx

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
)

// ErrNoSchema is returned when XSD validation is required but no schema
// exists for the invoice profile
var ErrNoSchema = errors.New("no XSD schema for profile")

// Bundled schema sets, one <profile>.xsd entry point each. Imports are
// resolved relative to the entry point, so the set is written to disk as a
// whole before xmllint reads it.
//
//go:embed schemas/*.xsd
var bundledSchemas embed.FS

const bundledSchemaRoot = "schemas"

var bundled struct {
	once sync.Once
	dir  string
	err  error
}

// bundledSchemaDir returns the directory holding the bundled schemas,
// writing them below os.TempDir on first use
func bundledSchemaDir() (string, error) {
	bundled.once.Do(func() {
		bundled.dir, bundled.err = materializeSchemas(os.TempDir())
	})
	return bundled.dir, bundled.err
}

// hasBundledSchema reports whether a schema for p ships with the binary
func hasBundledSchema(p Profile) bool {
	if p == ProfileUnknown {
		return false
	}
	_, err := fs.Stat(bundledSchemas, path.Join(bundledSchemaRoot, string(p)+".xsd"))
	return err == nil
}

// materializeSchemas writes the bundled schemas into a directory named after
// their content hash, so concurrent processes share one copy and a new
// binary never reads stale files
func materializeSchemas(base string) (string, error) {
	entries, err := fs.ReadDir(bundledSchemas, bundledSchemaRoot)
	if err != nil {
		return "", fmt.Errorf("read bundled schemas: %w", err)
	}

	files := make(map[string][]byte, len(entries))
	h := sha256.New()
	for _, e := range entries {
		data, err := bundledSchemas.ReadFile(path.Join(bundledSchemaRoot, e.Name()))
		if err != nil {
			return "", fmt.Errorf("read bundled schema %s: %w", e.Name(), err)
		}
		files[e.Name()] = data
		h.Write([]byte(e.Name()))
		h.Write(data)
	}

	dir := filepath.Join(base, "facturx-fusion-xsd-"+hex.EncodeToString(h.Sum(nil))[:16])
	marker := filepath.Join(dir, ".complete")
	if _, err := os.Stat(marker); err == nil {
		return dir, nil
	}

	staging, err := os.MkdirTemp(base, "facturx-fusion-xsd-staging-")
	if err != nil {
		return "", fmt.Errorf("create schema dir: %w", err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(staging, name), data, 0o644); err != nil {
			os.RemoveAll(staging)
			return "", fmt.Errorf("write schema %s: %w", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(staging, ".complete"), nil, 0o644); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("write schema marker: %w", err)
	}

	if err := os.Rename(staging, dir); err != nil {
		os.RemoveAll(staging)
		// another process won the race
		if _, statErr := os.Stat(marker); statErr == nil {
			return dir, nil
		}
		return "", fmt.Errorf("install schema dir: %w", err)
	}
	return dir, nil
}
