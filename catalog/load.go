package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/scenario-engine/engine"
)

// =============================================================================
// FOLDER LOADING
// =============================================================================

// LoadDir reads every *.json, *.yaml and *.yml file in dir, in name order.
// Subdirectories are ignored.
func LoadDir(dir string) ([]engine.Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var out []engine.Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var parse func([]byte) ([]engine.Scenario, error)
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json":
			parse = Parse
		case ".yaml", ".yml":
			parse = ParseYAML
		default:
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		scenarios, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, scenarios...)
	}
	return out, nil
}

// Load builds the catalog from dir, falling back to the default catalog when
// dir is empty, missing or holds no scenario files. Malformed files are an
// error, never a fallback.
func Load(dir string) (*engine.Catalog, error) {
	if dir == "" {
		return Default(), nil
	}

	scenarios, err := LoadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[Catalog] %s not found, using default catalog", dir)
		return Default(), nil
	case err != nil:
		return nil, err
	case len(scenarios) == 0:
		log.Printf("[Catalog] %s has no scenario files, using default catalog", dir)
		return Default(), nil
	}

	cat, err := engine.NewCatalog(scenarios)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", dir, err)
	}
	log.Printf("[Catalog] Loaded %d scenarios from %s", cat.Len(), dir)
	return cat, nil
}
