package testsupport

import (
	"encoding/json"
	"os"
	"testing"

	"aircheck/internal/catalog"
	"aircheck/internal/config"
)

// WriteCatalog marshals a stations-by-country map to the config's catalog
// path and returns the parsed catalog.
func WriteCatalog(t testing.TB, cfg *config.Config, countries map[string][]catalog.Station) *catalog.Catalog {
	t.Helper()

	data, err := json.Marshal(map[string]any{"stations_by_country": countries})
	if err != nil {
		t.Fatalf("marshal catalog fixture: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.CatalogPath, data, 0o644); err != nil {
		t.Fatalf("write catalog fixture: %v", err)
	}
	cat, err := catalog.Parse(data)
	if err != nil {
		t.Fatalf("parse catalog fixture: %v", err)
	}
	return cat
}
