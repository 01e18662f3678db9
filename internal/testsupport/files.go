package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/catalog"
	"github.com/shop4me/ARVA-sub000/internal/config"
)

// WriteJSON marshals v to path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteProduct seeds the storefront behind cfg with one product: a details
// entry offering colors, the synthetic hero scene at
// public/images/products/{slug}/hero.png and its mask.
func WriteProduct(t testing.TB, cfg *config.Config, slug string, colors ...catalog.FabricOption) SceneFiles {
	t.Helper()

	heroURL := "/images/products/" + slug + "/hero.png"
	details := map[string]catalog.Detail{}
	if existing, err := os.ReadFile(cfg.Paths.DetailsFile); err == nil {
		if err := json.Unmarshal(existing, &details); err != nil {
			t.Fatalf("parse existing details: %v", err)
		}
	}
	details[slug] = catalog.Detail{
		Images:        &catalog.Images{Hero: heroURL},
		FabricOptions: colors,
	}
	WriteJSON(t, cfg.Paths.DetailsFile, details)

	heroPath := filepath.Join(cfg.Paths.PublicDir, filepath.FromSlash(heroURL[1:]))
	return WriteScene(t, heroPath, cfg.Paths.MasksDir, slug)
}
