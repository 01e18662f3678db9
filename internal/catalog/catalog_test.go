package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/services"
)

const detailsJSON = `{
  "atlas-sofa": {
    "images": {"hero": "/images/products/atlas-sofa/hero.jpg"},
    "fabricOptions": [
      {"name": "Navy Blue", "hex": "#1F2A44"},
      {"name": "Oat"},
      {"name": "Slate Gray", "hex": "#64748B"}
    ]
  },
  "oris-chair": {
    "fabricOptions": [{"name": "Rust", "hex": "#B7410E"}]
  },
  "ghost": {}
}`

const productsJSON = `[
  {"slug": "oris-chair", "name": "Oris Chair", "image": "images/products/oris-chair/main.jpg"},
  {"slug": "atlas-sofa", "name": "Atlas Sofa", "image": "/ignored.jpg"}
]`

func writeCatalog(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	products := filepath.Join(dir, "products.json")
	details := filepath.Join(dir, "productDetails.json")
	if err := os.WriteFile(products, []byte(productsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(details, []byte(detailsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return products, details
}

func TestColorSlug(t *testing.T) {
	cases := map[string]string{
		"Light Gray":      "light-gray",
		"Navy  Blue":      "navy-blue",
		"Café Crème":      "caf-crme",
		"Sand/Stone #2":   "sandstone-2",
		"!!!":             FallbackColorSlug,
		"":                FallbackColorSlug,
		"Deep\tForest":    "deep-forest",
		"already-slugged": "already-slugged",
	}
	for in, want := range cases {
		if got := ColorSlug(in); got != want {
			t.Errorf("ColorSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVariantPathAndURL(t *testing.T) {
	if got := VariantPath("atlas-sofa", "Navy Blue"); got != "images/products/atlas-sofa/atlas-sofa-navy-blue.jpg" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := VariantURL("atlas-sofa", "Navy Blue"); got != "/images/products/atlas-sofa/atlas-sofa-navy-blue.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestLoadAndColors(t *testing.T) {
	products, details := writeCatalog(t)
	c, err := Load(products, details)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	colors := c.Colors("atlas-sofa", "")
	want := []Color{{Name: "Navy Blue", Hex: "#1F2A44"}, {Name: "Slate Gray", Hex: "#64748B"}}
	if !reflect.DeepEqual(colors, want) {
		t.Fatalf("colors = %+v, want %+v", colors, want)
	}
	if got := c.Colors("atlas-sofa", "slate GRAY"); len(got) != 1 || got[0].Name != "Slate Gray" {
		t.Fatalf("case-insensitive filter failed: %+v", got)
	}
	if got := c.Colors("atlas-sofa", "Oat"); len(got) != 0 {
		t.Fatalf("colors without hex must be ignored, got %+v", got)
	}
	if got := c.Colors("missing", ""); got != nil {
		t.Fatalf("expected nil for unknown slug, got %+v", got)
	}
}

func TestHeroPathFallsBackToProductImage(t *testing.T) {
	products, details := writeCatalog(t)
	c, err := Load(products, details)
	if err != nil {
		t.Fatal(err)
	}
	public := "/srv/public"
	if got, ok := c.HeroPath(public, "atlas-sofa"); !ok || got != filepath.Join(public, "images/products/atlas-sofa/hero.jpg") {
		t.Fatalf("detail hero not preferred: %q %v", got, ok)
	}
	if got, ok := c.HeroPath(public, "oris-chair"); !ok || got != filepath.Join(public, "images/products/oris-chair/main.jpg") {
		t.Fatalf("product image fallback failed: %q %v", got, ok)
	}
	if _, ok := c.HeroPath(public, "ghost"); ok {
		t.Fatal("expected no hero for ghost")
	}
}

func TestSlugs(t *testing.T) {
	c := New(nil, map[string]Detail{"b": {}, "a": {}, "c": {}})
	if got := c.Slugs(nil, ""); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("all slugs = %v", got)
	}
	if got := c.Slugs([]string{"c", "x", "c"}, ""); !reflect.DeepEqual(got, []string{"c", "x"}) {
		t.Fatalf("allowlist = %v", got)
	}
	if got := c.Slugs([]string{"a", "b"}, "b"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("filter = %v", got)
	}
	if got := c.Slugs([]string{"a", "b"}, "c"); len(got) != 0 {
		t.Fatalf("filter outside allowlist should be empty, got %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "products.json"), filepath.Join(dir, "missing.json"))
	if !errors.Is(err, services.ErrAssetNotFound) {
		t.Fatalf("expected asset not found, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(filepath.Join(dir, "products.json"), bad)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	good := filepath.Join(dir, "details.json")
	if err := os.WriteFile(good, []byte(detailsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filepath.Join(dir, "absent-products.json"), good); err != nil {
		t.Fatalf("missing products file should be tolerated: %v", err)
	}
}
