package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shop4me/ARVA-sub000/internal/services"
)

// FallbackColorSlug is used when a color name has no slug-safe characters.
const FallbackColorSlug = "taupe"

// FabricOption is one selectable upholstery color.
type FabricOption struct {
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

// Images holds the storefront image references for a product.
type Images struct {
	Hero string `json:"hero,omitempty"`
}

// Detail is the subset of a productDetails.json entry the pipeline reads.
type Detail struct {
	Images        *Images        `json:"images,omitempty"`
	FabricOptions []FabricOption `json:"fabricOptions,omitempty"`
}

// Product is the subset of a products.json entry the pipeline reads.
type Product struct {
	Slug  string `json:"slug"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// Color is a fabric option that carries both a name and a hex value.
type Color struct {
	Name string
	Hex  string
}

// Catalog is a read-only view of the storefront product data.
type Catalog struct {
	products map[string]Product
	details  map[string]Detail
}

// Load reads products.json and productDetails.json. A missing products file
// is tolerated since it only supplies fallback hero images.
func Load(productsPath, detailsPath string) (*Catalog, error) {
	details := map[string]Detail{}
	if err := readJSON(detailsPath, &details); err != nil {
		return nil, err
	}
	var products []Product
	if err := readJSON(productsPath, &products); err != nil && !errors.Is(err, services.ErrAssetNotFound) {
		return nil, err
	}
	return New(products, details), nil
}

// New builds a catalog from already-decoded data.
func New(products []Product, details map[string]Detail) *Catalog {
	c := &Catalog{
		products: make(map[string]Product, len(products)),
		details:  make(map[string]Detail, len(details)),
	}
	for _, p := range products {
		if slug := strings.TrimSpace(p.Slug); slug != "" {
			c.products[slug] = p
		}
	}
	for slug, d := range details {
		c.details[slug] = d
	}
	return c
}

func readJSON(filePath string, dst any) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrAssetNotFound, "catalog", "read", filePath, err)
		}
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return services.Wrap(services.ErrValidation, "catalog", "parse", filePath, err)
	}
	return nil
}

// Slugs returns the sorted product slugs eligible for processing. allow
// restricts the result when non-empty; filter selects one slug exactly.
func (c *Catalog) Slugs(allow []string, filter string) []string {
	var candidates []string
	if len(allow) > 0 {
		candidates = append(candidates, allow...)
	} else {
		for slug := range c.details {
			candidates = append(candidates, slug)
		}
	}
	filter = strings.TrimSpace(filter)
	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, slug := range candidates {
		if filter != "" && slug != filter {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Colors returns the fabric options of slug that have both a name and hex.
// When filter is set only the case-insensitively matching color is kept.
func (c *Catalog) Colors(slug, filter string) []Color {
	detail, ok := c.details[slug]
	if !ok {
		return nil
	}
	fold := cases.Fold()
	wanted := fold.String(strings.TrimSpace(filter))
	out := make([]Color, 0, len(detail.FabricOptions))
	for _, opt := range detail.FabricOptions {
		name := strings.TrimSpace(opt.Name)
		hex := strings.TrimSpace(opt.Hex)
		if name == "" || hex == "" {
			continue
		}
		if wanted != "" && fold.String(name) != wanted {
			continue
		}
		out = append(out, Color{Name: name, Hex: hex})
	}
	return out
}

// HeroPath resolves the base hero image of slug under publicDir: the detail
// hero first, then the product image. ok is false when neither is set.
func (c *Catalog) HeroPath(publicDir, slug string) (string, bool) {
	var raw string
	if detail, ok := c.details[slug]; ok && detail.Images != nil {
		raw = strings.TrimSpace(detail.Images.Hero)
	}
	if raw == "" {
		raw = strings.TrimSpace(c.products[slug].Image)
	}
	if raw == "" {
		return "", false
	}
	return filepath.Join(publicDir, filepath.FromSlash(strings.TrimPrefix(raw, "/"))), true
}

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9-]`)
)

// ColorSlug normalizes a color name for URLs ("Light Gray" -> "light-gray").
func ColorSlug(name string) string {
	// Casers carry state, so one is built per call.
	slug := cases.Lower(language.Und).String(name)
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	slug = unsafeChars.ReplaceAllString(slug, "")
	if slug == "" {
		return FallbackColorSlug
	}
	return slug
}

// VariantPath is the public-relative path of a color variant hero.
func VariantPath(slug, colorName string) string {
	return path.Join("images", "products", slug, slug+"-"+ColorSlug(colorName)+".jpg")
}

// VariantURL is the storefront URL of a color variant hero.
func VariantURL(slug, colorName string) string {
	return "/" + VariantPath(slug, colorName)
}
