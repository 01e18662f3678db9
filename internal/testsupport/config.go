package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test storefront checkout. Every
// path is absolute, the request interval is zero and retries are immediate.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths = config.Paths{
		StorefrontDir:  base,
		PublicDir:      filepath.Join(base, "public"),
		MasksDir:       filepath.Join(base, "assets", "masks"),
		ProductsFile:   filepath.Join(base, "data", "products.json"),
		DetailsFile:    filepath.Join(base, "data", "productDetails.json"),
		WorkDir:        filepath.Join(base, "tmp", "color-variants"),
		VariantLog:     filepath.Join(base, "logs", "color-variants.csv"),
		PreviewDir:     filepath.Join(base, "previews"),
		MaskPreviewDir: filepath.Join(base, "mask-previews"),
		StateDir:       filepath.Join(base, "state"),
		LogDir:         filepath.Join(base, "state", "logs"),
	}
	cfgVal.ImageEdit.APIKey = "test"
	cfgVal.ImageEdit.RequestIntervalMillis = 0
	cfgVal.ImageEdit.RetryAttempts = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSlugs replaces the product allowlist.
func WithSlugs(slugs ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Slugs = append([]string(nil), slugs...)
	}
}

// WithNtfyTopic points notifications at topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithImageEditURL points the image edit client at baseURL.
func WithImageEditURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ImageEdit.BaseURL = baseURL
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.StorefrontDir
}
