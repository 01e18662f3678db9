package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeImageEdit()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StorefrontDir) == "" {
		c.Paths.StorefrontDir = defaultStorefrontDir
	}
	if c.Paths.StorefrontDir, err = expandPath(c.Paths.StorefrontDir); err != nil {
		return fmt.Errorf("paths.storefront_dir: %w", err)
	}
	root := c.Paths.StorefrontDir

	storefront := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.public_dir", &c.Paths.PublicDir, defaultPublicDir},
		{"paths.masks_dir", &c.Paths.MasksDir, defaultMasksDir},
		{"paths.products_file", &c.Paths.ProductsFile, defaultProductsFile},
		{"paths.details_file", &c.Paths.DetailsFile, defaultDetailsFile},
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.variant_log", &c.Paths.VariantLog, defaultVariantLog},
	}
	for _, entry := range storefront {
		if strings.TrimSpace(*entry.value) == "" {
			*entry.value = entry.fallback
		}
		if *entry.value, err = resolveUnder(root, *entry.value); err != nil {
			return fmt.Errorf("%s: %w", entry.key, err)
		}
	}

	local := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.preview_dir", &c.Paths.PreviewDir, defaultPreviewDir},
		{"paths.mask_preview_dir", &c.Paths.MaskPreviewDir, defaultMaskPreviewDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, entry := range local {
		if strings.TrimSpace(*entry.value) == "" {
			*entry.value = entry.fallback
		}
		if *entry.value, err = expandPath(strings.TrimSpace(*entry.value)); err != nil {
			return fmt.Errorf("%s: %w", entry.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	seen := make(map[string]struct{}, len(c.Catalog.Slugs))
	slugs := make([]string, 0, len(c.Catalog.Slugs))
	for _, slug := range c.Catalog.Slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	c.Catalog.Slugs = slugs
}

func (c *Config) normalizeImageEdit() {
	c.ImageEdit.APIKey = strings.TrimSpace(c.ImageEdit.APIKey)
	if c.ImageEdit.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.ImageEdit.APIKey = strings.TrimSpace(value)
		}
	}
	c.ImageEdit.BaseURL = strings.TrimRight(strings.TrimSpace(c.ImageEdit.BaseURL), "/")
	if c.ImageEdit.BaseURL == "" {
		if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok && strings.TrimSpace(value) != "" {
			c.ImageEdit.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		} else {
			c.ImageEdit.BaseURL = defaultImageEditBaseURL
		}
	}
	c.ImageEdit.Model = strings.TrimSpace(c.ImageEdit.Model)
	if c.ImageEdit.Model == "" {
		c.ImageEdit.Model = defaultImageEditModel
	}
	c.ImageEdit.Size = strings.ToLower(strings.TrimSpace(c.ImageEdit.Size))
	if c.ImageEdit.Size == "" {
		c.ImageEdit.Size = defaultImageEditSize
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
