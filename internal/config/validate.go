package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. The image edit API key is not
// checked here because dry runs and QA-only commands never call the service.
func (c *Config) Validate() error {
	if err := c.validateImageEdit(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateImageEdit() error {
	parsed, err := url.Parse(c.ImageEdit.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("image_edit.base_url must be an absolute URL, got %q", c.ImageEdit.BaseURL)
	}
	if _, ok := supportedSizes[c.ImageEdit.Size]; !ok {
		return fmt.Errorf("image_edit.size must be one of 256x256, 512x512, 1024x1024, got %q", c.ImageEdit.Size)
	}
	if err := ensurePositiveMap(map[string]int{
		"image_edit.timeout_seconds":          c.ImageEdit.TimeoutSeconds,
		"image_edit.retry_attempts":           c.ImageEdit.RetryAttempts,
		"image_edit.retry_base_delay_seconds": c.ImageEdit.RetryBaseDelaySeconds,
		"image_edit.retry_max_delay_seconds":  c.ImageEdit.RetryMaxDelaySeconds,
	}); err != nil {
		return err
	}
	if c.ImageEdit.RequestIntervalMillis < 0 {
		return errors.New("image_edit.request_interval_ms must be >= 0")
	}
	if c.ImageEdit.RetryMaxDelaySeconds < c.ImageEdit.RetryBaseDelaySeconds {
		return errors.New("image_edit.retry_max_delay_seconds must be >= image_edit.retry_base_delay_seconds")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if err := ensurePositiveMap(map[string]int{
		"pipeline.candidates": c.Pipeline.Candidates,
		"pipeline.workers":    c.Pipeline.Workers,
	}); err != nil {
		return err
	}
	if c.Pipeline.JPEGQuality < 1 || c.Pipeline.JPEGQuality > 100 {
		return errors.New("pipeline.jpeg_quality must be between 1 and 100")
	}
	if c.Pipeline.PreviewQuality < 1 || c.Pipeline.PreviewQuality > 100 {
		return errors.New("pipeline.preview_quality must be between 1 and 100")
	}
	if c.Pipeline.RecolorBlend < 0 || c.Pipeline.RecolorBlend > 1 {
		return errors.New("pipeline.recolor_blend must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if topic := c.Notifications.NtfyTopic; topic != "" {
		parsed, err := url.Parse(topic)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("notifications.ntfy_topic must be a full topic URL, got %q", topic)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", strings.TrimSpace(c.Logging.Level))
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
