package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the storefront checkout and everything the pipeline reads or
// writes. Relative storefront paths resolve against StorefrontDir.
type Paths struct {
	StorefrontDir  string `toml:"storefront_dir"`
	PublicDir      string `toml:"public_dir"`
	MasksDir       string `toml:"masks_dir"`
	ProductsFile   string `toml:"products_file"`
	DetailsFile    string `toml:"details_file"`
	WorkDir        string `toml:"work_dir"`
	VariantLog     string `toml:"variant_log"`
	PreviewDir     string `toml:"preview_dir"`
	MaskPreviewDir string `toml:"mask_preview_dir"`
	StateDir       string `toml:"state_dir"`
	LogDir         string `toml:"log_dir"`
}

// Catalog restricts which products are eligible for variants.
type Catalog struct {
	Slugs []string `toml:"slugs"`
}

// ImageEdit configures the OpenAI-compatible image edit endpoint.
type ImageEdit struct {
	APIKey                string `toml:"api_key"`
	BaseURL               string `toml:"base_url"`
	Model                 string `toml:"model"`
	Size                  string `toml:"size"`
	TimeoutSeconds        int    `toml:"timeout_seconds"`
	RequestIntervalMillis int    `toml:"request_interval_ms"`
	RetryAttempts         int    `toml:"retry_attempts"`
	RetryBaseDelaySeconds int    `toml:"retry_base_delay_seconds"`
	RetryMaxDelaySeconds  int    `toml:"retry_max_delay_seconds"`
}

// Pipeline tunes the per-pair state machine.
type Pipeline struct {
	Candidates     int     `toml:"candidates"`
	Workers        int     `toml:"workers"`
	JPEGQuality    int     `toml:"jpeg_quality"`
	RecolorBlend   float64 `toml:"recolor_blend"`
	PreviewQuality int     `toml:"preview_quality"`
	Previews       bool    `toml:"previews"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Review         bool   `toml:"review"`
	Batch          bool   `toml:"batch"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for arvactl.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	ImageEdit     ImageEdit     `toml:"image_edit"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

const (
	defaultConfigPath = "~/.config/arva/variants.toml"
	projectConfigName = "arva-variants.toml"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// HistoryPath is the SQLite database mirroring the variant log.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "variants.db")
}

// LockPath is the file lock held by a running generate batch.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "generate.lock")
}

// EnsureDirectories creates the directories a generate batch writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.WorkDir,
		c.Paths.StateDir,
		c.Paths.LogDir,
		c.Paths.PreviewDir,
		filepath.Dir(c.Paths.VariantLog),
	} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// resolveUnder expands pathValue, anchoring relative values at root.
func resolveUnder(root, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" || strings.HasPrefix(pathValue, "~") || filepath.IsAbs(pathValue) {
		return expandPath(pathValue)
	}
	return expandPath(filepath.Join(root, pathValue))
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
