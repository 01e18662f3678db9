package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shop4me/ARVA-sub000/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.storefront_dir and image_edit.api_key (or export OPENAI_API_KEY) before running arvactl generate.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and check the storefront paths",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configFlagValue())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			for _, check := range configChecks(cfg) {
				fmt.Fprintln(out, renderStatusLine(check.label, check.kind, check.detail, colorize))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

type configCheck struct {
	label  string
	kind   statusKind
	detail string
}

// configChecks reports what a generate run would find. Missing inputs are
// warnings: the file may simply not be checked out yet.
func configChecks(cfg *config.Config) []configCheck {
	present := func(label, path string) configCheck {
		if _, err := os.Stat(path); err == nil {
			return configCheck{label, statusOK, path}
		}
		return configCheck{label, statusWarn, "missing " + path}
	}
	checks := []configCheck{
		present("Storefront", cfg.Paths.StorefrontDir),
		present("Details", cfg.Paths.DetailsFile),
		present("Masks", cfg.Paths.MasksDir),
	}
	if cfg.ImageEdit.APIKey != "" {
		checks = append(checks, configCheck{"API key", statusOK, "set"})
	} else {
		checks = append(checks, configCheck{"API key", statusWarn, "not set; only dry runs will work"})
	}
	if cfg.Notifications.NtfyTopic != "" {
		checks = append(checks, configCheck{"Notifications", statusOK, cfg.Notifications.NtfyTopic})
	} else {
		checks = append(checks, configCheck{"Notifications", statusInfo, "disabled"})
	}
	return checks
}
