package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shop4me/ARVA-sub000/internal/catalog"
	"github.com/shop4me/ARVA-sub000/internal/config"
	"github.com/shop4me/ARVA-sub000/internal/fileutil"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/raster"
)

const maskPreviewQuality = 90

func newMasksCommand(ctx *commandContext) *cobra.Command {
	masksCmd := &cobra.Command{
		Use:   "masks",
		Short: "Create and verify upholstery masks",
	}
	masksCmd.AddCommand(newMasksPlaceholderCommand(ctx))
	masksCmd.AddCommand(newMasksPreviewCommand(ctx))
	return masksCmd
}

// maskRow is one line of the masks table.
type maskRow struct {
	slug   string
	status statusKind
	detail string
}

func newMasksPlaceholderCommand(ctx *commandContext) *cobra.Command {
	var slug string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "placeholder",
		Short: "Write center-rectangle placeholder masks sized to each hero",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			cat, err := catalog.Load(cfg.Paths.ProductsFile, cfg.Paths.DetailsFile)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			var rows []maskRow
			for _, s := range maskSlugs(cfg, cat, slug) {
				rows = append(rows, writePlaceholder(cfg, cat, s, overwrite))
			}
			printMaskRows(cmd, rows)
			fmt.Fprintln(cmd.OutOrStdout(), "Placeholder masks cover the center of each hero. Check them with `arvactl masks preview` and replace with real masks before publishing.")
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Only create the mask for this product slug")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing masks (the old mask is kept as .bak)")
	return cmd
}

func writePlaceholder(cfg *config.Config, cat *catalog.Catalog, slug string, overwrite bool) maskRow {
	heroPath, ok := cat.HeroPath(cfg.Paths.PublicDir, slug)
	if !ok {
		return maskRow{slug: slug, status: statusWarn, detail: "no hero path"}
	}
	if !fileutil.Exists(heroPath) {
		return maskRow{slug: slug, status: statusWarn, detail: "base image not found at " + heroPath}
	}
	maskPath := mask.PathFor(cfg.Paths.MasksDir, slug)
	if fileutil.Exists(maskPath) {
		if !overwrite {
			return maskRow{slug: slug, status: statusInfo, detail: "mask exists at " + maskPath}
		}
		if err := fileutil.CopyFile(maskPath, maskPath+".bak"); err != nil {
			return maskRow{slug: slug, status: statusError, detail: fmt.Sprintf("back up mask: %v", err)}
		}
	}
	if _, err := mask.WritePlaceholder(heroPath, maskPath); err != nil {
		return maskRow{slug: slug, status: statusError, detail: err.Error()}
	}
	return maskRow{slug: slug, status: statusOK, detail: fmt.Sprintf("%s (placeholder center %.2gx%.2g)", maskPath, mask.PlaceholderWidth, mask.PlaceholderHeight)}
}

func newMasksPreviewCommand(ctx *commandContext) *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Overlay each mask in red on its hero for verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			cat, err := catalog.Load(cfg.Paths.ProductsFile, cfg.Paths.DetailsFile)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			var rows []maskRow
			for _, s := range maskSlugs(cfg, cat, slug) {
				rows = append(rows, writeMaskPreview(cfg, cat, s))
			}
			printMaskRows(cmd, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Only preview the mask for this product slug")
	return cmd
}

func writeMaskPreview(cfg *config.Config, cat *catalog.Catalog, slug string) maskRow {
	maskPath := mask.PathFor(cfg.Paths.MasksDir, slug)
	if !fileutil.Exists(maskPath) {
		return maskRow{slug: slug, status: statusWarn, detail: "mask not found at " + maskPath}
	}
	heroPath, ok := cat.HeroPath(cfg.Paths.PublicDir, slug)
	if !ok {
		return maskRow{slug: slug, status: statusWarn, detail: "no base hero in productDetails"}
	}
	base, err := raster.Load(heroPath)
	if err != nil {
		return maskRow{slug: slug, status: statusWarn, detail: "base image not found at " + heroPath}
	}
	m, err := mask.Load(maskPath)
	if err != nil {
		return maskRow{slug: slug, status: statusError, detail: err.Error()}
	}
	outPath := filepath.Join(cfg.Paths.MaskPreviewDir, slug+"-mask-preview.jpg")
	if err := raster.SaveJPEG(outPath, mask.Preview(base, m), maskPreviewQuality); err != nil {
		return maskRow{slug: slug, status: statusError, detail: err.Error()}
	}
	return maskRow{slug: slug, status: statusOK, detail: outPath}
}

// maskSlugs is the explicit slug when given, otherwise every eligible product.
func maskSlugs(cfg *config.Config, cat *catalog.Catalog, slug string) []string {
	if slug = strings.TrimSpace(slug); slug != "" {
		return []string{slug}
	}
	return cat.Slugs(cfg.Catalog.Slugs, "")
}

func printMaskRows(cmd *cobra.Command, rows []maskRow) {
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No products matched")
		return
	}
	colorize := shouldColorize(out)
	for _, row := range rows {
		fmt.Fprintln(out, renderStatusLine(row.slug, row.status, row.detail, colorize))
	}
}
