// Package preview renders the per-product contact sheet an operator checks
// after a batch: the base hero first, then every published variant.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/shop4me/ARVA-sub000/internal/fileutil"
)

const (
	MaxThumbWidth  = 400
	MaxColumns     = 4
	Padding        = 8
	DefaultQuality = 88
)

// Background is the sheet color behind the tiles.
var Background = color.NRGBA{R: 240, G: 240, B: 240, A: 255}

// Layout is the geometry of a contact sheet.
type Layout struct {
	ThumbWidth  int
	ThumbHeight int
	Columns     int
	Rows        int
	Width       int
	Height      int
}

// NewLayout sizes a sheet of tiles thumbnails cut from a width x height base.
func NewLayout(width, height, tiles int) Layout {
	if tiles < 1 {
		tiles = 1
	}
	thumbW := min(MaxThumbWidth, width)
	thumbH := (height*thumbW + width/2) / width
	cols := min(MaxColumns, tiles)
	rows := (tiles + cols - 1) / cols
	return Layout{
		ThumbWidth:  thumbW,
		ThumbHeight: thumbH,
		Columns:     cols,
		Rows:        rows,
		Width:       cols*thumbW + (cols+1)*Padding,
		Height:      rows*thumbH + (rows+1)*Padding,
	}
}

// Origin is the top-left corner of tile idx.
func (l Layout) Origin(idx int) image.Point {
	return image.Pt(
		Padding+(idx%l.Columns)*(l.ThumbWidth+Padding),
		Padding+(idx/l.Columns)*(l.ThumbHeight+Padding),
	)
}

// PathFor is the sheet location for slug under dir.
func PathFor(dir, slug string) string {
	return filepath.Join(dir, slug+"-preview.jpg")
}

// Result describes a written sheet.
type Result struct {
	Path    string
	Tiles   int
	Missing []string
}

// Build writes a contact sheet of basePath followed by variantPaths to
// outPath. The grid is sized for every requested variant; variants that
// cannot be read are listed in Result.Missing and leave the trailing slots
// empty.
func Build(basePath string, variantPaths []string, outPath string, quality int) (Result, error) {
	base, err := imaging.Open(basePath)
	if err != nil {
		return Result{}, fmt.Errorf("open base hero: %w", err)
	}
	bounds := base.Bounds()
	layout := NewLayout(bounds.Dx(), bounds.Dy(), 1+len(variantPaths))
	sheet := imaging.New(layout.Width, layout.Height, Background)

	result := Result{Path: outPath}
	place := func(img image.Image) {
		thumb := imaging.Fit(img, layout.ThumbWidth, layout.ThumbHeight, imaging.Lanczos)
		sheet = imaging.Paste(sheet, thumb, layout.Origin(result.Tiles))
		result.Tiles++
	}

	place(base)
	for _, p := range variantPaths {
		img, err := imaging.Open(p)
		if err != nil {
			result.Missing = append(result.Missing, p)
			continue
		}
		place(img)
	}

	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	err = fileutil.WriteAtomic(outPath, func(w io.Writer) error {
		return imaging.Encode(w, sheet, imaging.JPEG, imaging.JPEGQuality(quality))
	})
	if err != nil {
		return Result{}, fmt.Errorf("write preview %s: %w", outPath, err)
	}
	return result, nil
}
