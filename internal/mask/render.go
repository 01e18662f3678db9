package mask

import (
	"fmt"
	"math"

	"github.com/shop4me/ARVA-sub000/internal/raster"
)

// Placeholder geometry: a centered rectangle covering this fraction of the
// frame stands in for a hand-drawn mask.
const (
	PlaceholderWidth  = 0.6
	PlaceholderHeight = 0.75
)

// PreviewQuality is the JPEG quality of overlay previews.
const PreviewQuality = 90

// APIFormat renders the mask in the convention image edit APIs expect:
// upholstery becomes fully transparent (editable) and everything else opaque
// black. The result is fitted to width x height.
func (m *Mask) APIFormat(width, height int) *raster.Image {
	fitted := m.Fit(width, height)
	out := raster.New(width, height, 4)
	for i, bit := range fitted.Bits {
		if bit == 0 {
			out.Pix[i*4+3] = 255
		}
	}
	return out
}

// Image renders the mask as a white-on-black grayscale image.
func (m *Mask) Image() *raster.Image {
	out := raster.New(m.Width, m.Height, 3)
	for i, bit := range m.Bits {
		if bit == 1 {
			out.SetRGB(i, 255, 255, 255)
		}
	}
	return out
}

// Placeholder builds a centered rectangular mask for a width x height hero.
func Placeholder(width, height int, innerW, innerH float64) *Mask {
	x0 := int(math.Floor(float64(width) * (1 - innerW) / 2))
	y0 := int(math.Floor(float64(height) * (1 - innerH) / 2))
	x1 := int(math.Floor(float64(width) * (1 + innerW) / 2))
	y1 := int(math.Floor(float64(height) * (1 + innerH) / 2))
	m := &Mask{
		Bits:   make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
	for y := y0; y < y1 && y < height; y++ {
		for x := x0; x < x1 && x < width; x++ {
			m.Bits[y*width+x] = 1
		}
	}
	return m
}

// WritePlaceholder writes a placeholder mask sized to the hero at heroPath.
func WritePlaceholder(heroPath, maskPath string) (*Mask, error) {
	hero, err := raster.Load(heroPath)
	if err != nil {
		return nil, err
	}
	m := Placeholder(hero.Width, hero.Height, PlaceholderWidth, PlaceholderHeight)
	if err := raster.SavePNG(maskPath, m.Image()); err != nil {
		return nil, fmt.Errorf("write placeholder mask: %w", err)
	}
	return m, nil
}

// Preview tints the upholstery region of base red so an operator can check
// mask alignment at a glance.
func Preview(base *raster.Image, m *Mask) *raster.Image {
	fitted := m.Fit(base.Width, base.Height)
	out := base.Clone()
	for i := 0; i < out.Len(); i++ {
		if !fitted.Inside(i) {
			continue
		}
		r, g, b := out.RGB(i)
		out.SetRGB(i, tint(float64(r)*0.5+200), tint(float64(g)*0.5), tint(float64(b)*0.5))
	}
	return out
}

func tint(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
