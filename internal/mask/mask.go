package mask

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/shop4me/ARVA-sub000/internal/fileutil"
	"github.com/shop4me/ARVA-sub000/internal/raster"
	"github.com/shop4me/ARVA-sub000/internal/services"
)

// Threshold is the luminance above which a mask pixel counts as upholstery.
const Threshold = 127

// Mask is a binary upholstery map. Bits holds one 0/1 entry per pixel.
type Mask struct {
	Bits   []uint8
	Width  int
	Height int
}

// PathFor returns the conventional mask location for a product.
func PathFor(masksDir, slug string) string {
	return filepath.Join(masksDir, slug+"-mask.png")
}

// Exists reports whether a mask file is present for slug.
func Exists(masksDir, slug string) bool {
	return fileutil.Exists(PathFor(masksDir, slug))
}

// Load reads and binarizes the mask at path.
func Load(path string) (*Mask, error) {
	if _, err := os.Stat(path); err != nil {
		if fileutil.IsNotExist(err) {
			return nil, services.Wrap(services.ErrAssetNotFound, "mask", "load", path, err)
		}
		return nil, fmt.Errorf("stat mask %s: %w", path, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mask %s: %w", path, err)
	}
	defer file.Close()
	decoded, err := imaging.Decode(file)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "mask", "decode", path, err)
	}
	return Binarize(raster.FromImage(decoded)), nil
}

// Binarize converts an image into a mask using the luminance threshold.
func Binarize(img *raster.Image) *Mask {
	gray := imaging.Grayscale(img.NRGBA())
	m := &Mask{
		Bits:   make([]uint8, img.Width*img.Height),
		Width:  img.Width,
		Height: img.Height,
	}
	for y := 0; y < img.Height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < img.Width; x++ {
			if row[x*4] > Threshold {
				m.Bits[y*img.Width+x] = 1
			}
		}
	}
	return m
}

// Fit remaps the mask to width x height by nearest index. Same-size fits
// return the mask itself.
func (m *Mask) Fit(width, height int) *Mask {
	if m.Width == width && m.Height == height {
		return m
	}
	out := &Mask{
		Bits:   make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
	for y := 0; y < height; y++ {
		my := min(y*m.Height/height, m.Height-1)
		for x := 0; x < width; x++ {
			mx := min(x*m.Width/width, m.Width-1)
			out.Bits[y*width+x] = m.Bits[my*m.Width+mx]
		}
	}
	return out
}

// Inside reports whether pixel i (row-major) is upholstery.
func (m *Mask) Inside(i int) bool {
	return m.Bits[i] == 1
}

// Count returns the number of upholstery pixels.
func (m *Mask) Count() int {
	n := 0
	for _, bit := range m.Bits {
		n += int(bit)
	}
	return n
}
