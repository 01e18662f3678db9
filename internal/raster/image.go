package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/shop4me/ARVA-sub000/internal/fileutil"
	"github.com/shop4me/ARVA-sub000/internal/services"
)

// Image is an 8-bit interleaved pixel buffer.
type Image struct {
	Pix      []uint8
	Width    int
	Height   int
	Channels int
}

// New allocates a zeroed image.
func New(width, height, channels int) *Image {
	if channels != 4 {
		channels = 3
	}
	return &Image{
		Pix:      make([]uint8, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// Len returns the pixel count.
func (img *Image) Len() int {
	if img == nil {
		return 0
	}
	return img.Width * img.Height
}

// RGB returns the color channels of pixel i (row-major index).
func (img *Image) RGB(i int) (r, g, b uint8) {
	o := i * img.Channels
	return img.Pix[o], img.Pix[o+1], img.Pix[o+2]
}

// SetRGB overwrites the color channels of pixel i, leaving alpha untouched.
func (img *Image) SetRGB(i int, r, g, b uint8) {
	o := i * img.Channels
	img.Pix[o], img.Pix[o+1], img.Pix[o+2] = r, g, b
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	out := *img
	out.Pix = append([]uint8(nil), img.Pix...)
	return &out
}

// SameSize reports whether both images share dimensions.
func (img *Image) SameSize(other *Image) bool {
	return img.Width == other.Width && img.Height == other.Height
}

// FromImage converts any decoded image into a raster buffer. Fully opaque
// sources become 3-channel images.
func FromImage(src image.Image) *Image {
	nrgba := imaging.Clone(src)
	bounds := nrgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	channels := 3
	if !nrgba.Opaque() {
		channels = 4
	}
	out := New(w, h, channels)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			s := row[x*4 : x*4+4]
			o := (y*w + x) * channels
			out.Pix[o], out.Pix[o+1], out.Pix[o+2] = s[0], s[1], s[2]
			if channels == 4 {
				out.Pix[o+3] = s[3]
			}
		}
	}
	return out
}

// NRGBA converts the buffer back into a standard library image.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i := 0; i < img.Len(); i++ {
		o := i * img.Channels
		a := uint8(255)
		if img.Channels == 4 {
			a = img.Pix[o+3]
		}
		dst.Pix[i*4], dst.Pix[i*4+1], dst.Pix[i*4+2], dst.Pix[i*4+3] = img.Pix[o], img.Pix[o+1], img.Pix[o+2], a
	}
	return dst
}

// WithAlpha returns a 4-channel copy; opaque pixels receive alpha 255.
func (img *Image) WithAlpha() *Image {
	if img.Channels == 4 {
		return img.Clone()
	}
	out := New(img.Width, img.Height, 4)
	for i := 0; i < img.Len(); i++ {
		r, g, b := img.RGB(i)
		o := i * 4
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = r, g, b, 255
	}
	return out
}

// Resize resamples to exactly width x height, stretching if the aspect ratio
// differs. The box filter averages source pixels, which keeps flat regions
// flat and avoids ringing at mask edges.
func (img *Image) Resize(width, height int) *Image {
	if img.Width == width && img.Height == height {
		return img.Clone()
	}
	resized := imaging.Resize(img.NRGBA(), width, height, imaging.Box)
	out := FromImage(resized)
	switch {
	case img.Channels == 3 && out.Channels == 4:
		out = dropAlpha(out)
	case img.Channels == 4 && out.Channels == 3:
		out = out.WithAlpha()
	}
	return out
}

func dropAlpha(img *Image) *Image {
	out := New(img.Width, img.Height, 3)
	for i := 0; i < img.Len(); i++ {
		r, g, b := img.RGB(i)
		out.SetRGB(i, r, g, b)
	}
	return out
}

// Fill returns a solid 3-channel image.
func Fill(width, height int, c color.NRGBA) *Image {
	out := New(width, height, 3)
	for i := 0; i < out.Len(); i++ {
		out.SetRGB(i, c.R, c.G, c.B)
	}
	return out
}

// Decode reads an encoded image (PNG, JPEG, GIF, WebP).
func Decode(r io.Reader) (*Image, error) {
	decoded, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "raster", "decode", "", err)
	}
	return FromImage(decoded), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (*Image, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads and decodes path. A missing file is reported as an asset
// problem so the caller can skip the pair instead of failing.
func Load(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		if fileutil.IsNotExist(err) {
			return nil, services.Wrap(services.ErrAssetNotFound, "raster", "load", path, err)
		}
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer file.Close()
	img, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
