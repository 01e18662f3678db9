package raster

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	"github.com/shop4me/ARVA-sub000/internal/fileutil"
)

// DefaultJPEGQuality is used for published variants.
const DefaultJPEGQuality = 92

// EncodePNG writes a lossless PNG, keeping alpha when present.
func EncodePNG(w io.Writer, img *Image) error {
	return imaging.Encode(w, img.NRGBA(), imaging.PNG)
}

// EncodeJPEG writes a JPEG at the given quality (1-100). Alpha is discarded.
func EncodeJPEG(w io.Writer, img *Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return imaging.Encode(w, img.NRGBA(), imaging.JPEG, imaging.JPEGQuality(quality))
}

// PNGBytes encodes img as PNG into memory.
func PNGBytes(img *Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG atomically writes img as PNG.
func SavePNG(path string, img *Image) error {
	if err := fileutil.WriteAtomic(path, func(w io.Writer) error { return EncodePNG(w, img) }); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}

// SaveJPEG atomically writes img as JPEG.
func SaveJPEG(path string, img *Image, quality int) error {
	if err := fileutil.WriteAtomic(path, func(w io.Writer) error { return EncodeJPEG(w, img, quality) }); err != nil {
		return fmt.Errorf("save jpeg %s: %w", path, err)
	}
	return nil
}
