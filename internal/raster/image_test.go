package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/services"
)

func TestFromImageDropsAlphaForOpaqueSources(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	img := FromImage(src)
	if img.Channels != 3 {
		t.Fatalf("expected 3 channels, got %d", img.Channels)
	}
	if r, g, b := img.RGB(1); r != 40 || g != 50 || b != 60 {
		t.Fatalf("unexpected pixel: %d %d %d", r, g, b)
	}
}

func TestFromImageKeepsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 128})
	img := FromImage(src)
	if img.Channels != 4 || img.Pix[3] != 128 {
		t.Fatalf("expected alpha preserved, got channels=%d pix=%v", img.Channels, img.Pix)
	}
}

func TestPNGRoundTripIsLossless(t *testing.T) {
	img := New(3, 2, 3)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 13)
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Fatalf("pixels changed: %v vs %v", got.Pix, img.Pix)
	}
}

func TestResizeStretchesToTarget(t *testing.T) {
	img := Fill(8, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	out := img.Resize(4, 4)
	if out.Width != 4 || out.Height != 4 || out.Channels != 3 {
		t.Fatalf("unexpected geometry %dx%dx%d", out.Width, out.Height, out.Channels)
	}
	if r, g, b := out.RGB(5); r != 200 || g != 100 || b != 50 {
		t.Fatalf("flat color not preserved: %d %d %d", r, g, b)
	}
}

func TestResizeSameSizeReturnsCopy(t *testing.T) {
	img := Fill(2, 2, color.NRGBA{R: 1, A: 255})
	out := img.Resize(2, 2)
	out.Pix[0] = 99
	if img.Pix[0] != 1 {
		t.Fatal("resize must not alias the source buffer")
	}
}

func TestLoadMissingFileIsAssetNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, services.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestLoadGarbageIsDecodeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestSaveJPEGWritesDecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "variant.jpg")
	img := Fill(16, 16, color.NRGBA{R: 120, G: 60, B: 30, A: 255})
	if err := SaveJPEG(path, img, 92); err != nil {
		t.Fatalf("SaveJPEG: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Width != 16 || got.Height != 16 {
		t.Fatalf("unexpected size %dx%d", got.Width, got.Height)
	}
	r, g, b := got.RGB(0)
	if absDiff(r, 120) > 3 || absDiff(g, 60) > 3 || absDiff(b, 30) > 3 {
		t.Fatalf("jpeg drifted too far: %d %d %d", r, g, b)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
