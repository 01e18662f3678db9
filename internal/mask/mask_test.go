package mask

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/raster"
	"github.com/shop4me/ARVA-sub000/internal/services"
)

func grayImage(w, h int, value func(x, y int) uint8) *raster.Image {
	img := raster.New(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := value(x, y)
			img.SetRGB(y*w+x, v, v, v)
		}
	}
	return img
}

func TestBinarizeThreshold(t *testing.T) {
	values := []uint8{0, 127, 128, 255}
	img := grayImage(4, 1, func(x, _ int) uint8 { return values[x] })
	m := Binarize(img)
	want := []uint8{0, 0, 1, 1}
	for i, bit := range m.Bits {
		if bit != want[i] {
			t.Fatalf("bit %d (value %d) = %d, want %d", i, values[i], bit, want[i])
		}
	}
}

func TestFitSameSizeIsIdentity(t *testing.T) {
	m := &Mask{Bits: []uint8{1, 0, 0, 1}, Width: 2, Height: 2}
	if got := m.Fit(2, 2); got != m {
		t.Fatal("same-size fit should return the mask unchanged")
	}
}

func TestFitUsesNearestIndex(t *testing.T) {
	// 2x1 mask: left half in, right half out.
	m := &Mask{Bits: []uint8{1, 0}, Width: 2, Height: 1}
	fitted := m.Fit(5, 2)
	want := []uint8{
		1, 1, 1, 0, 0,
		1, 1, 1, 0, 0,
	}
	for i := range want {
		if fitted.Bits[i] != want[i] {
			t.Fatalf("bit %d = %d, want %d (bits=%v)", i, fitted.Bits[i], want[i], fitted.Bits)
		}
	}
}

func TestFitDownscaleStaysBinary(t *testing.T) {
	m := Placeholder(101, 77, 0.5, 0.5)
	fitted := m.Fit(13, 9)
	for i, bit := range fitted.Bits {
		if bit > 1 {
			t.Fatalf("bit %d not binary: %d", i, bit)
		}
	}
}

func TestLoadMissingIsAssetNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "sofa-mask.png"))
	if !errors.Is(err, services.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestLoadCorruptIsDecodeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sofa-mask.png")
	if err := os.WriteFile(path, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestLoadRoundTripThroughPNG(t *testing.T) {
	dir := t.TempDir()
	src := Placeholder(20, 10, 0.6, 0.75)
	path := PathFor(dir, "sofa")
	if err := raster.SavePNG(path, src.Image()); err != nil {
		t.Fatal(err)
	}
	if !Exists(dir, "sofa") {
		t.Fatal("expected mask to exist")
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Width != 20 || got.Height != 10 || got.Count() != src.Count() {
		t.Fatalf("mask changed on disk: %dx%d count=%d want %d", got.Width, got.Height, got.Count(), src.Count())
	}
}

func TestPlaceholderGeometry(t *testing.T) {
	m := Placeholder(100, 100, 0.6, 0.75)
	// x in [20,80), y in [12,87)
	if m.Count() != 60*75 {
		t.Fatalf("placeholder count = %d, want %d", m.Count(), 60*75)
	}
	if m.Inside(12*100+19) || !m.Inside(12*100+20) || m.Inside(87*100+50) {
		t.Fatal("placeholder edges misplaced")
	}
}

func TestAPIFormatMakesUpholsteryTransparent(t *testing.T) {
	m := &Mask{Bits: []uint8{1, 0}, Width: 2, Height: 1}
	out := m.APIFormat(2, 1)
	if out.Channels != 4 {
		t.Fatalf("expected RGBA, got %d channels", out.Channels)
	}
	if out.Pix[3] != 0 {
		t.Fatalf("upholstery alpha = %d, want 0", out.Pix[3])
	}
	if out.Pix[7] != 255 || out.Pix[4] != 0 {
		t.Fatalf("background should be opaque black, got %v", out.Pix[4:8])
	}
}

func TestPreviewTintsOnlyMaskedPixels(t *testing.T) {
	base := grayImage(2, 1, func(int, int) uint8 { return 100 })
	m := &Mask{Bits: []uint8{1, 0}, Width: 2, Height: 1}
	out := Preview(base, m)
	if r, g, b := out.RGB(0); r != 250 || g != 50 || b != 50 {
		t.Fatalf("masked pixel = %d,%d,%d want 250,50,50", r, g, b)
	}
	if r, g, b := out.RGB(1); r != 100 || g != 100 || b != 100 {
		t.Fatalf("unmasked pixel changed: %d,%d,%d", r, g, b)
	}
	if base.Pix[0] != 100 {
		t.Fatal("preview must not mutate the base image")
	}
}
