package processing

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// createTestImage creates a sprite-like image: transparent border, opaque center
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{90, 160, 220, 255})
		}
	}
	return img
}

func TestLoadImagePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.png")
	if err := imaging.Save(createTestImage(40, 20), path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	p := NewProcessor()
	img, err := p.LoadNRGBA(path)
	if err != nil {
		t.Fatalf("LoadNRGBA failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("Expected 40x20, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("Expected transparent corner, got alpha %d", a)
	}
	if a := img.NRGBAAt(20, 10).A; a != 255 {
		t.Errorf("Expected opaque center, got alpha %d", a)
	}
}

func TestLoadImageWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.webp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := webp.Encode(f, createTestImage(32, 32), &webp.Options{Lossless: true}); err != nil {
		f.Close()
		t.Fatalf("encode failed: %v", err)
	}
	f.Close()

	img, err := NewProcessor().LoadNRGBA(path)
	if err != nil {
		t.Fatalf("LoadNRGBA failed: %v", err)
	}
	if a := img.NRGBAAt(1, 1).A; a != 0 {
		t.Errorf("Expected transparent corner, got alpha %d", a)
	}
	if a := img.NRGBAAt(16, 16).A; a != 255 {
		t.Errorf("Expected opaque center, got alpha %d", a)
	}
}

func TestLoadImageMissing(t *testing.T) {
	_, err := NewProcessor().LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadImageGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewProcessor().LoadImage(path); err == nil {
		t.Error("Expected error for undecodable file")
	}
}

func TestLoadImageFromReader(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(8, 8)); err != nil {
		t.Fatal(err)
	}
	img, err := NewProcessor().LoadImageFromReader(&buf)
	if err != nil {
		t.Fatalf("LoadImageFromReader failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("Expected width 8, got %d", img.Bounds().Dx())
	}
}

func TestToNRGBAOpaqueSource(t *testing.T) {
	// Sources without alpha must come out fully opaque.
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	n := NewProcessor().ToNRGBA(src)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if a := n.NRGBAAt(x, y).A; a != 255 {
				t.Fatalf("Expected alpha 255 at (%d,%d), got %d", x, y, a)
			}
		}
	}
}

func TestToNRGBAOrigin(t *testing.T) {
	img := createTestImage(20, 20)
	sub := img.SubImage(image.Rect(5, 5, 15, 15))

	n := NewProcessor().ToNRGBA(sub)
	if n.Bounds().Min != (image.Point{}) {
		t.Errorf("Expected origin at (0,0), got %v", n.Bounds().Min)
	}
	if n.Bounds().Dx() != 10 || n.Bounds().Dy() != 10 {
		t.Errorf("Expected 10x10, got %dx%d", n.Bounds().Dx(), n.Bounds().Dy())
	}

	same := NewProcessor().ToNRGBA(img)
	if same != img {
		t.Error("Expected zero-origin NRGBA to be returned as is")
	}
}
