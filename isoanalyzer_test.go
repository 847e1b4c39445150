package isoanalyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/iso-analyzer/pkg/analyzer"
	"github.com/menta2k/iso-analyzer/pkg/types"
	"github.com/menta2k/iso-analyzer/pkg/vision"
)

// createTestImage creates a sprite with an opaque rw x rh block inside a
// transparent border
func createTestImage(rw, rh, border int) *image.NRGBA {
	img := imaging.New(rw+2*border, rh+2*border, color.NRGBA{})
	for y := border; y < border+rh; y++ {
		for x := border; x < border+rw; x++ {
			img.SetNRGBA(x, y, color.NRGBA{120, 200, 80, 255})
		}
	}
	return img
}

func writeTestImage(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save %s: %v", name, err)
	}
	return path
}

func TestNew(t *testing.T) {
	ia := New()
	if ia == nil {
		t.Fatal("New() returned nil")
	}
	if ia.processor == nil || ia.analyzer == nil {
		t.Error("components should be initialized")
	}
	if ia.Config().Mode != types.ModeAuto {
		t.Errorf("Expected auto mode, got %s", ia.Config().Mode)
	}
}

func TestAnalyzeFileFloor(t *testing.T) {
	path := writeTestImage(t, "floor.png", createTestImage(64, 32, 8))
	ia := NewWithConfig(analyzer.Config{Mode: types.ModeFloor}, vision.DefaultDetectionConfig())

	r, err := ia.AnalyzeFile(path)
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if r.Path != path {
		t.Errorf("Expected path %s, got %s", path, r.Path)
	}
	if r.CanvasW != 80 || r.CanvasH != 48 {
		t.Errorf("Expected canvas 80x48, got %dx%d", r.CanvasW, r.CanvasH)
	}
	if r.BBox != (types.BoundingBox{X: 8, Y: 8, W: 64, H: 32}) {
		t.Errorf("Unexpected bbox %+v", r.BBox)
	}
	if r.Constants.String() != "{TILE_W: 64, TILE_H: 32, TILE_SKIRT: 0}" {
		t.Errorf("Unexpected constants %s", r.Constants)
	}
}

func TestAnalyzeFileOpaqueJPEG(t *testing.T) {
	// JPEG has no alpha: the whole canvas is opaque.
	img := imaging.New(30, 20, color.NRGBA{10, 20, 30, 255})
	path := writeTestImage(t, "photo.jpg", img)

	r, err := New().AnalyzeFile(path)
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if r.BBox != (types.BoundingBox{X: 0, Y: 0, W: 30, H: 20}) {
		t.Errorf("Expected full-canvas bbox, got %+v", r.BBox)
	}
}

func TestAnalyzeFileStdin(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(20, 12, 3)); err != nil {
		t.Fatal(err)
	}

	ia := New()
	ia.Stdin = &buf
	r, err := ia.AnalyzeFile(StdinPath)
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if r.Path != StdinPath {
		t.Errorf("Expected path %s, got %s", StdinPath, r.Path)
	}
	if r.BBox != (types.BoundingBox{X: 3, Y: 3, W: 20, H: 12}) {
		t.Errorf("Unexpected bbox %+v", r.BBox)
	}

	ia.Stdin = strings.NewReader("not an image")
	if _, err := ia.AnalyzeFile(StdinPath); err == nil {
		t.Error("Expected error for undecodable stdin")
	}
}

func TestAnalyzeImageTransparent(t *testing.T) {
	r := New().AnalyzeImage("blank", imaging.New(12, 12, color.NRGBA{}))
	if r.BBox != (types.BoundingBox{}) || r.ContactYAuto != nil || r.Constants.Len() != 0 {
		t.Errorf("Expected degenerate result, got %+v", r)
	}
	if r.Notes == "" {
		t.Error("Expected an explanatory note")
	}
}

func TestAnalyzeFilesAbortsOnError(t *testing.T) {
	good := writeTestImage(t, "good.png", createTestImage(10, 10, 2))
	missing := filepath.Join(t.TempDir(), "missing.png")

	results, err := New().AnalyzeFiles([]string{good, missing, good})
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if results != nil {
		t.Errorf("Expected no partial results, got %d", len(results))
	}
}

func TestAnalyzeFilesKeepGoing(t *testing.T) {
	good := writeTestImage(t, "good.png", createTestImage(10, 10, 2))
	missing := filepath.Join(t.TempDir(), "missing.png")

	var messages []string
	ia := New()
	ia.KeepGoing = true
	ia.DebugPrint = func(m string) { messages = append(messages, m) }

	results, err := ia.AnalyzeFiles([]string{good, missing, good})
	if err == nil {
		t.Error("Expected joined error")
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if !strings.HasPrefix(results[1].Notes, "error: ") {
		t.Errorf("Expected error note, got %q", results[1].Notes)
	}
	if results[1].Path != missing {
		t.Errorf("Expected failed result to keep its path, got %s", results[1].Path)
	}
	if !reflect.DeepEqual(results[0], results[2]) {
		t.Error("Expected identical results for the same input")
	}
	// Two lines per readable file, one for the missing path.
	if len(messages) != 5 {
		t.Errorf("Expected 5 progress messages, got %d", len(messages))
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected %s, got %s", Version, GetVersion())
	}
}
