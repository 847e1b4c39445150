// Package isoanalyzer measures isometric sprite assets so they can be placed
// on a tile grid.
//
// For every image it computes the opaque bounding box from the alpha
// channel, estimates the row where the sprite touches the ground (the
// contact line), and derives tile constants for floor or wall assets.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		isoanalyzer "github.com/menta2k/iso-analyzer"
//		"github.com/menta2k/iso-analyzer/pkg/analyzer"
//		"github.com/menta2k/iso-analyzer/pkg/types"
//		"github.com/menta2k/iso-analyzer/pkg/vision"
//	)
//
//	func main() {
//		ia := isoanalyzer.NewWithConfig(
//			analyzer.Config{Mode: types.ModeFloor},
//			vision.DefaultDetectionConfig(),
//		)
//
//		result, err := ia.AnalyzeFile("floor_tile.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//		w, _ := result.Constants.Get("TILE_W")
//		fmt.Printf("TILE_W=%d bbox=%+v\n", w, result.BBox)
//	}
//
// The package consists of these components:
//
// 1. Processing (pkg/processing): image decoding and alpha normalization
// 2. Vision (pkg/vision): opacity mask, bounding box and contact-line detection
// 3. Analyzer (pkg/analyzer): the pipeline and floor/wall constant derivation
// 4. Report (pkg/report): text and JSON rendering of results
//
// The contact line is a heuristic. Results always carry notes asking for
// visual verification.
package isoanalyzer

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/menta2k/iso-analyzer/internal/utils"
	"github.com/menta2k/iso-analyzer/pkg/analyzer"
	"github.com/menta2k/iso-analyzer/pkg/processing"
	"github.com/menta2k/iso-analyzer/pkg/types"
	"github.com/menta2k/iso-analyzer/pkg/vision"
)

// Version of the iso analyzer library
const Version = "1.0.0"

// StdinPath is the path that makes AnalyzeFile read the image from Stdin
const StdinPath = "-"

// ImageAnalyzer loads sprite images and runs the analysis pipeline on them
type ImageAnalyzer struct {
	processor *processing.Processor
	analyzer  *analyzer.ImageAnalyzer

	// KeepGoing isolates per-file failures in AnalyzeFiles: a failing path
	// yields a result with an error note instead of aborting the batch.
	KeepGoing bool

	// DebugPrint, when set, receives progress messages.
	DebugPrint func(message string)

	// Stdin is read for StdinPath; nil means os.Stdin.
	Stdin io.Reader
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		processor: processing.NewProcessor(),
		analyzer:  analyzer.New(),
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(analyzerConfig analyzer.Config, detectionConfig vision.DetectionConfig) *ImageAnalyzer {
	return &ImageAnalyzer{
		processor: processing.NewProcessor(),
		analyzer:  analyzer.NewWithConfig(analyzerConfig, vision.NewWithConfig(detectionConfig)),
	}
}

// AnalyzeImage analyzes an already decoded image; name labels the result
func (ia *ImageAnalyzer) AnalyzeImage(name string, img image.Image) types.AnalysisResult {
	return ia.analyzer.Analyze(name, ia.processor.ToNRGBA(img))
}

// AnalyzeFile loads and analyzes a single image file. StdinPath decodes
// the image from Stdin instead.
func (ia *ImageAnalyzer) AnalyzeFile(path string) (types.AnalysisResult, error) {
	if path == StdinPath {
		stdin := ia.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		img, err := ia.processor.LoadImageFromReader(stdin)
		if err != nil {
			return types.AnalysisResult{}, fmt.Errorf("failed to load image from stdin: %w", err)
		}
		return ia.analyzer.Analyze(path, ia.processor.ToNRGBA(img)), nil
	}

	if err := utils.CheckInput(path); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("failed to load image: %w", err)
	}
	img, err := ia.processor.LoadNRGBA(path)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return ia.analyzer.Analyze(path, img), nil
}

// AnalyzeFiles analyzes every path in order. Without KeepGoing the first
// failure aborts the batch and no results are returned. With KeepGoing all
// paths produce a result and the failures are returned joined.
func (ia *ImageAnalyzer) AnalyzeFiles(paths []string) ([]types.AnalysisResult, error) {
	results := make([]types.AnalysisResult, 0, len(paths))
	var errs []error

	for i, path := range paths {
		switch {
		case path == StdinPath:
			ia.debugf("[%d/%d] reading standard input", i+1, len(paths))
		case utils.FileExists(path):
			ia.debugf("[%d/%d] loading %s (%s)", i+1, len(paths), path, utils.FormatFileSize(utils.FileSize(path)))
			if !utils.IsImageFile(path) {
				ia.debugf("%s: unrecognized extension, probing content", path)
			}
		}
		result, err := ia.AnalyzeFile(path)
		if err != nil {
			if !ia.KeepGoing {
				return nil, err
			}
			errs = append(errs, err)
			result = types.AnalysisResult{Path: path, Notes: "error: " + err.Error()}
		}
		ia.debugf("[%d/%d] %s: canvas=%dx%d bbox=%+v", i+1, len(paths), path, result.CanvasW, result.CanvasH, result.BBox)
		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

// Config returns the analyzer configuration in use
func (ia *ImageAnalyzer) Config() analyzer.Config {
	return ia.analyzer.Config()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

func (ia *ImageAnalyzer) debugf(format string, args ...any) {
	if ia.DebugPrint != nil {
		ia.DebugPrint(fmt.Sprintf(format, args...))
	}
}
