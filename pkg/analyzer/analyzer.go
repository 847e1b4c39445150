package analyzer

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/menta2k/iso-analyzer/pkg/types"
	"github.com/menta2k/iso-analyzer/pkg/vision"
)

const (
	noteNoOpaque = "No opaque pixels."
	noteFloor    = "floor mode: TILE_H assumed = TILE_W/2 (2:1 iso)."
	noteAuto     = "auto mode: providing bbox and a heuristic contact line; verify visually."
	noteVerify   = "contact line is a heuristic estimate; verify visually."
)

// ImageAnalyzer derives tile placement constants from sprite images
type ImageAnalyzer struct {
	config   Config
	detector *vision.ContactDetector
}

// Config holds configuration for the image analyzer
type Config struct {
	Mode           types.Mode
	AlphaThreshold int
	// OverrideSkirt, when set, replaces the skirt used by floor and wall modes.
	OverrideSkirt *int
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config:   Config{Mode: types.ModeAuto},
		detector: vision.New(),
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config, detector *vision.ContactDetector) *ImageAnalyzer {
	if config.Mode == "" {
		config.Mode = types.ModeAuto
	}
	if detector == nil {
		detector = vision.New()
	}
	return &ImageAnalyzer{config: config, detector: detector}
}

// Config returns the analyzer configuration
func (a *ImageAnalyzer) Config() Config {
	return a.config
}

// Analyze runs the full pipeline on a decoded image. path only labels the result.
func (a *ImageAnalyzer) Analyze(path string, img *image.NRGBA) types.AnalysisResult {
	bounds := img.Bounds()
	result := types.AnalysisResult{
		Path:    path,
		CanvasW: bounds.Dx(),
		CanvasH: bounds.Dy(),
	}

	mask := vision.BuildMask(img, a.config.AlphaThreshold)
	bb, ok := vision.BoundingBox(mask)
	if !ok {
		result.Notes = noteNoOpaque
		return result
	}
	result.BBox = bb

	if y, ok := a.detector.DetectContactLine(mask, bb); ok {
		skirt := vision.SkirtHeight(bb, y)
		result.ContactYAuto = &y
		result.SkirtAuto = &skirt
	}

	constants, notes := DeriveConstants(a.config.Mode, bb, result.SkirtAuto, a.config.OverrideSkirt)
	if result.ContactYAuto != nil && a.config.Mode != types.ModeAuto {
		notes = append(notes, noteVerify)
	}
	result.Constants = constants
	result.Notes = strings.Join(notes, "; ")
	return result
}

// DeriveConstants computes the mode-specific tile constants for a bounding
// box. An override skirt always wins over the heuristic and is not checked
// against the box.
func DeriveConstants(mode types.Mode, bb types.BoundingBox, skirtAuto, override *int) (types.Constants, []string) {
	var constants types.Constants
	var notes []string

	switch mode {
	case types.ModeFloor:
		tileW := bb.W
		tileH := int(math.RoundToEven(float64(tileW) / 2))
		tileSkirt := max(0, bb.H-tileH)
		if override != nil {
			tileSkirt = *override
		}
		constants.Set("TILE_W", tileW)
		constants.Set("TILE_H", tileH)
		constants.Set("TILE_SKIRT", tileSkirt)
		notes = append(notes, noteFloor)
		if override != nil {
			notes = append(notes, fmt.Sprintf("floor mode: TILE_SKIRT overridden to %dpx.", *override))
		}

	case types.ModeWall:
		wallW := bb.W
		var wallSkirt int
		switch {
		case override != nil:
			wallSkirt = *override
			notes = append(notes, fmt.Sprintf("wall mode: skirt from override (%dpx).", wallSkirt))
		case skirtAuto != nil:
			wallSkirt = *skirtAuto
			notes = append(notes, fmt.Sprintf("wall mode: skirt from heuristic (%dpx).", wallSkirt))
		default:
			notes = append(notes, "wall mode: no contact line found; skirt defaults to 0.")
		}
		constants.Set("WALL_W", wallW)
		constants.Set("WALL_H", max(0, bb.H-wallSkirt))
		constants.Set("WALL_SKIRT", wallSkirt)

	default:
		notes = append(notes, noteAuto)
		if override != nil {
			notes = append(notes, fmt.Sprintf("override skirt=%dpx recorded; auto mode derives no constants.", *override))
		}
	}

	return constants, notes
}
