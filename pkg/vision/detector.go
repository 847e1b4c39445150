package vision

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/menta2k/iso-analyzer/pkg/types"
)

// ContactDetector estimates the row where a sprite's silhouette meets the
// ground plane. The estimate is the steepest increase in per-row opaque
// coverage near the bottom of the bounding box; it is approximate and
// callers should ask for visual verification.
type ContactDetector struct {
	config DetectionConfig
}

// DetectionConfig holds the tuning for contact-line detection
type DetectionConfig struct {
	SmoothWindow   int     // moving-average window over row coverage
	SearchFraction float64 // share of the bbox height searched, from the bottom
	MinSearch      int
	MaxSearch      int
}

// DefaultDetectionConfig returns the standard tuning
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		SmoothWindow:   5,
		SearchFraction: 0.4,
		MinSearch:      20,
		MaxSearch:      120,
	}
}

// Validate checks that the configuration describes a usable detector
func (c DetectionConfig) Validate() error {
	if c.SmoothWindow < 1 || c.SmoothWindow%2 == 0 {
		return fmt.Errorf("smooth_window must be a positive odd number, got %d", c.SmoothWindow)
	}
	if c.SearchFraction <= 0 || c.SearchFraction > 1 {
		return fmt.Errorf("search_fraction must be in (0, 1], got %g", c.SearchFraction)
	}
	if c.MinSearch < 0 || c.MaxSearch < c.MinSearch {
		return fmt.Errorf("min_search must be non-negative and not exceed max_search")
	}
	return nil
}

// New creates a ContactDetector with default configuration
func New() *ContactDetector {
	return &ContactDetector{config: DefaultDetectionConfig()}
}

// NewWithConfig creates a ContactDetector with custom configuration
func NewWithConfig(config DetectionConfig) *ContactDetector {
	return &ContactDetector{config: config}
}

// Config returns the detector's configuration
func (d *ContactDetector) Config() DetectionConfig {
	return d.config
}

// RowCoverage counts opaque pixels per row inside the box
func RowCoverage(m OpacityMask, bb types.BoundingBox) []int {
	cover := make([]int, bb.H)
	for r := 0; r < bb.H; r++ {
		n := 0
		for x := bb.X; x < bb.X+bb.W; x++ {
			if m.Opaque(x, bb.Y+r) {
				n++
			}
		}
		cover[r] = n
	}
	return cover
}

// windowSums returns moving sums over v with window k. The input is edge
// padded by k/2 on each side, so odd windows keep len(v) elements.
func windowSums(v []int, k int) []float64 {
	if k <= 1 {
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	}
	if len(v) == 0 {
		return nil
	}

	pad := k / 2
	padded := make([]int, 0, len(v)+2*pad)
	for i := 0; i < pad; i++ {
		padded = append(padded, v[0])
	}
	padded = append(padded, v...)
	for i := 0; i < pad; i++ {
		padded = append(padded, v[len(v)-1])
	}

	n := len(padded) - k + 1
	out := make([]float64, n)
	sum := 0
	for i := 0; i < k; i++ {
		sum += padded[i]
	}
	out[0] = float64(sum)
	for i := 1; i < n; i++ {
		sum += padded[i+k-1] - padded[i-1]
		out[i] = float64(sum)
	}
	return out
}

// SmoothedDiff returns the first difference of the edge-padded moving
// average of v with window k. A window of 1 or less skips the averaging.
// The sums are differenced before scaling so equal steps compare equal.
func SmoothedDiff(v []int, k int) []float64 {
	out := Diff(windowSums(v, k))
	if k > 1 {
		floats.Scale(1/float64(k), out)
	}
	return out
}

// Diff returns the first difference of v (len(v)-1 elements)
func Diff(v []float64) []float64 {
	if len(v) < 2 {
		return nil
	}
	out := make([]float64, len(v)-1)
	for i := range out {
		out[i] = v[i+1] - v[i]
	}
	return out
}

// SearchWindow returns the start offset and length of the bottom slice of
// the difference profile that is searched for a contact line.
func (d *ContactDetector) SearchWindow(bboxH, diffLen int) (start, length int) {
	length = int(math.Round(d.config.SearchFraction * float64(bboxH)))
	length = max(d.config.MinSearch, min(d.config.MaxSearch, length))
	length = max(0, min(length, diffLen))
	return max(0, diffLen-length), length
}

// DetectContactLine returns the absolute canvas row of the estimated
// contact line. The second return value is false when no candidate exists.
func (d *ContactDetector) DetectContactLine(m OpacityMask, bb types.BoundingBox) (int, bool) {
	if bb.H <= 0 || bb.W <= 0 {
		return 0, false
	}

	diffs := SmoothedDiff(RowCoverage(m, bb), d.config.SmoothWindow)

	start, length := d.SearchWindow(bb.H, len(diffs))
	if length == 0 {
		return 0, false
	}

	// MaxIdx keeps the first index on ties.
	idx := floats.MaxIdx(diffs[start : start+length])
	return bb.Y + start + idx + 1, true
}

// SkirtHeight is the number of rows from the contact line to the bottom of
// the box, inclusive.
func SkirtHeight(bb types.BoundingBox, contactY int) int {
	return bb.Bottom() - contactY + 1
}
