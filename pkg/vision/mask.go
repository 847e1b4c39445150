package vision

import (
	"image"

	"github.com/menta2k/iso-analyzer/pkg/types"
)

// OpacityMask marks which canvas pixels count as opaque
type OpacityMask struct {
	Width  int
	Height int
	bits   []bool
}

// BuildMask thresholds the alpha channel: a pixel is opaque iff alpha > threshold.
// Coordinates in the mask are relative to img.Bounds().Min.
func BuildMask(img *image.NRGBA, threshold int) OpacityMask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := OpacityMask{Width: w, Height: h, bits: make([]bool, w*h)}

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			a := int(row[x*4+3])
			mask.bits[y*w+x] = a > threshold
		}
	}
	return mask
}

// Opaque reports whether (x, y) is opaque; out of range is transparent
func (m OpacityMask) Opaque(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.bits[y*m.Width+x]
}

// BoundingBox returns the tightest rectangle enclosing every opaque pixel.
// The second return value is false when the mask has no opaque pixels.
func BoundingBox(m OpacityMask) (types.BoundingBox, bool) {
	x0, y0 := m.Width, m.Height
	x1, y1 := -1, -1

	for y := 0; y < m.Height; y++ {
		row := m.bits[y*m.Width : (y+1)*m.Width]
		for x, opaque := range row {
			if !opaque {
				continue
			}
			if x < x0 {
				x0 = x
			}
			if x > x1 {
				x1 = x
			}
			if y < y0 {
				y0 = y
			}
			y1 = y
		}
	}

	if x1 < 0 {
		return types.BoundingBox{}, false
	}
	return types.BoundingBox{X: x0, Y: y0, W: x1 - x0 + 1, H: y1 - y0 + 1}, true
}
