package timeline

import "math"

const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	ZoomStep = 0.1
)

// ZoomPresets are the quick-pick zoom levels.
var ZoomPresets = []Zoom{0.25, 0.5, 1, 1.5, 2, 3, 5}

// Zoom scales the rendered track width. It never affects geometry.
type Zoom float64

// ClampZoom bounds z to the supported range, rounded to two decimals.
func ClampZoom(z float64) Zoom {
	if math.IsNaN(z) {
		return 1
	}
	z = math.Max(MinZoom, math.Min(MaxZoom, z))
	return Zoom(math.Round(z*100) / 100)
}

// In returns the next larger zoom level.
func (z Zoom) In() Zoom {
	return ClampZoom(float64(z) + ZoomStep)
}

// Out returns the next smaller zoom level.
func (z Zoom) Out() Zoom {
	return ClampZoom(float64(z) - ZoomStep)
}

// Reset returns the default zoom level.
func (z Zoom) Reset() Zoom {
	return 1
}

// Percent is the zoom level as a whole percentage.
func (z Zoom) Percent() int {
	return int(math.Round(float64(z) * 100))
}

// Width scales a base track width, never below one cell.
func (z Zoom) Width(base int) int {
	w := int(math.Round(float64(base) * float64(z)))
	if w < 1 {
		w = 1
	}
	return w
}

// NextPreset returns the first preset above z, or z when none is.
func (z Zoom) NextPreset() Zoom {
	for _, p := range ZoomPresets {
		if p > z {
			return p
		}
	}
	return z
}

// PrevPreset returns the last preset below z, or z when none is.
func (z Zoom) PrevPreset() Zoom {
	for i := len(ZoomPresets) - 1; i >= 0; i-- {
		if ZoomPresets[i] < z {
			return ZoomPresets[i]
		}
	}
	return z
}
