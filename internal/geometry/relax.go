package geometry

import "math"

const (
	minRelaxedWidth = 5.0
	maxRelaxedWidth = 15.0

	baseHeight = 60
)

// Relax widens a position for readability. Floors are cumulative; once any
// rule fires the width is clamped into [5, 15] but never below the raw width.
func Relax(p Position, nameLen int) Position {
	width := p.Width
	height := baseHeight
	multiLine := false
	fired := false

	floor := func(v float64) {
		width = math.Max(width, v)
		fired = true
	}
	raise := func(h int) {
		if h > height {
			height = h
		}
	}

	if p.Width < 2 {
		floor(8)
	}
	if p.Duration == 1 {
		floor(6)
		raise(70)
	}
	if p.Duration <= 2 && nameLen > 25 {
		floor(8)
		raise(80)
		if nameLen > 40 {
			multiLine = true
		}
	}
	if nameLen > 40 {
		multiLine = true
		floor(10)
		raise(85)
	} else if nameLen > 25 && p.Duration > 2 {
		floor(7)
		raise(70)
	}

	if fired {
		width = math.Min(math.Max(width, minRelaxedWidth), maxRelaxedWidth)
		width = math.Max(width, p.OriginalWidth)
	}

	p.Width = width
	p.NeedsMultiLine = multiLine
	p.IsShortDuration = p.Duration <= 2
	p.RecommendedHeight = height
	return p
}
