package geometry

import (
	"math"
	"time"

	"github.com/fentz26/timeline/internal/models"
)

// Axis is the shared date-to-percentage coordinate system.
type Axis struct {
	Start time.Time
	End   time.Time
	// SpanDays is the exclusive day span End - Start. It is zero when every
	// item sits on the same single day.
	SpanDays int
}

// NewAxis builds an axis between two calendar days.
func NewAxis(start, end time.Time) Axis {
	start, end = models.Day(start), models.Day(end)
	return Axis{Start: start, End: end, SpanDays: models.DaysBetween(start, end)}
}

// Empty reports whether the axis has no bounds.
func (a Axis) Empty() bool {
	return a.Start.IsZero() && a.End.IsZero()
}

// TotalDays returns the inclusive day count covered by the axis.
func (a Axis) TotalDays() int {
	if a.Empty() {
		return 0
	}
	return a.SpanDays + 1
}

// Span returns the raw left and width percentages of a date range.
func (a Axis) Span(start, end time.Time) (left, width float64) {
	duration := models.DaysBetween(start, end) + 1
	if a.SpanDays == 0 {
		return 0, 100
	}
	daysFromStart := models.DaysBetween(a.Start, start)
	span := float64(a.SpanDays)
	return float64(daysFromStart) / span * 100, float64(duration) / span * 100
}

// DateAt maps an axis percentage back to the nearest calendar day. It
// scales by the exclusive span, the same denominator Span uses, so a day's
// left edge maps back to that day and 100% is the final day.
func (a Axis) DateAt(percent float64) time.Time {
	offset := int(math.Floor(percent/100*float64(a.SpanDays) + 0.5))
	return models.AddDays(a.Start, offset)
}

// Frame is the on-screen extent of the axis track, in pointer units.
type Frame struct {
	Left  float64
	Width float64
}

// Project converts a pointer X coordinate into a candidate date. It reports
// false when the axis or the frame cannot be projected onto.
func (a Axis) Project(x float64, f Frame) (time.Time, bool) {
	if a.Empty() || f.Width <= 0 {
		return time.Time{}, false
	}
	percent := (x - f.Left) / f.Width * 100
	return a.DateAt(percent), true
}
