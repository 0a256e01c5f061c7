package markers

import (
	"math"
	"time"
)

// Month is one column of the month header.
type Month struct {
	Start    time.Time `json:"start"`
	Label    string    `json:"label"`
	Year     int       `json:"year"`
	ShowYear bool      `json:"showYear"`
}

// Months lists every calendar month touched by [start, end]. The year is
// shown on every column when the range crosses a year boundary.
func Months(start, end *time.Time) []Month {
	if start == nil || end == nil || end.Before(*start) {
		return []Month{}
	}
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var out []Month
	for !cur.After(last) {
		out = append(out, Month{Start: cur, Label: cur.Month().String(), Year: cur.Year()})
		cur = cur.AddDate(0, 1, 0)
	}
	if out[0].Year != out[len(out)-1].Year {
		for i := range out {
			out[i].ShowYear = true
		}
	}
	return out
}

// HeaderFontSize scales the month label size inversely with zoom.
func HeaderFontSize(zoom float64) float64 {
	return scaled(14, zoom, 10, 20)
}

// YearFontSize scales the year label size inversely with zoom.
func YearFontSize(zoom float64) float64 {
	return scaled(12, zoom, 8, 14)
}

func scaled(base, zoom, lo, hi float64) float64 {
	if zoom <= 0 {
		zoom = 1
	}
	return math.Max(lo, math.Min(hi, base/math.Sqrt(zoom)))
}
