// Package markers generates date tick marks and month header columns for an axis.
package markers

import (
	"math"
	"time"

	"github.com/fentz26/timeline/internal/models"
)

// maxMarkers bounds the number of evenly spaced ticks before the end marker.
const maxMarkers = 12

// Marker is one labeled tick on the date axis.
type Marker struct {
	Date     time.Time `json:"-"`
	Position float64   `json:"position"`
	Label    string    `json:"label"`
}

// Generate returns evenly spaced markers from start to end. The end date is
// always marked at position 100. A missing bound or a non-positive day count
// yields no markers.
func Generate(start, end *time.Time, totalDays int) []Marker {
	if start == nil || end == nil || totalDays <= 0 {
		return []Marker{}
	}
	from, to := models.Day(*start), models.Day(*end)
	raw := models.DaysBetween(from, to)
	if raw <= 0 {
		return []Marker{marker(to, 100)}
	}

	interval := int(math.Ceil(float64(totalDays) / maxMarkers))
	var out []Marker
	for offset := 0; offset <= totalDays; offset += interval {
		d := models.AddDays(from, offset)
		if d.After(to) {
			break
		}
		out = append(out, marker(d, float64(offset)/float64(raw)*100))
	}
	if last := out[len(out)-1]; !last.Date.Equal(to) {
		out = append(out, marker(to, 100))
	}
	return out
}

func marker(d time.Time, position float64) Marker {
	return Marker{Date: d, Position: position, Label: models.FormatDate(d)}
}
