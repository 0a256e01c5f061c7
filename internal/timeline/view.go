// Package timeline assembles the derived view of an item collection: axis,
// positions, lanes, markers, and summary stats.
package timeline

import (
	"errors"

	"github.com/fentz26/timeline/internal/geometry"
	"github.com/fentz26/timeline/internal/lanes"
	"github.com/fentz26/timeline/internal/markers"
	"github.com/fentz26/timeline/internal/models"
)

// Options controls how a view is built.
type Options struct {
	Strict bool
}

// Stats summarizes a view.
type Stats struct {
	Items     int    `json:"totalItems"`
	Lanes     int    `json:"totalLanes"`
	TotalDays int    `json:"totalDays"`
	Start     string `json:"startFormatted"`
	End       string `json:"endFormatted"`
}

// Problem describes an item that was left out of the layout.
type Problem struct {
	ItemID string `json:"itemId"`
	Error  string `json:"error"`
}

// View is everything a renderer needs for one revision of the items.
type View struct {
	Revision int64
	Layout   geometry.Layout
	Lanes    []lanes.Lane
	Markers  []markers.Marker
	Months   []markers.Month
	Stats    Stats
	Problems []Problem
}

// Build computes a fresh view. Malformed items become Problems rather than
// failing the whole view.
func Build(revision int64, items []models.Item, opts Options) View {
	layout, err := geometry.Compute(items)
	v := View{
		Revision: revision,
		Layout:   layout,
		Lanes:    lanes.Assign(layout.Items, lanes.Options{Strict: opts.Strict}),
		Markers:  markers.Generate(layout.StartDate, layout.EndDate, layout.TotalDays),
		Months:   markers.Months(layout.StartDate, layout.EndDate),
		Problems: problems(err),
	}
	v.Stats = Stats{
		Items:     len(items),
		Lanes:     len(v.Lanes),
		TotalDays: layout.TotalDays,
	}
	if !layout.Empty() {
		v.Stats.Start = models.FormatDate(*layout.StartDate)
		v.Stats.End = models.FormatDate(*layout.EndDate)
	}
	return v
}

// Axis returns the shared axis of the view.
func (v View) Axis() geometry.Axis {
	return v.Layout.Axis()
}

// Find returns the positioned item with id and its lane index.
func (v View) Find(id string) (geometry.PositionedItem, int, bool) {
	for li, l := range v.Lanes {
		for _, it := range l.Items {
			if it.ID == id {
				return it, li, true
			}
		}
	}
	return geometry.PositionedItem{}, -1, false
}

func problems(err error) []Problem {
	if err == nil {
		return nil
	}
	var out []Problem
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			out = append(out, problem(e))
		}
		return out
	}
	return []Problem{problem(err)}
}

func problem(err error) Problem {
	var itemErr *geometry.ItemError
	if errors.As(err, &itemErr) {
		return Problem{ItemID: itemErr.ID, Error: itemErr.Err.Error()}
	}
	return Problem{Error: err.Error()}
}
