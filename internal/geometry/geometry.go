// Package geometry maps dated items onto a shared date axis.
//
// Positions are percentages of the axis width, so they are independent of
// zoom and of the rendering surface. Compute is pure: the same items always
// produce the same layout.
package geometry

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/fentz26/timeline/internal/models"
)

// ErrInvertedRange indicates an item whose end precedes its start.
var ErrInvertedRange = errors.New("end date before start date")

// ItemError reports an item that could not be placed on the axis.
type ItemError struct {
	ID  string
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %s: %v", e.ID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Position is the normalized placement of one item.
type Position struct {
	Left              float64 `json:"left"`
	Width             float64 `json:"width"`
	OriginalWidth     float64 `json:"originalWidth"`
	DaysFromStart     int     `json:"daysFromStart"`
	Duration          int     `json:"duration"`
	NeedsMultiLine    bool    `json:"needsMultiLine"`
	IsShortDuration   bool    `json:"isShortDuration"`
	RecommendedHeight int     `json:"recommendedHeight"`
}

// Relaxed reports whether relaxation widened the item.
func (p Position) Relaxed() bool {
	return p.Width > p.OriginalWidth
}

// PositionedItem is an item with its derived placement.
type PositionedItem struct {
	models.Item
	Position Position `json:"position"`

	StartAt time.Time `json:"-"`
	EndAt   time.Time `json:"-"`
}

// Layout is the result of placing a collection of items on one axis.
type Layout struct {
	Items     []PositionedItem
	StartDate *time.Time
	EndDate   *time.Time
	TotalDays int
}

// Empty reports whether there was nothing to lay out.
func (l Layout) Empty() bool {
	return l.StartDate == nil || l.EndDate == nil
}

// Axis returns the axis the layout was computed on.
func (l Layout) Axis() Axis {
	if l.Empty() {
		return Axis{}
	}
	return NewAxis(*l.StartDate, *l.EndDate)
}

// Compute derives the axis and every item's position. Items with malformed
// or inverted dates are left out and reported as *ItemError values joined
// into the returned error; the remaining items are still laid out.
func Compute(items []models.Item) (Layout, error) {
	if len(items) == 0 {
		return Layout{Items: []PositionedItem{}}, nil
	}

	var errs []error
	placed := make([]PositionedItem, 0, len(items))
	for _, it := range items {
		start, end, err := it.Dates()
		if err != nil {
			errs = append(errs, &ItemError{ID: it.ID, Err: err})
			continue
		}
		if end.Before(start) {
			errs = append(errs, &ItemError{ID: it.ID, Err: ErrInvertedRange})
			continue
		}
		placed = append(placed, PositionedItem{Item: it, StartAt: start, EndAt: end})
	}
	if len(placed) == 0 {
		return Layout{Items: []PositionedItem{}}, errors.Join(errs...)
	}

	axisStart, axisEnd := placed[0].StartAt, placed[0].EndAt
	for _, p := range placed[1:] {
		if p.StartAt.Before(axisStart) {
			axisStart = p.StartAt
		}
		if p.EndAt.After(axisEnd) {
			axisEnd = p.EndAt
		}
	}
	axis := NewAxis(axisStart, axisEnd)

	for i := range placed {
		p := &placed[i]
		left, width := axis.Span(p.StartAt, p.EndAt)
		pos := Position{
			Left:          left,
			Width:         width,
			OriginalWidth: width,
			DaysFromStart: models.DaysBetween(axis.Start, p.StartAt),
			Duration:      models.DaysBetween(p.StartAt, p.EndAt) + 1,
		}
		p.Position = Relax(pos, utf8.RuneCountInString(p.Name))
	}

	return Layout{
		Items:     placed,
		StartDate: &axis.Start,
		EndDate:   &axis.End,
		TotalDays: axis.TotalDays(),
	}, errors.Join(errs...)
}
