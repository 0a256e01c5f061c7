// Package lanes packs positioned items into non-overlapping horizontal lanes.
package lanes

import (
	"sort"

	"github.com/fentz26/timeline/internal/geometry"
)

const (
	minContentHeight = 80
	lanePadding      = 70
	visualGap        = 1.0
)

// Options controls lane packing.
type Options struct {
	// Strict additionally requires the relaxed bars not to touch visually.
	Strict bool
}

// Lane is one horizontal track of items ordered by start date.
type Lane struct {
	Items []geometry.PositionedItem
}

// Height returns the pixel height of the lane derived from its tallest item.
func (l Lane) Height() int {
	tallest := 0
	for _, it := range l.Items {
		if it.Position.RecommendedHeight > tallest {
			tallest = it.Position.RecommendedHeight
		}
	}
	if tallest < minContentHeight {
		tallest = minContentHeight
	}
	return tallest + lanePadding
}

func (l Lane) fits(it geometry.PositionedItem, strict bool) bool {
	last := l.Items[len(l.Items)-1]
	if !last.EndAt.Before(it.StartAt) {
		return false
	}
	if strict && last.Position.Left+last.Position.Width+visualGap > it.Position.Left {
		return false
	}
	return true
}

// Assign places items greedily into the first lane whose last item ends
// before the new item starts. Items with identical start dates keep their
// input order. The input slice is left untouched.
func Assign(items []geometry.PositionedItem, opts Options) []Lane {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]geometry.PositionedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartAt.Before(sorted[j].StartAt)
	})

	var lanes []Lane
	for _, it := range sorted {
		placed := false
		for i := range lanes {
			if lanes[i].fits(it, opts.Strict) {
				lanes[i].Items = append(lanes[i].Items, it)
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, Lane{Items: []geometry.PositionedItem{it}})
		}
	}
	return lanes
}

// TotalHeight sums the heights of all lanes.
func TotalHeight(lanes []Lane) int {
	total := 0
	for _, l := range lanes {
		total += l.Height()
	}
	return total
}
