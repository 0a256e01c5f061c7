package timeline

import (
	"github.com/fentz26/timeline/internal/geometry"
	"github.com/fentz26/timeline/internal/markers"
	"github.com/fentz26/timeline/internal/models"
)

// Document is the JSON form of a View.
type Document struct {
	Revision  int64                     `json:"revision"`
	StartDate *string                   `json:"startDate"`
	EndDate   *string                   `json:"endDate"`
	TotalDays int                       `json:"totalDays"`
	Items     []geometry.PositionedItem `json:"items"`
	Lanes     []LaneDocument            `json:"lanes"`
	Markers   []markers.Marker          `json:"markers"`
	Months    []markers.Month           `json:"months"`
	Stats     Stats                     `json:"stats"`
	Problems  []Problem                 `json:"problems,omitempty"`
}

// LaneDocument is the JSON form of one lane.
type LaneDocument struct {
	Height int                       `json:"height"`
	Items  []geometry.PositionedItem `json:"items"`
}

// Document converts v into its JSON form.
func (v View) Document() Document {
	doc := Document{
		Revision:  v.Revision,
		TotalDays: v.Layout.TotalDays,
		Items:     v.Layout.Items,
		Lanes:     make([]LaneDocument, 0, len(v.Lanes)),
		Markers:   v.Markers,
		Months:    v.Months,
		Stats:     v.Stats,
		Problems:  v.Problems,
	}
	if doc.Items == nil {
		doc.Items = []geometry.PositionedItem{}
	}
	if !v.Layout.Empty() {
		start, end := models.FormatDate(*v.Layout.StartDate), models.FormatDate(*v.Layout.EndDate)
		doc.StartDate, doc.EndDate = &start, &end
	}
	for _, l := range v.Lanes {
		doc.Lanes = append(doc.Lanes, LaneDocument{Height: l.Height(), Items: l.Items})
	}
	return doc
}
