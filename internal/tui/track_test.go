package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/fentz26/timeline/internal/drag"
	"github.com/fentz26/timeline/internal/geometry"
	"github.com/fentz26/timeline/internal/lanes"
	"github.com/fentz26/timeline/internal/markers"
	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/timeline"
)

func TestTrack(t *testing.T) {
	tr := newTrack(102, 1, 40)
	if tr.visible != 100 || tr.width != 100 || tr.scroll != 0 {
		t.Fatalf("unexpected track %+v", tr)
	}
	if f := tr.frame(); f.Left != 1 || f.Width != 100 {
		t.Errorf("unexpected frame %+v", f)
	}

	zoomed := newTrack(102, 2, 500)
	if zoomed.width != 200 || zoomed.scroll != 100 {
		t.Errorf("expected scroll clamped to 100, got %+v", zoomed)
	}
	if from, to := zoomed.bar(50, 10); from != 1 || to != 21 {
		t.Errorf("bar = [%d, %d), want [1, 21)", from, to)
	}
	if from, to := zoomed.clip(zoomed.bar(0, 10)); from != to {
		t.Errorf("expected scrolled-off bar to clip empty, got [%d, %d)", from, to)
	}

	if from, to := tr.bar(50, 0.1); to != from+1 {
		t.Errorf("expected a bar at least one column wide, got [%d, %d)", from, to)
	}
}

func positioned(id, name string, left, width float64) geometry.PositionedItem {
	return geometry.PositionedItem{
		Item:     models.Item{ID: id, Name: name},
		Position: geometry.Position{Left: left, Width: width, OriginalWidth: width, RecommendedHeight: 60},
	}
}

func TestHitTest(t *testing.T) {
	tr := newTrack(102, 1, 0)
	ls := []lanes.Lane{
		{Items: []geometry.PositionedItem{positioned("a", "A", 0, 10), positioned("b", "B", 50, 2)}},
		{Items: []geometry.PositionedItem{positioned("c", "C", 20, 30)}},
	}

	tests := []struct {
		name   string
		x, row int
		id     string
		mode   drag.Mode
	}{
		{"left edge", 1, 0, "a", drag.ResizeStart},
		{"middle", 5, 0, "a", drag.Move},
		{"right edge", 10, 0, "a", drag.ResizeEnd},
		{"narrow bar", 51, 0, "b", drag.Move},
		{"second lane", 30, 1, "c", drag.Move},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := hitTest(ls, tr, tt.x, tt.row)
			if !ok {
				t.Fatal("expected a hit")
			}
			if h.item.ID != tt.id || h.mode != tt.mode {
				t.Errorf("hit %s/%v, want %s/%v", h.item.ID, h.mode, tt.id, tt.mode)
			}
		})
	}

	for _, miss := range [][2]int{{30, 0}, {5, 1}, {5, 2}} {
		if _, ok := hitTest(ls, tr, miss[0], miss[1]); ok {
			t.Errorf("expected no hit at %v", miss)
		}
	}
}

func TestLaneRows(t *testing.T) {
	long := positioned("l", strings.Repeat("n", 45), 0, 10)
	long.Position.NeedsMultiLine = true
	long.Position.RecommendedHeight = 85

	if got := laneRows(lanes.Lane{Items: []geometry.PositionedItem{positioned("a", "A", 0, 10)}}); got != 1 {
		t.Errorf("laneRows = %d, want 1", got)
	}
	l := lanes.Lane{Items: []geometry.PositionedItem{long}}
	if got := laneRows(l); got != 2 {
		t.Errorf("laneRows = %d, want 2", got)
	}

	rows := renderLane(l, newTrack(102, 1, 0), 102, laneState{})
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	if !strings.Contains(rows[0], "nnnnnnnnnn") || !strings.Contains(rows[1], "n") {
		t.Errorf("expected the name wrapped over both rows: %q", rows)
	}
}

func TestRenderLanePreview(t *testing.T) {
	it := positioned("a", "Alpha", 0, 10)
	s := &drag.Session{ItemID: "a", Candidate: &drag.Candidate{}}
	s.Preview.Left, s.Preview.Width = 40, 10

	rows := renderLane(lanes.Lane{Items: []geometry.PositionedItem{it}}, newTrack(102, 1, 0), 102, laneState{dragging: s})
	if idx := strings.Index(rows[0], "Alpha"); idx != 41 {
		t.Errorf("expected preview drawn at column 41, got %d", idx)
	}
}

func TestRenderMonths(t *testing.T) {
	start := time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	axis := geometry.NewAxis(start, end)

	rows := renderMonths(markers.Months(&start, &end), axis, newTrack(122, 1, 0), 122)
	if len(rows) != 2 {
		t.Fatalf("expected month and year rows, got %d", len(rows))
	}
	for _, want := range []string{"November", "December", "January", "February"} {
		if !strings.Contains(rows[0], want) {
			t.Errorf("month row missing %q: %q", want, rows[0])
		}
	}
	if !strings.Contains(rows[1], "2023") || !strings.Contains(rows[1], "2024") {
		t.Errorf("year row missing years: %q", rows[1])
	}

	single := renderMonths(markers.Months(&end, &end), geometry.NewAxis(end, end), newTrack(122, 1, 0), 122)
	if len(single) != 1 {
		t.Errorf("expected no year row within one year, got %d rows", len(single))
	}
}

func TestRenderMarkers(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	ms := markers.Generate(&start, &end, 101)

	row := renderMarkers(ms, newTrack(102, timeline.Zoom(1), 0), 102)
	if !strings.Contains(row, "Jan 1") || !strings.Contains(row, "Apr 10") {
		t.Errorf("expected first and last markers: %q", row)
	}
	if n := len([]rune(row)); n != 102 {
		t.Errorf("expected a full-width row, got %d", n)
	}
}
