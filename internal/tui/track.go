package tui

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/timeline/internal/drag"
	"github.com/fentz26/timeline/internal/geometry"
	"github.com/fentz26/timeline/internal/lanes"
	"github.com/fentz26/timeline/internal/markers"
	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/timeline"
)

// gutter is the blank column on each side of the track.
const gutter = 1

// baseLaneHeight is the height of a lane whose items all fit on one line.
const baseLaneHeight = 150

// Cell styles used on a canvas.
const (
	cellPlain = iota
	cellBar
	cellSelected
	cellPreview
	cellOutOfBounds
	cellMarker
	cellMonth
	cellYear
)

var cellStyles = []lipgloss.Style{
	cellPlain:       lipgloss.NewStyle(),
	cellBar:         lipgloss.NewStyle().Background(secondaryColor).Foreground(fgColor),
	cellSelected:    lipgloss.NewStyle().Background(primaryColor).Foreground(fgColor).Bold(true),
	cellPreview:     lipgloss.NewStyle().Background(cyanColor).Foreground(bgColor),
	cellOutOfBounds: lipgloss.NewStyle().Background(errorColor).Foreground(fgColor),
	cellMarker:      lipgloss.NewStyle().Foreground(mutedColor),
	cellMonth:       lipgloss.NewStyle().Foreground(cyanColor).Bold(true),
	cellYear:        lipgloss.NewStyle().Foreground(warningColor),
}

// track is the on-screen placement of the axis.
type track struct {
	visible int // columns available between the gutters
	width   int // zoomed track width in columns
	scroll  int // columns scrolled off the left edge
}

func newTrack(screenWidth int, zoom timeline.Zoom, scroll int) track {
	visible := screenWidth - 2*gutter
	if visible < 1 {
		visible = 1
	}
	t := track{visible: visible, width: zoom.Width(visible)}
	t.scroll = clampInt(scroll, 0, t.maxScroll())
	return t
}

func (t track) maxScroll() int {
	if t.width <= t.visible {
		return 0
	}
	return t.width - t.visible
}

// frame is the track extent in screen columns, as the drag engine sees it.
func (t track) frame() geometry.Frame {
	return geometry.Frame{Left: float64(gutter - t.scroll), Width: float64(t.width)}
}

// column maps an axis percentage to a screen column.
func (t track) column(percent float64) int {
	return gutter - t.scroll + int(math.Round(percent/100*float64(t.width)))
}

// bar returns the half-open screen column range [from, to) of a span.
func (t track) bar(left, width float64) (int, int) {
	from := t.column(left)
	to := t.column(left + width)
	if to <= from {
		to = from + 1
	}
	return from, to
}

// clip limits [from, to) to the visible part of the track. The final day
// of the axis starts at 100% and spills into the right gutter.
func (t track) clip(from, to int) (int, int) {
	lo, hi := gutter, gutter+t.visible+1
	if end := gutter - t.scroll + t.width + 1; end < hi {
		hi = end
	}
	return clampInt(from, lo, hi), clampInt(to, lo, hi)
}

// canvas is one styled terminal row.
type canvas struct {
	runes  []rune
	styles []int
}

func newCanvas(width int) *canvas {
	if width < 0 {
		width = 0
	}
	c := &canvas{runes: make([]rune, width), styles: make([]int, width)}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	return c
}

func (c *canvas) fill(from, to int, r rune, style int) {
	for i := max(from, 0); i < to && i < len(c.runes); i++ {
		c.runes[i] = r
		c.styles[i] = style
	}
}

// put writes s starting at col, never past limit. It returns the column
// after the last rune written.
func (c *canvas) put(col, limit int, s string, style int) int {
	if limit > len(c.runes) {
		limit = len(c.runes)
	}
	for _, r := range s {
		if col >= limit {
			break
		}
		if col >= 0 {
			c.runes[col] = r
			c.styles[col] = style
		}
		col++
	}
	return col
}

func (c *canvas) String() string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(c.runes); i++ {
		if i == len(c.runes) || c.styles[i] != c.styles[start] {
			b.WriteString(cellStyles[c.styles[start]].Render(string(c.runes[start:i])))
			start = i
		}
	}
	return b.String()
}

// laneRows is the number of terminal rows a lane occupies.
func laneRows(l lanes.Lane) int {
	if l.Height() > baseLaneHeight {
		return 2
	}
	return 1
}

// renderMonths draws the month header and, when the range spans years,
// a year row beneath it.
func renderMonths(months []markers.Month, axis geometry.Axis, t track, screenWidth int) []string {
	if len(months) == 0 || axis.Empty() {
		return []string{""}
	}
	row := newCanvas(screenWidth)
	var years *canvas
	if months[0].ShowYear {
		years = newCanvas(screenWidth)
	}

	lastYear := 0
	for i, m := range months {
		start := m.Start
		if start.Before(axis.Start) {
			start = axis.Start
		}
		left, _ := axis.Span(start, start)
		from := t.column(left)
		to := t.column(100) + 1
		if i+1 < len(months) {
			next, _ := axis.Span(months[i+1].Start, months[i+1].Start)
			to = t.column(next)
		}
		from, to = t.clip(from, to)
		if to-from < 2 {
			continue
		}
		label := m.Label
		if len(label) >= to-from {
			label = label[:3]
		}
		row.put(from, to-1, "│"+label, cellMonth)
		if years != nil && m.Year != lastYear {
			years.put(from, to-1, " "+strconv.Itoa(m.Year), cellYear)
			lastYear = m.Year
		}
	}
	out := []string{row.String()}
	if years != nil {
		out = append(out, years.String())
	}
	return out
}

// renderMarkers draws the date tick labels. The end marker is right-aligned
// on the last day and always wins; other ticks that would collide with a
// previous label are skipped.
func renderMarkers(ms []markers.Marker, t track, screenWidth int) string {
	row := newCanvas(screenWidth)
	_, stop := t.clip(0, screenWidth)
	if n := len(ms); n > 0 && ms[n-1].Position >= 100 {
		label := ms[n-1].Date.Format("Jan 2") + "┊"
		width := utf8.RuneCountInString(label)
		col := t.column(100) - width + 1
		if from, to := t.clip(col, col+width); from == col && to-from == width {
			row.put(col, to, label, cellMarker)
			stop = col - 1
		}
		ms = ms[:n-1]
	}

	next := 0
	for _, m := range ms {
		label := "┊" + m.Date.Format("Jan 2")
		width := utf8.RuneCountInString(label)
		col := t.column(m.Position)
		from, to := t.clip(col, col+width)
		if from != col || to-from < width || col < next || to > stop {
			continue
		}
		next = row.put(col, to, label, cellMarker) + 1
	}
	return row.String()
}

// laneState carries the interaction state a lane is drawn with.
type laneState struct {
	selected string
	dragging *drag.Session
}

// renderLane draws one lane as one or two rows of item bars.
func renderLane(l lanes.Lane, t track, screenWidth int, st laneState) []string {
	rows := make([]*canvas, laneRows(l))
	for i := range rows {
		rows[i] = newCanvas(screenWidth)
	}

	for _, it := range l.Items {
		left, width := it.Position.Left, it.Position.Width
		style := cellBar
		if it.ID == st.selected {
			style = cellSelected
		}
		if s := st.dragging; s != nil && s.ItemID == it.ID && s.Candidate != nil {
			left, width = s.Preview.Left, s.Preview.Width
			style = cellPreview
			if s.Preview.OutOfBounds {
				style = cellOutOfBounds
			}
		}

		from, to := t.clip(t.bar(left, width))
		if from >= to {
			continue
		}
		name := []rune(it.Name)
		for i, row := range rows {
			row.fill(from, to, ' ', style)
			if len(name) == 0 {
				continue
			}
			n := row.put(from, to, string(name), style) - from
			last := i == len(rows)-1 || !it.Position.NeedsMultiLine
			if last && n < len(name) && to-from > 1 {
				row.put(to-1, to, "…", style)
			}
			if last || n >= len(name) {
				name = nil
				continue
			}
			name = name[n:]
		}
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.String()
	}
	return out
}

// hit is the result of locating the pointer over the lanes.
type hit struct {
	item geometry.PositionedItem
	mode drag.Mode
}

// hitTest finds the item under column x on lane body row. Items later in a
// lane are drawn on top and win. The outermost cells of a bar at least three
// columns wide select a resize.
func hitTest(ls []lanes.Lane, t track, x, row int) (hit, bool) {
	for _, l := range ls {
		n := laneRows(l)
		if row >= n {
			row -= n
			continue
		}
		for i := len(l.Items) - 1; i >= 0; i-- {
			it := l.Items[i]
			from, to := t.clip(t.bar(it.Position.Left, it.Position.Width))
			if x < from || x >= to {
				continue
			}
			mode := drag.Move
			if to-from >= 3 {
				switch x {
				case from:
					mode = drag.ResizeStart
				case to - 1:
					mode = drag.ResizeEnd
				}
			}
			return hit{item: it, mode: mode}, true
		}
		return hit{}, false
	}
	return hit{}, false
}

// laneOf returns the index of the lane holding id and its position in it.
func laneOf(ls []lanes.Lane, id string) (int, int) {
	for li, l := range ls {
		for ii, it := range l.Items {
			if it.ID == id {
				return li, ii
			}
		}
	}
	return -1, -1
}

// describe is the detail line shown for an item.
func describe(it geometry.PositionedItem) string {
	s := it.Name + "  " + it.Start + " → " + it.End + "  (" + plural(it.Position.Duration, "day") + ")"
	if it.Position.Relaxed() {
		s += " (relaxed width)"
	}
	return s
}

func describeCandidate(s *drag.Session, name string) string {
	verb := "Moving"
	switch s.Mode {
	case drag.ResizeStart, drag.ResizeEnd:
		verb = "Resizing"
	}
	if s.Candidate == nil {
		return verb + " " + name
	}
	out := verb + " " + name + ": " + models.FormatDate(s.Candidate.Start) + " → " + models.FormatDate(s.Candidate.End)
	if s.Preview.OutOfBounds {
		out += " (extends the range)"
	}
	return out
}
