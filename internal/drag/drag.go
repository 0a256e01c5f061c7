// Package drag implements the per-item drag/resize and rename state machines.
//
// A Controller is driven from a single goroutine (the UI update loop). Only
// the Bus is safe for concurrent use.
package drag

import (
	"errors"
	"fmt"
	"time"

	"github.com/fentz26/timeline/internal/geometry"
	"github.com/fentz26/timeline/internal/models"
)

var (
	// ErrEditing is returned when a drag starts while the item is being renamed.
	ErrEditing = errors.New("item is being renamed")
	// ErrDragging is returned when a gesture is already in progress.
	ErrDragging = errors.New("drag already in progress")
	// ErrBusy is returned when another item holds the pointer.
	ErrBusy = errors.New("pointer held by another item")
	// ErrUnknownMode is returned for an unrecognized drag mode.
	ErrUnknownMode = errors.New("unknown drag mode")
)

// Mode selects which edge of an item a gesture changes.
type Mode int

const (
	Move Mode = iota + 1
	ResizeStart
	ResizeEnd
)

func (m Mode) String() string {
	switch m {
	case Move:
		return "move"
	case ResizeStart:
		return "resize-start"
	case ResizeEnd:
		return "resize-end"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "move":
		return Move, nil
	case "resize-start":
		return ResizeStart, nil
	case "resize-end":
		return ResizeEnd, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Rescheduler accepts committed date changes.
type Rescheduler interface {
	RescheduleItem(id, start, end string) error
}

// Renamer accepts committed name changes.
type Renamer interface {
	RenameItem(id, name string) error
}

// Surface exposes the live axis and the on-screen track the pointer moves
// over. Frame reports false when the track is not currently laid out.
type Surface interface {
	Axis() geometry.Axis
	Frame() (geometry.Frame, bool)
}

// Candidate is a provisional date range computed from the pointer.
type Candidate struct {
	Start time.Time
	End   time.Time
}

// Preview is the raw placement of the current candidate.
type Preview struct {
	Candidate
	Left        float64
	Width       float64
	OutOfBounds bool
}

// Session is the state of one in-flight gesture.
type Session struct {
	ItemID    string
	Mode      Mode
	OriginX   float64 // pointer X at Begin; moves are absolute and do not read it
	Start     time.Time
	End       time.Time
	Candidate *Candidate
	Preview   Preview
}

// Controller owns the drag and rename state of one item.
type Controller struct {
	item    models.Item
	bus     *Bus
	surface Surface
	sched   Rescheduler
	editor  *Editor
	session *Session
}

// NewController builds an idle controller for item.
func NewController(item models.Item, bus *Bus, surface Surface, sched Rescheduler, ren Renamer) *Controller {
	c := &Controller{item: item, bus: bus, surface: surface, sched: sched}
	c.editor = &Editor{ctrl: c, renamer: ren}
	return c
}

// Item returns the item this controller was built for.
func (c *Controller) Item() models.Item {
	return c.item
}

// Editor returns the rename editor bound to this controller.
func (c *Controller) Editor() *Editor {
	return c.editor
}

// Dragging reports whether a gesture is in progress.
func (c *Controller) Dragging() bool {
	return c.session != nil
}

// Session returns the in-flight gesture, or nil when idle.
func (c *Controller) Session() *Session {
	return c.session
}

// Begin starts a gesture at pointer position originX.
func (c *Controller) Begin(mode Mode, originX float64) error {
	if c.editor.Editing() {
		return ErrEditing
	}
	if c.session != nil {
		return ErrDragging
	}
	if mode < Move || mode > ResizeEnd {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	start, end, err := c.item.Dates()
	if err != nil {
		return fmt.Errorf("begin drag: %w", err)
	}
	if err := c.bus.Subscribe(c); err != nil {
		return err
	}
	c.session = &Session{
		ItemID:  c.item.ID,
		Mode:    mode,
		OriginX: originX,
		Start:   start,
		End:     end,
	}
	return nil
}

// Move recomputes the candidate from pointer position x. A move with no
// projectable axis leaves the previous candidate in place.
func (c *Controller) Move(x float64) {
	s := c.session
	if s == nil {
		return
	}
	axis := c.surface.Axis()
	frame, ok := c.surface.Frame()
	if !ok {
		return
	}
	date, ok := axis.Project(x, frame)
	if !ok {
		return
	}
	cand := derive(s.Mode, s.Start, s.End, date)
	left, width := axis.Span(cand.Start, cand.End)
	s.Candidate = &cand
	s.Preview = Preview{
		Candidate:   cand,
		Left:        left,
		Width:       width,
		OutOfBounds: left < 0 || left+width > 100,
	}
}

// Release ends the gesture and commits the latest candidate if one was
// ever computed. The pointer subscription is dropped on every path.
func (c *Controller) Release() (bool, error) {
	s := c.session
	c.session = nil
	c.bus.Unsubscribe(c)
	if s == nil || s.Candidate == nil {
		return false, nil
	}
	start, end := models.FormatDate(s.Candidate.Start), models.FormatDate(s.Candidate.End)
	if err := c.sched.RescheduleItem(s.ItemID, start, end); err != nil {
		return false, fmt.Errorf("reschedule %s: %w", s.ItemID, err)
	}
	c.item.Start, c.item.End = start, end
	return true, nil
}

// Close tears down any gesture or edit without committing.
func (c *Controller) Close() {
	c.session = nil
	c.bus.Unsubscribe(c)
	c.editor.Cancel()
}

func derive(mode Mode, start, end, date time.Time) Candidate {
	switch mode {
	case ResizeStart:
		if !date.Before(end) {
			date = models.AddDays(end, -1)
		}
		return Candidate{Start: date, End: end}
	case ResizeEnd:
		if !date.After(start) {
			date = models.AddDays(start, 1)
		}
		return Candidate{Start: start, End: date}
	default:
		return Candidate{Start: date, End: models.AddDays(date, models.DaysBetween(start, end))}
	}
}
