package drag

import (
	"errors"
	"testing"

	"github.com/fentz26/timeline/internal/geometry"
	"github.com/fentz26/timeline/internal/models"
)

type fakeSurface struct {
	axis  geometry.Axis
	frame geometry.Frame
	lost  bool
}

func (s *fakeSurface) Axis() geometry.Axis { return s.axis }

func (s *fakeSurface) Frame() (geometry.Frame, bool) {
	return s.frame, !s.lost
}

type call struct {
	id, a, b string
}

type recorder struct {
	reschedules []call
	renames     []call
	err         error
}

func (r *recorder) RescheduleItem(id, start, end string) error {
	if r.err != nil {
		return r.err
	}
	r.reschedules = append(r.reschedules, call{id, start, end})
	return nil
}

func (r *recorder) RenameItem(id, name string) error {
	if r.err != nil {
		return r.err
	}
	r.renames = append(r.renames, call{id: id, a: name})
	return nil
}

// newFixture lays out 2024-02-01..2024-03-02 (30-day raw span) on a 300-unit
// track so every 10 units is one day.
func newFixture(t *testing.T, it models.Item) (*Controller, *fakeSurface, *recorder, *Bus) {
	t.Helper()
	start, _ := models.ParseDate("2024-02-01")
	end, _ := models.ParseDate("2024-03-02")
	surface := &fakeSurface{
		axis:  geometry.NewAxis(start, end),
		frame: geometry.Frame{Left: 0, Width: 300},
	}
	rec := &recorder{}
	bus := NewBus()
	return NewController(it, bus, surface, rec, rec), surface, rec, bus
}

func xFor(t *testing.T, s string) float64 {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	base, _ := models.ParseDate("2024-02-01")
	return float64(models.DaysBetween(base, d)) * 10
}

var sample = models.Item{ID: "1", Name: "Build", Start: "2024-02-10", End: "2024-02-14"}

func TestDerive(t *testing.T) {
	start, _ := models.ParseDate("2024-03-01")
	end, _ := models.ParseDate("2024-03-05")

	tests := []struct {
		name      string
		mode      Mode
		candidate string
		wantStart string
		wantEnd   string
	}{
		{"move keeps duration", Move, "2024-03-10", "2024-03-10", "2024-03-14"},
		{"resize start earlier", ResizeStart, "2024-02-25", "2024-02-25", "2024-03-05"},
		{"resize start onto end clamps", ResizeStart, "2024-03-05", "2024-03-04", "2024-03-05"},
		{"resize start past end clamps", ResizeStart, "2024-03-09", "2024-03-04", "2024-03-05"},
		{"resize end later", ResizeEnd, "2024-03-08", "2024-03-01", "2024-03-08"},
		{"resize end before start clamps", ResizeEnd, "2024-02-28", "2024-03-01", "2024-03-02"},
		{"resize end onto start clamps", ResizeEnd, "2024-03-01", "2024-03-01", "2024-03-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := models.ParseDate(tt.candidate)
			got := derive(tt.mode, start, end, d)
			if models.FormatDate(got.Start) != tt.wantStart || models.FormatDate(got.End) != tt.wantEnd {
				t.Errorf("expected %s..%s, got %s..%s", tt.wantStart, tt.wantEnd,
					models.FormatDate(got.Start), models.FormatDate(got.End))
			}
		})
	}
}

func TestResizeEndBeforeStartCommitsClamp(t *testing.T) {
	it := models.Item{ID: "x", Name: "Window", Start: "2024-02-20", End: "2024-02-24"}
	c, _, rec, bus := newFixture(t, it)

	if err := c.Begin(ResizeEnd, xFor(t, "2024-02-24")); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	bus.Move(xFor(t, "2024-02-17"))
	committed, err := bus.Release()
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !committed {
		t.Fatal("expected a commit")
	}
	want := call{"x", "2024-02-20", "2024-02-21"}
	if len(rec.reschedules) != 1 || rec.reschedules[0] != want {
		t.Errorf("expected %v, got %v", want, rec.reschedules)
	}
}

func TestReleaseWithoutMoveDoesNotCommit(t *testing.T) {
	c, _, rec, bus := newFixture(t, sample)
	if err := c.Begin(Move, 100); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	committed, err := c.Release()
	if err != nil || committed {
		t.Errorf("expected no commit, got %v, %v", committed, err)
	}
	if len(rec.reschedules) != 0 {
		t.Errorf("unexpected reschedule: %v", rec.reschedules)
	}
	if bus.Active() {
		t.Error("expected bus released")
	}
	if c.Dragging() {
		t.Error("expected idle controller")
	}
}

func TestLostContextProducesNoCandidate(t *testing.T) {
	c, surface, rec, bus := newFixture(t, sample)
	surface.lost = true
	if err := c.Begin(Move, 100); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	bus.Move(150)
	if c.Session().Candidate != nil {
		t.Fatal("expected no candidate without a frame")
	}

	surface.lost = false
	bus.Move(xFor(t, "2024-02-12"))
	surface.lost = true
	bus.Move(250)

	if _, err := bus.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	want := call{"1", "2024-02-12", "2024-02-16"}
	if len(rec.reschedules) != 1 || rec.reschedules[0] != want {
		t.Errorf("expected last valid candidate %v, got %v", want, rec.reschedules)
	}
}

func TestEmptyAxisProducesNoCandidate(t *testing.T) {
	c, surface, rec, bus := newFixture(t, sample)
	surface.axis = geometry.Axis{}
	if err := c.Begin(ResizeEnd, 100); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	bus.Move(200)
	if committed, _ := bus.Release(); committed {
		t.Error("expected no commit")
	}
	if len(rec.reschedules) != 0 {
		t.Errorf("unexpected reschedule: %v", rec.reschedules)
	}
}

func TestCommitDependsOnlyOnFinalMove(t *testing.T) {
	for _, mode := range []Mode{Move, ResizeStart, ResizeEnd} {
		t.Run(mode.String(), func(t *testing.T) {
			final := xFor(t, "2024-02-18") + 3

			short, _, recShort, busShort := newFixture(t, sample)
			if err := short.Begin(mode, 120); err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			busShort.Move(final)
			busShort.Release()

			long, _, recLong, busLong := newFixture(t, sample)
			if err := long.Begin(mode, 120); err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			for _, x := range []float64{5, 290, 140, -40, 77, 310} {
				busLong.Move(x)
			}
			busLong.Move(final)
			busLong.Release()

			if len(recShort.reschedules) != 1 || len(recLong.reschedules) != 1 {
				t.Fatalf("expected one commit each, got %d and %d", len(recShort.reschedules), len(recLong.reschedules))
			}
			if recShort.reschedules[0] != recLong.reschedules[0] {
				t.Errorf("expected identical commits, got %v and %v", recShort.reschedules[0], recLong.reschedules[0])
			}
		})
	}
}

func TestMoveIgnoresGrabPoint(t *testing.T) {
	for _, origin := range []string{"2024-02-10", "2024-02-12", "2024-02-14"} {
		c, _, rec, bus := newFixture(t, sample)
		x := xFor(t, origin)
		if err := c.Begin(Move, x); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		if c.Session().OriginX != x {
			t.Errorf("expected origin %v, got %v", x, c.Session().OriginX)
		}
		bus.Move(xFor(t, "2024-02-20"))
		bus.Release()

		want := call{"1", "2024-02-20", "2024-02-24"}
		if len(rec.reschedules) != 1 || rec.reschedules[0] != want {
			t.Errorf("grab at %s: expected %v, got %v", origin, want, rec.reschedules)
		}
	}
}

func TestPreview(t *testing.T) {
	c, _, _, bus := newFixture(t, sample)
	if err := c.Begin(Move, 100); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	bus.Move(0)
	p := c.Session().Preview
	if p.Left != 0 || p.OutOfBounds {
		t.Errorf("unexpected preview at axis start: %+v", p)
	}
	if got := models.FormatDate(p.End); got != "2024-02-05" {
		t.Errorf("expected preview end 2024-02-05, got %s", got)
	}

	bus.Move(-50)
	if !c.Session().Preview.OutOfBounds {
		t.Error("expected out-of-bounds preview left of the axis")
	}

	bus.Move(290)
	if !c.Session().Preview.OutOfBounds {
		t.Error("expected out-of-bounds preview past the axis end")
	}
}

func TestBeginGuards(t *testing.T) {
	c, _, _, bus := newFixture(t, sample)
	other := NewController(models.Item{ID: "2", Name: "Other", Start: "2024-02-01", End: "2024-02-02"},
		bus, c.surface, &recorder{}, &recorder{})

	if err := c.Editor().Begin(); err != nil {
		t.Fatalf("editor Begin failed: %v", err)
	}
	if err := c.Begin(Move, 0); !errors.Is(err, ErrEditing) {
		t.Errorf("expected ErrEditing, got %v", err)
	}
	c.Editor().Cancel()

	if err := c.Begin(Move, 0); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := c.Begin(ResizeEnd, 0); !errors.Is(err, ErrDragging) {
		t.Errorf("expected ErrDragging, got %v", err)
	}
	if err := c.Editor().Begin(); !errors.Is(err, ErrDragging) {
		t.Errorf("expected editor to refuse while dragging, got %v", err)
	}
	if err := other.Begin(Move, 0); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	c.Close()
	if bus.Active() {
		t.Error("expected Close to release the bus")
	}
	if err := other.Begin(Move, 0); err != nil {
		t.Errorf("expected bus free after Close, got %v", err)
	}
}

func TestBeginInvalidItem(t *testing.T) {
	c, _, _, bus := newFixture(t, models.Item{ID: "bad", Start: "nope", End: "2024-01-01"})
	if err := c.Begin(Move, 0); !errors.Is(err, models.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if bus.Active() {
		t.Error("bus should stay idle")
	}
	if err := c.Begin(Mode(9), 0); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestReleaseErrorStillUnsubscribes(t *testing.T) {
	c, _, rec, bus := newFixture(t, sample)
	rec.err = errors.New("store down")
	if err := c.Begin(ResizeStart, 0); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	bus.Move(50)
	if _, err := bus.Release(); err == nil {
		t.Error("expected reschedule error")
	}
	if bus.Active() || c.Dragging() {
		t.Error("expected gesture torn down")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Move, ResizeStart, ResizeEnd} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("spin"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}
