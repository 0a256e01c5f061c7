// Package tui provides the interactive terminal timeline.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/timeline/internal/drag"
	"github.com/fentz26/timeline/internal/geometry"
	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/store"
	"github.com/fentz26/timeline/internal/timeline"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	bgColor        = lipgloss.Color("#1F2937")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Padding(0, 1)

	onlineStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// footerRows is the number of rows below the lanes viewport.
const footerRows = 4

// Options configures the TUI.
type Options struct {
	Strict  bool
	Zoom    float64
	LogFile string
	// Source names the item source in the header.
	Source string
}

// App is the main TUI application model.
type App struct {
	backend     Backend
	views       *timeline.Cache
	view        timeline.View
	bus         *drag.Bus
	controllers map[string]*drag.Controller

	selected string
	zoom     timeline.Zoom
	scroll   int

	rename   *RenameBar
	viewport viewport.Model
	keys     keyMap
	help     help.Model

	width   int
	height  int
	message string
	online  bool
	loaded  bool
	logFile string
	source  string
}

// New creates a new TUI application over backend.
func New(backend Backend, opts Options) *App {
	zoom := timeline.Zoom(1)
	if opts.Zoom != 0 {
		zoom = timeline.ClampZoom(opts.Zoom)
	}
	return &App{
		backend:     backend,
		views:       timeline.NewCache(timeline.Options{Strict: opts.Strict}),
		bus:         drag.NewBus(),
		controllers: make(map[string]*drag.Controller),
		zoom:        zoom,
		rename:      NewRenameBar(),
		viewport:    viewport.New(80, 20),
		keys:        defaultKeyMap(),
		help:        help.New(),
		width:       80,
		height:      24,
		logFile:     opts.LogFile,
		source:      opts.Source,
	}
}

// Run starts the TUI application. Log output goes to the configured log
// file, or nowhere, since the terminal belongs to the UI.
func (a *App) Run() error {
	if a.logFile != "" {
		f, err := tea.LogToFile(a.logFile, "timeline")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.fetchSnapshot()
}

// Axis implements drag.Surface with the axis of the current view.
func (a *App) Axis() geometry.Axis {
	return a.view.Axis()
}

// Frame implements drag.Surface. The frame is unavailable until the
// terminal size is known and something is laid out.
func (a *App) Frame() (geometry.Frame, bool) {
	if a.width <= 0 || a.view.Layout.Empty() {
		return geometry.Frame{}, false
	}
	return a.track().frame(), true
}

func (a *App) track() track {
	return newTrack(a.width, a.zoom, a.scroll)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.rename.Focused() {
			cmds = append(cmds, a.updateRename(msg))
			break
		}
		cmds = append(cmds, a.handleKey(msg))

	case tea.MouseMsg:
		cmds = append(cmds, a.handleMouse(msg))

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.rename.SetWidth(msg.Width)
		a.viewport.Width = msg.Width

	case snapshotMsg:
		a.online = true
		a.loaded = true
		a.apply(msg.snap)

	case commandResultMsg:
		a.message = msg.message
		cmds = append(cmds, a.fetchSnapshot())

	case errMsg:
		a.online = false
		a.message = "Error: " + msg.err.Error()

	default:
		cmds = append(cmds, a.rename.Update(msg))
	}

	a.syncViewport()
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.closeAll()
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(msg, a.keys.Next):
		a.step(1)
	case key.Matches(msg, a.keys.Prev):
		a.step(-1)
	case key.Matches(msg, a.keys.LaneUp):
		a.changeLane(-1)
	case key.Matches(msg, a.keys.LaneDown):
		a.changeLane(1)
	case key.Matches(msg, a.keys.ZoomIn):
		a.setZoom(a.zoom.In())
	case key.Matches(msg, a.keys.ZoomOut):
		a.setZoom(a.zoom.Out())
	case key.Matches(msg, a.keys.ZoomReset):
		a.setZoom(a.zoom.Reset())
	case key.Matches(msg, a.keys.PresetIn):
		a.setZoom(a.zoom.NextPreset())
	case key.Matches(msg, a.keys.PresetOut):
		a.setZoom(a.zoom.PrevPreset())
	case key.Matches(msg, a.keys.ScrollLeft):
		a.scrollBy(-a.track().visible / 4)
	case key.Matches(msg, a.keys.ScrollRight):
		a.scrollBy(a.track().visible / 4)
	case key.Matches(msg, a.keys.Strict):
		opts := a.views.Options()
		opts.Strict = !opts.Strict
		a.views.SetOptions(opts)
		a.message = fmt.Sprintf("Strict lanes: %v", opts.Strict)
		return a.fetchSnapshot()
	case key.Matches(msg, a.keys.Refresh):
		return a.fetchSnapshot()
	case key.Matches(msg, a.keys.Rename):
		return a.beginRename()
	}
	return nil
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Type {
	case tea.MouseWheelUp:
		if msg.Ctrl {
			a.setZoom(a.zoom.In())
		} else {
			a.viewport.LineUp(1)
		}
	case tea.MouseWheelDown:
		if msg.Ctrl {
			a.setZoom(a.zoom.Out())
		} else {
			a.viewport.LineDown(1)
		}
	case tea.MouseLeft:
		// Terminals report a held button moving as repeated presses.
		if a.bus.Active() {
			a.bus.Move(float64(msg.X))
			return nil
		}
		return a.beginDrag(msg.X, msg.Y)
	case tea.MouseMotion:
		a.bus.Move(float64(msg.X))
	case tea.MouseRelease:
		return a.release()
	}
	return nil
}

func (a *App) beginDrag(x, y int) tea.Cmd {
	if a.rename.Focused() {
		return nil
	}
	top := a.bodyTop()
	if y < top || y >= top+a.viewport.Height {
		return nil
	}
	h, ok := hitTest(a.view.Lanes, a.track(), x, y-top+a.viewport.YOffset)
	if !ok {
		return nil
	}
	a.selected = h.item.ID
	ctrl, ok := a.controllers[h.item.ID]
	if !ok {
		return nil
	}
	if err := ctrl.Begin(h.mode, float64(x)); err != nil {
		a.message = "Error: " + err.Error()
		return nil
	}
	log.Debug("drag started", "id", h.item.ID, "mode", h.mode)
	return nil
}

func (a *App) release() tea.Cmd {
	if !a.bus.Active() {
		return nil
	}
	committed, err := a.bus.Release()
	if err != nil {
		a.message = "Error: " + err.Error()
		log.Error("reschedule failed", err)
		return a.fetchSnapshot()
	}
	if !committed {
		return nil
	}
	if ctrl, ok := a.controllers[a.selected]; ok {
		it := ctrl.Item()
		a.message = fmt.Sprintf("✓ %s: %s → %s", it.Name, it.Start, it.End)
	}
	return a.fetchSnapshot()
}

func (a *App) beginRename() tea.Cmd {
	ctrl, ok := a.controllers[a.selected]
	if !ok {
		return nil
	}
	if err := ctrl.Editor().Begin(); err != nil {
		a.message = "Error: " + err.Error()
		return nil
	}
	return tea.Batch(a.rename.Focus(ctrl.Item()), textinput.Blink)
}

func (a *App) updateRename(msg tea.KeyMsg) tea.Cmd {
	ctrl := a.controllers[a.rename.ItemID()]
	switch msg.Type {
	case tea.KeyEsc:
		a.rename.Blur()
		if ctrl != nil {
			ctrl.Editor().Cancel()
		}
		return nil
	case tea.KeyEnter:
		input := a.rename.Submit()
		if ctrl == nil {
			return nil
		}
		renamed, err := ctrl.Editor().Commit(input)
		if err != nil {
			a.message = "Error: " + err.Error()
			return a.fetchSnapshot()
		}
		if renamed {
			a.message = "✓ Renamed to " + ctrl.Item().Name
			return a.fetchSnapshot()
		}
		return nil
	case tea.KeyCtrlC:
		a.closeAll()
		return tea.Quit
	}
	return a.rename.Update(msg)
}

// apply installs a new snapshot. Controllers mid-gesture or mid-edit are
// kept so the interaction survives a refresh.
func (a *App) apply(snap store.Snapshot) {
	a.view = a.views.Get(snap.Revision, func() []models.Item { return snap.Items })

	next := make(map[string]*drag.Controller, len(snap.Items))
	for _, it := range snap.Items {
		if old, ok := a.controllers[it.ID]; ok && (old.Dragging() || old.Editor().Editing()) {
			next[it.ID] = old
			continue
		}
		next[it.ID] = drag.NewController(it, a.bus, a, a.backend, a.backend)
	}
	for id, old := range a.controllers {
		if _, ok := next[id]; !ok {
			old.Close()
		}
	}
	a.controllers = next

	if _, _, ok := a.view.Find(a.selected); !ok {
		a.selected = ""
		if order := a.order(); len(order) > 0 {
			a.selected = order[0]
		}
	}
	if n := len(a.view.Problems); n > 0 {
		log.Warn("items skipped", "count", n)
	}
}

func (a *App) closeAll() {
	for _, c := range a.controllers {
		c.Close()
	}
}

// order lists item ids lane by lane.
func (a *App) order() []string {
	var ids []string
	for _, l := range a.view.Lanes {
		for _, it := range l.Items {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (a *App) step(delta int) {
	ids := a.order()
	if len(ids) == 0 {
		return
	}
	idx := 0
	for i, id := range ids {
		if id == a.selected {
			idx = (i + delta + len(ids)) % len(ids)
			break
		}
	}
	a.selected = ids[idx]
	a.reveal()
}

// changeLane selects the item in the neighbouring lane closest to the
// current selection.
func (a *App) changeLane(delta int) {
	li, ii := laneOf(a.view.Lanes, a.selected)
	if li < 0 {
		a.step(0)
		return
	}
	target := li + delta
	if target < 0 || target >= len(a.view.Lanes) {
		return
	}
	ref := a.view.Lanes[li].Items[ii].Position.Left
	best, bestDist := "", 0.0
	for _, it := range a.view.Lanes[target].Items {
		d := it.Position.Left - ref
		if d < 0 {
			d = -d
		}
		if best == "" || d < bestDist {
			best, bestDist = it.ID, d
		}
	}
	a.selected = best
	a.reveal()
}

// reveal scrolls so the selected item is visible.
func (a *App) reveal() {
	pi, _, ok := a.view.Find(a.selected)
	if !ok {
		return
	}
	t := a.track()
	from, to := t.bar(pi.Position.Left, pi.Position.Width)
	switch {
	case from < gutter:
		a.scrollBy(from - gutter)
	case to > gutter+t.visible:
		a.scrollBy(min(to-gutter-t.visible, from-gutter))
	}

	li, _ := laneOf(a.view.Lanes, a.selected)
	row := 0
	for _, l := range a.view.Lanes[:li] {
		row += laneRows(l)
	}
	switch {
	case row < a.viewport.YOffset:
		a.viewport.SetYOffset(row)
	case row >= a.viewport.YOffset+a.viewport.Height:
		a.viewport.SetYOffset(row - a.viewport.Height + 1)
	}
}

func (a *App) setZoom(z timeline.Zoom) {
	if z == a.zoom {
		return
	}
	a.zoom = z
	a.scroll = a.track().scroll
	a.message = fmt.Sprintf("Zoom: %d%%", z.Percent())
}

func (a *App) scrollBy(delta int) {
	a.scroll = newTrack(a.width, a.zoom, a.scroll+delta).scroll
}

// bodyTop is the first screen row of the lanes viewport.
func (a *App) bodyTop() int {
	return 2 + len(a.monthRows()) + 1
}

func (a *App) monthRows() []string {
	return renderMonths(a.view.Months, a.view.Axis(), a.track(), a.width)
}

func (a *App) syncViewport() {
	a.viewport.Width = a.width
	a.viewport.Height = max(a.height-a.bodyTop()-footerRows, 3)

	var dragging *drag.Session
	for _, c := range a.controllers {
		if s := c.Session(); s != nil {
			dragging = s
			break
		}
	}

	t := a.track()
	st := laneState{selected: a.selected, dragging: dragging}
	var rows []string
	for _, l := range a.view.Lanes {
		rows = append(rows, renderLane(l, t, a.width, st)...)
	}
	a.viewport.SetContent(strings.Join(rows, "\n"))
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	status := onlineStyle.Render("● ONLINE")
	if !a.online {
		status = offlineStyle.Render("○ OFFLINE")
	}
	header := titleStyle.Render("Timeline")
	header += "  " + status
	if a.source != "" {
		header += "  " + lipgloss.NewStyle().Foreground(mutedColor).Render(a.source)
	}
	if n := len(a.view.Problems); n > 0 {
		header += "  " + lipgloss.NewStyle().Foreground(warningColor).Render(fmt.Sprintf("⚠ %d skipped", n))
	}
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(a.width, 0)) + "\n")

	for _, row := range a.monthRows() {
		b.WriteString(row + "\n")
	}
	b.WriteString(renderMarkers(a.view.Markers, a.track(), a.width) + "\n")

	switch {
	case !a.loaded:
		b.WriteString(a.placeholder("Loading items..."))
	case a.view.Layout.Empty():
		b.WriteString(a.placeholder("No items to display."))
	default:
		b.WriteString(a.viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(detailStyle.Render(a.detail()) + "\n")

	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString(msgStyle.Render(a.message))
	}
	b.WriteString("\n")

	if a.rename.Focused() {
		b.WriteString(a.rename.View())
	} else {
		b.WriteString(a.help.View(a.keys))
	}
	b.WriteString("\n")

	s := a.view.Stats
	bar := fmt.Sprintf(" Items: %d | Lanes: %d | Days: %d", s.Items, s.Lanes, s.TotalDays)
	if s.Start != "" {
		bar += fmt.Sprintf(" | %s → %s", s.Start, s.End)
	}
	bar += fmt.Sprintf(" | Zoom: %d%%", a.zoom.Percent())
	if a.views.Options().Strict {
		bar += " | strict"
	}
	b.WriteString(statusBarStyle.Width(a.width).Render(bar))

	return b.String()
}

func (a *App) placeholder(text string) string {
	lines := make([]string, a.viewport.Height)
	if len(lines) > 0 {
		lines[0] = "  " + lipgloss.NewStyle().Foreground(mutedColor).Render(text)
	}
	return strings.Join(lines, "\n")
}

func (a *App) detail() string {
	for _, c := range a.controllers {
		if s := c.Session(); s != nil {
			return describeCandidate(s, c.Item().Name)
		}
	}
	if pi, _, ok := a.view.Find(a.selected); ok {
		return describe(pi)
	}
	return ""
}

func (a *App) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.backend.Snapshot()
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
