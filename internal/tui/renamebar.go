package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/timeline/internal/models"
)

var (
	renameBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// RenameBar is the inline name editor. Input beyond the maximum name
// length is truncated as it is typed.
type RenameBar struct {
	input   textinput.Model
	focused bool
	itemID  string
}

// NewRenameBar creates an unfocused rename bar.
func NewRenameBar() *RenameBar {
	ti := textinput.New()
	ti.Placeholder = "Item name"
	ti.CharLimit = models.MaxNameLength
	ti.Prompt = ""
	return &RenameBar{
		input: ti,
	}
}

// Focus starts editing item, prefilled with its current name.
func (m *RenameBar) Focus(item models.Item) tea.Cmd {
	m.focused = true
	m.itemID = item.ID
	m.input.SetValue(item.Name)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Blur stops editing and clears the input.
func (m *RenameBar) Blur() {
	m.focused = false
	m.itemID = ""
	m.input.Blur()
	m.input.SetValue("")
}

// Focused reports whether a name is being edited.
func (m *RenameBar) Focused() bool {
	return m.focused
}

// ItemID is the item being renamed.
func (m *RenameBar) ItemID() string {
	return m.itemID
}

// Submit returns the current input and blurs.
func (m *RenameBar) Submit() string {
	val := m.input.Value()
	m.Blur()
	return val
}

// SetWidth sizes the input to the screen.
func (m *RenameBar) SetWidth(w int) {
	m.input.Width = max(w-12, 10)
}

// Update forwards key input while focused.
func (m *RenameBar) Update(msg tea.Msg) tea.Cmd {
	if !m.focused {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// View renders the rename bar.
func (m *RenameBar) View() string {
	return renameBarStyle.Render(promptStyle.Render("Rename: ") + m.input.View())
}
