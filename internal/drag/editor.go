package drag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fentz26/timeline/internal/models"
)

// Editor is the Viewing/Editing state pair for renaming an item.
type Editor struct {
	ctrl    *Controller
	renamer Renamer
	editing bool
}

// Editing reports whether the name is being edited.
func (e *Editor) Editing() bool {
	return e.editing
}

// Begin enters edit mode. It refuses while the item is being dragged.
func (e *Editor) Begin() error {
	if e.ctrl.Dragging() {
		return ErrDragging
	}
	e.editing = true
	return nil
}

// Commit leaves edit mode and renames the item when input, once trimmed, is
// a non-empty name of at most 50 characters that differs from the current
// one. It reports whether a rename was issued.
func (e *Editor) Commit(input string) (bool, error) {
	if !e.editing {
		return false, nil
	}
	e.editing = false

	name := strings.TrimSpace(input)
	if name == "" || name == e.ctrl.item.Name || utf8.RuneCountInString(name) > models.MaxNameLength {
		return false, nil
	}
	if err := e.renamer.RenameItem(e.ctrl.item.ID, name); err != nil {
		return false, fmt.Errorf("rename %s: %w", e.ctrl.item.ID, err)
	}
	e.ctrl.item.Name = name
	return true, nil
}

// Cancel leaves edit mode without renaming.
func (e *Editor) Cancel() {
	e.editing = false
}
