package tui

import (
	"github.com/fentz26/timeline/internal/store"
)

// Backend is the item source the UI reads and edits. The in-process
// controlplane.Service and the HTTP Client both satisfy it.
type Backend interface {
	Snapshot() (store.Snapshot, error)
	RenameItem(id, name string) error
	RescheduleItem(id, start, end string) error
}

type snapshotMsg struct {
	snap store.Snapshot
}

type errMsg struct {
	err error
}

type commandResultMsg struct {
	message string
}
