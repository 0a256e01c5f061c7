// Package models defines the core domain types for the timeline.
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format for item dates.
const DateLayout = "2006-01-02"

// MaxNameLength is the longest item name accepted at the edit boundary.
const MaxNameLength = 50

// ErrInvalidDate indicates a date field is missing or not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// Item is a named, date-ranged entry on the timeline.
type Item struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Dates parses the item's start and end.
func (i Item) Dates() (start, end time.Time, err error) {
	start, err = ParseDate(i.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = ParseDate(i.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ChangeAction identifies a state-mutating operation on the item store.
type ChangeAction string

const (
	ChangeLoad       ChangeAction = "item.load"
	ChangeRename     ChangeAction = "item.rename"
	ChangeReschedule ChangeAction = "item.reschedule"
)

// ChangeRecord is an audit entry for an accepted store update.
type ChangeRecord struct {
	ID         string       `json:"id"`
	Action     ChangeAction `json:"action"`
	ItemID     string       `json:"item_id,omitempty"`
	InputsHash string       `json:"inputs_hash"`
	Outcome    string       `json:"outcome"`
	Details    string       `json:"details,omitempty"`
	Revision   int64        `json:"revision"`
	Timestamp  time.Time    `json:"timestamp"`
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// AddDays shifts t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Day truncates t to its calendar day, dropping clock and zone.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
