package importer

import (
	"strings"
	"testing"
)

func calendar(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//timeline//test//EN",
	}
	for _, ev := range events {
		lines = append(lines, strings.Split(strings.TrimSpace(ev), "\n")...)
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func TestDecodeICSAllDay(t *testing.T) {
	data := calendar(`
BEGIN:VEVENT
UID:offsite
DTSTAMP:20240101T000000Z
SUMMARY:Team offsite
DTSTART;VALUE=DATE:20240301
DTEND;VALUE=DATE:20240304
END:VEVENT
BEGIN:VEVENT
UID:launch
DTSTAMP:20240101T000000Z
SUMMARY:Launch
DTSTART;VALUE=DATE:20240310
DTEND;VALUE=DATE:20240311
END:VEVENT`)

	items, err := DecodeICS(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "offsite" || items[0].Start != "2024-03-01" || items[0].End != "2024-03-03" {
		t.Errorf("expected exclusive DTEND, got %+v", items[0])
	}
	if items[1].Start != "2024-03-10" || items[1].End != "2024-03-10" {
		t.Errorf("expected single-day item, got %+v", items[1])
	}
}

func TestDecodeICSTimed(t *testing.T) {
	data := calendar(`
BEGIN:VEVENT
UID:review
DTSTAMP:20240101T000000Z
SUMMARY:Review
DTSTART:20240305T090000Z
DTEND:20240305T100000Z
END:VEVENT
BEGIN:VEVENT
UID:nodtend
DTSTAMP:20240101T000000Z
DTSTART:20240306T090000Z
END:VEVENT`)

	items, err := DecodeICS(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Start != "2024-03-05" || items[0].End != "2024-03-05" {
		t.Errorf("unexpected timed item %+v", items[0])
	}
	if items[1].Name != untitled || items[1].End != "2024-03-06" {
		t.Errorf("unexpected item without DTEND %+v", items[1])
	}
}

func TestDecodeICSRecurring(t *testing.T) {
	data := calendar(`
BEGIN:VEVENT
UID:standup
DTSTAMP:20240101T000000Z
SUMMARY:Sprint
DTSTART;VALUE=DATE:20240101
DTEND;VALUE=DATE:20240103
RRULE:FREQ=WEEKLY;COUNT=5
EXDATE;VALUE=DATE:20240115
END:VEVENT`)

	items, err := DecodeICS(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	want := []string{"2024-01-01", "2024-01-08", "2024-01-22", "2024-01-29"}
	if len(items) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %+v", len(want), len(items), items)
	}
	for i, w := range want {
		if items[i].Start != w {
			t.Errorf("occurrence %d: expected start %s, got %s", i, w, items[i].Start)
		}
	}
	if items[0].End != "2024-01-02" {
		t.Errorf("expected two-day occurrences, got end %s", items[0].End)
	}
	if items[0].ID != "standup-20240101" || items[1].ID == items[0].ID {
		t.Errorf("expected per-occurrence ids, got %s and %s", items[0].ID, items[1].ID)
	}
}

func TestDecodeICSCap(t *testing.T) {
	data := calendar(`
BEGIN:VEVENT
UID:daily
DTSTAMP:20240101T000000Z
SUMMARY:Daily
DTSTART;VALUE=DATE:20240101
DTEND;VALUE=DATE:20240102
RRULE:FREQ=DAILY
END:VEVENT`)

	items, err := DecodeICS(strings.NewReader(data), Options{HorizonDays: 30, MaxOccurrences: 10})
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	if len(items) != 10 {
		t.Errorf("expected 10 capped occurrences, got %d", len(items))
	}

	items, err = DecodeICS(strings.NewReader(data), Options{HorizonDays: 6, MaxOccurrences: 100})
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	if len(items) != 7 {
		t.Errorf("expected 7 occurrences inside horizon, got %d", len(items))
	}
}

func TestDecodeICSOverrides(t *testing.T) {
	data := calendar(`
BEGIN:VEVENT
UID:weekly
DTSTAMP:20240101T000000Z
SUMMARY:Weekly
DTSTART;VALUE=DATE:20240101
DTEND;VALUE=DATE:20240102
RRULE:FREQ=WEEKLY;COUNT=3
END:VEVENT
BEGIN:VEVENT
UID:weekly
DTSTAMP:20240101T000000Z
RECURRENCE-ID;VALUE=DATE:20240108
SUMMARY:Weekly moved
DTSTART;VALUE=DATE:20240110
DTEND;VALUE=DATE:20240112
END:VEVENT
BEGIN:VEVENT
UID:orphan
DTSTAMP:20240101T000000Z
RECURRENCE-ID;VALUE=DATE:20240301
DTSTART;VALUE=DATE:20240302
END:VEVENT`)

	items, err := DecodeICS(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 occurrences, got %d: %+v", len(items), items)
	}
	moved := items[1]
	if moved.ID != "weekly-20240108" || moved.Name != "Weekly moved" {
		t.Errorf("expected override to keep the occurrence id, got %+v", moved)
	}
	if moved.Start != "2024-01-10" || moved.End != "2024-01-11" {
		t.Errorf("expected override dates, got %s..%s", moved.Start, moved.End)
	}
	if items[0].Start != "2024-01-01" || items[2].Start != "2024-01-15" {
		t.Errorf("expected other occurrences unchanged, got %+v", items)
	}
}

func TestDecodeICSOverrideSingle(t *testing.T) {
	data := calendar(`
BEGIN:VEVENT
UID:demo
DTSTAMP:20240101T000000Z
SUMMARY:Demo
DTSTART:20240305T090000Z
DTEND:20240305T100000Z
END:VEVENT
BEGIN:VEVENT
UID:demo
DTSTAMP:20240101T000000Z
RECURRENCE-ID:20240305T090000Z
DTSTART:20240307T090000Z
DTEND:20240307T100000Z
END:VEVENT`)

	items, err := DecodeICS(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatalf("DecodeICS failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if items[0].ID != "demo" || items[0].Name != "Demo" || items[0].Start != "2024-03-07" {
		t.Errorf("unexpected overridden item %+v", items[0])
	}
}
