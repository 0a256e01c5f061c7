package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/models"
)

const untitled = "Untitled"

// DecodeICS turns the VEVENTs of a calendar into items. All-day DTEND is
// exclusive, so an event ending on day N+1 becomes an item ending on day N.
// Recurring events expand into one item per occurrence within the horizon,
// and RECURRENCE-ID overrides replace the occurrence they name.
// Events that cannot be read are skipped and reported in the joined error.
func DecodeICS(r io.Reader, opts Options) ([]models.Item, error) {
	if opts.HorizonDays <= 0 || opts.MaxOccurrences <= 0 {
		opts = DefaultOptions()
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	// Group overrides by UID.
	events := cal.Events()
	overrides := make(map[string][]*ical.VEvent)
	for _, ve := range events {
		if isOverride(ve) {
			uid := eventUID(ve)
			overrides[uid] = append(overrides[uid], ve)
		}
	}

	var items []models.Item
	var errs []error
	masters := make(map[string]bool)
	for _, ve := range events {
		if isOverride(ve) {
			continue
		}
		uid := eventUID(ve)
		masters[uid] = true
		evItems, err := eventItems(ve, overrides[uid], opts)
		if err != nil {
			log.Error("ics vevent skipped", err)
			errs = append(errs, err)
			continue
		}
		items = append(items, evItems...)
	}
	for uid, ovs := range overrides {
		if !masters[uid] {
			log.Warn("ics override without master event dropped", "uid", uid, "count", len(ovs))
		}
	}
	if items == nil {
		items = []models.Item{}
	}
	return normalize(items), errors.Join(errs...)
}

func eventUID(ve *ical.VEvent) string {
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func eventName(ve *ical.VEvent, fallback string) string {
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
		return p.Value
	}
	return fallback
}

// isOverride reports whether ve replaces a single instance of another event.
func isOverride(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyRecurrenceId)
	return p != nil && strings.TrimSpace(p.Value) != "" && eventUID(ve) != ""
}

func eventItems(ve *ical.VEvent, overrides []*ical.VEvent, opts Options) ([]models.Item, error) {
	uid := eventUID(ve)
	name := eventName(ve, untitled)

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("event %q: dtstart: %w", uid, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = start
	}
	startDay, endDay := dayRange(start, end)
	span := models.DaysBetween(startDay, endDay)
	replaced := recurrenceDays(overrides, start.Location())

	rp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rp == nil || rp.Value == "" {
		it := models.Item{
			ID:    uid,
			Name:  name,
			Start: models.FormatDate(startDay),
			End:   models.FormatDate(endDay),
		}
		if ov, ok := replaced[startDay]; ok {
			it = overrideItem(it, ov)
		}
		return []models.Item{it}, nil
	}

	rule, err := rrule.StrToRRule(rp.Value)
	if err != nil {
		return nil, fmt.Errorf("event %q: rrule: %w", uid, err)
	}
	rule.DTStart(start)

	var set rrule.Set
	set.RRule(rule)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			ex, err := parseICSTime(part, start.Location())
			if err != nil {
				continue
			}
			set.ExDate(ex)
		}
	}

	horizon := start.AddDate(0, 0, opts.HorizonDays)
	occ := set.Between(start, horizon, true)
	if len(occ) > opts.MaxOccurrences {
		log.Warn("ics recurrence truncated", "uid", uid, "cap", opts.MaxOccurrences, "total", len(occ))
		occ = occ[:opts.MaxOccurrences]
	}

	out := make([]models.Item, 0, len(occ))
	for _, o := range occ {
		day := models.Day(o)
		id := ""
		if uid != "" {
			id = uid + "-" + day.Format("20060102")
		}
		it := models.Item{
			ID:    id,
			Name:  name,
			Start: models.FormatDate(day),
			End:   models.FormatDate(models.AddDays(day, span)),
		}
		if ov, ok := replaced[day]; ok {
			it = overrideItem(it, ov)
		}
		out = append(out, it)
	}
	return out, nil
}

// recurrenceDays indexes overrides by the calendar day of the instance they
// replace, read in the master's location.
func recurrenceDays(overrides []*ical.VEvent, loc *time.Location) map[time.Time]*ical.VEvent {
	out := make(map[time.Time]*ical.VEvent, len(overrides))
	for _, ov := range overrides {
		p := ov.GetProperty(ical.ComponentPropertyRecurrenceId)
		ridLoc := loc
		if tz := p.ICalParameters[string(ical.ParameterTzid)]; len(tz) > 0 {
			if l, err := time.LoadLocation(tz[0]); err == nil {
				ridLoc = l
			}
		}
		rid, err := parseICSTime(p.Value, ridLoc)
		if err != nil {
			log.Warn("ics override has unreadable recurrence-id", "uid", eventUID(ov), "value", p.Value)
			continue
		}
		out[models.Day(rid.In(loc))] = ov
	}
	return out
}

// overrideItem applies an override's summary and dates to an occurrence,
// keeping the occurrence id. The occurrence is kept as is when the override
// has no readable start.
func overrideItem(it models.Item, ov *ical.VEvent) models.Item {
	start, err := ov.GetStartAt()
	if err != nil {
		log.Warn("ics override has unreadable dtstart", "uid", eventUID(ov), "occurrence", it.Start)
		return it
	}
	end, err := ov.GetEndAt()
	if err != nil {
		end = start
	}
	startDay, endDay := dayRange(start, end)
	it.Name = eventName(ov, it.Name)
	it.Start = models.FormatDate(startDay)
	it.End = models.FormatDate(endDay)
	return it
}

// dayRange maps an event's [start, end) instant range onto inclusive days.
func dayRange(start, end time.Time) (time.Time, time.Time) {
	startDay := models.Day(start)
	if !end.After(start) {
		return startDay, startDay
	}
	return startDay, models.Day(end.Add(-time.Nanosecond))
}

// parseICSTime parses the DATE and DATE-TIME forms used by EXDATE.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
