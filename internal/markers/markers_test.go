package markers

import (
	"testing"
	"time"

	"github.com/fentz26/timeline/internal/models"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return &d
}

func TestGenerateEmpty(t *testing.T) {
	if got := Generate(nil, nil, 0); len(got) != 0 {
		t.Errorf("expected no markers, got %d", len(got))
	}
	if got := Generate(date(t, "2024-01-01"), nil, 5); len(got) != 0 {
		t.Errorf("expected no markers with missing end, got %d", len(got))
	}
	if got := Generate(date(t, "2024-01-01"), date(t, "2024-01-05"), 0); len(got) != 0 {
		t.Errorf("expected no markers for zero days, got %d", len(got))
	}
}

func TestGenerateShortRange(t *testing.T) {
	got := Generate(date(t, "2024-01-01"), date(t, "2024-01-05"), 5)
	want := []struct {
		label    string
		position float64
	}{
		{"2024-01-01", 0},
		{"2024-01-02", 25},
		{"2024-01-03", 50},
		{"2024-01-04", 75},
		{"2024-01-05", 100},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d markers, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Label != w.label || got[i].Position != w.position {
			t.Errorf("marker %d: expected %s@%v, got %s@%v", i, w.label, w.position, got[i].Label, got[i].Position)
		}
	}
}

func TestGenerateAppendsEnd(t *testing.T) {
	// 31 inclusive days: interval 3, ticks at 0..30 land on the end exactly.
	got := Generate(date(t, "2024-01-01"), date(t, "2024-01-31"), 31)
	if last := got[len(got)-1]; last.Label != "2024-01-31" || last.Position != 100 {
		t.Errorf("expected end marker at 100, got %s@%v", last.Label, last.Position)
	}

	// 30 inclusive days: interval 3, last tick at offset 27, end appended.
	got = Generate(date(t, "2024-01-01"), date(t, "2024-01-30"), 30)
	if len(got) != 11 {
		t.Fatalf("expected 11 markers, got %d", len(got))
	}
	if prev := got[len(got)-2]; prev.Label != "2024-01-28" {
		t.Errorf("expected penultimate marker 2024-01-28, got %s", prev.Label)
	}
	if last := got[len(got)-1]; last.Label != "2024-01-30" || last.Position != 100 {
		t.Errorf("expected end marker at 100, got %s@%v", last.Label, last.Position)
	}
}

func TestGenerateCoverage(t *testing.T) {
	ranges := []struct{ start, end string }{
		{"2024-01-01", "2024-01-02"},
		{"2024-01-01", "2024-03-17"},
		{"2023-11-20", "2025-02-01"},
		{"2024-06-06", "2024-06-06"},
	}
	for _, r := range ranges {
		start, end := date(t, r.start), date(t, r.end)
		total := models.DaysBetween(*start, *end) + 1
		got := Generate(start, end, total)
		if len(got) == 0 {
			t.Fatalf("%s..%s: no markers", r.start, r.end)
		}
		last := got[len(got)-1]
		if last.Position != 100 || last.Label != r.end {
			t.Errorf("%s..%s: expected end marker, got %s@%v", r.start, r.end, last.Label, last.Position)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Position <= got[i-1].Position {
				t.Errorf("%s..%s: positions not increasing at %d", r.start, r.end, i)
			}
		}
		if len(got) > maxMarkers+2 {
			t.Errorf("%s..%s: too many markers (%d)", r.start, r.end, len(got))
		}
	}
}

func TestGenerateSingleDay(t *testing.T) {
	got := Generate(date(t, "2024-06-06"), date(t, "2024-06-06"), 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(got))
	}
	if got[0].Position != 100 || got[0].Label != "2024-06-06" {
		t.Errorf("unexpected marker %+v", got[0])
	}
}

func TestMonths(t *testing.T) {
	got := Months(date(t, "2024-01-15"), date(t, "2024-03-02"))
	if len(got) != 3 {
		t.Fatalf("expected 3 months, got %d", len(got))
	}
	if got[0].Label != "January" || got[2].Label != "March" {
		t.Errorf("unexpected labels: %s .. %s", got[0].Label, got[2].Label)
	}
	if got[0].ShowYear {
		t.Error("expected no year row within a single year")
	}

	got = Months(date(t, "2024-12-20"), date(t, "2025-01-05"))
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d", len(got))
	}
	for _, m := range got {
		if !m.ShowYear {
			t.Errorf("expected year shown for %s %d", m.Label, m.Year)
		}
	}

	if got := Months(nil, nil); len(got) != 0 {
		t.Errorf("expected no months, got %d", len(got))
	}
}

func TestHeaderFontSize(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{1, 14},
		{4, 10},
		{0.25, 20},
		{5, 10},
		{0.1, 20},
	}
	for _, tt := range tests {
		if got := HeaderFontSize(tt.zoom); got != tt.want {
			t.Errorf("HeaderFontSize(%v): expected %v, got %v", tt.zoom, tt.want, got)
		}
	}
	if got := YearFontSize(1); got != 12 {
		t.Errorf("YearFontSize(1): expected 12, got %v", got)
	}
}
