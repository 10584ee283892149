package schedule

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEndDate(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"six months same year", date(2024, 1, 15), 6, date(2024, 7, 15)},
		{"year carry", date(2024, 9, 10), 6, date(2025, 3, 10)},
		{"exact december", date(2024, 6, 1), 6, date(2024, 12, 1)},
		{"twelve months", date(2024, 3, 5), 12, date(2025, 3, 5)},
		{"eleven months", date(2024, 2, 20), 11, date(2025, 1, 20)},
		{"day overflow is kept", date(2024, 1, 31), 1, date(2024, 3, 2)},
		{"day overflow non leap", date(2023, 1, 31), 1, date(2023, 3, 3)},
		{"time of day dropped", time.Date(2024, 1, 15, 17, 45, 0, 0, time.UTC), 6, date(2024, 7, 15)},
	}
	for _, tc := range cases {
		got := EndDate(tc.start, tc.months)
		if !got.Equal(tc.want) {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want.Format(DateLayout), got.Format(DateLayout))
		}
	}
}

func TestEndDate_TwelveMonthLaw(t *testing.T) {
	start := date(2023, 1, 1)
	for i := 0; i < 730; i++ {
		s := start.AddDate(0, 0, i)
		got := EndDate(s, 12)
		if s.Month() == time.February && s.Day() == 29 {
			// 29 feb + 12 meses desborda a 1 mar, igual que el cálculo original.
			if got.Month() != time.March || got.Day() != 1 {
				t.Fatalf("%s: expected March 1st, got %s", s.Format(DateLayout), got.Format(DateLayout))
			}
			continue
		}
		if got.Year() != s.Year()+1 || got.Month() != s.Month() || got.Day() != s.Day() {
			t.Fatalf("%s + 12 months: got %s", s.Format(DateLayout), got.Format(DateLayout))
		}
	}
}

func TestFollowUpDates_Scenario(t *testing.T) {
	start := date(2024, 1, 15)
	end := EndDate(start, 6)

	got := FollowUpDates(start, end)
	want := []string{
		"2024-01-29", "2024-02-12", "2024-02-26", "2024-03-11", "2024-03-25",
		"2024-04-08", "2024-04-22", "2024-05-06", "2024-05-20", "2024-06-03",
		"2024-06-17", "2024-07-01", "2024-07-15",
	}
	gotS := FormatDates(got)
	if len(gotS) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(gotS), gotS)
	}
	for i := range want {
		if gotS[i] != want[i] {
			t.Fatalf("date %d: expected %s, got %s", i, want[i], gotS[i])
		}
	}
}

func TestFollowUpDates_Properties(t *testing.T) {
	starts := []time.Time{date(2024, 1, 15), date(2023, 11, 30), date(2024, 2, 29), date(2025, 12, 31)}
	for _, s := range starts {
		for _, months := range []int{6, 7, 11, 12} {
			end := EndDate(s, months)
			ds := FollowUpDates(s, end)
			if len(ds) == 0 {
				t.Fatalf("%s +%d: expected follow-ups", s.Format(DateLayout), months)
			}
			if !ds[0].Equal(s.AddDate(0, 0, 14)) {
				t.Fatalf("first follow-up must be start+14d, got %s", ds[0].Format(DateLayout))
			}
			for i, d := range ds {
				if d.After(end) {
					t.Fatalf("%s exceeds end date %s", d.Format(DateLayout), end.Format(DateLayout))
				}
				if i > 0 && !d.Equal(ds[i-1].AddDate(0, 0, 14)) {
					t.Fatalf("follow-ups must be 14 days apart: %s -> %s", ds[i-1].Format(DateLayout), d.Format(DateLayout))
				}
			}
			if next := ds[len(ds)-1].AddDate(0, 0, 14); !next.After(end) {
				t.Fatalf("sequence stopped early: %s still <= %s", next.Format(DateLayout), end.Format(DateLayout))
			}
		}
	}
}

func TestFollowUpDates_EmptyWhenTooShort(t *testing.T) {
	start := date(2024, 1, 15)
	got := FollowUpDates(start, date(2024, 1, 28))
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}

	got = FollowUpDates(start, date(2024, 1, 29))
	if len(got) != 1 {
		t.Fatalf("expected one follow-up on the boundary, got %d", len(got))
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if !d.Equal(date(2024, 1, 15)) {
		t.Fatalf("unexpected date %s", d)
	}

	for _, bad := range []string{"", "   ", "15/01/2024", "2024-13-01", "2024-02-30", "tomorrow"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidStartDate) {
			t.Fatalf("ParseDate(%q): expected ErrInvalidStartDate, got %v", bad, err)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(time.Time{}); !errors.Is(err, ErrInvalidStartDate) {
		t.Fatalf("expected ErrInvalidStartDate for zero time, got %v", err)
	}
	if err := Validate(date(2024, 1, 15)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
