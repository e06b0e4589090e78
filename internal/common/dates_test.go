package common

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalendarDiff_ExactYears(t *testing.T) {
	years, months, days := CalendarDiff(date(2022, 3, 15), date(2025, 3, 15))
	if years != 3 || months != 0 || days != 0 {
		t.Errorf("CalendarDiff = %d/%d/%d, want 3/0/0", years, months, days)
	}
}

func TestCalendarDiff_BorrowsDays(t *testing.T) {
	// Jan 31 -> Mar 1: one month from Jan 31 is Feb 28 (2025), plus 1 day
	years, months, days := CalendarDiff(date(2025, 1, 31), date(2025, 3, 1))
	if years != 0 || months != 1 || days != 1 {
		t.Errorf("CalendarDiff = %d/%d/%d, want 0/1/1", years, months, days)
	}
}

func TestCalendarDiff_BorrowsMonths(t *testing.T) {
	years, months, days := CalendarDiff(date(2023, 11, 10), date(2024, 2, 10))
	if years != 0 || months != 3 || days != 0 {
		t.Errorf("CalendarDiff = %d/%d/%d, want 0/3/0", years, months, days)
	}
}

func TestCalendarDiff_SameDay(t *testing.T) {
	years, months, days := CalendarDiff(date(2024, 6, 1), date(2024, 6, 1))
	if years != 0 || months != 0 || days != 0 {
		t.Errorf("CalendarDiff same day = %d/%d/%d, want 0/0/0", years, months, days)
	}
}

func TestFormatAge(t *testing.T) {
	got := FormatAge(date(2023, 1, 10), date(2025, 3, 25))
	want := "2 years 2 months 15 days"
	if got != want {
		t.Errorf("FormatAge = %q, want %q", got, want)
	}
}

func TestElapsedMonths_FlooredAtOne(t *testing.T) {
	// Sub-month history must not yield zero (division guard downstream)
	if got := ElapsedMonths(date(2025, 6, 1), date(2025, 6, 20)); got != 1 {
		t.Errorf("ElapsedMonths sub-month = %d, want 1", got)
	}
}

func TestElapsedMonths_WholeMonthsOnly(t *testing.T) {
	// 1 year and 20 days = 12 whole months
	if got := ElapsedMonths(date(2024, 1, 1), date(2025, 1, 21)); got != 12 {
		t.Errorf("ElapsedMonths = %d, want 12", got)
	}
}
