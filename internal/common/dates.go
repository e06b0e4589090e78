package common

import (
	"fmt"
	"time"
)

// CalendarDiff returns the calendar-aware difference between from and to as
// whole years, months, and days, borrowing from month lengths the way a
// civil-date subtraction does (not naive day division). from must not be
// after to.
func CalendarDiff(from, to time.Time) (years, months, days int) {
	totalMonths := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	anchor := addMonthsClamped(from, totalMonths)
	if anchor.After(to) {
		totalMonths--
		anchor = addMonthsClamped(from, totalMonths)
	}
	if totalMonths < 0 {
		totalMonths = 0
		anchor = from
	}

	years = totalMonths / 12
	months = totalMonths % 12
	days = int(to.Sub(anchor).Hours() / 24)
	return years, months, days
}

// addMonthsClamped adds m calendar months, clamping the day to the target
// month's length (Jan 31 + 1 month = Feb 28, never Mar 3).
func addMonthsClamped(t time.Time, m int) time.Time {
	month := int(t.Month()) - 1 + m
	year := t.Year() + month/12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}

	day := t.Day()
	if last := time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, t.Location()).Day(); day > last {
		day = last
	}

	return time.Date(year, time.Month(month+1), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// FormatAge renders the calendar difference between from and to as a
// human-readable holding-age string.
func FormatAge(from, to time.Time) string {
	years, months, days := CalendarDiff(from, to)
	return fmt.Sprintf("%d years %d months %d days", years, months, days)
}

// ElapsedMonths returns the number of whole calendar months between from and
// to, floored at 1 to keep per-month division safe for sub-month histories.
func ElapsedMonths(from, to time.Time) int {
	years, months, _ := CalendarDiff(from, to)
	total := years*12 + months
	if total == 0 {
		total = 1
	}
	return total
}
