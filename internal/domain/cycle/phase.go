// internal/domain/cycle/phase.go
package cycle

import "time"

// Boundaries holds the calendar dates that delimit each phase window of a cycle.
// All values are midnight UTC dates; an "End" before its "Start" means the window is empty.
type Boundaries struct {
	Start             time.Time
	InProgressEnd     time.Time
	ReviewStart       time.Time
	ReviewEnd         time.Time
	EqualizationStart time.Time
	EqualizationEnd   time.Time
	End               time.Time
}

// ComputeBoundaries derives the phase windows from the cycle start date and phase durations.
func ComputeBoundaries(c *Cycle) Boundaries {
	start := dateOf(c.StartDate)
	b := Boundaries{Start: start, End: dateOf(c.EndDate)}
	b.InProgressEnd = addDays(start, c.InProgressDays-1)
	b.ReviewStart = addDays(b.InProgressEnd, 1)
	b.ReviewEnd = addDays(b.ReviewStart, c.ReviewDays-1)
	b.EqualizationStart = addDays(b.ReviewEnd, 1)
	b.EqualizationEnd = addDays(b.EqualizationStart, c.EqualizationDays-1)
	return b
}

// DesiredStatus returns the phase the cycle should be in on the calendar day of now.
// When now falls between the last computed window and the end date, the stored status is kept.
func DesiredStatus(c *Cycle, now time.Time) Status {
	b := ComputeBoundaries(c)
	day := dateOf(now)

	switch {
	case day.Before(b.Start):
		return StatusScheduled
	case within(day, b.Start, b.InProgressEnd):
		return StatusInProgress
	case within(day, b.ReviewStart, b.ReviewEnd):
		return StatusInReview
	case within(day, b.EqualizationStart, b.EqualizationEnd):
		return StatusInEqualization
	case day.After(b.End):
		return StatusClosed
	default:
		return c.Status
	}
}

func within(day, from, to time.Time) bool {
	return !day.Before(from) && !day.After(to)
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// dateOf drops the clock part, keeping the calendar date as seen in t's own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
