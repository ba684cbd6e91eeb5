package leveling

import (
	"fmt"
	"time"
)

// DayCycle owns the effective-day boundary: a calendar day that rolls over
// at a configured civil time in a fixed timezone instead of UTC midnight.
// Every consumer of day keys (ledger, scheduler, stats) must go through the
// same DayCycle so the boundary is computed identically everywhere.
type DayCycle struct {
	loc         *time.Location
	resetHour   int
	resetMinute int
}

func NewDayCycle(tzName string, resetHour, resetMinute int) (*DayCycle, error) {
	if resetHour < 0 || resetHour > 23 {
		return nil, fmt.Errorf("day cycle: reset hour out of range: %d", resetHour)
	}
	if resetMinute < 0 || resetMinute > 59 {
		return nil, fmt.Errorf("day cycle: reset minute out of range: %d", resetMinute)
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("day cycle: unknown timezone %q: %w", tzName, err)
	}
	return &DayCycle{loc: loc, resetHour: resetHour, resetMinute: resetMinute}, nil
}

func (d *DayCycle) Location() *time.Location { return d.loc }

// EffectiveDay returns the day key (YYYY-MM-DD) the given instant belongs
// to. Before the reset time the instant still counts toward the previous
// calendar date.
func (d *DayCycle) EffectiveDay(t time.Time) string {
	local := t.In(d.loc)
	day := local
	resetToday := time.Date(local.Year(), local.Month(), local.Day(), d.resetHour, d.resetMinute, 0, 0, d.loc)
	if local.Before(resetToday) {
		day = local.AddDate(0, 0, -1)
	}
	return day.Format(time.DateOnly)
}

// NextReset returns the next boundary strictly after t, used by the
// scheduler to time the daily wipe.
func (d *DayCycle) NextReset(t time.Time) time.Time {
	local := t.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.resetHour, d.resetMinute, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.resetHour, d.resetMinute, 0, 0, d.loc)
	}
	return next
}

// RetentionCutoff returns the day key before which rows are considered
// expired, given a retention window in days.
func (d *DayCycle) RetentionCutoff(t time.Time, retentionDays int) string {
	return d.EffectiveDay(t.AddDate(0, 0, -retentionDays))
}
