/*
ledger.go - Per-technician-per-date load tracking

PURPOSE:
  The DayLoadLedger is the run-scoped record of how many minutes each
  technician has committed on each date, and which exact intervals are
  booked. Every capacity and overlap decision during allocation goes
  through it.

LIFECYCLE:
  Rebuilt from scratch at the start of each run. Prior auto plan items are
  purged before allocation, so the ledger never sees them; manual/fixed
  items inside the window ARE seeded so auto-allocation can never
  double-book a technician an operator already committed.

INVARIANTS ENFORCED:
  - No two intervals for one (technician, date) overlap
  - Sum of interval durations per (technician, date) <= daily cap
*/
package planner

import "time"

type interval struct {
	start int
	end   int // exclusive
}

type dayLoad struct {
	minutes   int
	intervals []interval
}

// DayLoadLedger tracks allocated minutes and booked intervals per
// (technician, date) for a single run. Not safe for concurrent use; a run
// is a single logical thread by design.
type DayLoadLedger struct {
	capMinutes int
	loads      map[string]*dayLoad
}

// NewDayLoadLedger creates an empty ledger with the given daily cap.
func NewDayLoadLedger(capMinutes int) *DayLoadLedger {
	return &DayLoadLedger{
		capMinutes: capMinutes,
		loads:      make(map[string]*dayLoad),
	}
}

func ledgerKey(techID string, date time.Time) string {
	return techID + "|" + DateKey(date)
}

func (l *DayLoadLedger) day(techID string, date time.Time) *dayLoad {
	key := ledgerKey(techID, date)
	d, ok := l.loads[key]
	if !ok {
		d = &dayLoad{}
		l.loads[key] = d
	}
	return d
}

// Seed books pre-existing manual/fixed plan items so the allocator treats
// their intervals as occupied. Auto items must not be seeded; they are
// purged before allocation.
func (l *DayLoadLedger) Seed(items []PlanItem) {
	for _, item := range items {
		d := l.day(item.TechnicianID, item.PlanDate)
		d.intervals = append(d.intervals, interval{start: item.StartMinute, end: item.EndMinute})
		d.minutes += item.DurationMinutes()
	}
}

// Load returns the minutes already committed for a technician on a date.
func (l *DayLoadLedger) Load(techID string, date time.Time) int {
	if d, ok := l.loads[ledgerKey(techID, date)]; ok {
		return d.minutes
	}
	return 0
}

// Fits reports whether duration more minutes stay within the daily cap.
func (l *DayLoadLedger) Fits(techID string, date time.Time, duration int) bool {
	return l.Load(techID, date)+duration <= l.capMinutes
}

// Overlaps reports whether [start,end) collides with any booked interval
// for the technician on the date.
func (l *DayLoadLedger) Overlaps(techID string, date time.Time, start, end int) bool {
	d, ok := l.loads[ledgerKey(techID, date)]
	if !ok {
		return false
	}
	for _, iv := range d.intervals {
		if start < iv.end && end > iv.start {
			return true
		}
	}
	return false
}

// Commit books [start,end) for the technician and returns the sequence
// number of the new interval within the technician-day (tie-break ordering
// for display). Callers must have checked Fits and Overlaps first.
func (l *DayLoadLedger) Commit(techID string, date time.Time, start, end int) int {
	d := l.day(techID, date)
	seq := len(d.intervals)
	d.intervals = append(d.intervals, interval{start: start, end: end})
	d.minutes += end - start
	return seq
}
