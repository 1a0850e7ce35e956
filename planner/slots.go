/*
slots.go - Business-hour slot search

PURPOSE:
  Finds the earliest common free interval for a crew on one date. The grid
  is walked in fixed steps across the business blocks (morning and
  afternoon, lunch excluded); a candidate interval must fit entirely inside
  one block.

EARLIEST-SLOT-WINS:
  For each candidate start minute, the score-sorted technician list is
  walked greedily, collecting the first technicians with no overlapping
  booking, until the crew is full or the list is exhausted. The first start
  minute that fills the crew wins; no best-fit search is attempted.
*/
package planner

import "time"

// Slot is a winning interval with the crew that will work it.
type Slot struct {
	Start       int
	End         int
	Technicians []Technician
}

// FindSlot searches the date's business-hour grid for the earliest interval
// of the given duration where crew technicians from candidates are all
// free. Candidates must already be sorted by preference (see
// TechnicianRoster.Candidates). Returns false when no start minute yields a
// full crew.
func FindSlot(ledger *DayLoadLedger, date time.Time, duration, crew int, candidates []Technician, cfg Config) (Slot, bool) {
	if duration <= 0 || crew <= 0 || len(candidates) < crew {
		return Slot{}, false
	}

	for _, block := range cfg.Blocks {
		for start := block.Start; start+duration <= block.End; start += cfg.SlotStepMinutes {
			end := start + duration

			free := make([]Technician, 0, crew)
			for _, tech := range candidates {
				if ledger.Overlaps(tech.ID, date, start, end) {
					continue
				}
				free = append(free, tech)
				if len(free) == crew {
					break
				}
			}
			if len(free) == crew {
				return Slot{Start: start, End: end, Technicians: free}, true
			}
		}
	}

	return Slot{}, false
}
