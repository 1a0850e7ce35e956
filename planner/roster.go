/*
roster.go - Technician filtering and scoring

PURPOSE:
  Holds the active technicians for a run and answers, for a given work item
  and candidate date, which technicians qualify and in what preference
  order.

SCORING:
  score = (wildcard ? penalty : 0) + dispatch_priority + currentLoadMinutes

  Lower wins. The wildcard penalty pushes overflow technicians to last
  resort; among regulars, lower dispatch_priority is preferred; among equal
  priorities the lighter-loaded technician wins, which balances load across
  the day.
*/
package planner

import (
	"sort"
	"time"
)

// TechnicianRoster holds the active technicians for one run.
type TechnicianRoster struct {
	techs           []Technician
	wildcardPenalty int
}

// NewRoster keeps only active technicians. The input order does not matter;
// Candidates re-sorts per query.
func NewRoster(techs []Technician, wildcardPenalty int) *TechnicianRoster {
	active := make([]Technician, 0, len(techs))
	for _, t := range techs {
		if t.Active {
			active = append(active, t)
		}
	}
	return &TechnicianRoster{techs: active, wildcardPenalty: wildcardPenalty}
}

// Size returns the number of active technicians.
func (r *TechnicianRoster) Size() int {
	return len(r.techs)
}

type scoredTech struct {
	tech  Technician
	score int
}

// Candidates returns the technicians qualified for a work item on a date,
// sorted ascending by score. A technician qualifies when their skill set
// covers required and duration more minutes still fit under the daily cap.
func (r *TechnicianRoster) Candidates(ledger *DayLoadLedger, date time.Time, required []string, duration int) []Technician {
	scored := make([]scoredTech, 0, len(r.techs))
	for _, t := range r.techs {
		if !t.HasSkills(required) {
			continue
		}
		if !ledger.Fits(t.ID, date, duration) {
			continue
		}
		score := t.DispatchPriority + ledger.Load(t.ID, date)
		if t.Wildcard {
			score += r.wildcardPenalty
		}
		scored = append(scored, scoredTech{tech: t, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score < scored[j].score
		}
		// Deterministic tie-break so identical runs produce identical plans.
		return scored[i].tech.ID < scored[j].tech.ID
	})

	out := make([]Technician, len(scored))
	for i, s := range scored {
		out[i] = s.tech
	}
	return out
}
