/*
allocator.go - The allocation session

PURPOSE:
  Orchestrates the greedy assignment loop end-to-end. A Session holds every
  piece of mutable scheduling state for one run (ordered backlog, roster,
  day-load ledger, accumulated results), so the algorithm is testable in
  isolation with synthetic rosters and backlogs and there is no
  package-level state.

STATE MACHINE (per work item):
  Unscheduled -> Scheduled   (terminal; group id assigned, plan items built)
  Unscheduled -> Unscheduled (no date yielded a slot; stays in the backlog
                              for the next rebuild)

  Strictly greedy and single-pass: no later item can bump or reshuffle an
  earlier commitment.

SEE ALSO:
  - queue.go:    the order items are visited in
  - calendar.go: the order dates are tried in
  - slots.go:    the within-date search
*/
package planner

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session is the single allocation-session object passed through the
// pipeline. All technician and work-item data is loaded up front; Run then
// executes purely in memory.
type Session struct {
	cfg     Config
	log     zerolog.Logger
	backlog []WorkItem
	roster  *TechnicianRoster
	ledger  *DayLoadLedger

	planItems []PlanItem
	scheduled []Assignment
	skipped   int
}

// Result is what a run produced: the plan items to bulk-insert, the
// work-item status transitions to apply, and the count of items skipped
// because they were already committed outside the window.
type Result struct {
	PlanItems []PlanItem
	Scheduled []Assignment
	Skipped   int
}

// NewSession builds a session from pre-loaded data. backlog is the raw
// (unfiltered, unsorted) work-item set; manualItems are the manual/fixed
// plan items inside the window, seeded into the ledger so auto-allocation
// never double-books an operator commitment.
func NewSession(cfg Config, log zerolog.Logger, schedulable []Category, backlog []WorkItem, techs []Technician, manualItems []PlanItem) *Session {
	cfg = cfg.withDefaults()
	ledger := NewDayLoadLedger(cfg.DailyCapMinutes)
	ledger.Seed(manualItems)

	return &Session{
		cfg:     cfg,
		log:     log,
		backlog: OrderBacklog(backlog, schedulable),
		roster:  NewRoster(techs, cfg.WildcardPenalty),
		ledger:  ledger,
	}
}

// Run walks the backlog once and returns the produced plan. Items that are
// still planned from outside the rebuilt window are skipped; everything
// else either lands on its first workable (date, slot) or stays
// unscheduled.
func (s *Session) Run(start time.Time, days int) Result {
	for _, item := range s.backlog {
		if item.Status == StatusPlanned && item.AssignmentGroupID != "" {
			// Committed outside this window; never reshuffled.
			s.skipped++
			continue
		}
		if !s.place(item, start, days) {
			s.log.Debug().
				Str("work_item", item.ID).
				Str("priority", string(item.Priority)).
				Msg("no slot found, item stays unscheduled")
		}
	}

	return Result{PlanItems: s.planItems, Scheduled: s.scheduled, Skipped: s.skipped}
}

// place tries the item's candidate dates in preference order and commits
// the first full slot. Returns false when every date is rejected.
func (s *Session) place(item WorkItem, start time.Time, days int) bool {
	duration := item.Duration(s.cfg.DefaultDurationMinutes)
	crew := item.Crew()

	for _, date := range CandidateDates(start, days, item.Critical(), s.cfg.SpareToday) {
		candidates := s.roster.Candidates(s.ledger, date, item.RequiredSkills, duration)
		if len(candidates) < crew {
			continue
		}

		slot, ok := FindSlot(s.ledger, date, duration, crew, candidates, s.cfg)
		if !ok {
			continue
		}

		s.commit(item, date, slot)
		return true
	}
	return false
}

func (s *Session) commit(item WorkItem, date time.Time, slot Slot) {
	groupID := uuid.NewString()
	for _, tech := range slot.Technicians {
		seq := s.ledger.Commit(tech.ID, date, slot.Start, slot.End)
		s.planItems = append(s.planItems, PlanItem{
			ID:                uuid.NewString(),
			PlanDate:          date,
			TechnicianID:      tech.ID,
			WorkItemID:        item.ID,
			StartMinute:       slot.Start,
			EndMinute:         slot.End,
			Sequence:          seq,
			Source:            SourceAuto,
			AssignmentGroupID: groupID,
		})
	}
	s.scheduled = append(s.scheduled, Assignment{
		WorkItemID:        item.ID,
		AssignmentGroupID: groupID,
	})

	s.log.Debug().
		Str("work_item", item.ID).
		Str("date", DateKey(date)).
		Int("start", slot.Start).
		Int("end", slot.End).
		Int("crew", len(slot.Technicians)).
		Msg("work item scheduled")
}
