/*
Package planner contains the technician dispatch engine.

PURPOSE:
  Given a multi-day planning window, a backlog of service work items, and a
  roster of technicians, produce a conflict-free assignment of technicians
  to business-hour time slots. The algorithm is greedy and single-pass:
  items are visited in strict priority order, each item claims the earliest
  slot on its most preferred eligible date, and no later item can bump an
  earlier commitment.

KEY CONCEPTS IN THIS FILE (types.go):
  - WorkItem:   A unit of schedulable work (skills, duration, crew size)
  - Technician: A schedulable resource (skills, dispatch priority, wildcard)
  - PlanItem:   One technician's booked interval for one date
  - Assignment: The (work item, group id) pair recorded when an item lands

DESIGN PRINCIPLES:
  1. Determinism: the same backlog + roster always yields the same plan
  2. Session scope: all mutable scheduling state lives in a Session object,
     never in package-level variables
  3. Minutes everywhere: intervals are integer minutes since midnight

SEE ALSO:
  - allocator.go: The allocation session and greedy loop
  - ledger.go:    Per-technician-per-date load tracking
  - slots.go:     Business-hour slot search
*/
package planner

import (
	"time"
)

// =============================================================================
// ENUMS
// =============================================================================

// Priority is the urgency class of a work item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank maps a priority to its comparable weight (higher = more urgent).
// Unknown values rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Criticality forces same-day-eligible, highest-precedence scheduling.
type Criticality string

const (
	CriticalityCritical    Criticality = "critical"
	CriticalityNonCritical Criticality = "non_critical"
)

// Category classifies a work item. Only a subset of categories is
// schedulable by the dispatch engine; the rest belong to other teams.
type Category string

const (
	CategoryFinancial   Category = "financial"
	CategorySupport     Category = "support"
	CategoryAdmin       Category = "admin"
	CategoryOperational Category = "operational"
)

// WorkItemStatus tracks the scheduling lifecycle of a work item.
// The engine only ever moves open -> planned.
type WorkItemStatus string

const (
	StatusOpen    WorkItemStatus = "open"
	StatusPlanned WorkItemStatus = "planned"
)

// PlanSource distinguishes engine-generated plan items from
// operator-created ones.
type PlanSource string

const (
	SourceAuto   PlanSource = "auto"
	SourceManual PlanSource = "manual"
)

// =============================================================================
// DOMAIN TYPES
// =============================================================================

// WorkItem is a unit of technician-assignable work derived from a service
// ticket. Owned by the ticketing subsystem; the engine reads it and, on a
// successful allocation, writes status and assignment_group_id.
type WorkItem struct {
	ID                string
	Category          Category
	Priority          Priority
	Criticality       Criticality
	SLABusinessDays   int
	EstimatedMinutes  int
	RequiredPeople    int
	RequiredSkills    []string
	Status            WorkItemStatus
	CreatedAt         time.Time
	AssignmentGroupID string // empty when unscheduled
}

// Critical reports whether the item must be scheduled with same-day
// eligibility and highest precedence. An SLA of zero business days counts
// as critical regardless of the flag.
func (w WorkItem) Critical() bool {
	return w.Criticality == CriticalityCritical || w.SLABusinessDays == 0
}

// Duration returns the estimated minutes, defaulting when unset.
func (w WorkItem) Duration(defaultMinutes int) int {
	if w.EstimatedMinutes > 0 {
		return w.EstimatedMinutes
	}
	return defaultMinutes
}

// Crew returns the required crew size, at least one.
func (w WorkItem) Crew() int {
	if w.RequiredPeople > 1 {
		return w.RequiredPeople
	}
	return 1
}

// Technician is a schedulable resource. Read-only to the engine within a
// run.
type Technician struct {
	ID               string
	Name             string
	Active           bool
	DispatchPriority int // lower = preferred
	Wildcard         bool
	Skills           []string
}

// HasSkills reports whether the technician's skill set is a superset of
// required.
func (t Technician) HasSkills(required []string) bool {
	for _, need := range required {
		found := false
		for _, have := range t.Skills {
			if have == need {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// PlanItem is one technician's committed time interval for one date.
// Engine-generated items carry source=auto; operator-created items carry
// source=manual and are never touched by a rebuild.
type PlanItem struct {
	ID                string
	PlanDate          time.Time // midnight, date component only
	TechnicianID      string
	WorkItemID        string // empty for manual items
	StartMinute       int
	EndMinute         int
	Sequence          int
	Source            PlanSource
	Fixed             bool
	ManualTitle       string
	ManualNotes       string
	AssignmentGroupID string
	CreatedAt         time.Time
}

// Manual reports whether the item is operator-owned and must survive
// rebuilds.
func (p PlanItem) Manual() bool {
	return p.Source == SourceManual || p.Fixed
}

// DurationMinutes returns the interval length.
func (p PlanItem) DurationMinutes() int {
	return p.EndMinute - p.StartMinute
}

// Assignment records one scheduled work item: the item and the group id
// shared by its plan items.
type Assignment struct {
	WorkItemID        string
	AssignmentGroupID string
}

// =============================================================================
// ENGINE CONFIG
// =============================================================================

// Block is a contiguous run of business minutes. Slots never span block
// boundaries (the lunch gap).
type Block struct {
	Start int // inclusive, minutes since midnight
	End   int // exclusive
}

// Config carries the tunable scheduling policy. Zero values are replaced by
// DefaultConfig() equivalents in NewSession.
type Config struct {
	DailyCapMinutes        int
	SlotStepMinutes        int
	DefaultDurationMinutes int
	WildcardPenalty        int
	Blocks                 []Block

	// SpareToday deprioritizes same-day slots for non-critical items so
	// urgent and critical work can claim them. Candidate dates are visited
	// as [d+1, d+2, d+0, d+3, d+4, ...] instead of chronologically.
	SpareToday bool
}

// DefaultConfig returns the standard policy: 480-minute daily cap,
// 15-minute grid, 60-minute default duration, business blocks 08:00-12:00
// and 13:00-17:00, same-day slots reserved for critical work.
func DefaultConfig() Config {
	return Config{
		DailyCapMinutes:        480,
		SlotStepMinutes:        15,
		DefaultDurationMinutes: 60,
		WildcardPenalty:        100000,
		Blocks: []Block{
			{Start: 8 * 60, End: 12 * 60},
			{Start: 13 * 60, End: 17 * 60},
		},
		SpareToday: true,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DailyCapMinutes <= 0 {
		c.DailyCapMinutes = def.DailyCapMinutes
	}
	if c.SlotStepMinutes <= 0 {
		c.SlotStepMinutes = def.SlotStepMinutes
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = def.DefaultDurationMinutes
	}
	if c.WildcardPenalty <= 0 {
		c.WildcardPenalty = def.WildcardPenalty
	}
	if len(c.Blocks) == 0 {
		c.Blocks = def.Blocks
	}
	return c
}
