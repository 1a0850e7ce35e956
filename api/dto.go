/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the HTTP API, kept separate from the planner domain types
  so wire compatibility never leaks into the engine.
*/
package api

import (
	"time"

	"github.com/warp/dispatch-engine/planner"
)

// =============================================================================
// REQUESTS
// =============================================================================

// RebuildRequest is the body of POST /api/rebuild-plan.
type RebuildRequest struct {
	StartDate string `json:"start_date"` // "2006-01-02"; empty means today
	Days      int    `json:"days"`       // window length; default 7
}

// ManualPlanItemRequest is the body of POST /api/plan/items.
type ManualPlanItemRequest struct {
	PlanDate     string `json:"plan_date"`
	TechnicianID string `json:"technician_id"`
	StartMinute  int    `json:"start_minute"`
	EndMinute    int    `json:"end_minute"`
	Title        string `json:"title"`
	Notes        string `json:"notes,omitempty"`
	Fixed        bool   `json:"fixed,omitempty"`
}

// TechnicianRequest is the body of POST /api/technicians.
type TechnicianRequest struct {
	ID               string   `json:"id,omitempty"`
	Name             string   `json:"name"`
	Active           *bool    `json:"active,omitempty"`
	DispatchPriority int      `json:"dispatch_priority"`
	Wildcard         bool     `json:"wildcard,omitempty"`
	Skills           []string `json:"skills,omitempty"`
}

// WorkItemRequest is the body of POST /api/work-items.
type WorkItemRequest struct {
	ID               string   `json:"id,omitempty"`
	Category         string   `json:"category"`
	Priority         string   `json:"priority,omitempty"`
	Criticality      string   `json:"criticality,omitempty"`
	SLABusinessDays  *int     `json:"sla_business_days,omitempty"`
	EstimatedMinutes int      `json:"estimated_minutes,omitempty"`
	RequiredPeople   int      `json:"required_people,omitempty"`
	RequiredSkills   []string `json:"required_skills,omitempty"`
}

// ClearLockRequest is the body of POST /api/admin/clear-lock.
type ClearLockRequest struct {
	StartDate string `json:"start_date"`
	Days      int    `json:"days"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// RebuildResponse reports a rebuild outcome. ReqID carries the request id
// from the middleware so a failed run can be found in the logs.
type RebuildResponse struct {
	OK          bool   `json:"ok"`
	Scheduled   int    `json:"scheduled"`
	Unscheduled int    `json:"unscheduled"`
	PlanItems   int    `json:"plan_items"`
	Message     string `json:"message,omitempty"`
	ReqID       string `json:"reqId,omitempty"`
}

// PlanItemDTO is one booked interval on the wire.
type PlanItemDTO struct {
	ID                string `json:"id"`
	PlanDate          string `json:"plan_date"`
	TechnicianID      string `json:"technician_id"`
	WorkItemID        string `json:"work_item_id,omitempty"`
	StartMinute       int    `json:"start_minute"`
	EndMinute         int    `json:"end_minute"`
	Sequence          int    `json:"sequence"`
	Source            string `json:"source"`
	Fixed             bool   `json:"fixed"`
	ManualTitle       string `json:"manual_title,omitempty"`
	ManualNotes       string `json:"manual_notes,omitempty"`
	AssignmentGroupID string `json:"assignment_group_id,omitempty"`
}

// UtilizationDTO is one technician-day load summary.
type UtilizationDTO struct {
	TechnicianID string `json:"technician_id"`
	Date         string `json:"date"`
	MinutesUsed  int    `json:"minutes_used"`
	Items        int    `json:"items"`
	Utilization  string `json:"utilization"`
}

// PlanResponse is the body of GET /api/plan.
type PlanResponse struct {
	StartDate   string           `json:"start_date"`
	Days        int              `json:"days"`
	Items       []PlanItemDTO    `json:"items"`
	Utilization []UtilizationDTO `json:"utilization"`
}

// TechnicianDTO is one roster entry on the wire.
type TechnicianDTO struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Active           bool     `json:"active"`
	DispatchPriority int      `json:"dispatch_priority"`
	Wildcard         bool     `json:"wildcard"`
	Skills           []string `json:"skills"`
}

// WorkItemDTO is one backlog entry on the wire.
type WorkItemDTO struct {
	ID                string   `json:"id"`
	Category          string   `json:"category"`
	Priority          string   `json:"priority"`
	Criticality       string   `json:"criticality"`
	SLABusinessDays   int      `json:"sla_business_days"`
	EstimatedMinutes  int      `json:"estimated_minutes"`
	RequiredPeople    int      `json:"required_people"`
	RequiredSkills    []string `json:"required_skills"`
	Status            string   `json:"status"`
	AssignmentGroupID string   `json:"assignment_group_id,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

// ErrorResponse is the standard error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	ReqID   string `json:"reqId,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPlanItemDTO(item planner.PlanItem) PlanItemDTO {
	return PlanItemDTO{
		ID:                item.ID,
		PlanDate:          planner.DateKey(item.PlanDate),
		TechnicianID:      item.TechnicianID,
		WorkItemID:        item.WorkItemID,
		StartMinute:       item.StartMinute,
		EndMinute:         item.EndMinute,
		Sequence:          item.Sequence,
		Source:            string(item.Source),
		Fixed:             item.Fixed,
		ManualTitle:       item.ManualTitle,
		ManualNotes:       item.ManualNotes,
		AssignmentGroupID: item.AssignmentGroupID,
	}
}

func toTechnicianDTO(t planner.Technician) TechnicianDTO {
	skills := t.Skills
	if skills == nil {
		skills = []string{}
	}
	return TechnicianDTO{
		ID:               t.ID,
		Name:             t.Name,
		Active:           t.Active,
		DispatchPriority: t.DispatchPriority,
		Wildcard:         t.Wildcard,
		Skills:           skills,
	}
}

func toWorkItemDTO(w planner.WorkItem) WorkItemDTO {
	skills := w.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return WorkItemDTO{
		ID:                w.ID,
		Category:          string(w.Category),
		Priority:          string(w.Priority),
		Criticality:       string(w.Criticality),
		SLABusinessDays:   w.SLABusinessDays,
		EstimatedMinutes:  w.EstimatedMinutes,
		RequiredPeople:    w.RequiredPeople,
		RequiredSkills:    skills,
		Status:            string(w.Status),
		AssignmentGroupID: w.AssignmentGroupID,
		CreatedAt:         w.CreatedAt.Format(time.RFC3339),
	}
}
