/*
handlers.go - HTTP API handlers for the dispatch engine

PURPOSE:
  Exposes the plan rebuild pipeline and the supporting roster/backlog/plan
  resources over REST. Handles HTTP request/response, JSON serialization,
  and delegates scheduling decisions to the planner package.

ENDPOINTS:
  Plan:
    POST   /api/rebuild-plan        Purge and rebuild the window's auto plan
    GET    /api/plan                Read the plan window with utilization
    POST   /api/plan/items          Create a manual plan item
    DELETE /api/plan/items/{id}     Delete a manual plan item

  Roster:
    GET    /api/technicians         List the roster
    POST   /api/technicians         Create/update a technician

  Backlog:
    GET    /api/work-items          List work items
    POST   /api/work-items          Create/update a work item

  Admin:
    POST   /api/admin/clear-lock    Force-release a window lock

REBUILD FLOW:
  1. Parse and validate the window (400 on bad input)
  2. Acquire the window lock (409 when a rebuild is already running)
  3. Purge auto items and reset their work items to open
  4. Load backlog, roster, and manual items; run the allocation session
  5. Bulk-insert plan items and mark the scheduled work items planned
  6. Release the lock on every exit path

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (lock held, overlap, immutable item)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - planner: the allocation algorithm
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/dispatch-engine/metrics"
	"github.com/warp/dispatch-engine/planner"
	"github.com/warp/dispatch-engine/store/sqlite"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 31
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Log         zerolog.Logger
	PlannerCfg  planner.Config
	Schedulable []planner.Category
	LockTTL     time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log zerolog.Logger, cfg planner.Config, schedulable []planner.Category, lockTTL time.Duration) *Handler {
	if len(schedulable) == 0 {
		schedulable = []planner.Category{planner.CategoryOperational, planner.CategorySupport}
	}
	return &Handler{
		Store:       store,
		Log:         log,
		PlannerCfg:  cfg,
		Schedulable: schedulable,
		LockTTL:     lockTTL,
		now:         time.Now,
	}
}

// =============================================================================
// REBUILD
// =============================================================================

// RebuildPlan executes the full rebuild pipeline for one window.
func (h *Handler) RebuildPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	started := h.now()

	var req RebuildRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if req.StartDate == "" {
		writeError(w, r, http.StatusBadRequest, "start_date required", nil)
		return
	}

	start, days, err := h.resolveWindow(req.StartDate, req.Days)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid start_date format", err)
		return
	}

	lockKey := planner.WindowKey(start, days)
	if err := h.Store.AcquireLock(ctx, lockKey, h.LockTTL); err != nil {
		if errors.Is(err, planner.ErrLockHeld) {
			metrics.LockConflictsTotal.Inc()
			metrics.RebuildsTotal.WithLabelValues("conflict").Inc()
			writeJSON(w, http.StatusConflict, ErrorResponse{
				Error: "Already running (lock exists)",
				ReqID: reqID,
			})
			return
		}
		h.rebuildError(w, reqID, "failed to acquire planning lock", err)
		return
	}
	defer func() {
		// Release must survive a client disconnect cancelling the request
		// context; otherwise the lock stays held until the TTL sweeper.
		releaseCtx := context.WithoutCancel(r.Context())
		if err := h.Store.ReleaseLock(releaseCtx, lockKey); err != nil {
			h.Log.Error().Err(err).Str("lock_key", lockKey).Msg("failed to release planning lock")
		}
	}()

	resetIDs, err := h.Store.PurgeAutoItems(ctx, start, planner.WindowEnd(start, days))
	if err != nil {
		h.rebuildError(w, reqID, "failed to purge previous plan", err)
		return
	}

	backlog, err := h.Store.LoadBacklog(ctx)
	if err != nil {
		h.rebuildError(w, reqID, "failed to load backlog", err)
		return
	}
	techs, err := h.Store.ListActiveTechnicians(ctx)
	if err != nil {
		h.rebuildError(w, reqID, "failed to load roster", err)
		return
	}
	manual, err := h.Store.ManualItemsInWindow(ctx, start, planner.WindowEnd(start, days))
	if err != nil {
		h.rebuildError(w, reqID, "failed to load manual items", err)
		return
	}

	session := planner.NewSession(h.PlannerCfg, h.Log, h.Schedulable, backlog, techs, manual)
	result := session.Run(start, days)

	if err := h.Store.InsertPlanItems(ctx, result.PlanItems); err != nil {
		h.rebuildError(w, reqID, "failed to persist plan items", err)
		return
	}
	if err := h.Store.MarkPlanned(ctx, result.Scheduled); err != nil {
		h.rebuildError(w, reqID, "failed to mark work items planned", err)
		return
	}

	// Items still committed outside the window are skipped by the run, not
	// failed; they must not count as unscheduled.
	eligible := len(planner.OrderBacklog(backlog, h.Schedulable)) - result.Skipped
	unscheduled := eligible - len(result.Scheduled)
	if unscheduled < 0 {
		unscheduled = 0
	}

	metrics.RebuildsTotal.WithLabelValues("ok").Inc()
	metrics.RebuildDurationSeconds.Observe(h.now().Sub(started).Seconds())
	metrics.WorkItemsScheduled.Set(float64(len(result.Scheduled)))
	metrics.WorkItemsUnscheduled.Set(float64(unscheduled))

	h.Log.Info().
		Str("req_id", reqID).
		Str("window", lockKey).
		Int("reset", len(resetIDs)).
		Int("scheduled", len(result.Scheduled)).
		Int("unscheduled", unscheduled).
		Int("plan_items", len(result.PlanItems)).
		Msg("plan rebuilt")

	writeJSON(w, http.StatusOK, RebuildResponse{
		OK:          true,
		Scheduled:   len(result.Scheduled),
		Unscheduled: unscheduled,
		PlanItems:   len(result.PlanItems),
		ReqID:       reqID,
	})
}

func (h *Handler) rebuildError(w http.ResponseWriter, reqID, message string, err error) {
	metrics.RebuildsTotal.WithLabelValues("error").Inc()
	h.Log.Error().Err(err).Str("req_id", reqID).Msg(message)
	writeJSON(w, http.StatusInternalServerError, RebuildResponse{
		OK:      false,
		Message: message,
		ReqID:   reqID,
	})
}

// resolveWindow applies defaults and validates. An empty start date means
// today; days outside [1, maxWindowDays] is rejected.
func (h *Handler) resolveWindow(startDate string, days int) (time.Time, int, error) {
	start := planner.Midnight(h.now())
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid start_date %q: %w", startDate, err)
		}
		start = parsed
	}

	if days == 0 {
		days = defaultWindowDays
	}
	if days < 1 || days > maxWindowDays {
		return time.Time{}, 0, fmt.Errorf("%w: days must be in [1, %d], got %d",
			planner.ErrInvalidWindow, maxWindowDays, days)
	}
	return start, days, nil
}

// =============================================================================
// PLAN READS
// =============================================================================

// GetPlan returns the window's plan items with a utilization summary.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := defaultWindowDays
	if raw := q.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid days parameter", err)
			return
		}
		days = parsed
	}
	start, days, err := h.resolveWindow(q.Get("start_date"), days)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid window", err)
		return
	}

	items, err := h.Store.PlanItemsInWindow(r.Context(), start, planner.WindowEnd(start, days))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to load plan", err)
		return
	}

	dtos := make([]PlanItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toPlanItemDTO(item)
	}

	util := planner.Utilization(items, h.PlannerCfg.DailyCapMinutes)
	utilDTOs := make([]UtilizationDTO, len(util))
	for i, u := range util {
		utilDTOs[i] = UtilizationDTO{
			TechnicianID: u.TechnicianID,
			Date:         planner.DateKey(u.Date),
			MinutesUsed:  u.MinutesUsed,
			Items:        u.Items,
			Utilization:  u.Utilization.String(),
		}
	}

	writeJSON(w, http.StatusOK, PlanResponse{
		StartDate:   planner.DateKey(start),
		Days:        days,
		Items:       dtos,
		Utilization: utilDTOs,
	})
}

// =============================================================================
// MANUAL PLAN ITEMS
// =============================================================================

// CreateManualPlanItem books an operator-owned interval. It is rejected when
// it overlaps an existing booking for the same technician and date.
func (h *Handler) CreateManualPlanItem(w http.ResponseWriter, r *http.Request) {
	var req ManualPlanItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	planDate, err := time.Parse("2006-01-02", req.PlanDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid plan_date", err)
		return
	}
	if req.TechnicianID == "" || req.Title == "" {
		writeError(w, r, http.StatusBadRequest, "technician_id and title are required", nil)
		return
	}
	if req.StartMinute < 0 || req.EndMinute > 24*60 || req.StartMinute >= req.EndMinute {
		writeError(w, r, http.StatusBadRequest, "start_minute/end_minute out of range", nil)
		return
	}

	// Overlap check against everything already booked that day.
	dayEnd := planDate.AddDate(0, 0, 1)
	existing, err := h.Store.PlanItemsInWindow(r.Context(), planDate, dayEnd)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to check overlaps", err)
		return
	}
	for _, item := range existing {
		if item.TechnicianID != req.TechnicianID {
			continue
		}
		if req.StartMinute < item.EndMinute && req.EndMinute > item.StartMinute {
			writeError(w, r, http.StatusConflict, "Interval overlaps an existing booking",
				&planner.OverlapError{
					TechnicianID: req.TechnicianID,
					Date:         planDate,
					StartMinute:  req.StartMinute,
					EndMinute:    req.EndMinute,
				})
			return
		}
	}

	item := planner.PlanItem{
		ID:           uuid.NewString(),
		PlanDate:     planDate,
		TechnicianID: req.TechnicianID,
		StartMinute:  req.StartMinute,
		EndMinute:    req.EndMinute,
		Source:       planner.SourceManual,
		Fixed:        req.Fixed,
		ManualTitle:  req.Title,
		ManualNotes:  req.Notes,
	}
	if err := h.Store.InsertPlanItems(r.Context(), []planner.PlanItem{item}); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to create plan item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlanItemDTO(item))
}

// DeletePlanItem removes a manual plan item. Auto items are engine-owned
// and cannot be deleted through the API.
func (h *Handler) DeletePlanItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Store.DeleteManualPlanItem(r.Context(), id)
	switch {
	case errors.Is(err, planner.ErrPlanItemNotFound):
		writeError(w, r, http.StatusNotFound, "Plan item not found", nil)
	case errors.Is(err, planner.ErrImmutablePlanItem):
		writeError(w, r, http.StatusConflict, "Auto-generated plan items cannot be deleted; rebuild the plan instead", nil)
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "Failed to delete plan item", err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	}
}

// =============================================================================
// TECHNICIANS
// =============================================================================

// ListTechnicians returns the full roster.
func (h *Handler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	techs, err := h.Store.ListTechnicians(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to list technicians", err)
		return
	}

	dtos := make([]TechnicianDTO, len(techs))
	for i, t := range techs {
		dtos[i] = toTechnicianDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTechnician creates or updates a roster entry.
func (h *Handler) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	var req TechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required", nil)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	t := planner.Technician{
		ID:               req.ID,
		Name:             req.Name,
		Active:           active,
		DispatchPriority: req.DispatchPriority,
		Wildcard:         req.Wildcard,
		Skills:           req.Skills,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.DispatchPriority == 0 {
		t.DispatchPriority = 100
	}

	if err := h.Store.SaveTechnician(r.Context(), t); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to save technician", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTechnicianDTO(t))
}

// =============================================================================
// WORK ITEMS
// =============================================================================

// ListWorkItems returns all work items.
func (h *Handler) ListWorkItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListWorkItems(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to list work items", err)
		return
	}

	dtos := make([]WorkItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toWorkItemDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWorkItem creates or updates a backlog entry.
func (h *Handler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	var req WorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Category == "" {
		writeError(w, r, http.StatusBadRequest, "category is required", nil)
		return
	}

	item := planner.WorkItem{
		ID:               req.ID,
		Category:         planner.Category(req.Category),
		Priority:         planner.Priority(req.Priority),
		Criticality:      planner.Criticality(req.Criticality),
		SLABusinessDays:  3,
		EstimatedMinutes: req.EstimatedMinutes,
		RequiredPeople:   req.RequiredPeople,
		RequiredSkills:   req.RequiredSkills,
		Status:           planner.StatusOpen,
		CreatedAt:        h.now().UTC(),
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Priority == "" {
		item.Priority = planner.PriorityNormal
	}
	if item.Criticality == "" {
		item.Criticality = planner.CriticalityNonCritical
	}
	if req.SLABusinessDays != nil {
		item.SLABusinessDays = *req.SLABusinessDays
	}
	if item.EstimatedMinutes == 0 {
		item.EstimatedMinutes = h.PlannerCfg.DefaultDurationMinutes
	}
	if item.RequiredPeople == 0 {
		item.RequiredPeople = 1
	}

	if err := h.Store.SaveWorkItem(r.Context(), item); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to save work item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkItemDTO(item))
}

// =============================================================================
// ADMIN
// =============================================================================

// ClearLock force-releases a window lock. For operators recovering from a
// crashed rebuild before the TTL sweeper gets to it.
func (h *Handler) ClearLock(w http.ResponseWriter, r *http.Request) {
	var req ClearLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, days, err := h.resolveWindow(req.StartDate, req.Days)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid window", err)
		return
	}

	lockKey := planner.WindowKey(start, days)
	if err := h.Store.ReleaseLock(r.Context(), lockKey); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to clear lock", err)
		return
	}

	h.Log.Warn().Str("lock_key", lockKey).Msg("planning lock force-released")
	writeJSON(w, http.StatusOK, map[string]any{"cleared": lockKey})
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := ErrorResponse{Error: message, ReqID: middleware.GetReqID(r.Context())}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
