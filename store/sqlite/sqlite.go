/*
Package sqlite provides the SQLite-backed persistence for the dispatch
engine.

PURPOSE:
  Implements every persistence operation the rebuild pipeline and the API
  need: roster and backlog loading, plan item purge/insert, work-item status
  transitions, and the planner lock table. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  technicians:       Roster (dispatch_priority, is_wildcard, is_active)
  technician_skills: (technician_id, skill_code) pairs
  work_items:        Backlog owned by the ticketing subsystem
  plan_items:        Booked intervals, source=auto|manual
  planner_locks:     Window mutex rows; uniqueness is the only primitive

LOCKING:
  AcquireLock is an INSERT that fails on the primary-key constraint; a
  concurrent run gets an immediate conflict, never a queue. A lock row
  older than the TTL is treated as abandoned by a crashed run: it is
  deleted and the insert retried once.

SCHEMA DEGRADATION:
  Older deployments lack the technicians.is_wildcard column. Roster loading
  detects the missing column and re-queries without it, defaulting the flag
  to false, instead of failing the whole run.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, plus WAL mode so readers don't block.

SEE ALSO:
  - planner: domain types persisted here
  - api/handlers.go: the rebuild pipeline calling into this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/dispatch-engine/planner"
)

// Store implements all persistence operations using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Roster
	CREATE TABLE IF NOT EXISTS technicians (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		dispatch_priority INTEGER NOT NULL DEFAULT 100,
		is_wildcard BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS technician_skills (
		technician_id TEXT NOT NULL,
		skill_code TEXT NOT NULL,
		PRIMARY KEY (technician_id, skill_code)
	);

	-- Backlog (owned by the ticketing subsystem; the engine reads it and
	-- writes status/assignment_group_id on success)
	CREATE TABLE IF NOT EXISTS work_items (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'normal',
		criticality TEXT NOT NULL DEFAULT 'non_critical',
		sla_business_days INTEGER NOT NULL DEFAULT 3,
		estimated_minutes INTEGER NOT NULL DEFAULT 60,
		required_people INTEGER NOT NULL DEFAULT 1,
		required_skill_codes TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'open',
		assignment_group_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_items_status
		ON work_items(status);

	-- Booked intervals
	CREATE TABLE IF NOT EXISTS plan_items (
		id TEXT PRIMARY KEY,
		plan_date TEXT NOT NULL,
		technician_id TEXT NOT NULL,
		work_item_id TEXT,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		sequence INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT 'auto',
		is_fixed BOOLEAN NOT NULL DEFAULT FALSE,
		manual_title TEXT,
		manual_notes TEXT,
		assignment_group_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plan_items_date
		ON plan_items(plan_date);
	CREATE INDEX IF NOT EXISTS idx_plan_items_tech_date
		ON plan_items(technician_id, plan_date);
	CREATE INDEX IF NOT EXISTS idx_plan_items_group
		ON plan_items(assignment_group_id) WHERE assignment_group_id IS NOT NULL;

	-- Window mutex; the primary key is the sole concurrency primitive
	CREATE TABLE IF NOT EXISTS planner_locks (
		lock_key TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PLANNER LOCKS
// =============================================================================

// AcquireLock inserts the window lock row. A held lock yields
// planner.ErrLockHeld immediately; there is no retry or backoff. A lock row
// older than ttl is treated as abandoned by a crashed run: it is cleared
// and the insert retried once.
func (s *Store) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.insertLock(ctx, lockKey)
	if err == nil {
		return nil
	}
	if !isUniqueConstraintError(err) {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	// Lock row exists. Steal it only if it outlived the TTL.
	var createdAt string
	err = s.db.QueryRowContext(ctx,
		"SELECT created_at FROM planner_locks WHERE lock_key = ?", lockKey,
	).Scan(&createdAt)
	if err == sql.ErrNoRows {
		// Released between our insert and the read; one more try.
		return s.retryInsertLock(ctx, lockKey)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect lock: %w", err)
	}

	at, parseErr := time.Parse(time.RFC3339, createdAt)
	if parseErr == nil && ttl > 0 && time.Since(at) > ttl {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM planner_locks WHERE lock_key = ? AND created_at = ?",
			lockKey, createdAt,
		); err != nil {
			return fmt.Errorf("failed to clear stale lock: %w", err)
		}
		return s.retryInsertLock(ctx, lockKey)
	}

	return planner.ErrLockHeld
}

func (s *Store) insertLock(ctx context.Context, lockKey string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO planner_locks (lock_key, created_at) VALUES (?, ?)",
		lockKey, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) retryInsertLock(ctx context.Context, lockKey string) error {
	if err := s.insertLock(ctx, lockKey); err != nil {
		if isUniqueConstraintError(err) {
			return planner.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

// ReleaseLock deletes the lock row. Unconditional: releasing a lock that is
// not held is not an error, so cleanup can run on every exit path.
func (s *Store) ReleaseLock(ctx context.Context, lockKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM planner_locks WHERE lock_key = ?", lockKey)
	return err
}

// SweepExpiredLocks deletes lock rows older than ttl and returns how many
// were removed. Backs the background stale-lock sweeper.
func (s *Store) SweepExpiredLocks(ctx context.Context, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-ttl).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM planner_locks WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// TECHNICIANS
// =============================================================================

// SaveTechnician upserts a technician and replaces their skill rows.
func (s *Store) SaveTechnician(ctx context.Context, t planner.Technician) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO technicians (id, name, is_active, dispatch_priority, is_wildcard, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_active = excluded.is_active,
			dispatch_priority = excluded.dispatch_priority,
			is_wildcard = excluded.is_wildcard
	`, t.ID, t.Name, t.Active, t.DispatchPriority, t.Wildcard,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM technician_skills WHERE technician_id = ?", t.ID); err != nil {
		return err
	}
	for _, code := range t.Skills {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO technician_skills (technician_id, skill_code) VALUES (?, ?)",
			t.ID, code); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListTechnicians returns all technicians with their skills.
func (s *Store) ListTechnicians(ctx context.Context) ([]planner.Technician, error) {
	return s.listTechnicians(ctx, false)
}

// ListActiveTechnicians returns the active roster for an allocation run.
func (s *Store) ListActiveTechnicians(ctx context.Context) ([]planner.Technician, error) {
	return s.listTechnicians(ctx, true)
}

func (s *Store) listTechnicians(ctx context.Context, activeOnly bool) ([]planner.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := ""
	if activeOnly {
		where = "WHERE is_active = TRUE"
	}

	query := fmt.Sprintf(`
		SELECT id, name, is_active, dispatch_priority, is_wildcard
		FROM technicians %s ORDER BY dispatch_priority ASC, name ASC
	`, where)

	techs, err := s.queryTechnicians(ctx, query, true)
	if err != nil && isMissingColumnError(err, "is_wildcard") {
		// Older schema without the wildcard flag: degrade gracefully and
		// default the flag to false rather than failing the run.
		fallback := fmt.Sprintf(`
			SELECT id, name, is_active, dispatch_priority
			FROM technicians %s ORDER BY dispatch_priority ASC, name ASC
		`, where)
		techs, err = s.queryTechnicians(ctx, fallback, false)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachSkills(ctx, techs); err != nil {
		return nil, err
	}
	return techs, nil
}

func (s *Store) queryTechnicians(ctx context.Context, query string, withWildcard bool) ([]planner.Technician, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var techs []planner.Technician
	for rows.Next() {
		var t planner.Technician
		if withWildcard {
			err = rows.Scan(&t.ID, &t.Name, &t.Active, &t.DispatchPriority, &t.Wildcard)
		} else {
			err = rows.Scan(&t.ID, &t.Name, &t.Active, &t.DispatchPriority)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan technician: %w", err)
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

func (s *Store) attachSkills(ctx context.Context, techs []planner.Technician) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT technician_id, skill_code FROM technician_skills ORDER BY skill_code")
	if err != nil {
		return err
	}
	defer rows.Close()

	skills := make(map[string][]string)
	for rows.Next() {
		var techID, code string
		if err := rows.Scan(&techID, &code); err != nil {
			return err
		}
		skills[techID] = append(skills[techID], code)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range techs {
		techs[i].Skills = skills[techs[i].ID]
	}
	return nil
}

// =============================================================================
// WORK ITEMS
// =============================================================================

// SaveWorkItem upserts a work item.
func (s *Store) SaveWorkItem(ctx context.Context, w planner.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skillsJSON, _ := json.Marshal(w.RequiredSkills)
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_items
		(id, category, priority, criticality, sla_business_days, estimated_minutes,
		 required_people, required_skill_codes, status, assignment_group_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			priority = excluded.priority,
			criticality = excluded.criticality,
			sla_business_days = excluded.sla_business_days,
			estimated_minutes = excluded.estimated_minutes,
			required_people = excluded.required_people,
			required_skill_codes = excluded.required_skill_codes,
			status = excluded.status,
			assignment_group_id = excluded.assignment_group_id
	`, w.ID, w.Category, w.Priority, w.Criticality, w.SLABusinessDays,
		w.EstimatedMinutes, w.RequiredPeople, string(skillsJSON),
		w.Status, nullString(w.AssignmentGroupID),
		createdAt.Format(time.RFC3339))
	return err
}

// ListWorkItems returns all work items, oldest first.
func (s *Store) ListWorkItems(ctx context.Context) ([]planner.WorkItem, error) {
	return s.queryWorkItems(ctx, `
		SELECT id, category, priority, criticality, sla_business_days, estimated_minutes,
		       required_people, required_skill_codes, status, assignment_group_id, created_at
		FROM work_items ORDER BY created_at ASC
	`)
}

// LoadBacklog returns the work items an allocation run considers: status
// open or planned. Category filtering and ordering happen in the planner.
func (s *Store) LoadBacklog(ctx context.Context) ([]planner.WorkItem, error) {
	return s.queryWorkItems(ctx, `
		SELECT id, category, priority, criticality, sla_business_days, estimated_minutes,
		       required_people, required_skill_codes, status, assignment_group_id, created_at
		FROM work_items
		WHERE status IN ('open', 'planned')
		ORDER BY created_at ASC
	`)
}

func (s *Store) queryWorkItems(ctx context.Context, query string, args ...any) ([]planner.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}
	defer rows.Close()

	var items []planner.WorkItem
	for rows.Next() {
		var (
			w         planner.WorkItem
			skills    string
			groupID   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&w.ID, &w.Category, &w.Priority, &w.Criticality,
			&w.SLABusinessDays, &w.EstimatedMinutes, &w.RequiredPeople,
			&skills, &w.Status, &groupID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		json.Unmarshal([]byte(skills), &w.RequiredSkills)
		w.AssignmentGroupID = groupID.String
		w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		items = append(items, w)
	}
	return items, rows.Err()
}

// MarkPlanned bulk-updates the scheduled work items to status=planned with
// their assignment group, atomically.
func (s *Store) MarkPlanned(ctx context.Context, assignments []planner.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx,
			"UPDATE work_items SET status = 'planned', assignment_group_id = ? WHERE id = ?",
			a.AssignmentGroupID, a.WorkItemID); err != nil {
			return fmt.Errorf("failed to mark work item planned: %w", err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// PLAN ITEMS
// =============================================================================

// InsertPlanItems bulk-inserts plan items in one transaction.
func (s *Store) InsertPlanItems(ctx context.Context, items []planner.PlanItem) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO plan_items
			(id, plan_date, technician_id, work_item_id, start_minute, end_minute,
			 sequence, source, is_fixed, manual_title, manual_notes, assignment_group_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, planner.DateKey(item.PlanDate), item.TechnicianID,
			nullString(item.WorkItemID), item.StartMinute, item.EndMinute,
			item.Sequence, item.Source, item.Fixed,
			nullString(item.ManualTitle), nullString(item.ManualNotes),
			nullString(item.AssignmentGroupID),
			createdAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to insert plan item: %w", err)
		}
	}

	return tx.Commit()
}

// PlanItemsInWindow returns every plan item with plan_date in [start, end),
// ordered for display.
func (s *Store) PlanItemsInWindow(ctx context.Context, start, end time.Time) ([]planner.PlanItem, error) {
	return s.queryPlanItems(ctx, `
		SELECT id, plan_date, technician_id, work_item_id, start_minute, end_minute,
		       sequence, source, is_fixed, manual_title, manual_notes, assignment_group_id, created_at
		FROM plan_items
		WHERE plan_date >= ? AND plan_date < ?
		ORDER BY plan_date ASC, technician_id ASC, start_minute ASC
	`, planner.DateKey(start), planner.DateKey(end))
}

// ManualItemsInWindow returns the manual/fixed plan items in [start, end).
// These seed the run ledger so auto-allocation never double-books an
// operator commitment.
func (s *Store) ManualItemsInWindow(ctx context.Context, start, end time.Time) ([]planner.PlanItem, error) {
	return s.queryPlanItems(ctx, `
		SELECT id, plan_date, technician_id, work_item_id, start_minute, end_minute,
		       sequence, source, is_fixed, manual_title, manual_notes, assignment_group_id, created_at
		FROM plan_items
		WHERE plan_date >= ? AND plan_date < ?
		  AND (source = 'manual' OR is_fixed = TRUE)
		ORDER BY plan_date ASC, technician_id ASC, start_minute ASC
	`, planner.DateKey(start), planner.DateKey(end))
}

// GetPlanItem returns one plan item, or nil when absent.
func (s *Store) GetPlanItem(ctx context.Context, id string) (*planner.PlanItem, error) {
	items, err := s.queryPlanItems(ctx, `
		SELECT id, plan_date, technician_id, work_item_id, start_minute, end_minute,
		       sequence, source, is_fixed, manual_title, manual_notes, assignment_group_id, created_at
		FROM plan_items WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// DeleteManualPlanItem removes an operator-created plan item. Auto items
// are engine-owned and rejected with planner.ErrImmutablePlanItem.
func (s *Store) DeleteManualPlanItem(ctx context.Context, id string) error {
	item, err := s.GetPlanItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return planner.ErrPlanItemNotFound
	}
	if !item.Manual() {
		return planner.ErrImmutablePlanItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, "DELETE FROM plan_items WHERE id = ?", id)
	return err
}

// PurgeAutoItems deletes engine-generated plan items with plan_date in
// [start, end) and resets the work items that owned them back to
// status=open with no assignment group. Manual/fixed items are preserved.
// Returns the ids of the reset work items. Runs in its own transaction; the
// subsequent allocation and bulk-write are deliberately NOT part of it
// (partial progress is favored over full rollback).
func (s *Store) PurgeAutoItems(ctx context.Context, start, end time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	resetIDs, err := collectPurgedWorkItems(ctx, tx, start, end)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM plan_items
		WHERE plan_date >= ? AND plan_date < ?
		  AND source = 'auto' AND is_fixed = FALSE
	`, planner.DateKey(start), planner.DateKey(end)); err != nil {
		return nil, fmt.Errorf("failed to purge auto plan items: %w", err)
	}

	for _, id := range resetIDs {
		if _, err := tx.ExecContext(ctx,
			"UPDATE work_items SET status = 'open', assignment_group_id = NULL WHERE id = ?",
			id); err != nil {
			return nil, fmt.Errorf("failed to reset work item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return resetIDs, nil
}

func collectPurgedWorkItems(ctx context.Context, tx *sql.Tx, start, end time.Time) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT DISTINCT work_item_id FROM plan_items
		WHERE plan_date >= ? AND plan_date < ?
		  AND source = 'auto' AND is_fixed = FALSE
		  AND work_item_id IS NOT NULL
	`, planner.DateKey(start), planner.DateKey(end))
	if err != nil {
		return nil, fmt.Errorf("failed to collect purged work items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) queryPlanItems(ctx context.Context, query string, args ...any) ([]planner.PlanItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan items: %w", err)
	}
	defer rows.Close()

	var items []planner.PlanItem
	for rows.Next() {
		var (
			item        planner.PlanItem
			planDate    string
			workItemID  sql.NullString
			manualTitle sql.NullString
			manualNotes sql.NullString
			groupID     sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&item.ID, &planDate, &item.TechnicianID, &workItemID,
			&item.StartMinute, &item.EndMinute, &item.Sequence, &item.Source,
			&item.Fixed, &manualTitle, &manualNotes, &groupID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan item: %w", err)
		}
		item.PlanDate, _ = time.Parse("2006-01-02", planDate)
		item.WorkItemID = workItemID.String
		item.ManualTitle = manualTitle.String
		item.ManualNotes = manualNotes.String
		item.AssignmentGroupID = groupID.String
		item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		items = append(items, item)
	}
	return items, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isMissingColumnError(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "no such column: "+column)
}
