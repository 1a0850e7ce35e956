package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/dispatch-engine/api"
	"github.com/warp/dispatch-engine/planner"
	"github.com/warp/dispatch-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const testToken = "test-token"

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := api.NewHandler(store, zerolog.Nop(), planner.DefaultConfig(),
		[]planner.Category{planner.CategoryOperational, planner.CategorySupport},
		30*time.Minute)
	router := api.NewRouter(handler, api.NewStaticVerifier([]string{testToken}))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedRoster(t *testing.T, store *sqlite.Store) {
	require.NoError(t, store.SaveTechnician(context.Background(), planner.Technician{
		ID: "tech-1", Name: "Ana", Active: true, DispatchPriority: 10,
		Skills: []string{"PORTAO", "CFTV"},
	}))
}

func seedBacklog(t *testing.T, store *sqlite.Store, id string) {
	require.NoError(t, store.SaveWorkItem(context.Background(), planner.WorkItem{
		ID: id, Category: planner.CategoryOperational,
		Priority: planner.PriorityHigh, Criticality: planner.CriticalityNonCritical,
		SLABusinessDays: 3, EstimatedMinutes: 60, RequiredPeople: 1,
		Status: planner.StatusOpen, CreatedAt: time.Now().UTC(),
	}))
}

// =============================================================================
// AUTH
// =============================================================================

func TestAPI_RejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/plan")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_HealthzNeedsNoToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// =============================================================================
// REBUILD
// =============================================================================

func TestRebuildPlan_InvalidWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{StartDate: "2025-03-10", Days: 99})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{StartDate: "not-a-date"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{Days: 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "start_date is required")
}

func TestRebuildPlan_EndToEnd(t *testing.T) {
	// GIVEN: A roster and one open work item
	// WHEN: Rebuilding a Monday-start week
	// THEN: The item is scheduled, persisted, and marked planned

	srv, store := newTestServer(t)
	seedRoster(t, store)
	seedBacklog(t, store, "wi-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{StartDate: "2025-03-10", Days: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rebuild := decode[api.RebuildResponse](t, resp)
	assert.True(t, rebuild.OK)
	assert.Equal(t, 1, rebuild.Scheduled)
	assert.Equal(t, 0, rebuild.Unscheduled)
	assert.Equal(t, 1, rebuild.PlanItems)

	planResp := doJSON(t, http.MethodGet, srv.URL+"/api/plan?start_date=2025-03-10&days=5", nil)
	require.Equal(t, http.StatusOK, planResp.StatusCode)
	plan := decode[api.PlanResponse](t, planResp)
	require.Len(t, plan.Items, 1)
	assert.Equal(t, "wi-1", plan.Items[0].WorkItemID)
	assert.Equal(t, "auto", plan.Items[0].Source)
	require.Len(t, plan.Utilization, 1)
	assert.Equal(t, 60, plan.Utilization[0].MinutesUsed)

	items, err := store.ListWorkItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, planner.StatusPlanned, items[0].Status)
}

func TestRebuildPlan_Idempotent(t *testing.T) {
	// GIVEN: A window already rebuilt once
	// WHEN: Rebuilding it again
	// THEN: The plan is regenerated, not duplicated

	srv, store := newTestServer(t)
	seedRoster(t, store)
	seedBacklog(t, store, "wi-1")

	for i := 0; i < 2; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
			api.RebuildRequest{StartDate: "2025-03-10", Days: 5})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	planResp := doJSON(t, http.MethodGet, srv.URL+"/api/plan?start_date=2025-03-10&days=5", nil)
	plan := decode[api.PlanResponse](t, planResp)
	assert.Len(t, plan.Items, 1)
}

func TestRebuildPlan_ConflictWhenLockHeld(t *testing.T) {
	// GIVEN: The window lock held by another run
	// WHEN: A rebuild arrives for the same window
	// THEN: It is rejected with 409 and no partial work happens

	srv, store := newTestServer(t)
	lockKey := planner.WindowKey(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 5)
	require.NoError(t, store.AcquireLock(context.Background(), lockKey, time.Hour))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{StartDate: "2025-03-10", Days: 5})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Already running (lock exists)", body["error"],
		"conflict message lives under the error key")
}

func TestGetPlan_RejectsMalformedDays(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/plan?start_date=2025-03-10&days=7abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "trailing garbage is not a number")

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/plan?start_date=2025-03-10&days=7", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRebuildPlan_CommittedItemsNotCountedUnscheduled(t *testing.T) {
	// GIVEN: One open item and one item already committed outside the window
	// WHEN: Rebuilding
	// THEN: The committed item is neither rescheduled nor reported unscheduled

	srv, store := newTestServer(t)
	seedRoster(t, store)
	seedBacklog(t, store, "wi-open")

	require.NoError(t, store.SaveWorkItem(context.Background(), planner.WorkItem{
		ID: "wi-committed", Category: planner.CategoryOperational,
		Priority: planner.PriorityHigh, Criticality: planner.CriticalityNonCritical,
		SLABusinessDays: 3, EstimatedMinutes: 60, RequiredPeople: 1,
		Status: planner.StatusPlanned, AssignmentGroupID: "group-prior",
		CreatedAt: time.Now().UTC(),
	}))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{StartDate: "2025-03-10", Days: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rebuild := decode[api.RebuildResponse](t, resp)
	assert.Equal(t, 1, rebuild.Scheduled)
	assert.Equal(t, 0, rebuild.Unscheduled, "committed item is skipped, not unscheduled")
}

func TestRebuildPlan_ReleasesLockAfterRun(t *testing.T) {
	srv, store := newTestServer(t)
	seedRoster(t, store)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{StartDate: "2025-03-10", Days: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lockKey := planner.WindowKey(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 5)
	assert.NoError(t, store.AcquireLock(context.Background(), lockKey, time.Hour),
		"lock must be free after the rebuild returns")
}

// =============================================================================
// MANUAL PLAN ITEMS
// =============================================================================

func TestCreateManualPlanItem_OverlapRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	first := api.ManualPlanItemRequest{
		PlanDate: "2025-03-10", TechnicianID: "tech-1",
		StartMinute: 480, EndMinute: 600, Title: "site survey",
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/plan/items", first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	overlapping := first
	overlapping.StartMinute = 540
	overlapping.EndMinute = 660
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/plan/items", overlapping)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	adjacent := first
	adjacent.StartMinute = 600
	adjacent.EndMinute = 660
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/plan/items", adjacent)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "touching intervals do not overlap")
}

func TestCreateManualPlanItem_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/plan/items", api.ManualPlanItemRequest{
		PlanDate: "2025-03-10", TechnicianID: "tech-1",
		StartMinute: 600, EndMinute: 480, Title: "backwards",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/plan/items", api.ManualPlanItemRequest{
		PlanDate: "2025-03-10", StartMinute: 480, EndMinute: 540, Title: "no tech",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeletePlanItem_ManualOnly(t *testing.T) {
	srv, store := newTestServer(t)

	require.NoError(t, store.InsertPlanItems(context.Background(), []planner.PlanItem{
		{
			ID: "auto-1", PlanDate: testDate(), TechnicianID: "tech-1",
			StartMinute: 480, EndMinute: 540, Source: planner.SourceAuto,
		},
		{
			ID: "manual-1", PlanDate: testDate(), TechnicianID: "tech-1",
			StartMinute: 600, EndMinute: 660, Source: planner.SourceManual, ManualTitle: "x",
		},
	}))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/plan/items/auto-1", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/plan/items/manual-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/plan/items/manual-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func testDate() time.Time {
	return time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// ROSTER AND BACKLOG
// =============================================================================

func TestCreateTechnician_DefaultsApplied(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/technicians", api.TechnicianRequest{
		Name: "Bruno", Skills: []string{"PORTAO"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decode[api.TechnicianDTO](t, resp)
	assert.NotEmpty(t, dto.ID)
	assert.True(t, dto.Active)
	assert.Equal(t, 100, dto.DispatchPriority)
}

func TestCreateWorkItem_DefaultsApplied(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/work-items", api.WorkItemRequest{
		Category: "operational",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decode[api.WorkItemDTO](t, resp)
	assert.Equal(t, "normal", dto.Priority)
	assert.Equal(t, "non_critical", dto.Criticality)
	assert.Equal(t, 3, dto.SLABusinessDays)
	assert.Equal(t, 60, dto.EstimatedMinutes)
	assert.Equal(t, 1, dto.RequiredPeople)
	assert.Equal(t, "open", dto.Status)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestClearLock_UnblocksRebuild(t *testing.T) {
	srv, store := newTestServer(t)
	seedRoster(t, store)

	lockKey := planner.WindowKey(testDate(), 5)
	require.NoError(t, store.AcquireLock(context.Background(), lockKey, time.Hour))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/clear-lock",
		api.ClearLockRequest{StartDate: "2025-03-10", Days: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/rebuild-plan",
		api.RebuildRequest{StartDate: "2025-03-10", Days: 5})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
