package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/dispatch-engine/planner"
	"github.com/warp/dispatch-engine/store/sqlite"
)

func TestRebuildPlan_ReleasesLockWhenClientDisconnects(t *testing.T) {
	// GIVEN: A rebuild whose request context is cancelled mid-run, as
	//        net/http does when the client disconnects
	// WHEN: The handler returns
	// THEN: The window lock is released anyway

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, zerolog.Nop(), planner.DefaultConfig(), nil, 30*time.Minute)

	// The clock is read at run start, during window resolution, and once
	// more before the response is written; cancelling on the third read
	// simulates the client dropping after the lock was acquired.
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	h.now = func() time.Time {
		calls++
		if calls >= 3 {
			cancel()
		}
		return time.Now()
	}

	req := httptest.NewRequest(http.MethodPost, "/api/rebuild-plan",
		strings.NewReader(`{"start_date":"2025-03-10","days":5}`)).WithContext(ctx)
	rec := httptest.NewRecorder()

	h.RebuildPlan(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	lockKey := planner.WindowKey(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 5)
	assert.NoError(t, store.AcquireLock(context.Background(), lockKey, time.Hour),
		"lock must be free even though the request context was cancelled")
}
