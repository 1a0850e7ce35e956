package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/dispatch-engine/planner"
)

func tech(id string, priority int, wildcard bool, skills ...string) planner.Technician {
	return planner.Technician{
		ID:               id,
		Name:             id,
		Active:           true,
		DispatchPriority: priority,
		Wildcard:         wildcard,
		Skills:           skills,
	}
}

func TestRoster_ExcludesInactive(t *testing.T) {
	inactive := tech("off", 1, false)
	inactive.Active = false

	roster := planner.NewRoster([]planner.Technician{tech("on", 1, false), inactive}, 100000)

	assert.Equal(t, 1, roster.Size())
}

func TestRoster_Candidates_SkillSuperset(t *testing.T) {
	// GIVEN: Tech A knows PORTAO, tech B knows PORTAO and CFTV
	// WHEN: Requesting candidates for CFTV work
	// THEN: Only B qualifies

	roster := planner.NewRoster([]planner.Technician{
		tech("a", 1, false, "PORTAO"),
		tech("b", 2, false, "PORTAO", "CFTV"),
	}, 100000)
	ledger := planner.NewDayLoadLedger(480)

	candidates := roster.Candidates(ledger, monday, []string{"CFTV"}, 60)

	assert.Len(t, candidates, 1)
	assert.Equal(t, "b", candidates[0].ID)
}

func TestRoster_Candidates_ExcludesFullDays(t *testing.T) {
	// GIVEN: A technician with only 30 free minutes left
	// WHEN: Requesting candidates for 60-minute work
	// THEN: They are filtered out entirely

	roster := planner.NewRoster([]planner.Technician{tech("a", 1, false)}, 100000)
	ledger := planner.NewDayLoadLedger(480)
	ledger.Commit("a", monday, 480, 930) // 450 of 480

	assert.Empty(t, roster.Candidates(ledger, monday, nil, 60))
	assert.Len(t, roster.Candidates(ledger, monday, nil, 30), 1)
}

func TestRoster_Candidates_WildcardLast(t *testing.T) {
	// GIVEN: A wildcard with a far better dispatch priority than a regular
	// WHEN: Scoring candidates
	// THEN: The regular still sorts first; the wildcard is overflow only

	roster := planner.NewRoster([]planner.Technician{
		tech("wild", 1, true),
		tech("regular", 90, false),
	}, 100000)
	ledger := planner.NewDayLoadLedger(480)

	candidates := roster.Candidates(ledger, monday, nil, 60)

	assert.Equal(t, "regular", candidates[0].ID)
	assert.Equal(t, "wild", candidates[1].ID)
}

func TestRoster_Candidates_LoadBalancesEqualPriorities(t *testing.T) {
	// GIVEN: Two equal-priority technicians, one already loaded
	// WHEN: Scoring candidates
	// THEN: The lighter-loaded technician sorts first

	roster := planner.NewRoster([]planner.Technician{
		tech("busy", 10, false),
		tech("free", 10, false),
	}, 100000)
	ledger := planner.NewDayLoadLedger(480)
	ledger.Commit("busy", monday, 480, 600)

	candidates := roster.Candidates(ledger, monday, nil, 60)

	assert.Equal(t, "free", candidates[0].ID)
	assert.Equal(t, "busy", candidates[1].ID)
}

func TestRoster_Candidates_DeterministicTieBreak(t *testing.T) {
	roster := planner.NewRoster([]planner.Technician{
		tech("zeta", 10, false),
		tech("alpha", 10, false),
	}, 100000)
	ledger := planner.NewDayLoadLedger(480)

	candidates := roster.Candidates(ledger, monday, nil, 60)

	assert.Equal(t, "alpha", candidates[0].ID, "id breaks exact score ties")
}
