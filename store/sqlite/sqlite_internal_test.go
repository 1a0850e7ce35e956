package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTechnicians_LegacySchemaWithoutWildcardColumn(t *testing.T) {
	// GIVEN: An older deployment whose technicians table predates the
	//        is_wildcard column
	// WHEN: Loading the roster
	// THEN: The query falls back and defaults the flag to false instead of
	//       failing the run

	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.db.Exec(`
		DROP TABLE technicians;
		CREATE TABLE technicians (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			dispatch_priority INTEGER NOT NULL DEFAULT 100,
			created_at TEXT NOT NULL
		);
		INSERT INTO technicians (id, name, is_active, dispatch_priority, created_at)
		VALUES ('tech-1', 'Ana', TRUE, 10, '2025-03-10T00:00:00Z'),
		       ('tech-2', 'Bruno', FALSE, 20, '2025-03-10T00:00:00Z');
		INSERT INTO technician_skills (technician_id, skill_code)
		VALUES ('tech-1', 'PORTAO');
	`)
	require.NoError(t, err)

	techs, err := store.ListTechnicians(context.Background())
	require.NoError(t, err)
	require.Len(t, techs, 2)
	for _, tech := range techs {
		assert.False(t, tech.Wildcard, "flag defaults to false when the column is absent")
	}
	assert.Equal(t, []string{"PORTAO"}, techs[0].Skills)

	active, err := store.ListActiveTechnicians(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "tech-1", active[0].ID)
}
