package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"projects", "budget_lines", "activities", "acquisitions", "acquisition_dependencies",
		"activity_templates", "acquisition_templates", "acquisition_template_dependencies",
		"template_seeds", "reimbursements", "purchases",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_budget_lines_project",
		"idx_budget_lines_sequence",
		"idx_activities_project",
		"idx_activities_code",
		"idx_acquisitions_project",
		"idx_reimbursements_project",
		"idx_purchases_project",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestOpenDB_ForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	var on int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&on))
	assert.Equal(t, 1, on)

	_, err := db.Exec(`INSERT INTO budget_lines (id, project_id, name, created_at, updated_at) VALUES ('l1', 'missing', 'x', 'now', 'now')`)
	require.Error(t, err)
}

func TestMigrate_SequenceNumberUniquePerProject(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO projects (id, code, status, created_at, updated_at) VALUES ('p1', 'P1', 'in_progress', 'now', 'now')`)
	require.NoError(t, err)

	insert := `INSERT INTO budget_lines (id, project_id, sequence_number, name, created_at, updated_at) VALUES (?, 'p1', ?, 'x', 'now', 'now')`
	_, err = db.Exec(insert, "l1", "1.1")
	require.NoError(t, err)
	_, err = db.Exec(insert, "l2", "1.1")
	require.Error(t, err)

	// Lines without a sequence number do not collide.
	_, err = db.Exec(insert, "l3", nil)
	require.NoError(t, err)
	_, err = db.Exec(insert, "l4", nil)
	require.NoError(t, err)
}
