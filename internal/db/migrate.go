package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id                   TEXT PRIMARY KEY,
		code                 TEXT NOT NULL,
		name                 TEXT NOT NULL DEFAULT '',
		beneficiary          TEXT NOT NULL DEFAULT '',
		tax_id               TEXT NOT NULL DEFAULT '',
		submission_date      TEXT,
		signing_date         TEXT,
		completion_date      TEXT,
		status               TEXT NOT NULL DEFAULT 'in_progress'
		                     CHECK(status IN ('in_progress','contracted','monitoring','closed')),
		cofinancing          TEXT NOT NULL DEFAULT '0',
		financial_progress   REAL NOT NULL DEFAULT 0,
		physical_progress    REAL NOT NULL DEFAULT 0,
		monitoring_end_date  TEXT,
		eur_rate             TEXT NOT NULL DEFAULT '0',
		vat_eligible         TEXT NOT NULL DEFAULT ''
		                     CHECK(vat_eligible IN ('','yes','no')),
		budget_notes         TEXT NOT NULL DEFAULT '',
		acquisition_notes    TEXT NOT NULL DEFAULT '',
		activity_notes       TEXT NOT NULL DEFAULT '',
		reimbursement_notes  TEXT NOT NULL DEFAULT '',
		total_eligible       TEXT NOT NULL DEFAULT '0',
		total_non_eligible   TEXT NOT NULL DEFAULT '0',
		total_general        TEXT NOT NULL DEFAULT '0',
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS budget_lines (
		id                     TEXT PRIMARY KEY,
		project_id             TEXT NOT NULL REFERENCES projects(id) ON DELETE RESTRICT,
		chapter                TEXT NOT NULL DEFAULT '',
		subchapter             TEXT NOT NULL DEFAULT '',
		sequence_number        TEXT,
		name                   TEXT NOT NULL DEFAULT '',
		eligible_base          TEXT NOT NULL DEFAULT '0',
		eligible_vat           TEXT NOT NULL DEFAULT '0',
		non_eligible_base      TEXT NOT NULL DEFAULT '0',
		non_eligible_vat       TEXT NOT NULL DEFAULT '0',
		total_eligible         TEXT NOT NULL DEFAULT '0',
		total_non_eligible     TEXT NOT NULL DEFAULT '0',
		total_base             TEXT NOT NULL DEFAULT '0',
		total_vat              TEXT NOT NULL DEFAULT '0',
		total                  TEXT NOT NULL DEFAULT '0',
		reimbursable_eligible  TEXT NOT NULL DEFAULT '0',
		cofinanced_eligible    TEXT NOT NULL DEFAULT '0',
		expense_type           TEXT NOT NULL DEFAULT '',
		cost_category          TEXT NOT NULL DEFAULT '',
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_budget_lines_project ON budget_lines(project_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_lines_sequence
		ON budget_lines(project_id, sequence_number) WHERE sequence_number IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS activities (
		id               TEXT PRIMARY KEY,
		project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE RESTRICT,
		name             TEXT NOT NULL,
		code             TEXT NOT NULL DEFAULT '',
		sequence         INTEGER NOT NULL DEFAULT 10,
		phase            TEXT NOT NULL DEFAULT 'post' CHECK(phase IN ('pre','post')),
		state            TEXT NOT NULL DEFAULT 'draft' CHECK(state IN ('draft','in_progress','done')),
		start_source     TEXT NOT NULL DEFAULT 'milestone',
		start_milestone  TEXT NOT NULL DEFAULT 'signing',
		start_ref_id     TEXT REFERENCES activities(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		start_endpoint   TEXT NOT NULL DEFAULT 'start',
		start_offset     INTEGER NOT NULL DEFAULT 0,
		end_source       TEXT NOT NULL DEFAULT 'milestone',
		end_milestone    TEXT NOT NULL DEFAULT 'signing',
		end_ref_id       TEXT REFERENCES activities(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		end_endpoint     TEXT NOT NULL DEFAULT 'end',
		end_offset       INTEGER NOT NULL DEFAULT 0,
		date_start       TEXT,
		date_end         TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_project ON activities(project_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_code ON activities(project_id, code) WHERE code != ''`,

	`CREATE TABLE IF NOT EXISTS acquisitions (
		id               TEXT PRIMARY KEY,
		project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE RESTRICT,
		name             TEXT NOT NULL,
		code             TEXT NOT NULL DEFAULT '',
		sequence         INTEGER NOT NULL DEFAULT 10,
		phase            TEXT NOT NULL DEFAULT 'after' CHECK(phase IN ('before','after')),
		state            TEXT NOT NULL DEFAULT 'draft'
		                 CHECK(state IN ('draft','in_progress','done','cancelled')),
		description      TEXT NOT NULL DEFAULT '',
		start_source     TEXT NOT NULL DEFAULT 'milestone',
		start_milestone  TEXT NOT NULL DEFAULT 'signing',
		start_ref_id     TEXT REFERENCES activities(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		start_endpoint   TEXT NOT NULL DEFAULT 'end',
		start_offset     INTEGER NOT NULL DEFAULT 0,
		end_source       TEXT NOT NULL DEFAULT 'milestone',
		end_milestone    TEXT NOT NULL DEFAULT 'completion',
		end_ref_id       TEXT REFERENCES activities(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		end_endpoint     TEXT NOT NULL DEFAULT 'end',
		end_offset       INTEGER NOT NULL DEFAULT 0,
		date_start       TEXT,
		date_end         TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_acquisitions_project ON acquisitions(project_id)`,

	`CREATE TABLE IF NOT EXISTS acquisition_dependencies (
		acquisition_id  TEXT NOT NULL REFERENCES acquisitions(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
		depends_on_id   TEXT NOT NULL REFERENCES acquisitions(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
		PRIMARY KEY (acquisition_id, depends_on_id)
	)`,

	`CREATE TABLE IF NOT EXISTS activity_templates (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		code             TEXT NOT NULL DEFAULT '',
		sequence         INTEGER NOT NULL DEFAULT 10,
		phase            TEXT NOT NULL DEFAULT 'post' CHECK(phase IN ('pre','post')),
		start_source     TEXT NOT NULL DEFAULT 'milestone',
		start_milestone  TEXT NOT NULL DEFAULT 'signing',
		start_ref_id     TEXT REFERENCES activity_templates(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		start_endpoint   TEXT NOT NULL DEFAULT 'start',
		start_offset     INTEGER NOT NULL DEFAULT 0,
		end_source       TEXT NOT NULL DEFAULT 'milestone',
		end_milestone    TEXT NOT NULL DEFAULT 'signing',
		end_ref_id       TEXT REFERENCES activity_templates(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		end_endpoint     TEXT NOT NULL DEFAULT 'end',
		end_offset       INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS acquisition_templates (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		code             TEXT NOT NULL DEFAULT '',
		sequence         INTEGER NOT NULL DEFAULT 10,
		phase            TEXT NOT NULL DEFAULT 'after' CHECK(phase IN ('before','after')),
		description      TEXT NOT NULL DEFAULT '',
		start_source     TEXT NOT NULL DEFAULT 'milestone',
		start_milestone  TEXT NOT NULL DEFAULT 'signing',
		start_ref_id     TEXT REFERENCES activity_templates(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		start_endpoint   TEXT NOT NULL DEFAULT 'end',
		start_offset     INTEGER NOT NULL DEFAULT 0,
		end_source       TEXT NOT NULL DEFAULT 'milestone',
		end_milestone    TEXT NOT NULL DEFAULT 'completion',
		end_ref_id       TEXT REFERENCES activity_templates(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		end_endpoint     TEXT NOT NULL DEFAULT 'end',
		end_offset       INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS acquisition_template_dependencies (
		template_id    TEXT NOT NULL REFERENCES acquisition_templates(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
		depends_on_id  TEXT NOT NULL REFERENCES acquisition_templates(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
		PRIMARY KEY (template_id, depends_on_id)
	)`,

	`CREATE TABLE IF NOT EXISTS template_seeds (
		kind       TEXT PRIMARY KEY,
		seeded_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS reimbursements (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		date        TEXT NOT NULL,
		amount      TEXT NOT NULL DEFAULT '0',
		status      TEXT NOT NULL DEFAULT 'planned'
		            CHECK(status IN ('planned','sent','approved','paid')),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reimbursements_project ON reimbursements(project_id)`,

	`CREATE TABLE IF NOT EXISTS purchases (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		supplier    TEXT NOT NULL DEFAULT '',
		value       TEXT NOT NULL DEFAULT '0',
		date        TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_purchases_project ON purchases(project_id)`,
}
