package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, code, name, beneficiary, tax_id,
		submission_date, signing_date, completion_date, status, cofinancing,
		financial_progress, physical_progress, monitoring_end_date, eur_rate, vat_eligible,
		budget_notes, acquisition_notes, activity_notes, reimbursement_notes,
		total_eligible, total_non_eligible, total_general, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Code, p.Name, p.Beneficiary, p.TaxID,
		nullableTimeToString(p.SubmissionDate, dateLayout),
		nullableTimeToString(p.SigningDate, dateLayout),
		nullableTimeToString(p.CompletionDate, dateLayout),
		string(p.Status),
		p.Cofinancing.String(),
		p.FinancialProgress,
		p.PhysicalProgress,
		nullableTimeToString(p.MonitoringEndDate, dateLayout),
		p.EURRate.String(),
		string(p.VATEligible),
		p.BudgetNotes, p.AcquisitionNotes, p.ActivityNotes, p.ReimbursementNotes,
		p.TotalEligible.String(), p.TotalNonEligible.String(), p.TotalGeneral.String(),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("project", err)
	}
	return p, nil
}

// GetByCode matches case-insensitively. Codes are not unique; the oldest
// project wins.
func (r *SQLiteProjectRepo) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE UPPER(code) = UPPER(?)
		ORDER BY created_at, id LIMIT 1`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, notFound("project", err)
	}
	return p, nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY code, created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// Update writes every editable column. Stored totals are left alone; they
// change only through UpdateTotals.
func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET code = ?, name = ?, beneficiary = ?, tax_id = ?,
		submission_date = ?, signing_date = ?, completion_date = ?, status = ?, cofinancing = ?,
		financial_progress = ?, physical_progress = ?, monitoring_end_date = ?, eur_rate = ?,
		vat_eligible = ?, budget_notes = ?, acquisition_notes = ?, activity_notes = ?,
		reimbursement_notes = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Code, p.Name, p.Beneficiary, p.TaxID,
		nullableTimeToString(p.SubmissionDate, dateLayout),
		nullableTimeToString(p.SigningDate, dateLayout),
		nullableTimeToString(p.CompletionDate, dateLayout),
		string(p.Status),
		p.Cofinancing.String(),
		p.FinancialProgress,
		p.PhysicalProgress,
		nullableTimeToString(p.MonitoringEndDate, dateLayout),
		p.EURRate.String(),
		string(p.VATEligible),
		p.BudgetNotes, p.AcquisitionNotes, p.ActivityNotes, p.ReimbursementNotes,
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return checkAffected("project", res)
}

func (r *SQLiteProjectRepo) UpdateTotals(ctx context.Context, id string, eligible, nonEligible, general decimal.Decimal) error {
	query := `UPDATE projects SET total_eligible = ?, total_non_eligible = ?, total_general = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, eligible.String(), nonEligible.String(), general.String(), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating project totals: %w", err)
	}
	return checkAffected("project", res)
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return checkAffected("project", res)
}

func scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	var statusStr, vatStr, createdAtStr, updatedAtStr string
	var cofinancing, eurRate, totalElig, totalNonElig, totalGen string
	var submission, signing, completion, monitoringEnd sql.NullString

	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Beneficiary, &p.TaxID,
		&submission, &signing, &completion, &statusStr, &cofinancing,
		&p.FinancialProgress, &p.PhysicalProgress, &monitoringEnd, &eurRate, &vatStr,
		&p.BudgetNotes, &p.AcquisitionNotes, &p.ActivityNotes, &p.ReimbursementNotes,
		&totalElig, &totalNonElig, &totalGen, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	p.Status = domain.ProjectStatus(statusStr)
	p.VATEligible = domain.VATEligibility(vatStr)
	p.SubmissionDate = parseNullableTime(submission, dateLayout)
	p.SigningDate = parseNullableTime(signing, dateLayout)
	p.CompletionDate = parseNullableTime(completion, dateLayout)
	p.MonitoringEndDate = parseNullableTime(monitoringEnd, dateLayout)

	money := []struct {
		column string
		raw    string
		dst    *decimal.Decimal
	}{
		{"cofinancing", cofinancing, &p.Cofinancing},
		{"eur_rate", eurRate, &p.EURRate},
		{"total_eligible", totalElig, &p.TotalEligible},
		{"total_non_eligible", totalNonElig, &p.TotalNonEligible},
		{"total_general", totalGen, &p.TotalGeneral},
	}
	for _, m := range money {
		if *m.dst, err = parseDecimal(m.column, m.raw); err != nil {
			return nil, err
		}
	}

	if p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}
