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

// SQLiteBudgetLineRepo implements BudgetLineRepo using a SQLite database.
type SQLiteBudgetLineRepo struct {
	db db.DBTX
}

// NewSQLiteBudgetLineRepo creates a new SQLiteBudgetLineRepo.
func NewSQLiteBudgetLineRepo(conn db.DBTX) *SQLiteBudgetLineRepo {
	return &SQLiteBudgetLineRepo{db: conn}
}

const budgetLineColumns = `id, project_id, chapter, subchapter, sequence_number, name,
		eligible_base, eligible_vat, non_eligible_base, non_eligible_vat,
		total_eligible, total_non_eligible, total_base, total_vat, total,
		reimbursable_eligible, cofinanced_eligible, expense_type, cost_category,
		created_at, updated_at`

func (r *SQLiteBudgetLineRepo) Create(ctx context.Context, l *domain.BudgetLine) error {
	query := `INSERT INTO budget_lines (` + budgetLineColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{l.ID, l.ProjectID, l.Chapter, l.Subchapter, nullableString(l.SequenceNumber), l.Name}
	args = append(args, budgetLineAmounts(l)...)
	args = append(args, string(l.ExpenseType), string(l.CostCategory),
		l.CreatedAt.Format(time.RFC3339), l.UpdatedAt.Format(time.RFC3339))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting budget line: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetLineRepo) GetByID(ctx context.Context, id string) (*domain.BudgetLine, error) {
	query := `SELECT ` + budgetLineColumns + ` FROM budget_lines WHERE id = ?`
	l, err := scanBudgetLine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("budget line", err)
	}
	return l, nil
}

// ListByProject orders lines by (chapter, subchapter, id), the export order.
func (r *SQLiteBudgetLineRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.BudgetLine, error) {
	query := `SELECT ` + budgetLineColumns + ` FROM budget_lines WHERE project_id = ?
		ORDER BY chapter, subchapter, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing budget lines: %w", err)
	}
	defer rows.Close()

	var lines []*domain.BudgetLine
	for rows.Next() {
		l, err := scanBudgetLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget lines: %w", err)
	}
	return lines, nil
}

// ExistsSequence reports whether another line of the project already uses
// sequence. excludeID lets an update ignore the row being edited.
func (r *SQLiteBudgetLineRepo) ExistsSequence(ctx context.Context, projectID, sequence, excludeID string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM budget_lines WHERE project_id = ? AND sequence_number = ? AND id != ?`
	if err := r.db.QueryRowContext(ctx, query, projectID, sequence, excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("checking sequence number: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteBudgetLineRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM budget_lines WHERE project_id = ?`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting budget lines: %w", err)
	}
	return n, nil
}

func (r *SQLiteBudgetLineRepo) Update(ctx context.Context, l *domain.BudgetLine) error {
	query := `UPDATE budget_lines SET chapter = ?, subchapter = ?, sequence_number = ?, name = ?,
		eligible_base = ?, eligible_vat = ?, non_eligible_base = ?, non_eligible_vat = ?,
		total_eligible = ?, total_non_eligible = ?, total_base = ?, total_vat = ?, total = ?,
		reimbursable_eligible = ?, cofinanced_eligible = ?, expense_type = ?, cost_category = ?,
		updated_at = ?
		WHERE id = ?`
	args := []any{l.Chapter, l.Subchapter, nullableString(l.SequenceNumber), l.Name}
	args = append(args, budgetLineAmounts(l)...)
	args = append(args, string(l.ExpenseType), string(l.CostCategory), l.UpdatedAt.Format(time.RFC3339), l.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating budget line: %w", err)
	}
	return checkAffected("budget line", res)
}

func (r *SQLiteBudgetLineRepo) UpdateCofinancing(ctx context.Context, id string, cofinanced, reimbursable decimal.Decimal) error {
	query := `UPDATE budget_lines SET cofinanced_eligible = ?, reimbursable_eligible = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, cofinanced.String(), reimbursable.String(), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating budget line co-financing: %w", err)
	}
	return checkAffected("budget line", res)
}

func (r *SQLiteBudgetLineRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_lines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting budget line: %w", err)
	}
	return checkAffected("budget line", res)
}

func (r *SQLiteBudgetLineRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_lines WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("deleting budget lines: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

func budgetLineAmounts(l *domain.BudgetLine) []any {
	return []any{
		l.EligibleBase.String(), l.EligibleVAT.String(), l.NonEligibleBase.String(), l.NonEligibleVAT.String(),
		l.TotalEligible.String(), l.TotalNonEligible.String(), l.TotalBase.String(), l.TotalVAT.String(), l.Total.String(),
		l.ReimbursableEligible.String(), l.CofinancedEligible.String(),
	}
}

func scanBudgetLine(row scanner) (*domain.BudgetLine, error) {
	var l domain.BudgetLine
	var seq sql.NullString
	var expenseType, costCategory, createdAtStr, updatedAtStr string
	raw := make([]string, 11)

	err := row.Scan(
		&l.ID, &l.ProjectID, &l.Chapter, &l.Subchapter, &seq, &l.Name,
		&raw[0], &raw[1], &raw[2], &raw[3],
		&raw[4], &raw[5], &raw[6], &raw[7], &raw[8],
		&raw[9], &raw[10], &expenseType, &costCategory,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	l.SequenceNumber = seq.String
	l.ExpenseType = domain.ExpenseType(expenseType)
	l.CostCategory = domain.CostCategory(costCategory)

	targets := []*decimal.Decimal{
		&l.EligibleBase, &l.EligibleVAT, &l.NonEligibleBase, &l.NonEligibleVAT,
		&l.TotalEligible, &l.TotalNonEligible, &l.TotalBase, &l.TotalVAT, &l.Total,
		&l.ReimbursableEligible, &l.CofinancedEligible,
	}
	for i, dst := range targets {
		if *dst, err = parseDecimal("budget line amount", raw[i]); err != nil {
			return nil, err
		}
	}

	if l.CreatedAt, l.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &l, nil
}
