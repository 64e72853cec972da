package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
)

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

const activityColumns = `id, project_id, name, code, sequence, phase, state,
		` + ruleSelect + `,
		date_start, date_end, created_at, updated_at`

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	query := `INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{a.ID, a.ProjectID, a.Name, a.Code, a.Sequence, string(a.Phase), string(a.State)}
	args = append(args, ruleArgs(a.StartRule)...)
	args = append(args, ruleArgs(a.EndRule)...)
	args = append(args,
		nullableTimeToString(a.DateStart, dateLayout),
		nullableTimeToString(a.DateEnd, dateLayout),
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`
	a, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("activity", err)
	}
	return a, nil
}

// ListByProject orders activities by (sequence, id).
func (r *SQLiteActivityRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE project_id = ? ORDER BY sequence, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var acts []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return acts, nil
}

func (r *SQLiteActivityRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE project_id = ?`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return n, nil
}

// Update writes the editable columns. Stored dates are written separately
// by UpdateDates after recomputation.
func (r *SQLiteActivityRepo) Update(ctx context.Context, a *domain.Activity) error {
	query := `UPDATE activities SET name = ?, code = ?, sequence = ?, phase = ?, state = ?,
		start_source = ?, start_milestone = ?, start_ref_id = ?, start_endpoint = ?, start_offset = ?,
		end_source = ?, end_milestone = ?, end_ref_id = ?, end_endpoint = ?, end_offset = ?,
		updated_at = ?
		WHERE id = ?`
	args := []any{a.Name, a.Code, a.Sequence, string(a.Phase), string(a.State)}
	args = append(args, ruleArgs(a.StartRule)...)
	args = append(args, ruleArgs(a.EndRule)...)
	args = append(args, a.UpdatedAt.Format(time.RFC3339), a.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	return checkAffected("activity", res)
}

func (r *SQLiteActivityRepo) UpdateDates(ctx context.Context, id string, span domain.Span) error {
	query := `UPDATE activities SET date_start = ?, date_end = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(span.Start, dateLayout),
		nullableTimeToString(span.End, dateLayout),
		nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating activity dates: %w", err)
	}
	return checkAffected("activity", res)
}

func (r *SQLiteActivityRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return checkAffected("activity", res)
}

func scanActivity(row scanner) (*domain.Activity, error) {
	var a domain.Activity
	var phase, state, createdAtStr, updatedAtStr string
	var start, end ruleColumns
	var dateStart, dateEnd sql.NullString

	dest := []any{&a.ID, &a.ProjectID, &a.Name, &a.Code, &a.Sequence, &phase, &state}
	dest = append(dest, start.targets()...)
	dest = append(dest, end.targets()...)
	dest = append(dest, &dateStart, &dateEnd, &createdAtStr, &updatedAtStr)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	a.Phase = domain.ActivityPhase(phase)
	a.State = domain.ActivityState(state)
	a.StartRule = start.rule()
	a.EndRule = end.rule()
	a.DateStart = parseNullableTime(dateStart, dateLayout)
	a.DateEnd = parseNullableTime(dateEnd, dateLayout)

	var err error
	if a.CreatedAt, a.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &a, nil
}
