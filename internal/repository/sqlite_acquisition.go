package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
)

// SQLiteAcquisitionRepo implements AcquisitionRepo using a SQLite database.
// Dependencies live in acquisition_dependencies and are loaded and
// replaced together with the acquisition.
type SQLiteAcquisitionRepo struct {
	db db.DBTX
}

// NewSQLiteAcquisitionRepo creates a new SQLiteAcquisitionRepo.
func NewSQLiteAcquisitionRepo(conn db.DBTX) *SQLiteAcquisitionRepo {
	return &SQLiteAcquisitionRepo{db: conn}
}

const acquisitionColumns = `id, project_id, name, code, sequence, phase, state, description,
		` + ruleSelect + `,
		date_start, date_end, created_at, updated_at`

func (r *SQLiteAcquisitionRepo) Create(ctx context.Context, a *domain.Acquisition) error {
	query := `INSERT INTO acquisitions (` + acquisitionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{a.ID, a.ProjectID, a.Name, a.Code, a.Sequence, string(a.Phase), string(a.State), a.Description}
	args = append(args, ruleArgs(a.StartRule)...)
	args = append(args, ruleArgs(a.EndRule)...)
	args = append(args,
		nullableTimeToString(a.DateStart, dateLayout),
		nullableTimeToString(a.DateEnd, dateLayout),
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting acquisition: %w", err)
	}
	return r.insertDependencies(ctx, a.ID, a.DependencyIDs)
}

func (r *SQLiteAcquisitionRepo) GetByID(ctx context.Context, id string) (*domain.Acquisition, error) {
	query := `SELECT ` + acquisitionColumns + ` FROM acquisitions WHERE id = ?`
	a, err := scanAcquisition(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("acquisition", err)
	}
	deps, err := r.dependenciesOf(ctx, `WHERE acquisition_id = ?`, id)
	if err != nil {
		return nil, err
	}
	a.DependencyIDs = deps[a.ID]
	return a, nil
}

// ListByProject orders acquisitions by (sequence, id).
func (r *SQLiteAcquisitionRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Acquisition, error) {
	query := `SELECT ` + acquisitionColumns + ` FROM acquisitions WHERE project_id = ? ORDER BY sequence, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing acquisitions: %w", err)
	}
	var acqs []*domain.Acquisition
	for rows.Next() {
		a, err := scanAcquisition(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning acquisition row: %w", err)
		}
		acqs = append(acqs, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating acquisitions: %w", err)
	}

	deps, err := r.dependenciesOf(ctx,
		`WHERE acquisition_id IN (SELECT id FROM acquisitions WHERE project_id = ?)`, projectID)
	if err != nil {
		return nil, err
	}
	for _, a := range acqs {
		a.DependencyIDs = deps[a.ID]
	}
	return acqs, nil
}

func (r *SQLiteAcquisitionRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM acquisitions WHERE project_id = ?`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting acquisitions: %w", err)
	}
	return n, nil
}

// CountReferencing counts acquisitions whose start or end rule reads the
// given activity.
func (r *SQLiteAcquisitionRepo) CountReferencing(ctx context.Context, activityID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM acquisitions
		WHERE (start_source = 'entity' AND start_ref_id = ?) OR (end_source = 'entity' AND end_ref_id = ?)`
	if err := r.db.QueryRowContext(ctx, query, activityID, activityID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting referencing acquisitions: %w", err)
	}
	return n, nil
}

// Update writes the editable columns and replaces the dependency set.
func (r *SQLiteAcquisitionRepo) Update(ctx context.Context, a *domain.Acquisition) error {
	query := `UPDATE acquisitions SET name = ?, code = ?, sequence = ?, phase = ?, state = ?, description = ?,
		start_source = ?, start_milestone = ?, start_ref_id = ?, start_endpoint = ?, start_offset = ?,
		end_source = ?, end_milestone = ?, end_ref_id = ?, end_endpoint = ?, end_offset = ?,
		updated_at = ?
		WHERE id = ?`
	args := []any{a.Name, a.Code, a.Sequence, string(a.Phase), string(a.State), a.Description}
	args = append(args, ruleArgs(a.StartRule)...)
	args = append(args, ruleArgs(a.EndRule)...)
	args = append(args, a.UpdatedAt.Format(time.RFC3339), a.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating acquisition: %w", err)
	}
	if err := checkAffected("acquisition", res); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM acquisition_dependencies WHERE acquisition_id = ?`, a.ID); err != nil {
		return fmt.Errorf("clearing acquisition dependencies: %w", err)
	}
	return r.insertDependencies(ctx, a.ID, a.DependencyIDs)
}

func (r *SQLiteAcquisitionRepo) UpdateDates(ctx context.Context, id string, span domain.Span) error {
	query := `UPDATE acquisitions SET date_start = ?, date_end = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(span.Start, dateLayout),
		nullableTimeToString(span.End, dateLayout),
		nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating acquisition dates: %w", err)
	}
	return checkAffected("acquisition", res)
}

func (r *SQLiteAcquisitionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM acquisitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting acquisition: %w", err)
	}
	return checkAffected("acquisition", res)
}

func (r *SQLiteAcquisitionRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM acquisitions WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("deleting acquisitions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteAcquisitionRepo) insertDependencies(ctx context.Context, id string, deps []string) error {
	for _, dep := range deps {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO acquisition_dependencies (acquisition_id, depends_on_id) VALUES (?, ?)`, id, dep)
		if err != nil {
			return fmt.Errorf("inserting acquisition dependency: %w", err)
		}
	}
	return nil
}

// dependenciesOf loads dependency ids keyed by acquisition, filtered by the
// given WHERE clause.
func (r *SQLiteAcquisitionRepo) dependenciesOf(ctx context.Context, where string, arg any) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT acquisition_id, depends_on_id FROM acquisition_dependencies `+where+` ORDER BY acquisition_id, depends_on_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("listing acquisition dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scanning acquisition dependency: %w", err)
		}
		deps[from] = append(deps[from], to)
	}
	return deps, rows.Err()
}

func scanAcquisition(row scanner) (*domain.Acquisition, error) {
	var a domain.Acquisition
	var phase, state, createdAtStr, updatedAtStr string
	var start, end ruleColumns
	var dateStart, dateEnd sql.NullString

	dest := []any{&a.ID, &a.ProjectID, &a.Name, &a.Code, &a.Sequence, &phase, &state, &a.Description}
	dest = append(dest, start.targets()...)
	dest = append(dest, end.targets()...)
	dest = append(dest, &dateStart, &dateEnd, &createdAtStr, &updatedAtStr)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	a.Phase = domain.AcquisitionPhase(phase)
	a.State = domain.AcquisitionState(state)
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
