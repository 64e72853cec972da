package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
)

// SQLiteActivityTemplateRepo implements ActivityTemplateRepo.
type SQLiteActivityTemplateRepo struct {
	db db.DBTX
}

func NewSQLiteActivityTemplateRepo(conn db.DBTX) *SQLiteActivityTemplateRepo {
	return &SQLiteActivityTemplateRepo{db: conn}
}

const activityTemplateColumns = `id, name, code, sequence, phase, ` + ruleSelect

func (r *SQLiteActivityTemplateRepo) Create(ctx context.Context, t *domain.ActivityTemplate) error {
	query := `INSERT INTO activity_templates (` + activityTemplateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{t.ID, t.Name, t.Code, t.Sequence, string(t.Phase)}
	args = append(args, ruleArgs(t.StartRule)...)
	args = append(args, ruleArgs(t.EndRule)...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting activity template: %w", err)
	}
	return nil
}

func (r *SQLiteActivityTemplateRepo) GetByID(ctx context.Context, id string) (*domain.ActivityTemplate, error) {
	query := `SELECT ` + activityTemplateColumns + ` FROM activity_templates WHERE id = ?`
	t, err := scanActivityTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("activity template", err)
	}
	return t, nil
}

// List orders templates by (sequence, id), the expansion order.
func (r *SQLiteActivityTemplateRepo) List(ctx context.Context) ([]*domain.ActivityTemplate, error) {
	query := `SELECT ` + activityTemplateColumns + ` FROM activity_templates ORDER BY sequence, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing activity templates: %w", err)
	}
	defer rows.Close()

	var tmpls []*domain.ActivityTemplate
	for rows.Next() {
		t, err := scanActivityTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity template row: %w", err)
		}
		tmpls = append(tmpls, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity templates: %w", err)
	}
	return tmpls, nil
}

func (r *SQLiteActivityTemplateRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting activity templates: %w", err)
	}
	return n, nil
}

func (r *SQLiteActivityTemplateRepo) Update(ctx context.Context, t *domain.ActivityTemplate) error {
	query := `UPDATE activity_templates SET name = ?, code = ?, sequence = ?, phase = ?,
		start_source = ?, start_milestone = ?, start_ref_id = ?, start_endpoint = ?, start_offset = ?,
		end_source = ?, end_milestone = ?, end_ref_id = ?, end_endpoint = ?, end_offset = ?
		WHERE id = ?`
	args := []any{t.Name, t.Code, t.Sequence, string(t.Phase)}
	args = append(args, ruleArgs(t.StartRule)...)
	args = append(args, ruleArgs(t.EndRule)...)
	args = append(args, t.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating activity template: %w", err)
	}
	return checkAffected("activity template", res)
}

func (r *SQLiteActivityTemplateRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting activity template: %w", err)
	}
	return checkAffected("activity template", res)
}

func scanActivityTemplate(row scanner) (*domain.ActivityTemplate, error) {
	var t domain.ActivityTemplate
	var phase string
	var start, end ruleColumns
	dest := []any{&t.ID, &t.Name, &t.Code, &t.Sequence, &phase}
	dest = append(dest, start.targets()...)
	dest = append(dest, end.targets()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t.Phase = domain.ActivityPhase(phase)
	t.StartRule = start.rule()
	t.EndRule = end.rule()
	return &t, nil
}

// SQLiteAcquisitionTemplateRepo implements AcquisitionTemplateRepo.
type SQLiteAcquisitionTemplateRepo struct {
	db db.DBTX
}

func NewSQLiteAcquisitionTemplateRepo(conn db.DBTX) *SQLiteAcquisitionTemplateRepo {
	return &SQLiteAcquisitionTemplateRepo{db: conn}
}

const acquisitionTemplateColumns = `id, name, code, sequence, phase, description, ` + ruleSelect

func (r *SQLiteAcquisitionTemplateRepo) Create(ctx context.Context, t *domain.AcquisitionTemplate) error {
	query := `INSERT INTO acquisition_templates (` + acquisitionTemplateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{t.ID, t.Name, t.Code, t.Sequence, string(t.Phase), t.Description}
	args = append(args, ruleArgs(t.StartRule)...)
	args = append(args, ruleArgs(t.EndRule)...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting acquisition template: %w", err)
	}
	return r.insertDependencies(ctx, t.ID, t.DependencyIDs)
}

func (r *SQLiteAcquisitionTemplateRepo) GetByID(ctx context.Context, id string) (*domain.AcquisitionTemplate, error) {
	query := `SELECT ` + acquisitionTemplateColumns + ` FROM acquisition_templates WHERE id = ?`
	t, err := scanAcquisitionTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("acquisition template", err)
	}
	deps, err := r.dependencies(ctx)
	if err != nil {
		return nil, err
	}
	t.DependencyIDs = deps[t.ID]
	return t, nil
}

func (r *SQLiteAcquisitionTemplateRepo) List(ctx context.Context) ([]*domain.AcquisitionTemplate, error) {
	query := `SELECT ` + acquisitionTemplateColumns + ` FROM acquisition_templates ORDER BY sequence, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing acquisition templates: %w", err)
	}
	var tmpls []*domain.AcquisitionTemplate
	for rows.Next() {
		t, err := scanAcquisitionTemplate(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning acquisition template row: %w", err)
		}
		tmpls = append(tmpls, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating acquisition templates: %w", err)
	}

	deps, err := r.dependencies(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tmpls {
		t.DependencyIDs = deps[t.ID]
	}
	return tmpls, nil
}

func (r *SQLiteAcquisitionTemplateRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM acquisition_templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting acquisition templates: %w", err)
	}
	return n, nil
}

func (r *SQLiteAcquisitionTemplateRepo) Update(ctx context.Context, t *domain.AcquisitionTemplate) error {
	query := `UPDATE acquisition_templates SET name = ?, code = ?, sequence = ?, phase = ?, description = ?,
		start_source = ?, start_milestone = ?, start_ref_id = ?, start_endpoint = ?, start_offset = ?,
		end_source = ?, end_milestone = ?, end_ref_id = ?, end_endpoint = ?, end_offset = ?
		WHERE id = ?`
	args := []any{t.Name, t.Code, t.Sequence, string(t.Phase), t.Description}
	args = append(args, ruleArgs(t.StartRule)...)
	args = append(args, ruleArgs(t.EndRule)...)
	args = append(args, t.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating acquisition template: %w", err)
	}
	if err := checkAffected("acquisition template", res); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM acquisition_template_dependencies WHERE template_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clearing template dependencies: %w", err)
	}
	return r.insertDependencies(ctx, t.ID, t.DependencyIDs)
}

func (r *SQLiteAcquisitionTemplateRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM acquisition_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting acquisition template: %w", err)
	}
	return checkAffected("acquisition template", res)
}

func (r *SQLiteAcquisitionTemplateRepo) insertDependencies(ctx context.Context, id string, deps []string) error {
	for _, dep := range deps {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO acquisition_template_dependencies (template_id, depends_on_id) VALUES (?, ?)`, id, dep)
		if err != nil {
			return fmt.Errorf("inserting template dependency: %w", err)
		}
	}
	return nil
}

func (r *SQLiteAcquisitionTemplateRepo) dependencies(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT template_id, depends_on_id FROM acquisition_template_dependencies ORDER BY template_id, depends_on_id`)
	if err != nil {
		return nil, fmt.Errorf("listing template dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scanning template dependency: %w", err)
		}
		deps[from] = append(deps[from], to)
	}
	return deps, rows.Err()
}

func scanAcquisitionTemplate(row scanner) (*domain.AcquisitionTemplate, error) {
	var t domain.AcquisitionTemplate
	var phase string
	var start, end ruleColumns
	dest := []any{&t.ID, &t.Name, &t.Code, &t.Sequence, &phase, &t.Description}
	dest = append(dest, start.targets()...)
	dest = append(dest, end.targets()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t.Phase = domain.AcquisitionPhase(phase)
	t.StartRule = start.rule()
	t.EndRule = end.rule()
	return &t, nil
}

// SQLiteSeedMarkerRepo implements SeedMarkerRepo on template_seeds.
type SQLiteSeedMarkerRepo struct {
	db db.DBTX
}

func NewSQLiteSeedMarkerRepo(conn db.DBTX) *SQLiteSeedMarkerRepo {
	return &SQLiteSeedMarkerRepo{db: conn}
}

func (r *SQLiteSeedMarkerRepo) Mark(ctx context.Context, kind string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO template_seeds (kind, seeded_at) VALUES (?, ?)`,
		kind, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("marking %s templates seeded: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n == 1, nil
}
