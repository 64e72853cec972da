package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
)

// SQLiteReimbursementRepo implements ReimbursementRepo.
type SQLiteReimbursementRepo struct {
	db db.DBTX
}

func NewSQLiteReimbursementRepo(conn db.DBTX) *SQLiteReimbursementRepo {
	return &SQLiteReimbursementRepo{db: conn}
}

const reimbursementColumns = `id, project_id, date, amount, status, created_at, updated_at`

func (r *SQLiteReimbursementRepo) Create(ctx context.Context, rb *domain.Reimbursement) error {
	query := `INSERT INTO reimbursements (` + reimbursementColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rb.ID, rb.ProjectID, rb.Date.Format(dateLayout), rb.Amount.String(), string(rb.Status),
		rb.CreatedAt.Format(time.RFC3339), rb.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting reimbursement: %w", err)
	}
	return nil
}

func (r *SQLiteReimbursementRepo) GetByID(ctx context.Context, id string) (*domain.Reimbursement, error) {
	query := `SELECT ` + reimbursementColumns + ` FROM reimbursements WHERE id = ?`
	rb, err := scanReimbursement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("reimbursement", err)
	}
	return rb, nil
}

func (r *SQLiteReimbursementRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Reimbursement, error) {
	query := `SELECT ` + reimbursementColumns + ` FROM reimbursements WHERE project_id = ? ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing reimbursements: %w", err)
	}
	defer rows.Close()

	var out []*domain.Reimbursement
	for rows.Next() {
		rb, err := scanReimbursement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reimbursement row: %w", err)
		}
		out = append(out, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reimbursements: %w", err)
	}
	return out, nil
}

func (r *SQLiteReimbursementRepo) Update(ctx context.Context, rb *domain.Reimbursement) error {
	query := `UPDATE reimbursements SET date = ?, amount = ?, status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		rb.Date.Format(dateLayout), rb.Amount.String(), string(rb.Status), rb.UpdatedAt.Format(time.RFC3339), rb.ID)
	if err != nil {
		return fmt.Errorf("updating reimbursement: %w", err)
	}
	return checkAffected("reimbursement", res)
}

func (r *SQLiteReimbursementRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reimbursements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting reimbursement: %w", err)
	}
	return checkAffected("reimbursement", res)
}

func scanReimbursement(row scanner) (*domain.Reimbursement, error) {
	var rb domain.Reimbursement
	var date, amount, status, createdAtStr, updatedAtStr string
	if err := row.Scan(&rb.ID, &rb.ProjectID, &date, &amount, &status, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	var err error
	if rb.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}
	if rb.Amount, err = parseDecimal("amount", amount); err != nil {
		return nil, err
	}
	rb.Status = domain.ReimbursementStatus(status)
	if rb.CreatedAt, rb.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &rb, nil
}

// SQLitePurchaseRepo implements PurchaseRepo.
type SQLitePurchaseRepo struct {
	db db.DBTX
}

func NewSQLitePurchaseRepo(conn db.DBTX) *SQLitePurchaseRepo {
	return &SQLitePurchaseRepo{db: conn}
}

const purchaseColumns = `id, project_id, name, supplier, value, date, created_at, updated_at`

func (r *SQLitePurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	query := `INSERT INTO purchases (` + purchaseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ProjectID, p.Name, p.Supplier, p.Value.String(), nullableTimeToString(p.Date, dateLayout),
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting purchase: %w", err)
	}
	return nil
}

func (r *SQLitePurchaseRepo) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = ?`
	p, err := scanPurchase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("purchase", err)
	}
	return p, nil
}

// ListByProject orders undated purchases last.
func (r *SQLitePurchaseRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE project_id = ?
		ORDER BY date IS NULL, date, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var out []*domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchases: %w", err)
	}
	return out, nil
}

func (r *SQLitePurchaseRepo) Update(ctx context.Context, p *domain.Purchase) error {
	query := `UPDATE purchases SET name = ?, supplier = ?, value = ?, date = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Supplier, p.Value.String(), nullableTimeToString(p.Date, dateLayout),
		p.UpdatedAt.Format(time.RFC3339), p.ID)
	if err != nil {
		return fmt.Errorf("updating purchase: %w", err)
	}
	return checkAffected("purchase", res)
}

func (r *SQLitePurchaseRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting purchase: %w", err)
	}
	return checkAffected("purchase", res)
}

func scanPurchase(row scanner) (*domain.Purchase, error) {
	var p domain.Purchase
	var value, createdAtStr, updatedAtStr string
	var date sql.NullString
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Supplier, &value, &date, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	var err error
	if p.Value, err = parseDecimal("value", value); err != nil {
		return nil, err
	}
	p.Date = parseNullableTime(date, dateLayout)
	if p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}
