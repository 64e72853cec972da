package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the formatted string.
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

// nullableString stores "" as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// parseDecimal reads a TEXT money column. Empty text reads as zero.
func parseDecimal(column, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s: %w", column, err)
	}
	return d, nil
}

func parseTimestamps(createdAt, updatedAt string) (time.Time, time.Time, error) {
	c, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	u, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return c, u, nil
}

// notFound wraps domain.ErrNotFound for a missing row, and adds context
// to any other scan failure.
func notFound(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", entity, domain.ErrNotFound)
	}
	return fmt.Errorf("scanning %s: %w", entity, err)
}

// checkAffected turns an UPDATE or DELETE that touched no row into ErrNotFound.
func checkAffected(entity string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %w", entity, domain.ErrNotFound)
	}
	return nil
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ruleColumns holds the five stored columns of one DateRule.
type ruleColumns struct {
	source    string
	milestone string
	refID     sql.NullString
	endpoint  string
	offset    int
}

func (c *ruleColumns) targets() []any {
	return []any{&c.source, &c.milestone, &c.refID, &c.endpoint, &c.offset}
}

func (c *ruleColumns) rule() domain.DateRule {
	return domain.DateRule{
		Source:     domain.RuleSource(c.source),
		Milestone:  domain.Milestone(c.milestone),
		RefID:      c.refID.String,
		Endpoint:   domain.Endpoint(c.endpoint),
		OffsetDays: c.offset,
	}
}

// ruleArgs flattens a DateRule into its five column values.
func ruleArgs(r domain.DateRule) []any {
	return []any{string(r.Source), string(r.Milestone), nullableString(r.RefID), string(r.Endpoint), r.OffsetDays}
}

// ruleSelect lists the rule columns of both dates for a SELECT.
const ruleSelect = `start_source, start_milestone, start_ref_id, start_endpoint, start_offset,
		end_source, end_milestone, end_ref_id, end_endpoint, end_offset`
