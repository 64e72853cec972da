package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetLine is one row of a project's budget ("deviz").
type BudgetLine struct {
	ID         string
	ProjectID  string
	Chapter    string
	Subchapter string
	// SequenceNumber is derived from Chapter and Subchapter and is unique
	// within the project when non-empty.
	SequenceNumber string
	Name           string

	EligibleBase    decimal.Decimal
	EligibleVAT     decimal.Decimal
	NonEligibleBase decimal.Decimal
	NonEligibleVAT  decimal.Decimal

	TotalEligible    decimal.Decimal
	TotalNonEligible decimal.Decimal
	TotalBase        decimal.Decimal
	TotalVAT         decimal.Decimal
	Total            decimal.Decimal

	ReimbursableEligible decimal.Decimal
	CofinancedEligible   decimal.Decimal

	ExpenseType  ExpenseType
	CostCategory CostCategory

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SequenceNumber joins chapter and subchapter with a dot, omitting empty
// parts. Returns "" when both are empty.
func SequenceNumber(chapter, subchapter string) string {
	parts := make([]string, 0, 2)
	if c := strings.TrimSpace(chapter); c != "" {
		parts = append(parts, c)
	}
	if s := strings.TrimSpace(subchapter); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// Normalize trims the code columns and refreshes SequenceNumber.
func (l *BudgetLine) Normalize() {
	l.Chapter = strings.TrimSpace(l.Chapter)
	l.Subchapter = strings.TrimSpace(l.Subchapter)
	l.Name = strings.TrimSpace(l.Name)
	l.SequenceNumber = SequenceNumber(l.Chapter, l.Subchapter)
}

// Validate checks the classification columns. Amounts may be negative,
// for corrections and credit lines.
func (l *BudgetLine) Validate() []error {
	var errs []error
	if !ValidExpenseTypes[string(l.ExpenseType)] {
		errs = append(errs, fmt.Errorf("expense type: invalid value %q", l.ExpenseType))
	}
	if !ValidCostCategories[string(l.CostCategory)] {
		errs = append(errs, fmt.Errorf("cost category: invalid value %q", l.CostCategory))
	}
	return errs
}

// Label renders "<sequence> - <name>" with fallbacks for partial lines.
func (l *BudgetLine) Label() string {
	switch {
	case l.SequenceNumber != "" && l.Name != "":
		return l.SequenceNumber + " - " + l.Name
	case l.Name != "":
		return l.Name
	case l.SequenceNumber != "":
		return l.SequenceNumber
	default:
		return fmt.Sprintf("Budget line %s", l.ID)
	}
}
