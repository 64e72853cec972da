package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reimbursement is one planned or submitted claim against the funder.
type Reimbursement struct {
	ID        string
	ProjectID string
	Date      time.Time
	Amount    decimal.Decimal
	Status    ReimbursementStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Reimbursement) Validate() []error {
	var errs []error
	if r.Date.IsZero() {
		errs = append(errs, fmt.Errorf("reimbursement date is required"))
	}
	if r.Amount.IsNegative() {
		errs = append(errs, fmt.Errorf("reimbursement amount cannot be negative"))
	}
	if !ValidReimbursementStatuses[string(r.Status)] {
		errs = append(errs, fmt.Errorf("status: invalid value %q", r.Status))
	}
	return errs
}

// NextStatus returns the status that follows the current one.
// Returns false when the reimbursement is already paid.
func (r *Reimbursement) NextStatus() (ReimbursementStatus, bool) {
	for i, s := range ReimbursementFlow {
		if s == r.Status && i+1 < len(ReimbursementFlow) {
			return ReimbursementFlow[i+1], true
		}
	}
	return r.Status, false
}

// Purchase records a single purchase made under the project.
type Purchase struct {
	ID        string
	ProjectID string
	Name      string
	Supplier  string
	Value     decimal.Decimal
	Date      *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Purchase) Validate() []error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, fmt.Errorf("purchase name is required"))
	}
	if p.Value.IsNegative() {
		errs = append(errs, fmt.Errorf("purchase value cannot be negative"))
	}
	return errs
}
