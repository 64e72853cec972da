package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Project is the aggregate root of a funded project. It owns budget lines,
// activities, acquisitions, reimbursements and purchases.
type Project struct {
	ID          string
	Code        string
	Name        string
	Beneficiary string
	TaxID       string

	SubmissionDate *time.Time
	SigningDate    *time.Time
	CompletionDate *time.Time

	Status            ProjectStatus
	Cofinancing       decimal.Decimal
	FinancialProgress float64
	PhysicalProgress  float64
	MonitoringEndDate *time.Time
	EURRate           decimal.Decimal
	VATEligible       VATEligibility

	BudgetNotes        string
	AcquisitionNotes   string
	ActivityNotes      string
	ReimbursementNotes string

	// Stored totals, kept in step with the budget lines.
	TotalEligible    decimal.Decimal
	TotalNonEligible decimal.Decimal
	TotalGeneral     decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Milestones returns the three dates date rules can be anchored on.
func (p *Project) Milestones() Milestones {
	return Milestones{
		Submission: p.SubmissionDate,
		Signing:    p.SigningDate,
		Completion: p.CompletionDate,
	}
}

// ApplyDefaults fills the status of a new project.
func (p *Project) ApplyDefaults() {
	if p.Status == "" {
		p.Status = ProjectInProgress
	}
}

// Validate checks required fields and enum values.
func (p *Project) Validate() []error {
	var errs []error
	if strings.TrimSpace(p.Code) == "" {
		errs = append(errs, fmt.Errorf("project code is required"))
	}
	if !ValidProjectStatuses[string(p.Status)] {
		errs = append(errs, fmt.Errorf("status: invalid value %q", p.Status))
	}
	if !ValidVATEligibility[string(p.VATEligible)] {
		errs = append(errs, fmt.Errorf("vat_eligible: invalid value %q", p.VATEligible))
	}
	if p.FinancialProgress < 0 || p.FinancialProgress > 100 {
		errs = append(errs, fmt.Errorf("financial progress must be between 0 and 100, got %g", p.FinancialProgress))
	}
	if p.PhysicalProgress < 0 || p.PhysicalProgress > 100 {
		errs = append(errs, fmt.Errorf("physical progress must be between 0 and 100, got %g", p.PhysicalProgress))
	}
	if p.Cofinancing.IsNegative() {
		errs = append(errs, fmt.Errorf("co-financing amount cannot be negative"))
	}
	if p.EURRate.IsNegative() {
		errs = append(errs, fmt.Errorf("EUR rate cannot be negative"))
	}
	return errs
}

// DisplayName renders "[code] name", falling back to whichever is set.
func (p *Project) DisplayName() string {
	switch {
	case p.Code != "" && p.Name != "":
		return fmt.Sprintf("[%s] %s", p.Code, p.Name)
	case p.Name != "":
		return p.Name
	default:
		return p.Code
	}
}

// MatchesSearch reports whether term appears in the code, beneficiary or
// name, ignoring case.
func (p *Project) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{p.Code, p.Beneficiary, p.Name} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// MilestonesChanged reports whether any of the three milestone dates differ.
func MilestonesChanged(a, b *Project) bool {
	return !SameDate(a.SubmissionDate, b.SubmissionDate) ||
		!SameDate(a.SigningDate, b.SigningDate) ||
		!SameDate(a.CompletionDate, b.CompletionDate)
}
