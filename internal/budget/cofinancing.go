package budget

import (
	"fmt"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	currencyPlaces    = 2
	coefficientPlaces = 4
)

// Allocation is the share of one line in a distribution.
type Allocation struct {
	LineID       string
	Eligible     decimal.Decimal
	Cofinanced   decimal.Decimal
	Reimbursable decimal.Decimal
}

// Distribution is the outcome of DistributeCofinancing. When Notice is set
// nothing was distributed and Allocations is empty.
type Distribution struct {
	Contribution  decimal.Decimal
	TotalEligible decimal.Decimal
	// Coefficient is C/E rounded to four places, for display.
	Coefficient decimal.Decimal
	Allocations []Allocation
	// Drift is the sum of the rounded per-line shares minus the
	// contribution. Per-line rounding is not reconciled.
	Drift  decimal.Decimal
	Notice *domain.Notice
}

// Summary renders the success message shown after a distribution.
func (d *Distribution) Summary() string {
	if d.Notice != nil {
		return d.Notice.Message
	}
	return fmt.Sprintf("Co-financing distributed.\nContribution: %s.\nEligible total: %s.\nCo-financing coefficient: %s.",
		d.Contribution.StringFixed(currencyPlaces),
		d.TotalEligible.StringFixed(currencyPlaces),
		d.Coefficient.StringFixed(coefficientPlaces))
}

// DistributeCofinancing spreads contribution across lines in proportion to
// each line's eligible amount (eligible base + eligible VAT, recomputed
// from inputs). totalEligible is the project's stored eligible total.
//
// A zero eligible total or a non-positive contribution yields a notice and
// no allocations. A contribution above the eligible total is a validation
// error.
func DistributeCofinancing(contribution, totalEligible decimal.Decimal, lines []*domain.BudgetLine) (*Distribution, error) {
	d := &Distribution{Contribution: contribution, TotalEligible: totalEligible}

	if totalEligible.IsZero() {
		d.Notice = &domain.Notice{Message: "The eligible total is 0, so no co-financing coefficient can be computed. No lines were changed."}
		return d, nil
	}
	if !contribution.IsPositive() {
		d.Notice = &domain.Notice{Message: "The co-financing amount is 0 or negative. Enter an amount greater than 0 to distribute it."}
		return d, nil
	}
	if contribution.GreaterThan(totalEligible) {
		return nil, domain.NewValidationError("co-financing amount (%s) cannot exceed the eligible total (%s)",
			contribution.StringFixed(currencyPlaces), totalEligible.StringFixed(currencyPlaces))
	}

	d.Coefficient = contribution.Div(totalEligible).Round(coefficientPlaces)

	sum := decimal.Zero
	d.Allocations = make([]Allocation, 0, len(lines))
	for _, l := range lines {
		eligible := l.EligibleBase.Add(l.EligibleVAT)
		// Multiply before dividing; a truncated C/E loses half-cent ties.
		cofinanced := eligible.Mul(contribution).Div(totalEligible).Round(currencyPlaces)
		reimbursable := eligible.Sub(cofinanced).Round(currencyPlaces)
		d.Allocations = append(d.Allocations, Allocation{
			LineID:       l.ID,
			Eligible:     eligible,
			Cofinanced:   cofinanced,
			Reimbursable: reimbursable,
		})
		sum = sum.Add(cofinanced)
	}
	d.Drift = sum.Sub(contribution)
	return d, nil
}

// Apply writes the allocations onto the matching lines.
func (d *Distribution) Apply(lines []*domain.BudgetLine) {
	byID := make(map[string]Allocation, len(d.Allocations))
	for _, a := range d.Allocations {
		byID[a.LineID] = a
	}
	for _, l := range lines {
		if a, ok := byID[l.ID]; ok {
			l.CofinancedEligible = a.Cofinanced
			l.ReimbursableEligible = a.Reimbursable
		}
	}
}
