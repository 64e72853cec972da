// Package budget computes budget line totals, project totals and the
// distribution of the beneficiary's co-financing ("aport") across lines.
// All arithmetic is exact decimal; only the distribution rounds.
package budget

import (
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
)

// LineTotals are the derived amounts of one budget line.
type LineTotals struct {
	Eligible    decimal.Decimal
	NonEligible decimal.Decimal
	Base        decimal.Decimal
	VAT         decimal.Decimal
	Total       decimal.Decimal
}

// ComputeLine derives the totals of l from its four input amounts.
func ComputeLine(l *domain.BudgetLine) LineTotals {
	base := l.EligibleBase.Add(l.NonEligibleBase)
	vat := l.EligibleVAT.Add(l.NonEligibleVAT)
	return LineTotals{
		Eligible:    l.EligibleBase.Add(l.EligibleVAT),
		NonEligible: l.NonEligibleBase.Add(l.NonEligibleVAT),
		Base:        base,
		VAT:         vat,
		Total:       base.Add(vat),
	}
}

// ApplyLineTotals stores the derived totals on l.
func ApplyLineTotals(l *domain.BudgetLine) {
	t := ComputeLine(l)
	l.TotalEligible = t.Eligible
	l.TotalNonEligible = t.NonEligible
	l.TotalBase = t.Base
	l.TotalVAT = t.VAT
	l.Total = t.Total
}

// ProjectTotals are the sums a project stores over its budget lines.
type ProjectTotals struct {
	Eligible    decimal.Decimal
	NonEligible decimal.Decimal
	General     decimal.Decimal
}

// SumLines recomputes each line's totals from its inputs and adds them up.
func SumLines(lines []*domain.BudgetLine) ProjectTotals {
	var t ProjectTotals
	for _, l := range lines {
		lt := ComputeLine(l)
		t.Eligible = t.Eligible.Add(lt.Eligible)
		t.NonEligible = t.NonEligible.Add(lt.NonEligible)
	}
	t.General = t.Eligible.Add(t.NonEligible)
	return t
}

// Apply copies the totals onto p.
func (t ProjectTotals) Apply(p *domain.Project) {
	p.TotalEligible = t.Eligible
	p.TotalNonEligible = t.NonEligible
	p.TotalGeneral = t.General
}

// Changed reports whether p's stored totals differ from t.
func (t ProjectTotals) Changed(p *domain.Project) bool {
	return !t.Eligible.Equal(p.TotalEligible) ||
		!t.NonEligible.Equal(p.TotalNonEligible) ||
		!t.General.Equal(p.TotalGeneral)
}
