package formatter

import (
	"github.com/alexanderramin/fundplan/internal/budget"
	"github.com/alexanderramin/fundplan/internal/domain"
)

// FormatBudgetLines renders the budget of a project with a totals footer.
func FormatBudgetLines(lines []*domain.BudgetLine) string {
	if len(lines) == 0 {
		return Dim("No budget lines.")
	}
	t := Table{
		Headers: []string{"ID", "NR", "NAME", "ELIGIBLE", "NON-ELIGIBLE", "TOTAL", "CO-FIN", "CATEGORY"},
		Right:   map[int]bool{3: true, 4: true, 5: true, 6: true},
	}
	for _, l := range lines {
		t.Rows = append(t.Rows, []string{
			Dim(ShortID(l.ID)),
			orDash(l.SequenceNumber),
			l.Name,
			Money(l.TotalEligible),
			Money(l.TotalNonEligible),
			Money(l.Total),
			Money(l.CofinancedEligible),
			orDash(string(l.CostCategory)),
		})
	}
	totals := budget.SumLines(lines)
	t.Footer = []string{"", "", "Total", Money(totals.Eligible), Money(totals.NonEligible), Money(totals.General), "", ""}
	return RenderBox("Budget", t.Render())
}
