package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/fundplan/internal/budget"
	"github.com/alexanderramin/fundplan/internal/domain"
)

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects.")
	}
	t := Table{
		Headers: []string{"CODE", "NAME", "STATUS", "SIGNING", "COMPLETION", "ELIGIBLE", "TOTAL"},
		Right:   map[int]bool{5: true, 6: true},
	}
	for _, p := range projects {
		t.Rows = append(t.Rows, []string{
			orDash(p.Code),
			Bold(p.Name),
			ProjectStatusPill(p.Status),
			Date(p.SigningDate),
			Date(p.CompletionDate),
			Money(p.TotalEligible),
			Money(p.TotalGeneral),
		})
	}
	return RenderBox("Projects", t.Render())
}

// FormatProjectShow renders the project card: identity, milestones,
// funding settings and stored totals.
func FormatProjectShow(p *domain.Project) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(p.DisplayName()) + "\n")
	b.WriteString(ProjectStatusPill(p.Status) + "\n\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-12s", label)), value)
	}
	field("ID", Dim(p.ID))
	field("BENEFICIARY", orDash(p.Beneficiary))
	field("TAX ID", orDash(p.TaxID))
	b.WriteString("\n")
	field("SUBMISSION", Date(p.SubmissionDate))
	field("SIGNING", Date(p.SigningDate))
	field("COMPLETION", Date(p.CompletionDate))
	field("MONITORING", Date(p.MonitoringEndDate))
	b.WriteString("\n")
	field("APORT", Money(p.Cofinancing))
	field("EUR RATE", p.EURRate.String())
	field("VAT", orDash(string(p.VATEligible)))
	field("FINANCIAL", Percent(p.FinancialProgress))
	field("PHYSICAL", Percent(p.PhysicalProgress))
	b.WriteString("\n")
	b.WriteString(Header("Totals") + "\n")
	field("ELIGIBLE", Money(p.TotalEligible))
	field("NON-ELIGIBLE", Money(p.TotalNonEligible))
	field("GENERAL", Money(p.TotalGeneral))

	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

// FormatTotals renders freshly computed project totals.
func FormatTotals(code string, t budget.ProjectTotals) string {
	table := Table{
		Headers: []string{"TOTAL", "AMOUNT"},
		Rows: [][]string{
			{"Eligible", Money(t.Eligible)},
			{"Non-eligible", Money(t.NonEligible)},
		},
		Footer: []string{"General", Money(t.General)},
		Right:  map[int]bool{1: true},
	}
	return RenderBox("Totals "+code, table.Render())
}

// FormatDistribution renders the outcome of a co-financing distribution.
// lines supplies the labels of the allocated lines.
func FormatDistribution(d *budget.Distribution, lines []*domain.BudgetLine) string {
	if d.Notice != nil {
		return StyleYellow.Render(d.Notice.Message)
	}

	labels := make(map[string]string, len(lines))
	for _, l := range lines {
		labels[l.ID] = l.Label()
	}

	t := Table{
		Headers: []string{"LINE", "ELIGIBLE", "CO-FINANCED", "REIMBURSABLE"},
		Right:   map[int]bool{1: true, 2: true, 3: true},
	}
	for _, a := range d.Allocations {
		t.Rows = append(t.Rows, []string{
			labels[a.LineID],
			Money(a.Eligible),
			Money(a.Cofinanced),
			Money(a.Reimbursable),
		})
	}

	var b strings.Builder
	b.WriteString(d.Summary())
	if !d.Drift.IsZero() {
		b.WriteString("\n" + Dim("Rounding drift: "+d.Drift.StringFixed(2)))
	}
	b.WriteString("\n\n")
	b.WriteString(t.Render())
	return RenderBox("Aport", strings.TrimRight(b.String(), "\n"))
}
