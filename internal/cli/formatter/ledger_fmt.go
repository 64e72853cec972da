package formatter

import (
	"strconv"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
)

func FormatReimbursements(items []*domain.Reimbursement) string {
	if len(items) == 0 {
		return Dim("No reimbursements.")
	}
	t := Table{
		Headers: []string{"ID", "DATE", "AMOUNT", "STATUS"},
		Right:   map[int]bool{2: true},
	}
	var sum decimal.Decimal
	for _, r := range items {
		sum = sum.Add(r.Amount)
		t.Rows = append(t.Rows, []string{
			Dim(ShortID(r.ID)),
			Date(&r.Date),
			Money(r.Amount),
			ReimbursementPill(r.Status),
		})
	}
	t.Footer = []string{"", "Total", Money(sum), ""}
	return RenderBox("Reimbursements", t.Render())
}

func FormatPurchases(items []*domain.Purchase) string {
	if len(items) == 0 {
		return Dim("No purchases.")
	}
	t := Table{
		Headers: []string{"ID", "DATE", "NAME", "SUPPLIER", "VALUE"},
		Right:   map[int]bool{4: true},
	}
	var sum decimal.Decimal
	for _, p := range items {
		sum = sum.Add(p.Value)
		t.Rows = append(t.Rows, []string{
			Dim(ShortID(p.ID)),
			Date(p.Date),
			p.Name,
			orDash(p.Supplier),
			Money(p.Value),
		})
	}
	t.Footer = []string{"", "", "Total", "", Money(sum)}
	return RenderBox("Purchases", t.Render())
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
