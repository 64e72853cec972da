package budget

import (
	"testing"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(id, eb, ev, nb, nv string) *domain.BudgetLine {
	return &domain.BudgetLine{
		ID:              id,
		EligibleBase:    d(eb),
		EligibleVAT:     d(ev),
		NonEligibleBase: d(nb),
		NonEligibleVAT:  d(nv),
	}
}

func TestComputeLine_ExactSums(t *testing.T) {
	l := line("1", "100", "19", "50", "9.5")
	got := ComputeLine(l)
	assert.True(t, got.Eligible.Equal(d("119")), got.Eligible.String())
	assert.True(t, got.NonEligible.Equal(d("59.5")))
	assert.True(t, got.Base.Equal(d("150")))
	assert.True(t, got.VAT.Equal(d("28.5")))
	assert.True(t, got.Total.Equal(d("178.5")))
}

func TestComputeLine_NoFloatDrift(t *testing.T) {
	l := line("1", "0.1", "0.2", "0", "0")
	assert.Equal(t, "0.3", ComputeLine(l).Eligible.String())
}

func TestApplyLineTotals(t *testing.T) {
	l := line("1", "10", "1.9", "0", "0")
	ApplyLineTotals(l)
	assert.True(t, l.TotalEligible.Equal(d("11.9")))
	assert.True(t, l.Total.Equal(d("11.9")))
	assert.True(t, l.TotalNonEligible.IsZero())
}

func TestSumLines(t *testing.T) {
	totals := SumLines([]*domain.BudgetLine{
		line("1", "100", "19", "50", "9.5"),
		line("2", "200", "0", "0", "0"),
	})
	assert.True(t, totals.Eligible.Equal(d("319")))
	assert.True(t, totals.NonEligible.Equal(d("59.5")))
	assert.True(t, totals.General.Equal(d("378.5")))

	p := &domain.Project{}
	assert.True(t, totals.Changed(p))
	totals.Apply(p)
	assert.False(t, totals.Changed(p))
}

func TestSumLines_Empty(t *testing.T) {
	totals := SumLines(nil)
	assert.True(t, totals.General.IsZero())
}
