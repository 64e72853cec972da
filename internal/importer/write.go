package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Write encodes lines with the full column set, in the order given.
func Write(w io.Writer, format Format, lines []*domain.BudgetLine) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, lines)
	case FormatXLSX:
		return writeXLSX(w, lines)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func record(l *domain.BudgetLine) []string {
	return []string{
		l.Chapter, l.Subchapter, l.Name,
		l.EligibleBase.String(), l.EligibleVAT.String(),
		l.NonEligibleBase.String(), l.NonEligibleVAT.String(),
		string(l.ExpenseType), string(l.CostCategory),
		l.ReimbursableEligible.String(), l.CofinancedEligible.String(),
	}
}

func writeCSV(w io.Writer, lines []*domain.BudgetLine) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, l := range lines {
		if err := cw.Write(record(l)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, lines []*domain.BudgetLine) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming worksheet: %w", err)
	}
	headerRow := make([]any, len(Columns))
	for i, c := range Columns {
		headerRow[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing xlsx header: %w", err)
	}
	for i, l := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			l.Chapter, l.Subchapter, l.Name,
			amountCell(l.EligibleBase), amountCell(l.EligibleVAT),
			amountCell(l.NonEligibleBase), amountCell(l.NonEligibleVAT),
			string(l.ExpenseType), string(l.CostCategory),
			amountCell(l.ReimbursableEligible), amountCell(l.CofinancedEligible),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing xlsx row %d: %w", i+2, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// amountCell keeps amounts numeric in the sheet. Conversion to float is
// exact for the two-decimal values a budget holds.
func amountCell(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
