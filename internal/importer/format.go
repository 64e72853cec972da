package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the file encoding of a budget sheet.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet written by exports.
const SheetName = "Deviz"

// Column headers, in export order.
const (
	ColChapter         = "chapter"
	ColSubchapter      = "subchapter"
	ColName            = "name"
	ColEligibleBase    = "chelt_elig_baza"
	ColEligibleVAT     = "chelt_elig_tva"
	ColNonEligibleBase = "chelt_neelig_baza"
	ColNonEligibleVAT  = "chelt_neelig_tva"
	ColExpenseType     = "tip_cheltuiala"
	ColCostCategory    = "mysmis"
	ColReimbursable    = "total_chelt_eligibile_neramb"
	ColCofinanced      = "total_chelt_eligibile_aport"
)

// Columns lists every header a sheet may carry.
var Columns = []string{
	ColChapter, ColSubchapter, ColName,
	ColEligibleBase, ColEligibleVAT, ColNonEligibleBase, ColNonEligibleVAT,
	ColExpenseType, ColCostCategory, ColReimbursable, ColCofinanced,
}

var requiredColumns = []string{ColChapter, ColSubchapter, ColName}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}

// ParseFormat accepts "csv" or "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected csv or xlsx)", s)
	}
}

// DefaultExportName returns the file name offered for a project export.
func DefaultExportName(projectCode string, f Format) string {
	code := strings.TrimSpace(projectCode)
	if code == "" {
		code = "proiect"
	}
	if f == "" {
		f = FormatXLSX
	}
	return "deviz_" + code + "." + string(f)
}
