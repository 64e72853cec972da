package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var integerText = regexp.MustCompile(`^(-?\d+)[.,]0+$`)

// ReadFile opens path and reads its budget lines, picking the format from
// the extension.
func ReadFile(path string) ([]*domain.BudgetLine, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, domain.NewValidationError("%s", err.Error())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()
	return Read(f, format)
}

// Read parses a budget sheet into lines that carry no ID or project.
// Every row problem is collected into one ValidationError.
func Read(r io.Reader, format Format) ([]*domain.BudgetLine, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSVRows(r)
	case FormatXLSX:
		rows, err = readXLSXRows(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSVRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, domain.NewValidationError("malformed csv: %v", err)
	}
	return rows, nil
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewValidationError("malformed xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewValidationError("xlsx file has no worksheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// header maps a column name to its index in the sheet.
type header map[string]int

func parseHeader(row []string) (header, error) {
	h := make(header, len(row))
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("missing required columns: %s", strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRows(rows [][]string) ([]*domain.BudgetLine, error) {
	if len(rows) == 0 {
		return nil, domain.NewValidationError("file is empty: a header row is required")
	}
	h, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var lines []*domain.BudgetLine
	var problems []error
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rowNum := i + 2
		l, errs := parseLine(h, row)
		for _, e := range errs {
			problems = append(problems, fmt.Errorf("row %d: %w", rowNum, e))
		}
		if len(errs) == 0 {
			lines = append(lines, l)
		}
	}
	problems = append(problems, CheckDuplicates(lines)...)
	if err := domain.ValidationErrorFromList("invalid budget import", problems); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseLine(h header, row []string) (*domain.BudgetLine, []error) {
	l := &domain.BudgetLine{
		Chapter:      normalizeCode(h.get(row, ColChapter)),
		Subchapter:   normalizeCode(h.get(row, ColSubchapter)),
		Name:         h.get(row, ColName),
		ExpenseType:  domain.ExpenseType(h.get(row, ColExpenseType)),
		CostCategory: domain.CostCategory(h.get(row, ColCostCategory)),
	}

	var errs []error
	amounts := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColEligibleBase, &l.EligibleBase},
		{ColEligibleVAT, &l.EligibleVAT},
		{ColNonEligibleBase, &l.NonEligibleBase},
		{ColNonEligibleVAT, &l.NonEligibleVAT},
		{ColReimbursable, &l.ReimbursableEligible},
		{ColCofinanced, &l.CofinancedEligible},
	}
	for _, a := range amounts {
		v, err := ParseAmount(h.get(row, a.col))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.col, err))
			continue
		}
		*a.dst = v
	}

	l.Normalize()
	errs = append(errs, l.Validate()...)
	return l, errs
}

// CheckDuplicates reports every line whose trimmed (chapter, subchapter)
// pair was already used by an earlier line, empty pairs included. Distinct
// pairs that derive the same sequence number, like ("1", "") and ("", "1"),
// are reported too.
func CheckDuplicates(lines []*domain.BudgetLine) []error {
	var errs []error
	pairs := make(map[[2]string]int)
	seqs := make(map[string]int)
	for i, l := range lines {
		key := [2]string{strings.TrimSpace(l.Chapter), strings.TrimSpace(l.Subchapter)}
		seq := domain.SequenceNumber(key[0], key[1])
		if j, seen := pairs[key]; seen {
			label := "with empty codes"
			if seq != "" {
				label = fmt.Sprintf("%q", seq)
			}
			errs = append(errs, fmt.Errorf("line %d: duplicate chapter/subchapter %s (first seen on line %d)", i+1, label, j+1))
			continue
		}
		pairs[key] = i
		if seq == "" {
			continue
		}
		if j, seen := seqs[seq]; seen {
			errs = append(errs, fmt.Errorf("line %d: sequence number %q collides with line %d", i+1, seq, j+1))
			continue
		}
		seqs[seq] = i
	}
	return errs
}

// ParseAmount accepts "." or "," as decimal separator. An empty cell is zero.
// When both separators appear, the last one is the decimal point.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, nil
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

// normalizeCode turns integer-valued text such as "1.0" into "1".
func normalizeCode(s string) string {
	if m := integerText.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
