package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_CSV(t *testing.T) {
	in := "\ufeffchapter;subchapter;name;chelt_elig_baza;chelt_elig_tva;mysmis\n" +
		"1.0;1;Studii;1000,50;190.10;Servicii\n" +
		";;;;;\n" +
		"2;;Proiectare;2500;;\n"

	lines, err := Read(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "1", lines[0].Chapter)
	assert.Equal(t, "1.1", lines[0].SequenceNumber)
	assert.Equal(t, "1000.5", lines[0].EligibleBase.String())
	assert.Equal(t, "190.1", lines[0].EligibleVAT.String())
	assert.Equal(t, domain.CostCategory("Servicii"), lines[0].CostCategory)

	assert.Equal(t, "2", lines[1].SequenceNumber)
	assert.True(t, lines[1].EligibleVAT.IsZero())
}

func TestRead_MissingRequiredHeader(t *testing.T) {
	_, err := Read(strings.NewReader("chapter;name\n1;x\n"), FormatCSV)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "subchapter")
}

func TestRead_EmptyFile(t *testing.T) {
	_, err := Read(strings.NewReader(""), FormatCSV)
	assert.True(t, domain.IsValidation(err))
}

func TestRead_CollectsEveryRowProblem(t *testing.T) {
	in := "chapter;subchapter;name;chelt_elig_baza;tip_cheltuiala\n" +
		"1;1;A;abc;\n" +
		"1;2;B;10;Nope\n" +
		"1;1;C;5;\n"

	_, err := Read(strings.NewReader(in), FormatCSV)
	require.Error(t, err)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Problems, 2)
	assert.Contains(t, ve.Problems[0], "row 2")
	assert.Contains(t, ve.Problems[0], "chelt_elig_baza")
	assert.Contains(t, ve.Problems[1], "row 3")
}

func TestRead_DuplicateRows(t *testing.T) {
	in := "chapter;subchapter;name\n1;1;A\n1;2;B\n1;1;C\n"
	_, err := Read(strings.NewReader(in), FormatCSV)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Problems, 1)
	assert.Contains(t, ve.Problems[0], `"1.1"`)
}

func TestCheckDuplicates_EmptyPairs(t *testing.T) {
	lines := []*domain.BudgetLine{{Name: "a"}, {Chapter: " ", Name: "b"}, {Chapter: "3", Name: "c"}}
	errs := CheckDuplicates(lines)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "line 2")
	assert.Contains(t, errs[0].Error(), "empty codes")
}

func TestCheckDuplicates_SequenceCollision(t *testing.T) {
	lines := []*domain.BudgetLine{{Chapter: "1"}, {Subchapter: "1"}, {Chapter: "1", Subchapter: "1"}}
	errs := CheckDuplicates(lines)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `sequence number "1" collides with line 1`)
}

func TestRead_DuplicateEmptyCodes(t *testing.T) {
	in := "chapter;subchapter;name\n;;A\n;;B\n"
	_, err := Read(strings.NewReader(in), FormatCSV)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Problems, 1)
	assert.Contains(t, ve.Problems[0], "empty codes")
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":         "0",
		"12":       "12",
		"12,5":     "12.5",
		"12.5":     "12.5",
		"1.234,56": "1234.56",
		"1,234.56": "1234.56",
		"1 234,56": "1234.56",
		"-3,10":    "-3.1",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}

	_, err := ParseAmount("12x")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/Deviz.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromPath("a.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromPath("a.xls")
	assert.Error(t, err)
}

func TestDefaultExportName(t *testing.T) {
	assert.Equal(t, "deviz_PRJ001.xlsx", DefaultExportName("PRJ001", FormatXLSX))
	assert.Equal(t, "deviz_proiect.csv", DefaultExportName(" ", FormatCSV))
}

func sampleLines() []*domain.BudgetLine {
	lines := []*domain.BudgetLine{
		{
			Chapter: "1", Subchapter: "1", Name: "Studii de teren",
			EligibleBase: dec("1000.5"), EligibleVAT: dec("190.1"),
			ExpenseType: domain.ExpenseType("Directa"), CostCategory: domain.CostCategory("Servicii"),
			CofinancedEligible: dec("25.25"), ReimbursableEligible: dec("1165.35"),
		},
		{
			Chapter: "4", Subchapter: "2", Name: "Utilaje; montaj",
			NonEligibleBase: dec("300"), NonEligibleVAT: dec("57"),
		},
	}
	for _, l := range lines {
		l.Normalize()
	}
	return lines
}

func assertSameLines(t *testing.T, want, got []*domain.BudgetLine) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].SequenceNumber, got[i].SequenceNumber)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.True(t, want[i].EligibleBase.Equal(got[i].EligibleBase))
		assert.True(t, want[i].EligibleVAT.Equal(got[i].EligibleVAT))
		assert.True(t, want[i].NonEligibleBase.Equal(got[i].NonEligibleBase))
		assert.True(t, want[i].NonEligibleVAT.Equal(got[i].NonEligibleVAT))
		assert.True(t, want[i].CofinancedEligible.Equal(got[i].CofinancedEligible))
		assert.True(t, want[i].ReimbursableEligible.Equal(got[i].ReimbursableEligible))
		assert.Equal(t, want[i].ExpenseType, got[i].ExpenseType)
		assert.Equal(t, want[i].CostCategory, got[i].CostCategory)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			lines := sampleLines()
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, format, lines))

			got, err := Read(&buf, format)
			require.NoError(t, err)
			assertSameLines(t, lines, got)
		})
	}
}
