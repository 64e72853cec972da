package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/importer"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetService_Create_DerivesTotals(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)

	l := testutil.NewTestBudgetLine(p.ID, " 2 ", "3", "Proiectare",
		testutil.WithEligible("100.10", "19.02"), testutil.WithNonEligible("10", "1.90"))
	require.NoError(t, svc.budget.Create(ctx, l))

	got, err := svc.budget.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.3", got.SequenceNumber)
	assert.Equal(t, "119.12", got.TotalEligible.String())
	assert.Equal(t, "11.9", got.TotalNonEligible.String())
	assert.Equal(t, "131.02", got.Total.String())

	stored, err := svc.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "119.12", stored.TotalEligible.String())
	assert.Equal(t, "131.02", stored.TotalGeneral.String())
}

func TestBudgetService_DuplicateSequenceRejected(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)
	other := createProject(t, svc)

	require.NoError(t, svc.budget.Create(ctx, testutil.NewTestBudgetLine(p.ID, "1", "1", "A")))

	err := svc.budget.Create(ctx, testutil.NewTestBudgetLine(p.ID, "1", "1", "B"))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "1.1 already exists")

	// Same key in another project is fine, and so are lines without codes.
	require.NoError(t, svc.budget.Create(ctx, testutil.NewTestBudgetLine(other.ID, "1", "1", "A")))
	require.NoError(t, svc.budget.Create(ctx, testutil.NewTestBudgetLine(p.ID, "", "", "Fără cod")))
	require.NoError(t, svc.budget.Create(ctx, testutil.NewTestBudgetLine(p.ID, "", "", "Alt rând")))
}

func TestBudgetService_Update(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)
	a := testutil.NewTestBudgetLine(p.ID, "1", "1", "A", testutil.WithEligible("100", "0"))
	b := testutil.NewTestBudgetLine(p.ID, "1", "2", "B", testutil.WithEligible("50", "0"))
	require.NoError(t, svc.budget.Create(ctx, a))
	require.NoError(t, svc.budget.Create(ctx, b))

	b.Subchapter = "1"
	err := svc.budget.Update(ctx, b)
	assert.True(t, domain.IsValidation(err), "moving onto an existing key is rejected")

	b.Subchapter = "2"
	b.EligibleBase = testutil.Dec("75")
	require.NoError(t, svc.budget.Update(ctx, b))

	stored, err := svc.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "175", stored.TotalEligible.String())
}

func TestBudgetService_DeleteRefreshesTotals(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)
	l := testutil.NewTestBudgetLine(p.ID, "1", "1", "A", testutil.WithEligible("100", "19"))
	require.NoError(t, svc.budget.Create(ctx, l))
	require.NoError(t, svc.budget.Delete(ctx, l.ID))

	stored, err := svc.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalGeneral.IsZero())
}

func TestBudgetService_AcceptsNegativeAmounts(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)

	require.NoError(t, svc.budget.Create(ctx, testutil.NewTestBudgetLine(p.ID, "1", "1", "A", testutil.WithEligible("500", "95"))))
	credit := testutil.NewTestBudgetLine(p.ID, "1", "2", "Corecție", testutil.WithEligible("-100", "-19"))
	require.NoError(t, svc.budget.Create(ctx, credit))

	got, err := svc.budget.GetByID(ctx, credit.ID)
	require.NoError(t, err)
	assert.Equal(t, "-119", got.Total.String())

	totals, err := svc.projects.Totals(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "476", totals.Eligible.String())

	res, err := svc.budget.ImportLines(ctx, p.ID, []*domain.BudgetLine{
		{Chapter: "2", Subchapter: "1", Name: "Storno", NonEligibleBase: testutil.Dec("-50")},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "-50", res.Totals.NonEligible.String())
}

func importLines() []*domain.BudgetLine {
	return []*domain.BudgetLine{
		{Chapter: "1", Subchapter: "1", Name: "Studii", EligibleBase: testutil.Dec("1000"), EligibleVAT: testutil.Dec("190")},
		{Chapter: "1", Subchapter: "2", Name: "Avize", EligibleBase: testutil.Dec("200")},
		{Chapter: "5", Subchapter: "1", Name: "Organizare șantier", NonEligibleBase: testutil.Dec("300")},
	}
}

func TestBudgetService_ImportLines(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)

	res, err := svc.budget.ImportLines(ctx, p.ID, importLines(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, "1390", res.Totals.Eligible.String())
	assert.Equal(t, "300", res.Totals.NonEligible.String())

	_, err = svc.budget.ImportLines(ctx, p.ID, importLines()[:1], false)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "confirm overwrite")

	res, err = svc.budget.ImportLines(ctx, p.ID, importLines()[:1], true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 3, res.Replaced)

	lines, err := svc.budget.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "1.1", lines[0].SequenceNumber)
}

func TestBudgetService_ImportLines_DuplicatesWriteNothing(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)

	lines := importLines()
	lines = append(lines, &domain.BudgetLine{Chapter: "1", Subchapter: "2", Name: "Dublură"})
	_, err := svc.budget.ImportLines(ctx, p.ID, lines, false)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	stored, err := svc.budget.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBudgetService_ImportLines_UnknownProject(t *testing.T) {
	svc := setupServices(t)
	_, err := svc.budget.ImportLines(context.Background(), "missing", importLines(), false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBudgetService_ImportFileAndExport(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)

	path := filepath.Join(t.TempDir(), "deviz.csv")
	content := "chapter;subchapter;name;chelt_elig_baza;chelt_elig_tva\n" +
		"4;1;Construcții;3000;570\n" +
		"1;1;Studii;1000,00;190\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	res, err := svc.budget.ImportFile(ctx, p.ID, path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	var buf bytes.Buffer
	n, err := svc.budget.Export(ctx, p.ID, &buf, importer.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	back, err := importer.Read(&buf, importer.FormatXLSX)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "1.1", back[0].SequenceNumber, "export is ordered by chapter")
	assert.Equal(t, "4.1", back[1].SequenceNumber)
	assert.Equal(t, "3000", back[1].EligibleBase.String())
}

func TestBudgetService_ImportFile_BadExtension(t *testing.T) {
	svc := setupServices(t)
	p := createProject(t, svc)
	_, err := svc.budget.ImportFile(context.Background(), p.ID, "deviz.xls", false)
	assert.True(t, domain.IsValidation(err))
}
