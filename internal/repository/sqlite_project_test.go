package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Modernizare scoala",
		testutil.WithSigningDate("2025-03-01"),
		testutil.WithCofinancing("1234.56"),
		testutil.WithBeneficiary("Comuna X"))
	proj.VATEligible = domain.VATEligible
	proj.FinancialProgress = 12.5
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.Code, fetched.Code)
	assert.Equal(t, "Modernizare scoala", fetched.Name)
	assert.Equal(t, "Comuna X", fetched.Beneficiary)
	assert.Equal(t, domain.ProjectInProgress, fetched.Status)
	assert.Equal(t, domain.VATEligible, fetched.VATEligible)
	assert.Equal(t, 12.5, fetched.FinancialProgress)
	assert.True(t, fetched.Cofinancing.Equal(testutil.Dec("1234.56")))
	require.NotNil(t, fetched.SigningDate)
	assert.Equal(t, "2025-03-01", fetched.SigningDate.Format("2006-01-02"))
	assert.Nil(t, fetched.SubmissionDate)
	assert.Nil(t, fetched.CompletionDate)
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "project not found")
}

func TestProjectRepo_GetByCode_CaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Drum", testutil.WithCode("SMIS-123"))
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByCode(ctx, "smis-123")
	require.NoError(t, err)
	assert.Equal(t, proj.ID, fetched.ID)
}

func TestProjectRepo_UpdateAndTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Before")
	require.NoError(t, repo.Create(ctx, proj))

	proj.Name = "After"
	proj.Status = domain.ProjectContracted
	proj.CompletionDate = testutil.Date("2026-12-31")
	require.NoError(t, repo.Update(ctx, proj))
	require.NoError(t, repo.UpdateTotals(ctx, proj.ID, testutil.Dec("100.10"), testutil.Dec("5"), testutil.Dec("105.10")))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", fetched.Name)
	assert.Equal(t, domain.ProjectContracted, fetched.Status)
	assert.Equal(t, "2026-12-31", domain.FormatOptionalDate(fetched.CompletionDate))
	assert.Equal(t, "100.1", fetched.TotalEligible.String())
	assert.Equal(t, "105.1", fetched.TotalGeneral.String())
}

func TestProjectRepo_Update_MissingRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)

	err := repo.Update(context.Background(), testutil.NewTestProject("ghost"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepo_DeleteRestrictedByChildren(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	projects := NewSQLiteProjectRepo(db)
	lines := NewSQLiteBudgetLineRepo(db)

	proj := testutil.NewTestProject("Guarded")
	require.NoError(t, projects.Create(ctx, proj))
	require.NoError(t, lines.Create(ctx, testutil.NewTestBudgetLine(proj.ID, "1", "1", "Line")))

	require.Error(t, projects.Delete(ctx, proj.ID), "foreign key restricts deletion")

	_, err := lines.DeleteByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.NoError(t, projects.Delete(ctx, proj.ID))
}

func TestProjectRepo_DeleteCascadesLedger(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	projects := NewSQLiteProjectRepo(db)
	reimbursements := NewSQLiteReimbursementRepo(db)

	proj := testutil.NewTestProject("Cascade")
	require.NoError(t, projects.Create(ctx, proj))
	rb := testutil.NewTestReimbursement(proj.ID, "2025-06-01", "100")
	require.NoError(t, reimbursements.Create(ctx, rb))

	require.NoError(t, projects.Delete(ctx, proj.ID))
	_, err := reimbursements.GetByID(ctx, rb.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepo_ListOrderedByCode(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestProject("b", testutil.WithCode("B"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProject("a", testutil.WithCode("A"))))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Code)
	assert.Equal(t, "B", list[1].Code)
}
