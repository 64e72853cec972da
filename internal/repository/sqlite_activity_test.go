package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, repo *SQLiteProjectRepo) *domain.Project {
	t.Helper()
	proj := testutil.NewTestProject("Scheduled", testutil.WithSigningDate("2025-03-01"))
	require.NoError(t, repo.Create(context.Background(), proj))
	return proj
}

func TestActivityRepo_RulesRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, NewSQLiteProjectRepo(database))
	repo := NewSQLiteActivityRepo(database)

	first := testutil.NewTestActivity(proj.ID, "Semnare", testutil.WithActivityCode("POST1"))
	second := testutil.NewTestActivity(proj.ID, "Executie",
		testutil.WithActivityCode("POST2"),
		testutil.WithActivitySequence(20),
		testutil.WithActivityRules(
			domain.EntityRule(first.ID, domain.EndpointEnd, 1, domain.MilestoneSigning),
			domain.EntityRule("", domain.EndpointStart, 89, domain.MilestoneSigning),
		))
	// Referenced row inserted after the referencing one; the check is deferred.
	require.NoError(t, testutil.NewTestUoW(database).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := NewSQLiteActivityRepo(tx)
		if err := txRepo.Create(ctx, second); err != nil {
			return err
		}
		return txRepo.Create(ctx, first)
	}))

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceEntity, got.StartRule.Source)
	assert.Equal(t, first.ID, got.StartRule.RefID)
	assert.Equal(t, domain.EndpointEnd, got.StartRule.Endpoint)
	assert.Equal(t, 1, got.StartRule.OffsetDays)
	assert.Equal(t, "", got.EndRule.RefID)
	assert.Equal(t, 89, got.EndRule.OffsetDays)
	assert.Equal(t, domain.PhasePost, got.Phase)
	assert.Equal(t, domain.ActivityDraft, got.State)

	list, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "sequence 10 sorts before 20")
}

func TestActivityRepo_UpdateDates(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, NewSQLiteProjectRepo(db))
	repo := NewSQLiteActivityRepo(db)

	act := testutil.NewTestActivity(proj.ID, "A")
	require.NoError(t, repo.Create(ctx, act))
	require.NoError(t, repo.UpdateDates(ctx, act.ID, domain.Span{Start: testutil.Date("2025-03-01")}))

	got, err := repo.GetByID(ctx, act.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", domain.FormatOptionalDate(got.DateStart))
	assert.Nil(t, got.DateEnd)
}

func TestActivityRepo_CodeUniquePerProject(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, NewSQLiteProjectRepo(db))
	repo := NewSQLiteActivityRepo(db)

	require.NoError(t, repo.Create(ctx, testutil.NewTestActivity(proj.ID, "A", testutil.WithActivityCode("PRE1"))))
	assert.Error(t, repo.Create(ctx, testutil.NewTestActivity(proj.ID, "B", testutil.WithActivityCode("PRE1"))))
	assert.NoError(t, repo.Create(ctx, testutil.NewTestActivity(proj.ID, "C")))
	assert.NoError(t, repo.Create(ctx, testutil.NewTestActivity(proj.ID, "D")), "empty codes do not collide")
}

func TestAcquisitionRepo_DependenciesAndReferences(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, NewSQLiteProjectRepo(db))
	acts := NewSQLiteActivityRepo(db)
	repo := NewSQLiteAcquisitionRepo(db)

	act := testutil.NewTestActivity(proj.ID, "Licitatie")
	require.NoError(t, acts.Create(ctx, act))

	first := testutil.NewTestAcquisition(proj.ID, "Servicii proiectare")
	second := testutil.NewTestAcquisition(proj.ID, "Lucrari",
		testutil.WithDependencies(first.ID),
		testutil.WithAcquisitionRules(
			domain.EntityRule(act.ID, domain.EndpointStart, 0, domain.MilestoneSigning),
			domain.EntityRule(act.ID, domain.EndpointEnd, 30, domain.MilestoneCompletion),
		))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, got.DependencyIDs)
	assert.Equal(t, domain.PhaseAfter, got.Phase)

	n, err := repo.CountReferencing(ctx, act.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	second.DependencyIDs = nil
	require.NoError(t, repo.Update(ctx, second))
	list, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Empty(t, a.DependencyIDs)
	}

	deleted, err := repo.DeleteByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
}
