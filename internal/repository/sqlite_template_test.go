package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityTemplateRepo_CRUD(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteActivityTemplateRepo(db)

	base := &domain.ActivityTemplate{ID: "t1", Name: "Semnare", Code: "POST1", Sequence: 40, Phase: domain.PhasePost}
	base.ApplyDefaults()
	next := &domain.ActivityTemplate{ID: "t2", Name: "Executie", Code: "POST2", Sequence: 50, Phase: domain.PhasePost,
		StartRule: domain.EntityRule("t1", domain.EndpointEnd, 1, domain.MilestoneSigning)}
	next.ApplyDefaults()
	require.NoError(t, repo.Create(ctx, base))
	require.NoError(t, repo.Create(ctx, next))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t1", list[0].ID)
	assert.Equal(t, "t1", list[1].StartRule.RefID)

	next.Name = "Executie lucrari"
	require.NoError(t, repo.Update(ctx, next))
	got, err := repo.GetByID(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "Executie lucrari", got.Name)

	require.NoError(t, repo.Delete(ctx, "t1"))
	got, err = repo.GetByID(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "", got.StartRule.RefID, "reference cleared on delete")
	assert.Equal(t, domain.SourceEntity, got.StartRule.Source)

	_, err = repo.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAcquisitionTemplateRepo_Dependencies(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	acts := NewSQLiteActivityTemplateRepo(db)
	repo := NewSQLiteAcquisitionTemplateRepo(db)

	at := &domain.ActivityTemplate{ID: "a1", Name: "Licitatie"}
	at.ApplyDefaults()
	require.NoError(t, acts.Create(ctx, at))

	q1 := &domain.AcquisitionTemplate{ID: "q1", Name: "Proiectare", Sequence: 10,
		StartRule: domain.EntityRule("a1", domain.EndpointStart, 0, domain.MilestoneSigning)}
	q1.ApplyDefaults()
	q2 := &domain.AcquisitionTemplate{ID: "q2", Name: "Executie", Sequence: 20, DependencyIDs: []string{"q1"}}
	q2.ApplyDefaults()
	require.NoError(t, repo.Create(ctx, q1))
	require.NoError(t, repo.Create(ctx, q2))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Empty(t, list[0].DependencyIDs)
	assert.Equal(t, []string{"q1"}, list[1].DependencyIDs)
	assert.Equal(t, "a1", list[0].StartRule.RefID)

	got, err := repo.GetByID(ctx, "q2")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, got.DependencyIDs)

	require.NoError(t, repo.Delete(ctx, "q1"))
	got, err = repo.GetByID(ctx, "q2")
	require.NoError(t, err)
	assert.Empty(t, got.DependencyIDs)
}

func TestSeedMarkerRepo_MarkOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteSeedMarkerRepo(db)

	first, err := repo.Mark(ctx, "activity")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.Mark(ctx, "activity")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := repo.Mark(ctx, "acquisition")
	require.NoError(t, err)
	assert.True(t, other)
}
