package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func after(ref string, offset int) domain.DateRule {
	return domain.EntityRule(ref, domain.EndpointEnd, offset, domain.MilestoneSigning)
}

func fromSigning(offset int) domain.DateRule {
	return domain.MilestoneRule(domain.MilestoneSigning, domain.EndpointStart, offset)
}

func TestActivityService_CreateResolvesDates(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc, testutil.WithSigningDate("2025-03-01"))

	a := testutil.NewTestActivity(p.ID, "Licitație", testutil.WithActivityCode("A1"),
		testutil.WithActivityRules(fromSigning(0), fromSigning(29)))
	require.NoError(t, svc.activities.Create(ctx, a))
	assert.Equal(t, "2025-03-30", fmtDate(a.DateEnd))

	b := testutil.NewTestActivity(p.ID, "Execuție", testutil.WithActivityCode("A2"),
		testutil.WithActivityRules(after(a.ID, 1), domain.EntityRule("", domain.EndpointStart, 0, domain.MilestoneSigning)))
	b.EndRule = domain.EntityRule(b.ID, domain.EndpointStart, 60, domain.MilestoneSigning)
	require.NoError(t, svc.activities.Create(ctx, b))
	assert.Equal(t, "2025-03-31", fmtDate(b.DateStart))
	assert.Equal(t, "2025-05-30", fmtDate(b.DateEnd), "end reads the activity's own start")

	// Moving the upstream activity moves the dependent one.
	a.EndRule = fromSigning(9)
	require.NoError(t, svc.activities.Update(ctx, a))
	got, err := svc.activities.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", fmtDate(got.DateStart))
}

func TestActivityService_DefaultsSequence(t *testing.T) {
	svc := setupServices(t)
	p := createProject(t, svc)
	a := &domain.Activity{ProjectID: p.ID, Name: "Fără secvență"}
	require.NoError(t, svc.activities.Create(context.Background(), a))
	assert.Equal(t, domain.DefaultSequence, a.Sequence)
	assert.Equal(t, domain.ActivityDraft, a.State)
}

func TestActivityService_RejectsCycle(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc, testutil.WithSigningDate("2025-03-01"))

	a := testutil.NewTestActivity(p.ID, "A", testutil.WithActivityRules(fromSigning(0), fromSigning(10)))
	require.NoError(t, svc.activities.Create(ctx, a))
	b := testutil.NewTestActivity(p.ID, "B", testutil.WithActivityRules(after(a.ID, 1), fromSigning(20)))
	require.NoError(t, svc.activities.Create(ctx, b))

	a.StartRule = domain.EntityRule(b.ID, domain.EndpointStart, 0, domain.MilestoneSigning)
	a.EndRule = domain.EntityRule(a.ID, domain.EndpointStart, 5, domain.MilestoneSigning)
	err := svc.activities.Update(ctx, a)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "cycle")

	stored, err := svc.activities.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceMilestone, stored.StartRule.Source, "rejected update leaves the row alone")
}

func TestActivityService_RejectsForeignReference(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)
	other := createProject(t, svc)

	foreign := testutil.NewTestActivity(other.ID, "Străin")
	require.NoError(t, svc.activities.Create(ctx, foreign))

	a := testutil.NewTestActivity(p.ID, "A", testutil.WithActivityRules(after(foreign.ID, 0), fromSigning(0)))
	err := svc.activities.Create(ctx, a)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "not part of this project")
}

func TestActivityService_RejectsDuplicateCode(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)
	require.NoError(t, svc.activities.Create(ctx, testutil.NewTestActivity(p.ID, "A", testutil.WithActivityCode("X1"))))

	err := svc.activities.Create(ctx, testutil.NewTestActivity(p.ID, "B", testutil.WithActivityCode("x1")))
	assert.True(t, domain.IsValidation(err))
}

func TestActivityService_DeleteGuarded(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)

	a := testutil.NewTestActivity(p.ID, "A", testutil.WithActivityCode("A"))
	require.NoError(t, svc.activities.Create(ctx, a))
	b := testutil.NewTestActivity(p.ID, "B", testutil.WithActivityCode("B"),
		testutil.WithActivityRules(after(a.ID, 1), fromSigning(5)))
	require.NoError(t, svc.activities.Create(ctx, b))
	q := testutil.NewTestAcquisition(p.ID, "Q",
		testutil.WithAcquisitionRules(after(b.ID, 0), domain.MilestoneRule(domain.MilestoneCompletion, domain.EndpointEnd, 0)))
	require.NoError(t, svc.acquisitions.Create(ctx, q))

	err := svc.activities.Delete(ctx, a.ID)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "activity B")

	err = svc.activities.Delete(ctx, b.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 acquisitions")

	require.NoError(t, svc.acquisitions.Delete(ctx, q.ID))
	require.NoError(t, svc.activities.Delete(ctx, b.ID))
	require.NoError(t, svc.activities.Delete(ctx, a.ID))
}

func TestActivityService_SelfReferenceDoesNotBlockDelete(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)
	a := testutil.NewTestActivity(p.ID, "A")
	a.EndRule = domain.EntityRule(a.ID, domain.EndpointStart, 3, domain.MilestoneSigning)
	require.NoError(t, svc.activities.Create(ctx, a))
	require.NoError(t, svc.activities.Delete(ctx, a.ID))
}

func TestActivityService_SetState(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	p := createProject(t, svc)
	a := testutil.NewTestActivity(p.ID, "A")
	require.NoError(t, svc.activities.Create(ctx, a))

	require.NoError(t, svc.activities.SetState(ctx, a.ID, domain.ActivityState("done")))
	got, err := svc.activities.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityState("done"), got.State)

	assert.True(t, domain.IsValidation(svc.activities.SetState(ctx, a.ID, "paused")))
}
