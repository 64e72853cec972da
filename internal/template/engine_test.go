package template

import (
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqIDs returns an ID generator producing prefix-001, prefix-002, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

var now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestExpandActivities_IsomorphicReferences(t *testing.T) {
	tmpls := []*domain.ActivityTemplate{
		{ID: "t3", Name: "Third", Code: "C", Sequence: 30, Phase: domain.PhasePost,
			StartRule: domain.EntityRule("t2", domain.EndpointEnd, 1, domain.MilestoneSigning),
			EndRule:   domain.EntityRule("t1", domain.EndpointStart, 5, domain.MilestoneSigning)},
		{ID: "t1", Name: "First", Code: "A", Sequence: 10, Phase: domain.PhasePre,
			StartRule: domain.MilestoneRule(domain.MilestoneSubmission, domain.EndpointStart, -10),
			EndRule:   domain.MilestoneRule(domain.MilestoneSubmission, domain.EndpointEnd, 0)},
		{ID: "t2", Name: "Second", Code: "B", Sequence: 20, Phase: domain.PhasePost,
			StartRule: domain.EntityRule("t1", domain.EndpointEnd, 1, domain.MilestoneSigning),
			EndRule:   domain.MilestoneRule(domain.MilestoneSigning, domain.EndpointEnd, 90)},
	}

	exp := ExpandActivities("p1", tmpls, seqIDs("act"), now)
	require.Len(t, exp.Activities, 3)
	require.Len(t, exp.IDMap, 3)

	// Created in (sequence, id) order.
	assert.Equal(t, "First", exp.Activities[0].Name)
	assert.Equal(t, "Second", exp.Activities[1].Name)
	assert.Equal(t, "Third", exp.Activities[2].Name)

	first, second, third := exp.Activities[0], exp.Activities[1], exp.Activities[2]
	assert.Equal(t, "p1", first.ProjectID)
	assert.Equal(t, domain.ActivityDraft, first.State)
	assert.Equal(t, domain.PhasePre, first.Phase)
	assert.Equal(t, -10, first.StartRule.OffsetDays)
	assert.Equal(t, domain.MilestoneSubmission, first.StartRule.Milestone)

	assert.Equal(t, first.ID, second.StartRule.RefID)
	assert.Equal(t, domain.EndpointEnd, second.StartRule.Endpoint)
	assert.Equal(t, 1, second.StartRule.OffsetDays)
	assert.Equal(t, second.ID, third.StartRule.RefID)
	assert.Equal(t, first.ID, third.EndRule.RefID)
	assert.Equal(t, domain.EndpointStart, third.EndRule.Endpoint)

	for tmplID, actID := range exp.IDMap {
		assert.NotEqual(t, tmplID, actID)
	}
}

func TestExpandActivities_DanglingReferenceStaysEmpty(t *testing.T) {
	tmpls := []*domain.ActivityTemplate{
		{ID: "t1", Name: "Orphan", StartRule: domain.EntityRule("gone", domain.EndpointEnd, 3, domain.MilestoneSigning),
			EndRule: domain.MilestoneRule(domain.MilestoneSigning, domain.EndpointEnd, 0)},
	}
	exp := ExpandActivities("p1", tmpls, seqIDs("act"), now)
	require.Len(t, exp.Activities, 1)
	assert.Equal(t, domain.SourceEntity, exp.Activities[0].StartRule.Source)
	assert.Empty(t, exp.Activities[0].StartRule.RefID)
}

func TestExpandActivities_Empty(t *testing.T) {
	exp := ExpandActivities("p1", nil, seqIDs("act"), now)
	assert.Empty(t, exp.Activities)
}

func liveActivities() []*domain.Activity {
	return []*domain.Activity{
		{ID: "a2", Code: "POST2", Sequence: 50, Phase: domain.PhasePost},
		{ID: "a1", Code: "POST1", Sequence: 40, Phase: domain.PhasePost},
		{ID: "a3", Code: "", Sequence: 60, Phase: domain.PhasePost},
	}
}

func TestExpandAcquisitions_MatchByCode(t *testing.T) {
	actTmpls := []*domain.ActivityTemplate{{ID: "at2", Code: "POST2", Sequence: 999, Phase: domain.PhasePre}}
	tmpls := []*domain.AcquisitionTemplate{
		{ID: "q1", Name: "Proiectare", Sequence: 10, Phase: domain.PhaseAfter,
			StartRule: domain.EntityRule("at2", domain.EndpointStart, 2, domain.MilestoneSigning),
			EndRule:   domain.MilestoneRule(domain.MilestoneCompletion, domain.EndpointStart, 0)},
	}
	exp := ExpandAcquisitions("p1", tmpls, actTmpls, liveActivities(), seqIDs("acq"), now)
	require.Len(t, exp.Acquisitions, 1)
	acq := exp.Acquisitions[0]
	assert.Equal(t, domain.EntityRule("a2", domain.EndpointStart, 2, domain.MilestoneSigning), acq.StartRule)
	assert.Equal(t, domain.MilestoneRule(domain.MilestoneCompletion, domain.EndpointEnd, 0), acq.EndRule,
		"milestone rules reset the endpoint to end")
	assert.Equal(t, domain.AcquisitionDraft, acq.State)
}

func TestExpandAcquisitions_FallbackToSequenceAndPhase(t *testing.T) {
	actTmpls := []*domain.ActivityTemplate{{ID: "at3", Code: "RENAMED", Sequence: 60, Phase: domain.PhasePost}}
	tmpls := []*domain.AcquisitionTemplate{
		{ID: "q1", Name: "Lucrari", StartRule: domain.EntityRule("at3", domain.EndpointEnd, 0, domain.MilestoneSigning),
			EndRule: domain.MilestoneRule(domain.MilestoneCompletion, domain.EndpointEnd, 0)},
	}
	exp := ExpandAcquisitions("p1", tmpls, actTmpls, liveActivities(), seqIDs("acq"), now)
	assert.Equal(t, "a3", exp.Acquisitions[0].StartRule.RefID)
}

func TestExpandAcquisitions_FirstMatchInStoredOrder(t *testing.T) {
	actTmpls := []*domain.ActivityTemplate{{ID: "at", Phase: domain.PhasePost}}
	tmpls := []*domain.AcquisitionTemplate{
		{ID: "q1", Name: "Any post", StartRule: domain.EntityRule("at", domain.EndpointEnd, 0, domain.MilestoneSigning),
			EndRule: domain.MilestoneRule(domain.MilestoneCompletion, domain.EndpointEnd, 0)},
	}
	exp := ExpandAcquisitions("p1", tmpls, actTmpls, liveActivities(), seqIDs("acq"), now)
	assert.Equal(t, "a1", exp.Acquisitions[0].StartRule.RefID, "lowest sequence wins")
}

func TestExpandAcquisitions_DegradesToMilestone(t *testing.T) {
	actTmpls := []*domain.ActivityTemplate{{ID: "at9", Code: "NOPE", Sequence: 5, Phase: domain.PhasePre}}
	tmpls := []*domain.AcquisitionTemplate{
		{ID: "q1", Name: "Audit",
			StartRule: domain.EntityRule("at9", domain.EndpointStart, 7, domain.MilestoneSubmission),
			EndRule:   domain.EntityRule("missing-template", domain.EndpointStart, 0, domain.MilestoneCompletion)},
	}
	exp := ExpandAcquisitions("p1", tmpls, actTmpls, liveActivities(), seqIDs("acq"), now)
	acq := exp.Acquisitions[0]
	assert.Equal(t, domain.MilestoneRule(domain.MilestoneSubmission, domain.EndpointEnd, 7), acq.StartRule)
	assert.Equal(t, domain.MilestoneRule(domain.MilestoneCompletion, domain.EndpointEnd, 0), acq.EndRule)
}

func TestExpandAcquisitions_MapsDependencies(t *testing.T) {
	rule := domain.MilestoneRule(domain.MilestoneSigning, domain.EndpointEnd, 0)
	tmpls := []*domain.AcquisitionTemplate{
		{ID: "q2", Name: "Second", Sequence: 20, StartRule: rule, EndRule: rule, DependencyIDs: []string{"q1", "deleted"}},
		{ID: "q1", Name: "First", Sequence: 10, StartRule: rule, EndRule: rule},
	}
	exp := ExpandAcquisitions("p1", tmpls, nil, nil, seqIDs("acq"), now)
	require.Len(t, exp.Acquisitions, 2)
	assert.Equal(t, "First", exp.Acquisitions[0].Name)
	assert.Equal(t, []string{exp.Acquisitions[0].ID}, exp.Acquisitions[1].DependencyIDs)
	assert.Empty(t, exp.Acquisitions[0].DependencyIDs)
}
