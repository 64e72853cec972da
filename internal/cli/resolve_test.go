package cli

import (
	"testing"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	acts := []*domain.Activity{
		{ID: "0190aaaa-0000-7000-8000-000000000001", Code: "POST1"},
		{ID: "0190aaaa-0000-7000-8000-000000000002", Code: "PRE-2"},
	}
	lookup := activityLookup(acts)

	tests := []struct {
		spec string
		want domain.DateRule
	}{
		{"signing", domain.MilestoneRule(domain.MilestoneSigning, domain.EndpointStart, 0)},
		{"Completion+30", domain.MilestoneRule(domain.MilestoneCompletion, domain.EndpointStart, 30)},
		{"submission-10", domain.MilestoneRule(domain.MilestoneSubmission, domain.EndpointStart, -10)},
		{"POST1.end+1", domain.EntityRule(acts[0].ID, domain.EndpointEnd, 1, domain.MilestoneCompletion)},
		{"post1.start", domain.EntityRule(acts[0].ID, domain.EndpointStart, 0, domain.MilestoneCompletion)},
		{"PRE-2.end-5", domain.EntityRule(acts[1].ID, domain.EndpointEnd, -5, domain.MilestoneCompletion)},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseRule(tt.spec, domain.EndpointStart, domain.MilestoneCompletion, lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRule_Errors(t *testing.T) {
	lookup := activityLookup(nil)

	for _, spec := range []string{"", "signing+", "POST1.middle", "tomorrow", "signing+3d"} {
		t.Run(spec, func(t *testing.T) {
			_, err := parseRule(spec, domain.EndpointStart, domain.MilestoneSigning, lookup)
			assert.Error(t, err)
		})
	}

	_, err := parseRule("POST9.end", domain.EndpointEnd, domain.MilestoneSigning, lookup)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPick(t *testing.T) {
	lines := []*domain.BudgetLine{
		{ID: "0190aaaa-0000-7000-8000-0000000000aa", SequenceNumber: "1.1"},
		{ID: "0190aaaa-0000-7000-8000-0000000000bb", SequenceNumber: "1.2"},
		{ID: "0190aaaa-0000-7000-8000-0000001100bb", SequenceNumber: ""},
	}

	got, err := pickLine(lines, "1.2")
	require.NoError(t, err)
	assert.Equal(t, lines[1], got)

	got, err = pickLine(lines, lines[2].ID)
	require.NoError(t, err)
	assert.Equal(t, lines[2], got)

	got, err = pickLine(lines, "00AA")
	require.NoError(t, err)
	assert.Equal(t, lines[0], got)

	_, err = pickLine(lines, "00bb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = pickLine(lines, "bb")
	assert.ErrorIs(t, err, domain.ErrNotFound, "suffixes shorter than four characters are not tried")

	_, err = pickLine(lines, " ")
	assert.Error(t, err)
}
