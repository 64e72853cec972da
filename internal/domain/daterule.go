package domain

import (
	"fmt"
	"time"
)

// DateRule derives one date of a schedulable entity: either a project
// milestone or an endpoint of another entity, plus a day offset.
//
// All scalar fields are kept whatever the Source, so templates can copy a
// rule verbatim and a switch of Source does not lose the other settings.
type DateRule struct {
	Source     RuleSource
	Milestone  Milestone
	RefID      string
	Endpoint   Endpoint
	OffsetDays int
}

// MilestoneRule returns a rule anchored on a project milestone.
func MilestoneRule(m Milestone, endpoint Endpoint, offset int) DateRule {
	return DateRule{Source: SourceMilestone, Milestone: m, Endpoint: endpoint, OffsetDays: offset}
}

// EntityRule returns a rule anchored on another entity's start or end date.
func EntityRule(refID string, endpoint Endpoint, offset int, fallback Milestone) DateRule {
	return DateRule{Source: SourceEntity, Milestone: fallback, RefID: refID, Endpoint: endpoint, OffsetDays: offset}
}

// IsEntity reports whether the rule reads another entity's date.
func (r DateRule) IsEntity() bool {
	return r.Source == SourceEntity
}

// Validate checks the enum fields of the rule. The reference itself is
// checked by the caller, which knows the owning collection.
func (r DateRule) Validate(field string) []error {
	var errs []error
	if !ValidRuleSources[string(r.Source)] {
		errs = append(errs, fmt.Errorf("%s.source: invalid value %q", field, r.Source))
	}
	if !ValidMilestones[string(r.Milestone)] {
		errs = append(errs, fmt.Errorf("%s.milestone: invalid value %q", field, r.Milestone))
	}
	if !ValidEndpoints[string(r.Endpoint)] {
		errs = append(errs, fmt.Errorf("%s.endpoint: invalid value %q", field, r.Endpoint))
	}
	return errs
}

// Milestones holds the three project dates a rule can read.
type Milestones struct {
	Submission *time.Time
	Signing    *time.Time
	Completion *time.Time
}

// Get returns the date for m, or nil when it is unset.
func (m Milestones) Get(which Milestone) *time.Time {
	switch which {
	case MilestoneSubmission:
		return m.Submission
	case MilestoneSigning:
		return m.Signing
	case MilestoneCompletion:
		return m.Completion
	default:
		return nil
	}
}

// Span is a resolved pair of dates. Either end may be absent.
type Span struct {
	Start *time.Time
	End   *time.Time
}

// At returns the date of the given endpoint.
func (s Span) At(e Endpoint) *time.Time {
	if e == EndpointStart {
		return s.Start
	}
	return s.End
}

// Equal compares two spans by calendar date.
func (s Span) Equal(o Span) bool {
	return SameDate(s.Start, o.Start) && SameDate(s.End, o.End)
}

// SameDate reports whether two optional dates are both absent or fall on
// the same calendar day.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
