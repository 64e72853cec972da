package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSequence is the ordering key given to records created without one.
const DefaultSequence = 10

// Activity is a scheduled step of a project. Its dates are derived from
// StartRule and EndRule and stored in DateStart and DateEnd.
type Activity struct {
	ID        string
	ProjectID string
	Name      string
	Code      string
	Sequence  int
	Phase     ActivityPhase
	State     ActivityState
	StartRule DateRule
	EndRule   DateRule
	DateStart *time.Time
	DateEnd   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultActivityRules returns the rules of a new activity: both dates
// anchored on the signing date.
func DefaultActivityRules() (start, end DateRule) {
	return MilestoneRule(MilestoneSigning, EndpointStart, 0),
		MilestoneRule(MilestoneSigning, EndpointEnd, 0)
}

// ApplyDefaults fills unset enum fields of a new activity.
func (a *Activity) ApplyDefaults() {
	start, end := DefaultActivityRules()
	a.StartRule = fillRule(a.StartRule, start)
	a.EndRule = fillRule(a.EndRule, end)
	if a.Phase == "" {
		a.Phase = PhasePost
	}
	if a.State == "" {
		a.State = ActivityDraft
	}
}

// Validate checks the fields that do not depend on sibling activities.
func (a *Activity) Validate() []error {
	var errs []error
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, fmt.Errorf("activity name is required"))
	}
	if !ValidActivityPhases[string(a.Phase)] {
		errs = append(errs, fmt.Errorf("phase: invalid value %q", a.Phase))
	}
	if !ValidActivityStates[string(a.State)] {
		errs = append(errs, fmt.Errorf("state: invalid value %q", a.State))
	}
	errs = append(errs, a.StartRule.Validate("start")...)
	errs = append(errs, a.EndRule.Validate("end")...)
	return errs
}

// Span returns the stored dates.
func (a *Activity) Span() Span {
	return Span{Start: a.DateStart, End: a.DateEnd}
}

// ReferencesID reports whether either rule points at id.
func (a *Activity) ReferencesID(id string) bool {
	return (a.StartRule.IsEntity() && a.StartRule.RefID == id) ||
		(a.EndRule.IsEntity() && a.EndRule.RefID == id)
}

// ActivityTemplate is the project-independent blueprint of an Activity.
// Entity rules reference other activity templates.
type ActivityTemplate struct {
	ID        string
	Name      string
	Code      string
	Sequence  int
	Phase     ActivityPhase
	StartRule DateRule
	EndRule   DateRule
}

func (t *ActivityTemplate) ApplyDefaults() {
	start, end := DefaultActivityRules()
	t.StartRule = fillRule(t.StartRule, start)
	t.EndRule = fillRule(t.EndRule, end)
	if t.Phase == "" {
		t.Phase = PhasePost
	}
}

func (t *ActivityTemplate) Validate() []error {
	var errs []error
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, fmt.Errorf("template name is required"))
	}
	if !ValidActivityPhases[string(t.Phase)] {
		errs = append(errs, fmt.Errorf("phase: invalid value %q", t.Phase))
	}
	errs = append(errs, t.StartRule.Validate("start")...)
	errs = append(errs, t.EndRule.Validate("end")...)
	for _, r := range []DateRule{t.StartRule, t.EndRule} {
		if r.IsEntity() && t.ID != "" && r.RefID == t.ID {
			errs = append(errs, fmt.Errorf("template %q cannot reference itself", t.Name))
			break
		}
	}
	return errs
}

// fillRule copies defaults into the unset enum fields of r.
func fillRule(r, def DateRule) DateRule {
	if r.Source == "" {
		r.Source = def.Source
	}
	if r.Milestone == "" {
		r.Milestone = def.Milestone
	}
	if r.Endpoint == "" {
		r.Endpoint = def.Endpoint
	}
	return r
}
