package domain

import (
	"fmt"
	"strings"
	"time"
)

// Acquisition is a procurement item of a project. Entity rules reference
// activities of the same project, never other acquisitions.
type Acquisition struct {
	ID          string
	ProjectID   string
	Name        string
	Code        string
	Sequence    int
	Phase       AcquisitionPhase
	State       AcquisitionState
	Description string
	StartRule   DateRule
	EndRule     DateRule
	DateStart   *time.Time
	DateEnd     *time.Time
	// DependencyIDs lists other acquisitions of the same project. It is
	// informational and does not take part in date resolution.
	DependencyIDs []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultAcquisitionRules anchors a new acquisition between contract
// signing and project completion.
func DefaultAcquisitionRules() (start, end DateRule) {
	return MilestoneRule(MilestoneSigning, EndpointEnd, 0),
		MilestoneRule(MilestoneCompletion, EndpointEnd, 0)
}

func (a *Acquisition) ApplyDefaults() {
	start, end := DefaultAcquisitionRules()
	a.StartRule = fillRule(a.StartRule, start)
	a.EndRule = fillRule(a.EndRule, end)
	if a.Phase == "" {
		a.Phase = PhaseAfter
	}
	if a.State == "" {
		a.State = AcquisitionDraft
	}
}

func (a *Acquisition) Validate() []error {
	var errs []error
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, fmt.Errorf("acquisition name is required"))
	}
	if !ValidAcquisitionPhases[string(a.Phase)] {
		errs = append(errs, fmt.Errorf("phase: invalid value %q", a.Phase))
	}
	if !ValidAcquisitionStates[string(a.State)] {
		errs = append(errs, fmt.Errorf("state: invalid value %q", a.State))
	}
	errs = append(errs, a.StartRule.Validate("start")...)
	errs = append(errs, a.EndRule.Validate("end")...)
	for _, dep := range a.DependencyIDs {
		if a.ID != "" && dep == a.ID {
			errs = append(errs, fmt.Errorf("acquisition %q cannot depend on itself", a.Name))
			break
		}
	}
	return errs
}

func (a *Acquisition) Span() Span {
	return Span{Start: a.DateStart, End: a.DateEnd}
}

// AcquisitionTemplate is the blueprint of an Acquisition. Entity rules
// reference activity templates; DependencyIDs reference other
// acquisition templates.
type AcquisitionTemplate struct {
	ID            string
	Name          string
	Code          string
	Sequence      int
	Phase         AcquisitionPhase
	Description   string
	StartRule     DateRule
	EndRule       DateRule
	DependencyIDs []string
}

func (t *AcquisitionTemplate) ApplyDefaults() {
	start, end := DefaultAcquisitionRules()
	t.StartRule = fillRule(t.StartRule, start)
	t.EndRule = fillRule(t.EndRule, end)
	if t.Phase == "" {
		t.Phase = PhaseAfter
	}
}

func (t *AcquisitionTemplate) Validate() []error {
	var errs []error
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, fmt.Errorf("template name is required"))
	}
	if !ValidAcquisitionPhases[string(t.Phase)] {
		errs = append(errs, fmt.Errorf("phase: invalid value %q", t.Phase))
	}
	errs = append(errs, t.StartRule.Validate("start")...)
	errs = append(errs, t.EndRule.Validate("end")...)
	return errs
}
