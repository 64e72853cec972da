package template

import (
	"fmt"

	"github.com/alexanderramin/fundplan/internal/domain"
)

// TemplateSet is a built seed: templates with IDs and resolved references.
type TemplateSet struct {
	Activities   []*domain.ActivityTemplate
	Acquisitions []*domain.AcquisitionTemplate
}

// Build validates seed and converts it into templates. IDs come from newID.
// All templates are created first; `after` and `depends_on` codes are wired
// to IDs in a second pass.
func Build(seed *SeedFile, newID func() string) (*TemplateSet, error) {
	if errs := ValidateSeed(seed); len(errs) > 0 {
		return nil, domain.ValidationErrorFromList("template seed is invalid", errs)
	}

	set := &TemplateSet{}
	activityIDs := make(map[string]string, len(seed.ActivityTemplates))
	for _, s := range seed.ActivityTemplates {
		t := &domain.ActivityTemplate{
			ID:       newID(),
			Name:     s.Name,
			Code:     s.Code,
			Sequence: s.Sequence,
			Phase:    domain.ActivityPhase(s.Phase),
		}
		activityIDs[s.Code] = t.ID
		set.Activities = append(set.Activities, t)
	}
	for i, s := range seed.ActivityTemplates {
		t := set.Activities[i]
		t.StartRule = s.Start.rule(activityIDs, domain.EndpointStart)
		t.EndRule = s.End.rule(activityIDs, domain.EndpointEnd)
		t.ApplyDefaults()
	}

	acquisitionIDs := make(map[string]string, len(seed.AcquisitionTemplates))
	for _, s := range seed.AcquisitionTemplates {
		t := &domain.AcquisitionTemplate{
			ID:          newID(),
			Name:        s.Name,
			Code:        s.Code,
			Sequence:    s.Sequence,
			Phase:       domain.AcquisitionPhase(s.Phase),
			Description: s.Description,
			StartRule:   s.Start.rule(activityIDs, domain.EndpointEnd),
			EndRule:     s.End.rule(activityIDs, domain.EndpointEnd),
		}
		t.ApplyDefaults()
		acquisitionIDs[s.Code] = t.ID
		set.Acquisitions = append(set.Acquisitions, t)
	}
	for i, s := range seed.AcquisitionTemplates {
		for _, code := range s.DependsOn {
			set.Acquisitions[i].DependencyIDs = append(set.Acquisitions[i].DependencyIDs, acquisitionIDs[code])
		}
	}

	if errs := ValidateActivityTemplates(set.Activities); len(errs) > 0 {
		return nil, domain.ValidationErrorFromList("template seed is invalid", errs)
	}
	return set, nil
}

func (r RuleSeed) rule(idByCode map[string]string, defaultEndpoint domain.Endpoint) domain.DateRule {
	endpoint := domain.Endpoint(domain.CoalesceStr(r.Endpoint, string(defaultEndpoint)))
	if r.After == "" {
		return domain.MilestoneRule(domain.Milestone(r.Milestone), endpoint, r.Offset)
	}
	return domain.EntityRule(idByCode[r.After], endpoint, r.Offset, domain.Milestone(r.Milestone))
}

// ValidateSeed checks codes, enum values and code references of a seed.
func ValidateSeed(seed *SeedFile) []error {
	var errs []error

	activityCodes := make(map[string]bool, len(seed.ActivityTemplates))
	for i, s := range seed.ActivityTemplates {
		field := fmt.Sprintf("activity_templates[%d]", i)
		errs = append(errs, validateSeedHeader(field, s.Code, s.Name, activityCodes)...)
		if !domain.ValidActivityPhases[s.Phase] {
			errs = append(errs, fmt.Errorf("%s.phase: invalid value %q", field, s.Phase))
		}
	}
	for i, s := range seed.ActivityTemplates {
		field := fmt.Sprintf("activity_templates[%d]", i)
		errs = append(errs, s.Start.validate(field+".start", activityCodes)...)
		errs = append(errs, s.End.validate(field+".end", activityCodes)...)
	}

	acquisitionCodes := make(map[string]bool, len(seed.AcquisitionTemplates))
	for i, s := range seed.AcquisitionTemplates {
		field := fmt.Sprintf("acquisition_templates[%d]", i)
		errs = append(errs, validateSeedHeader(field, s.Code, s.Name, acquisitionCodes)...)
		if !domain.ValidAcquisitionPhases[s.Phase] {
			errs = append(errs, fmt.Errorf("%s.phase: invalid value %q", field, s.Phase))
		}
		errs = append(errs, s.Start.validate(field+".start", activityCodes)...)
		errs = append(errs, s.End.validate(field+".end", activityCodes)...)
	}
	for i, s := range seed.AcquisitionTemplates {
		for _, dep := range s.DependsOn {
			if !acquisitionCodes[dep] {
				errs = append(errs, fmt.Errorf("acquisition_templates[%d].depends_on: unknown code %q", i, dep))
			} else if dep == s.Code {
				errs = append(errs, fmt.Errorf("acquisition_templates[%d].depends_on: %q cannot depend on itself", i, dep))
			}
		}
	}
	return errs
}

func validateSeedHeader(field, code, name string, seen map[string]bool) []error {
	var errs []error
	if code == "" {
		errs = append(errs, fmt.Errorf("%s.code is required", field))
	} else if seen[code] {
		errs = append(errs, fmt.Errorf("%s.code: duplicate %q", field, code))
	}
	seen[code] = true
	if name == "" {
		errs = append(errs, fmt.Errorf("%s.name is required", field))
	}
	return errs
}

func (r RuleSeed) validate(field string, codes map[string]bool) []error {
	var errs []error
	if !domain.ValidMilestones[r.Milestone] {
		errs = append(errs, fmt.Errorf("%s.milestone: invalid value %q", field, r.Milestone))
	}
	if r.Endpoint != "" && !domain.ValidEndpoints[r.Endpoint] {
		errs = append(errs, fmt.Errorf("%s.endpoint: invalid value %q", field, r.Endpoint))
	}
	if r.After != "" && !codes[r.After] {
		errs = append(errs, fmt.Errorf("%s.after: unknown activity template code %q", field, r.After))
	}
	return errs
}
