package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/schedule"
)

// ValidateActivityTemplates checks a full set of activity templates: field
// values, code uniqueness (case-insensitive), references to templates inside
// the set, and cycles between rules. Each template becomes one activity per
// project, so two templates sharing a code would collide on every project.
func ValidateActivityTemplates(tmpls []*domain.ActivityTemplate) []error {
	var errs []error
	ids := make(map[string]bool, len(tmpls))
	for _, t := range tmpls {
		ids[t.ID] = true
	}
	codes := make(map[string]string, len(tmpls))
	for _, t := range tmpls {
		if code := strings.ToUpper(strings.TrimSpace(t.Code)); code != "" {
			if other, taken := codes[code]; taken {
				errs = append(errs, fmt.Errorf("template %q: code %q is already used by template %q", t.Name, t.Code, other))
			} else {
				codes[code] = t.Name
			}
		}
		for _, e := range t.Validate() {
			errs = append(errs, fmt.Errorf("template %q: %w", t.Name, e))
		}
		for _, r := range []domain.DateRule{t.StartRule, t.EndRule} {
			if r.IsEntity() && r.RefID != "" && !ids[r.RefID] {
				errs = append(errs, fmt.Errorf("template %q: referenced template %q does not exist", t.Name, r.RefID))
			}
		}
	}
	if _, err := schedule.Order(schedule.ActivityTemplateItems(tmpls)); err != nil {
		var cycle *schedule.CycleError
		if errors.As(err, &cycle) {
			errs = append(errs, err)
		}
	}
	return errs
}

// ValidateAcquisitionTemplates checks acquisition templates against the
// activity templates their rules name and the acquisition templates their
// dependencies name.
func ValidateAcquisitionTemplates(tmpls []*domain.AcquisitionTemplate, activityTmpls []*domain.ActivityTemplate) []error {
	var errs []error
	actIDs := make(map[string]bool, len(activityTmpls))
	for _, t := range activityTmpls {
		actIDs[t.ID] = true
	}
	acqIDs := make(map[string]bool, len(tmpls))
	for _, t := range tmpls {
		acqIDs[t.ID] = true
	}
	for _, t := range tmpls {
		for _, e := range t.Validate() {
			errs = append(errs, fmt.Errorf("template %q: %w", t.Name, e))
		}
		for _, r := range []domain.DateRule{t.StartRule, t.EndRule} {
			if r.IsEntity() && r.RefID != "" && !actIDs[r.RefID] {
				errs = append(errs, fmt.Errorf("template %q: referenced activity template %q does not exist", t.Name, r.RefID))
			}
		}
		for _, dep := range t.DependencyIDs {
			switch {
			case dep == t.ID:
				errs = append(errs, fmt.Errorf("template %q cannot depend on itself", t.Name))
			case !acqIDs[dep]:
				errs = append(errs, fmt.Errorf("template %q: dependency %q does not exist", t.Name, dep))
			}
		}
	}
	return errs
}
