// Package template holds the project-independent activity and acquisition
// templates: the embedded standard set, its validation, and the expansion
// of templates into live records of one project.
package template

import (
	"sort"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
)

// ActivityExpansion is the output of ExpandActivities.
type ActivityExpansion struct {
	Activities []*domain.Activity
	// IDMap maps template ID to the ID of the activity created from it.
	IDMap map[string]string
}

// AcquisitionExpansion is the output of ExpandAcquisitions.
type AcquisitionExpansion struct {
	Acquisitions []*domain.Acquisition
	IDMap        map[string]string
}

// SortActivityTemplates orders templates by (sequence, id).
func SortActivityTemplates(tmpls []*domain.ActivityTemplate) {
	sort.SliceStable(tmpls, func(i, j int) bool {
		if tmpls[i].Sequence != tmpls[j].Sequence {
			return tmpls[i].Sequence < tmpls[j].Sequence
		}
		return tmpls[i].ID < tmpls[j].ID
	})
}

// SortAcquisitionTemplates orders templates by (sequence, id).
func SortAcquisitionTemplates(tmpls []*domain.AcquisitionTemplate) {
	sort.SliceStable(tmpls, func(i, j int) bool {
		if tmpls[i].Sequence != tmpls[j].Sequence {
			return tmpls[i].Sequence < tmpls[j].Sequence
		}
		return tmpls[i].ID < tmpls[j].ID
	})
}

// ExpandActivities creates one activity per template for projectID.
//
// Pass 1 copies name, code, sequence, phase and every rule scalar, leaving
// entity references empty, and records template ID -> activity ID. Pass 2
// points each entity rule at the activity created from the referenced
// template. A reference to a template outside the set stays empty and
// resolves to no date. Dates are left for the caller to compute.
func ExpandActivities(projectID string, tmpls []*domain.ActivityTemplate, newID func() string, now time.Time) *ActivityExpansion {
	ordered := append([]*domain.ActivityTemplate(nil), tmpls...)
	SortActivityTemplates(ordered)

	exp := &ActivityExpansion{
		Activities: make([]*domain.Activity, 0, len(ordered)),
		IDMap:      make(map[string]string, len(ordered)),
	}
	for _, t := range ordered {
		a := &domain.Activity{
			ID:        newID(),
			ProjectID: projectID,
			Name:      t.Name,
			Code:      t.Code,
			Sequence:  t.Sequence,
			Phase:     t.Phase,
			State:     domain.ActivityDraft,
			StartRule: unlinked(t.StartRule),
			EndRule:   unlinked(t.EndRule),
			CreatedAt: now,
			UpdatedAt: now,
		}
		exp.IDMap[t.ID] = a.ID
		exp.Activities = append(exp.Activities, a)
	}

	for i, t := range ordered {
		a := exp.Activities[i]
		if t.StartRule.IsEntity() {
			a.StartRule.RefID = exp.IDMap[t.StartRule.RefID]
		}
		if t.EndRule.IsEntity() {
			a.EndRule.RefID = exp.IDMap[t.EndRule.RefID]
		}
	}
	return exp
}

func unlinked(r domain.DateRule) domain.DateRule {
	r.RefID = ""
	return r
}

// ExpandAcquisitions creates one acquisition per template for projectID.
//
// An entity rule of a template names an activity template; the live
// activity is found by code, then by (sequence, phase), taking the first
// activity in (sequence, id) order. When no activity matches, the rule falls
// back to the template's milestone. Template dependencies are mapped onto
// the new acquisitions in a second pass, skipping unmapped ones.
func ExpandAcquisitions(
	projectID string,
	tmpls []*domain.AcquisitionTemplate,
	activityTmpls []*domain.ActivityTemplate,
	activities []*domain.Activity,
	newID func() string,
	now time.Time,
) *AcquisitionExpansion {
	ordered := append([]*domain.AcquisitionTemplate(nil), tmpls...)
	SortAcquisitionTemplates(ordered)

	liveActs := append([]*domain.Activity(nil), activities...)
	sort.SliceStable(liveActs, func(i, j int) bool {
		if liveActs[i].Sequence != liveActs[j].Sequence {
			return liveActs[i].Sequence < liveActs[j].Sequence
		}
		return liveActs[i].ID < liveActs[j].ID
	})
	actTmplByID := make(map[string]*domain.ActivityTemplate, len(activityTmpls))
	for _, t := range activityTmpls {
		actTmplByID[t.ID] = t
	}
	m := &activityMatcher{templates: actTmplByID, activities: liveActs}

	exp := &AcquisitionExpansion{
		Acquisitions: make([]*domain.Acquisition, 0, len(ordered)),
		IDMap:        make(map[string]string, len(ordered)),
	}
	for _, t := range ordered {
		a := &domain.Acquisition{
			ID:          newID(),
			ProjectID:   projectID,
			Name:        t.Name,
			Code:        t.Code,
			Sequence:    t.Sequence,
			Phase:       t.Phase,
			State:       domain.AcquisitionDraft,
			Description: t.Description,
			StartRule:   m.liveRule(t.StartRule),
			EndRule:     m.liveRule(t.EndRule),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		exp.IDMap[t.ID] = a.ID
		exp.Acquisitions = append(exp.Acquisitions, a)
	}

	for i, t := range ordered {
		for _, depTmplID := range t.DependencyIDs {
			if mapped, ok := exp.IDMap[depTmplID]; ok {
				exp.Acquisitions[i].DependencyIDs = append(exp.Acquisitions[i].DependencyIDs, mapped)
			}
		}
	}
	return exp
}

type activityMatcher struct {
	templates  map[string]*domain.ActivityTemplate
	activities []*domain.Activity
}

// liveRule translates a template rule into an acquisition rule.
func (m *activityMatcher) liveRule(r domain.DateRule) domain.DateRule {
	if r.IsEntity() {
		if act := m.find(m.templates[r.RefID]); act != nil {
			return domain.EntityRule(act.ID, r.Endpoint, r.OffsetDays, r.Milestone)
		}
	}
	return domain.MilestoneRule(r.Milestone, domain.EndpointEnd, r.OffsetDays)
}

func (m *activityMatcher) find(t *domain.ActivityTemplate) *domain.Activity {
	if t == nil {
		return nil
	}
	if t.Code != "" {
		for _, a := range m.activities {
			if a.Code == t.Code {
				return a
			}
		}
	}
	for _, a := range m.activities {
		if t.Sequence != 0 && a.Sequence != t.Sequence {
			continue
		}
		if t.Phase != "" && a.Phase != t.Phase {
			continue
		}
		return a
	}
	return nil
}
