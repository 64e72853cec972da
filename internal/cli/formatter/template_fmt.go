package formatter

import (
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
)

// FormatActivityTemplates renders the activity template catalogue.
func FormatActivityTemplates(tmpls []*domain.ActivityTemplate) string {
	if len(tmpls) == 0 {
		return Dim("No activity templates. Run `fundplan template seed`.")
	}
	codes := make(map[string]string, len(tmpls))
	for _, t := range tmpls {
		codes[t.ID] = t.Code
	}
	t := Table{Headers: []string{"SEQ", "CODE", "NAME", "PHASE", "START RULE", "END RULE"}}
	for _, tmpl := range tmpls {
		t.Rows = append(t.Rows, []string{
			Dim(itoa(tmpl.Sequence)),
			Bold(orDash(tmpl.Code)),
			tmpl.Name,
			string(tmpl.Phase),
			FormatRule(tmpl.StartRule, codes),
			FormatRule(tmpl.EndRule, codes),
		})
	}
	return RenderBox("Activity templates", t.Render())
}

// FormatAcquisitionTemplates renders the acquisition template catalogue.
// acts resolves the activity template codes their rules read.
func FormatAcquisitionTemplates(tmpls []*domain.AcquisitionTemplate, acts []*domain.ActivityTemplate) string {
	if len(tmpls) == 0 {
		return Dim("No acquisition templates. Run `fundplan template seed`.")
	}
	codes := make(map[string]string, len(acts))
	for _, a := range acts {
		codes[a.ID] = a.Code
	}
	own := make(map[string]string, len(tmpls))
	for _, tmpl := range tmpls {
		own[tmpl.ID] = CoalesceCode(tmpl.Code, tmpl.Name)
	}

	t := Table{Headers: []string{"SEQ", "CODE", "NAME", "PHASE", "START RULE", "END RULE", "AFTER"}}
	for _, tmpl := range tmpls {
		deps := make([]string, 0, len(tmpl.DependencyIDs))
		for _, id := range tmpl.DependencyIDs {
			deps = append(deps, CoalesceCode(own[id], "?"))
		}
		t.Rows = append(t.Rows, []string{
			Dim(itoa(tmpl.Sequence)),
			Bold(orDash(tmpl.Code)),
			tmpl.Name,
			string(tmpl.Phase),
			FormatRule(tmpl.StartRule, codes),
			FormatRule(tmpl.EndRule, codes),
			orDash(strings.Join(deps, ", ")),
		})
	}
	return RenderBox("Acquisition templates", t.Render())
}
