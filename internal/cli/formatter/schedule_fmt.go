package formatter

import (
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
)

// ActivityCodes maps activity IDs to their codes for rule rendering.
func ActivityCodes(acts []*domain.Activity) map[string]string {
	codes := make(map[string]string, len(acts))
	for _, a := range acts {
		codes[a.ID] = a.Code
	}
	return codes
}

// FormatActivities renders a project's activities in schedule order.
func FormatActivities(acts []*domain.Activity) string {
	if len(acts) == 0 {
		return Dim("No activities.")
	}
	codes := ActivityCodes(acts)
	t := Table{Headers: []string{"ID", "SEQ", "CODE", "NAME", "PHASE", "STATE", "START", "END", "START RULE", "END RULE"}}
	for _, a := range acts {
		t.Rows = append(t.Rows, []string{
			Dim(ShortID(a.ID)),
			Dim(itoa(a.Sequence)),
			Bold(orDash(a.Code)),
			a.Name,
			string(a.Phase),
			StatePill(string(a.State)),
			Date(a.DateStart),
			Date(a.DateEnd),
			Dim(FormatRule(a.StartRule, codes)),
			Dim(FormatRule(a.EndRule, codes)),
		})
	}
	return RenderBox("Activities", t.Render())
}

// FormatAcquisitions renders a project's acquisitions. acts resolves the
// activity codes their rules read.
func FormatAcquisitions(acqs []*domain.Acquisition, acts []*domain.Activity) string {
	if len(acqs) == 0 {
		return Dim("No acquisitions.")
	}
	codes := ActivityCodes(acts)
	acqCodes := make(map[string]string, len(acqs))
	for _, a := range acqs {
		acqCodes[a.ID] = CoalesceCode(a.Code, a.Name)
	}

	t := Table{Headers: []string{"ID", "SEQ", "CODE", "NAME", "PHASE", "STATE", "START", "END", "START RULE", "END RULE", "AFTER"}}
	for _, a := range acqs {
		deps := make([]string, 0, len(a.DependencyIDs))
		for _, id := range a.DependencyIDs {
			deps = append(deps, CoalesceCode(acqCodes[id], "?"))
		}
		t.Rows = append(t.Rows, []string{
			Dim(ShortID(a.ID)),
			Dim(itoa(a.Sequence)),
			Bold(orDash(a.Code)),
			a.Name,
			string(a.Phase),
			StatePill(string(a.State)),
			Date(a.DateStart),
			Date(a.DateEnd),
			Dim(FormatRule(a.StartRule, codes)),
			Dim(FormatRule(a.EndRule, codes)),
			orDash(strings.Join(deps, ", ")),
		})
	}
	return RenderBox("Acquisitions", t.Render())
}

// CoalesceCode prefers a code and falls back to the given label.
func CoalesceCode(code, fallback string) string {
	return domain.CoalesceStr(strings.TrimSpace(code), fallback)
}
