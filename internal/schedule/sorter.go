package schedule

import (
	"sort"

	"github.com/alexanderramin/fundplan/internal/domain"
)

// ActivityItems adapts activities for Order and Evaluate.
func ActivityItems(acts []*domain.Activity) []Item {
	items := make([]Item, 0, len(acts))
	for _, a := range acts {
		items = append(items, Item{ID: a.ID, Label: domain.CoalesceStr(a.Code, a.Name), Start: a.StartRule, End: a.EndRule})
	}
	return items
}

// AcquisitionItems adapts acquisitions. Their entity rules point at
// activities, so every reference is external to the returned set.
func AcquisitionItems(acqs []*domain.Acquisition) []Item {
	items := make([]Item, 0, len(acqs))
	for _, a := range acqs {
		items = append(items, Item{ID: a.ID, Label: domain.CoalesceStr(a.Code, a.Name), Start: a.StartRule, End: a.EndRule})
	}
	return items
}

// ActivityTemplateItems adapts activity templates for cycle checks.
func ActivityTemplateItems(tmpls []*domain.ActivityTemplate) []Item {
	items := make([]Item, 0, len(tmpls))
	for _, t := range tmpls {
		items = append(items, Item{ID: t.ID, Label: domain.CoalesceStr(t.Code, t.Name), Start: t.StartRule, End: t.EndRule})
	}
	return items
}

// SortActivities orders activities by (sequence, id) ascending.
func SortActivities(acts []*domain.Activity) {
	sort.SliceStable(acts, func(i, j int) bool {
		if acts[i].Sequence != acts[j].Sequence {
			return acts[i].Sequence < acts[j].Sequence
		}
		return acts[i].ID < acts[j].ID
	})
}

// SortAcquisitions orders acquisitions by (sequence, id) ascending.
func SortAcquisitions(acqs []*domain.Acquisition) {
	sort.SliceStable(acqs, func(i, j int) bool {
		if acqs[i].Sequence != acqs[j].Sequence {
			return acqs[i].Sequence < acqs[j].Sequence
		}
		return acqs[i].ID < acqs[j].ID
	})
}
