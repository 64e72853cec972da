// Package schedule derives activity and acquisition dates from their date
// rules. Rules form a graph over (entity, endpoint) nodes which is
// evaluated in dependency order and rejected when it contains a cycle.
package schedule

import (
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
)

// Lookup returns the current dates of a referenced entity.
type Lookup func(id string) (domain.Span, bool)

// Resolve evaluates a single rule. The result is nil whenever the base date
// is missing: an unset milestone, an empty or unknown reference, or a
// referenced endpoint that is itself unresolved. The offset only applies
// when a base date exists.
func Resolve(rule domain.DateRule, ms domain.Milestones, lookup Lookup) *time.Time {
	var base *time.Time
	switch rule.Source {
	case domain.SourceMilestone:
		base = ms.Get(rule.Milestone)
	case domain.SourceEntity:
		if rule.RefID == "" || lookup == nil {
			return nil
		}
		span, ok := lookup(rule.RefID)
		if !ok {
			return nil
		}
		base = span.At(rule.Endpoint)
	}
	return domain.AddDays(base, rule.OffsetDays)
}
