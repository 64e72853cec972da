package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/importer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// newID pre-assigns an ID so a new record's rules can reference itself.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// minSuffixLen is the shortest ID tail accepted as a reference.
const minSuffixLen = 4

// pick selects one item by exact ID, then by a case-insensitive key such
// as a code, then by a unique ID suffix like the one list tables show.
func pick[T any](items []T, ref, kind string, id func(T) string, keys func(T) []string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%s reference is required", kind)
	}

	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
	}

	var byKey []T
	for _, it := range items {
		for _, k := range keys(it) {
			if k != "" && strings.EqualFold(k, ref) {
				byKey = append(byKey, it)
				break
			}
		}
	}
	switch len(byKey) {
	case 1:
		return byKey[0], nil
	case 0:
	default:
		return zero, fmt.Errorf("%s %q is ambiguous (%d matches)", kind, ref, len(byKey))
	}

	var bySuffix []T
	if len(ref) >= minSuffixLen {
		lower := strings.ToLower(ref)
		for _, it := range items {
			if strings.HasSuffix(id(it), lower) {
				bySuffix = append(bySuffix, it)
			}
		}
	}
	switch len(bySuffix) {
	case 0:
		return zero, fmt.Errorf("%s %q: %w", kind, ref, domain.ErrNotFound)
	case 1:
		return bySuffix[0], nil
	default:
		return zero, fmt.Errorf("%s ID suffix %q is ambiguous (%d matches)", kind, ref, len(bySuffix))
	}
}

func pickActivity(acts []*domain.Activity, ref string) (*domain.Activity, error) {
	return pick(acts, ref, "activity",
		func(a *domain.Activity) string { return a.ID },
		func(a *domain.Activity) []string { return []string{a.Code} })
}

func pickAcquisition(acqs []*domain.Acquisition, ref string) (*domain.Acquisition, error) {
	return pick(acqs, ref, "acquisition",
		func(a *domain.Acquisition) string { return a.ID },
		func(a *domain.Acquisition) []string { return []string{a.Code} })
}

func pickLine(lines []*domain.BudgetLine, ref string) (*domain.BudgetLine, error) {
	return pick(lines, ref, "budget line",
		func(l *domain.BudgetLine) string { return l.ID },
		func(l *domain.BudgetLine) []string { return []string{l.SequenceNumber} })
}

func noKeys[T any](T) []string { return nil }

// ruleSyntax matches "signing", "completion+30", "POST1.end+1" and
// "PRE2.start-5".
var ruleSyntax = regexp.MustCompile(`^([A-Za-z0-9_-]+?)(?:\.(start|end))?([+-]\d+)?$`)

// parseRule reads a date rule from its CLI form. A bare milestone name
// gives a milestone rule on endpoint; CODE.start or CODE.end gives an
// entity rule whose code is resolved through lookup and which falls back
// to fallback when the reference later disappears.
func parseRule(spec string, endpoint domain.Endpoint, fallback domain.Milestone, lookup func(ref string) (string, error)) (domain.DateRule, error) {
	m := ruleSyntax.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return domain.DateRule{}, fmt.Errorf("invalid date rule %q (expected MILESTONE[+N] or CODE.start|end[+N])", spec)
	}
	offset := 0
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return domain.DateRule{}, fmt.Errorf("invalid offset in date rule %q: %w", spec, err)
		}
		offset = n
	}

	if m[2] == "" {
		milestone := domain.Milestone(strings.ToLower(m[1]))
		if !domain.ValidMilestones[string(milestone)] {
			return domain.DateRule{}, fmt.Errorf("unknown milestone %q in date rule (use submission, signing or completion, or CODE.start|end)", m[1])
		}
		return domain.MilestoneRule(milestone, endpoint, offset), nil
	}

	refID, err := lookup(m[1])
	if err != nil {
		return domain.DateRule{}, fmt.Errorf("date rule %q: %w", spec, err)
	}
	return domain.EntityRule(refID, domain.Endpoint(m[2]), offset, fallback), nil
}

func activityLookup(acts []*domain.Activity) func(string) (string, error) {
	return func(ref string) (string, error) {
		a, err := pickActivity(acts, ref)
		if err != nil {
			return "", err
		}
		return a.ID, nil
	}
}

func parseAmount(flag, s string) (decimal.Decimal, error) {
	d, err := importer.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

func parseDateFlag(flag, s string) (*time.Time, error) {
	t, err := domain.ParseOptionalDate(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q (expected YYYY-MM-DD): %w", flag, s, err)
	}
	return t, nil
}
