package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ShortIDLen is how many trailing characters of an ID are shown. UUIDv7
// prefixes are timestamps and collide for records created together, so
// the random tail is used instead.
const ShortIDLen = 8

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// ShortID returns the trailing ShortIDLen characters of id.
func ShortID(id string) string {
	if len(id) > ShortIDLen {
		return id[len(id)-ShortIDLen:]
	}
	return id
}

// Money renders an amount with two decimals and comma thousands grouping,
// for example "-1,234,567.80".
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// Date renders an optional date, or a dim placeholder when absent.
func Date(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.Format("2006-01-02")
}

// Offset renders a day offset as "+n" or "-n", and 0 as "".
func Offset(days int) string {
	switch {
	case days > 0:
		return fmt.Sprintf("+%d", days)
	case days < 0:
		return fmt.Sprintf("%d", days)
	default:
		return ""
	}
}

// FormatRule renders a date rule in the same syntax the CLI accepts:
// "signing+30" for a milestone rule, "POST1.end+1" for an entity rule.
// codes maps entity IDs to codes; an unknown reference shows as "?" with
// its fallback milestone.
func FormatRule(r domain.DateRule, codes map[string]string) string {
	if !r.IsEntity() {
		return string(r.Milestone) + Offset(r.OffsetDays)
	}
	code, ok := codes[r.RefID]
	if !ok || code == "" {
		return fmt.Sprintf("?.%s%s (%s)", r.Endpoint, Offset(r.OffsetDays), r.Milestone)
	}
	return fmt.Sprintf("%s.%s%s", code, r.Endpoint, Offset(r.OffsetDays))
}

// Percent renders a 0..100 progress figure.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}
