package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ProjectStatusPill returns a colored indicator for a project status.
func ProjectStatusPill(status domain.ProjectStatus) string {
	switch status {
	case domain.ProjectInProgress:
		return StyleYellow.Render("● In progress")
	case domain.ProjectContracted:
		return StyleGreen.Render("● Contracted")
	case domain.ProjectMonitoring:
		return StyleBlue.Render("◐ Monitoring")
	case domain.ProjectClosed:
		return StyleDim.Render("✔ Closed")
	default:
		return StyleDim.Render(string(status))
	}
}

// StatePill colors the shared draft/in_progress/done/cancelled states of
// activities and acquisitions.
func StatePill(state string) string {
	switch state {
	case "draft":
		return StyleDim.Render("○ draft")
	case "in_progress":
		return StyleYellow.Render("● in progress")
	case "done":
		return StyleGreen.Render("✔ done")
	case "cancelled":
		return StyleRed.Render("✖ cancelled")
	default:
		return StyleDim.Render(state)
	}
}

func ReimbursementPill(status domain.ReimbursementStatus) string {
	switch status {
	case domain.ReimbursementPlanned:
		return StyleDim.Render("○ planned")
	case domain.ReimbursementSent:
		return StyleBlue.Render("→ sent")
	case domain.ReimbursementApproved:
		return StyleYellow.Render("● approved")
	case domain.ReimbursementPaid:
		return StyleGreen.Render("✔ paid")
	default:
		return StyleDim.Render(string(status))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
