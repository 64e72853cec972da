package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects       service.ProjectService
	Budget         service.BudgetService
	Activities     service.ActivityService
	Acquisitions   service.AcquisitionService
	Templates      service.TemplateService
	Reimbursements service.ReimbursementService
	Purchases      service.PurchaseService

	// IsInteractive reports whether confirmation prompts can be shown.
	// When nil the CLI behaves as if stdin is not a terminal.
	IsInteractive func() bool
	// Serve runs the HTTP API until ctx is cancelled.
	Serve func(ctx context.Context, addr string) error
	// HTTPAddr is the default listen address of `serve`.
	HTTPAddr string
}

// NewRootCmd creates the top-level "fundplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "fundplan",
		Short:         "Budgets and schedules for EU-funded projects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newBudgetCmd(app),
		newActivityCmd(app),
		newAcquisitionCmd(app),
		newTemplateCmd(app),
		newReimbursementCmd(app),
		newPurchaseCmd(app),
		newServeCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// confirm asks before a destructive operation. --yes skips the prompt; a
// non-interactive session without --yes is refused.
func confirm(app *App, yes bool, title string) error {
	if yes {
		return nil
	}
	if !app.interactive() {
		return fmt.Errorf("%s: refusing without a terminal, pass --yes to confirm", title)
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}
	return nil
}

var errCancelled = errors.New("cancelled")

func addYesFlag(cmd *cobra.Command, yes *bool) {
	cmd.Flags().BoolVarP(yes, "yes", "y", false, "Skip the confirmation prompt")
}

func printNotice(w io.Writer, n *domain.Notice) {
	if n != nil {
		fmt.Fprintln(w, n.Message)
	}
}

func resolveProject(ctx context.Context, app *App, ref string) (*domain.Project, error) {
	if ref == "" {
		return nil, fmt.Errorf("project reference is required")
	}
	return app.Projects.Find(ctx, ref)
}
