package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/fundplan/internal/cli/formatter"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"proj"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUpdateCmd(app),
		newProjectRemoveCmd(app),
		newProjectSearchCmd(app),
		newProjectGenerateActivitiesCmd(app),
		newProjectGenerateAcquisitionsCmd(app),
		newProjectAportCmd(app),
		newProjectTotalsCmd(app),
	)

	return cmd
}

// projectFlags are the editable project fields shared by add and update.
type projectFlags struct {
	code, name, beneficiary, taxID    string
	submission, signing, completion   string
	monitoringEnd                     string
	status, cofinancing, eurRate, vat string
	financial, physical               float64
	budgetNotes, acquisitionNotes     string
	activityNotes, reimbursementNotes string
}

func (f *projectFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.code, "code", "", "Project code (e.g. SMIS number)")
	fl.StringVar(&f.name, "name", "", "Project name")
	fl.StringVar(&f.beneficiary, "beneficiary", "", "Beneficiary")
	fl.StringVar(&f.taxID, "tax-id", "", "Beneficiary tax ID")
	fl.StringVar(&f.submission, "submission", "", "Submission date (YYYY-MM-DD)")
	fl.StringVar(&f.signing, "signing", "", "Contract signing date (YYYY-MM-DD)")
	fl.StringVar(&f.completion, "completion", "", "Completion date (YYYY-MM-DD)")
	fl.StringVar(&f.monitoringEnd, "monitoring-end", "", "End of the monitoring period (YYYY-MM-DD)")
	fl.StringVar(&f.status, "status", "", "Status (in_progress|contracted|monitoring|closed)")
	fl.StringVar(&f.cofinancing, "aport", "", "Own contribution (co-financing amount)")
	fl.StringVar(&f.eurRate, "eur-rate", "", "EUR exchange rate")
	fl.StringVar(&f.vat, "vat", "", "VAT eligible (yes|no)")
	fl.Float64Var(&f.financial, "financial-progress", 0, "Financial progress (%)")
	fl.Float64Var(&f.physical, "physical-progress", 0, "Physical progress (%)")
	fl.StringVar(&f.budgetNotes, "budget-notes", "", "Budget notes")
	fl.StringVar(&f.acquisitionNotes, "acquisition-notes", "", "Acquisition notes")
	fl.StringVar(&f.activityNotes, "activity-notes", "", "Activity notes")
	fl.StringVar(&f.reimbursementNotes, "reimbursement-notes", "", "Reimbursement notes")
}

// apply copies every flag the user set onto p. An empty date flag clears
// the date.
func (f *projectFlags) apply(cmd *cobra.Command, p *domain.Project) error {
	changed := cmd.Flags().Changed

	for _, s := range []struct {
		flag string
		src  string
		dst  *string
	}{
		{"code", f.code, &p.Code},
		{"name", f.name, &p.Name},
		{"beneficiary", f.beneficiary, &p.Beneficiary},
		{"tax-id", f.taxID, &p.TaxID},
		{"budget-notes", f.budgetNotes, &p.BudgetNotes},
		{"acquisition-notes", f.acquisitionNotes, &p.AcquisitionNotes},
		{"activity-notes", f.activityNotes, &p.ActivityNotes},
		{"reimbursement-notes", f.reimbursementNotes, &p.ReimbursementNotes},
	} {
		if changed(s.flag) {
			*s.dst = s.src
		}
	}

	for _, d := range []struct {
		flag string
		src  string
		dst  **time.Time
	}{
		{"submission", f.submission, &p.SubmissionDate},
		{"signing", f.signing, &p.SigningDate},
		{"completion", f.completion, &p.CompletionDate},
		{"monitoring-end", f.monitoringEnd, &p.MonitoringEndDate},
	} {
		if !changed(d.flag) {
			continue
		}
		t, err := parseDateFlag(d.flag, d.src)
		if err != nil {
			return err
		}
		*d.dst = t
	}

	for _, m := range []struct {
		flag string
		src  string
		dst  *decimal.Decimal
	}{
		{"aport", f.cofinancing, &p.Cofinancing},
		{"eur-rate", f.eurRate, &p.EURRate},
	} {
		if !changed(m.flag) {
			continue
		}
		v, err := parseAmount(m.flag, m.src)
		if err != nil {
			return err
		}
		*m.dst = v
	}

	if changed("status") {
		p.Status = domain.ProjectStatus(f.status)
	}
	if changed("vat") {
		p.VATEligible = domain.VATEligibility(f.vat)
	}
	if changed("financial-progress") {
		p.FinancialProgress = f.financial
	}
	if changed("physical-progress") {
		p.PhysicalProgress = f.physical
	}
	return nil
}

func newProjectAddCmd(app *App) *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project and generate its activities from templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{}
			if err := flags.apply(cmd, p); err != nil {
				return err
			}
			res, err := app.Projects.Create(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project %s\n", p.DisplayName())
			if res != nil {
				if res.Notice != nil {
					printNotice(out, res.Notice)
				} else {
					fmt.Fprintf(out, "Generated %d activities\n", res.Created)
				}
			}
			return nil
		},
	}

	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectShow(p))
			return nil
		},
	}
}

func newProjectSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM",
		Short: "Find projects by code, beneficiary or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Update a project; changed milestones reschedule its activities and acquisitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, p); err != nil {
				return err
			}
			if err := app.Projects.Update(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s\n", p.DisplayName())
			return nil
		},
	}

	flags.bind(cmd)

	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Remove a project that has no budget lines, activities or acquisitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := confirm(app, yes, fmt.Sprintf("Remove project %s?", p.DisplayName())); err != nil {
				return err
			}
			if err := app.Projects.Delete(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", p.DisplayName())
			return nil
		},
	}

	addYesFlag(cmd, &yes)

	return cmd
}

func newProjectGenerateActivitiesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-activities PROJECT",
		Short: "Create the project's activities from the activity templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			res, err := app.Projects.GenerateActivities(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Notice != nil {
				printNotice(out, res.Notice)
				return nil
			}
			fmt.Fprintf(out, "Generated %d activities for %s\n", res.Created, p.DisplayName())
			return nil
		},
	}
}

func newProjectGenerateAcquisitionsCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "generate-acquisitions PROJECT",
		Short: "Replace the project's acquisitions with ones built from the acquisition templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			existing, err := app.Acquisitions.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				title := fmt.Sprintf("Replace the %d acquisitions of %s?", len(existing), p.DisplayName())
				if err := confirm(app, yes, title); err != nil {
					return err
				}
			}

			res, err := app.Projects.GenerateAcquisitions(ctx, p.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Notice != nil {
				printNotice(out, res.Notice)
				return nil
			}
			fmt.Fprintf(out, "Generated %d acquisitions for %s", res.Created, p.DisplayName())
			if res.Deleted > 0 {
				fmt.Fprintf(out, " (replaced %d)", res.Deleted)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	addYesFlag(cmd, &yes)

	return cmd
}

func newProjectAportCmd(app *App) *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "aport PROJECT",
		Short: "Distribute the co-financing contribution over the eligible budget lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}

			var override *decimal.Decimal
			if cmd.Flags().Changed("amount") {
				d, err := parseAmount("amount", amount)
				if err != nil {
					return err
				}
				override = &d
			}

			dist, err := app.Projects.DistributeCofinancing(ctx, p.ID, override)
			if err != nil {
				return err
			}
			lines, err := app.Budget.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDistribution(dist, lines))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Contribution to distribute instead of the stored one")

	return cmd
}

func newProjectTotalsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "totals PROJECT",
		Short: "Recompute and show the project's budget totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			totals, err := app.Projects.Totals(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTotals(p.Code, totals))
			return nil
		},
	}
}

// projectScope resolves the --project flag shared by child-entity commands.
func projectScope(ctx context.Context, app *App, ref string) (*domain.Project, error) {
	if ref == "" {
		return nil, fmt.Errorf("--project is required")
	}
	return resolveProject(ctx, app, ref)
}
