package cli

import (
	"fmt"

	"github.com/alexanderramin/fundplan/internal/cli/formatter"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/spf13/cobra"
)

func newAcquisitionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "acquisition",
		Aliases: []string{"acq"},
		Short:   "Manage a project's acquisitions",
		Long: `Manage a project's acquisitions.

Date rules read project milestones (signing+30) or an endpoint of one of
the project's activities (POST2.start). --after lists other acquisitions
that come first; it is informational and does not move dates.`,
	}

	cmd.AddCommand(
		newAcquisitionAddCmd(app),
		newAcquisitionListCmd(app),
		newAcquisitionUpdateCmd(app),
		newAcquisitionRemoveCmd(app),
	)

	return cmd
}

type acquisitionFlags struct {
	name, code, phase, state, description string
	start, end                            string
	sequence                              int
	after                                 []string
}

func (f *acquisitionFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Acquisition name")
	fl.StringVar(&f.code, "code", "", "Acquisition code")
	fl.IntVar(&f.sequence, "sequence", domain.DefaultSequence, "Ordering key")
	fl.StringVar(&f.phase, "phase", "", "Phase (before|after)")
	fl.StringVar(&f.state, "state", "", "State (draft|in_progress|done|cancelled)")
	fl.StringVar(&f.description, "description", "", "Description")
	fl.StringVar(&f.start, "start", "", "Start date rule")
	fl.StringVar(&f.end, "end", "", "End date rule")
	fl.StringSliceVar(&f.after, "after", nil, "Acquisitions this one depends on (codes or IDs)")
}

func (f *acquisitionFlags) apply(cmd *cobra.Command, a *domain.Acquisition, acts []*domain.Activity, others []*domain.Acquisition) error {
	changed := cmd.Flags().Changed

	for _, s := range []struct {
		flag string
		src  string
		dst  *string
	}{
		{"name", f.name, &a.Name},
		{"code", f.code, &a.Code},
		{"description", f.description, &a.Description},
	} {
		if changed(s.flag) {
			*s.dst = s.src
		}
	}
	if changed("sequence") {
		a.Sequence = f.sequence
	}
	if changed("phase") {
		a.Phase = domain.AcquisitionPhase(f.phase)
	}
	if changed("state") {
		a.State = domain.AcquisitionState(f.state)
	}

	lookup := activityLookup(acts)
	if changed("start") {
		r, err := parseRule(f.start, domain.EndpointEnd, fallbackMilestone(a.StartRule), lookup)
		if err != nil {
			return err
		}
		a.StartRule = r
	}
	if changed("end") {
		r, err := parseRule(f.end, domain.EndpointEnd, fallbackMilestone(a.EndRule), lookup)
		if err != nil {
			return err
		}
		a.EndRule = r
	}

	if changed("after") {
		deps := make([]string, 0, len(f.after))
		for _, ref := range f.after {
			dep, err := pickAcquisition(others, ref)
			if err != nil {
				return fmt.Errorf("--after: %w", err)
			}
			deps = append(deps, dep.ID)
		}
		a.DependencyIDs = deps
	}
	return nil
}

func newAcquisitionAddCmd(app *App) *cobra.Command {
	var projectRef string
	var flags acquisitionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an acquisition",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			acts, err := app.Activities.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			others, err := app.Acquisitions.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}

			a := &domain.Acquisition{ProjectID: p.ID, Sequence: domain.DefaultSequence}
			if err := flags.apply(cmd, a, acts, others); err != nil {
				return err
			}
			if err := app.Acquisitions.Create(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added acquisition %s: %s to %s\n",
				formatter.CoalesceCode(a.Code, a.Name), formatter.Date(a.DateStart), formatter.Date(a.DateEnd))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAcquisitionListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the acquisitions of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			acqs, err := app.Acquisitions.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			acts, err := app.Activities.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAcquisitions(acqs, acts))
			return nil
		},
	}
}

func newAcquisitionUpdateCmd(app *App) *cobra.Command {
	var projectRef string
	var flags acquisitionFlags

	cmd := &cobra.Command{
		Use:   "update ACQUISITION",
		Short: "Update an acquisition (ACQUISITION is its code or ID)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			acqs, err := app.Acquisitions.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			a, err := pickAcquisition(acqs, args[0])
			if err != nil {
				return err
			}
			acts, err := app.Activities.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, a, acts, acqs); err != nil {
				return err
			}
			if err := app.Acquisitions.Update(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated acquisition %s: %s to %s\n",
				formatter.CoalesceCode(a.Code, a.Name), formatter.Date(a.DateStart), formatter.Date(a.DateEnd))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newAcquisitionRemoveCmd(app *App) *cobra.Command {
	var projectRef string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ACQUISITION",
		Short: "Remove an acquisition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			acqs, err := app.Acquisitions.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			a, err := pickAcquisition(acqs, args[0])
			if err != nil {
				return err
			}
			label := formatter.CoalesceCode(a.Code, a.Name)
			if err := confirm(app, yes, fmt.Sprintf("Remove acquisition %s?", label)); err != nil {
				return err
			}
			if err := app.Acquisitions.Delete(ctx, a.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed acquisition %s\n", label)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	addYesFlag(cmd, &yes)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
