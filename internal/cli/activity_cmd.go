package cli

import (
	"fmt"

	"github.com/alexanderramin/fundplan/internal/cli/formatter"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"act"},
		Short:   "Manage a project's activities",
		Long: `Manage a project's activities.

Dates are derived from rules. A rule is either a project milestone with an
optional day offset (signing, completion+30, submission-10) or an endpoint
of another activity of the same project (POST1.end+1, PRE2.start).`,
	}

	cmd.AddCommand(
		newActivityAddCmd(app),
		newActivityListCmd(app),
		newActivityUpdateCmd(app),
		newActivityRemoveCmd(app),
	)

	return cmd
}

type activityFlags struct {
	name, code, phase, state string
	start, end               string
	sequence                 int
}

func (f *activityFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Activity name")
	fl.StringVar(&f.code, "code", "", "Activity code, unique within the project")
	fl.IntVar(&f.sequence, "sequence", domain.DefaultSequence, "Ordering key")
	fl.StringVar(&f.phase, "phase", "", "Phase (pre|post)")
	fl.StringVar(&f.state, "state", "", "State (draft|in_progress|done)")
	fl.StringVar(&f.start, "start", "", "Start date rule")
	fl.StringVar(&f.end, "end", "", "End date rule")
}

// apply copies the set flags onto a. siblings are the other activities of
// the project, which entity rules may reference.
func (f *activityFlags) apply(cmd *cobra.Command, a *domain.Activity, siblings []*domain.Activity) error {
	changed := cmd.Flags().Changed

	if changed("name") {
		a.Name = f.name
	}
	if changed("code") {
		a.Code = f.code
	}
	if changed("sequence") {
		a.Sequence = f.sequence
	}
	if changed("phase") {
		a.Phase = domain.ActivityPhase(f.phase)
	}
	if changed("state") {
		a.State = domain.ActivityState(f.state)
	}

	// An activity may read its own start date.
	lookup := activityLookup(append(siblings, a))
	if changed("start") {
		r, err := parseRule(f.start, domain.EndpointStart, fallbackMilestone(a.StartRule), lookup)
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
	return nil
}

// fallbackMilestone keeps the milestone of the rule being replaced, or
// signing for a new one.
func fallbackMilestone(r domain.DateRule) domain.Milestone {
	if r.Milestone == "" {
		return domain.MilestoneSigning
	}
	return r.Milestone
}

func newActivityAddCmd(app *App) *cobra.Command {
	var projectRef string
	var flags activityFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			siblings, err := app.Activities.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}

			a := &domain.Activity{ID: newID(), ProjectID: p.ID, Sequence: domain.DefaultSequence}
			if err := flags.apply(cmd, a, siblings); err != nil {
				return err
			}
			if err := app.Activities.Create(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity %s: %s to %s\n",
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

func newActivityListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the activities of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			acts, err := app.Activities.ListByProject(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatActivities(acts))
			return nil
		},
	}
}

func newActivityUpdateCmd(app *App) *cobra.Command {
	var projectRef string
	var flags activityFlags

	cmd := &cobra.Command{
		Use:   "update ACTIVITY",
		Short: "Update an activity (ACTIVITY is its code or ID); dependent dates are recomputed",
		Args:  cobra.ExactArgs(1),
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
			a, err := pickActivity(acts, args[0])
			if err != nil {
				return err
			}
			siblings := make([]*domain.Activity, 0, len(acts))
			for _, other := range acts {
				if other.ID != a.ID {
					siblings = append(siblings, other)
				}
			}
			if err := flags.apply(cmd, a, siblings); err != nil {
				return err
			}
			if err := app.Activities.Update(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s: %s to %s\n",
				formatter.CoalesceCode(a.Code, a.Name), formatter.Date(a.DateStart), formatter.Date(a.DateEnd))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newActivityRemoveCmd(app *App) *cobra.Command {
	var projectRef string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ACTIVITY",
		Short: "Remove an activity that no other record's dates depend on",
		Args:  cobra.ExactArgs(1),
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
			a, err := pickActivity(acts, args[0])
			if err != nil {
				return err
			}
			label := formatter.CoalesceCode(a.Code, a.Name)
			if err := confirm(app, yes, fmt.Sprintf("Remove activity %s?", label)); err != nil {
				return err
			}
			if err := app.Activities.Delete(ctx, a.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed activity %s\n", label)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	addYesFlag(cmd, &yes)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
