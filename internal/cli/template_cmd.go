package cli

import (
	"fmt"

	"github.com/alexanderramin/fundplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage activity and acquisition templates",
	}

	cmd.AddCommand(
		newTemplateSeedCmd(app),
		newTemplateListCmd(app),
	)

	return cmd
}

func newTemplateSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default templates when none exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			acts, err := app.Templates.SeedActivityTemplates(ctx)
			if err != nil {
				return err
			}
			if acts.Notice != nil {
				printNotice(out, acts.Notice)
			} else {
				fmt.Fprintf(out, "Seeded %d activity templates\n", acts.Created)
			}

			acqs, err := app.Templates.SeedAcquisitionTemplates(ctx)
			if err != nil {
				return err
			}
			if acqs.Notice != nil {
				printNotice(out, acqs.Notice)
			} else {
				fmt.Fprintf(out, "Seeded %d acquisition templates\n", acqs.Created)
			}
			return nil
		},
	}
}

func newTemplateListCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch kind {
			case "", "activity", "acquisition":
			default:
				return fmt.Errorf("invalid --kind %q (expected activity or acquisition)", kind)
			}

			acts, err := app.Templates.ListActivityTemplates(ctx)
			if err != nil {
				return err
			}
			if kind != "acquisition" {
				fmt.Fprintln(out, formatter.FormatActivityTemplates(acts))
			}
			if kind != "activity" {
				acqs, err := app.Templates.ListAcquisitionTemplates(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatAcquisitionTemplates(acqs, acts))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list one kind (activity|acquisition)")

	return cmd
}
