package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alexanderramin/fundplan/internal/cli/formatter"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/importer"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"deviz"},
		Short:   "Manage a project's budget lines",
	}

	cmd.AddCommand(
		newBudgetAddCmd(app),
		newBudgetListCmd(app),
		newBudgetUpdateCmd(app),
		newBudgetRemoveCmd(app),
		newBudgetImportCmd(app),
		newBudgetExportCmd(app),
	)

	return cmd
}

type lineFlags struct {
	chapter, subchapter, name       string
	eligibleBase, eligibleVAT       string
	nonEligibleBase, nonEligibleVAT string
	expenseType, costCategory       string
}

func (f *lineFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.chapter, "chapter", "", "Chapter code")
	fl.StringVar(&f.subchapter, "subchapter", "", "Subchapter code")
	fl.StringVar(&f.name, "name", "", "Line name")
	fl.StringVar(&f.eligibleBase, "eligible-base", "", "Eligible amount without VAT")
	fl.StringVar(&f.eligibleVAT, "eligible-vat", "", "Eligible VAT")
	fl.StringVar(&f.nonEligibleBase, "non-eligible-base", "", "Non-eligible amount without VAT")
	fl.StringVar(&f.nonEligibleVAT, "non-eligible-vat", "", "Non-eligible VAT")
	fl.StringVar(&f.expenseType, "expense-type", "", "Expense type (Directa|Indirecta)")
	fl.StringVar(&f.costCategory, "cost-category", "", "MySMIS cost category")
}

func (f *lineFlags) apply(cmd *cobra.Command, l *domain.BudgetLine) error {
	changed := cmd.Flags().Changed

	for _, s := range []struct {
		flag string
		src  string
		dst  *string
	}{
		{"chapter", f.chapter, &l.Chapter},
		{"subchapter", f.subchapter, &l.Subchapter},
		{"name", f.name, &l.Name},
	} {
		if changed(s.flag) {
			*s.dst = s.src
		}
	}

	for _, m := range []struct {
		flag string
		src  string
		dst  *decimal.Decimal
	}{
		{"eligible-base", f.eligibleBase, &l.EligibleBase},
		{"eligible-vat", f.eligibleVAT, &l.EligibleVAT},
		{"non-eligible-base", f.nonEligibleBase, &l.NonEligibleBase},
		{"non-eligible-vat", f.nonEligibleVAT, &l.NonEligibleVAT},
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

	if changed("expense-type") {
		l.ExpenseType = domain.ExpenseType(f.expenseType)
	}
	if changed("cost-category") {
		l.CostCategory = domain.CostCategory(f.costCategory)
	}
	return nil
}

func newBudgetAddCmd(app *App) *cobra.Command {
	var projectRef string
	var flags lineFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a budget line",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectScope(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			l := &domain.BudgetLine{ProjectID: p.ID}
			if err := flags.apply(cmd, l); err != nil {
				return err
			}
			if err := app.Budget.Create(cmd.Context(), l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added budget line %s (total %s)\n", l.Label(), formatter.Money(l.Total))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newBudgetListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the budget lines of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			lines, err := app.Budget.ListByProject(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBudgetLines(lines))
			return nil
		},
	}
}

func newBudgetUpdateCmd(app *App) *cobra.Command {
	var projectRef string
	var flags lineFlags

	cmd := &cobra.Command{
		Use:   "update LINE",
		Short: "Update a budget line (LINE is its number such as 1.2, or an ID)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			lines, err := app.Budget.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			l, err := pickLine(lines, args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, l); err != nil {
				return err
			}
			if err := app.Budget.Update(ctx, l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated budget line %s (total %s)\n", l.Label(), formatter.Money(l.Total))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newBudgetRemoveCmd(app *App) *cobra.Command {
	var projectRef string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove LINE",
		Short: "Remove a budget line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			lines, err := app.Budget.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			l, err := pickLine(lines, args[0])
			if err != nil {
				return err
			}
			if err := confirm(app, yes, fmt.Sprintf("Remove budget line %s?", l.Label())); err != nil {
				return err
			}
			if err := app.Budget.Delete(ctx, l.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed budget line %s\n", l.Label())
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	addYesFlag(cmd, &yes)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newBudgetImportCmd(app *App) *cobra.Command {
	var overwrite, yes bool

	cmd := &cobra.Command{
		Use:   "import PROJECT FILE",
		Short: "Import budget lines from a .csv or .xlsx sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}

			existing, err := app.Budget.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(existing) > 0 && !overwrite {
				title := fmt.Sprintf("%s already has %d budget lines. Replace them?", p.DisplayName(), len(existing))
				if err := confirm(app, yes, title); err != nil {
					return err
				}
				overwrite = true
			}

			res, err := app.Budget.ImportFile(ctx, p.ID, args[1], overwrite)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d budget lines", res.Created)
			if res.Replaced > 0 {
				fmt.Fprintf(out, " (replaced %d)", res.Replaced)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.FormatTotals(p.Code, res.Totals))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing budget lines")
	addYesFlag(cmd, &yes)

	return cmd
}

func newBudgetExportCmd(app *App) *cobra.Command {
	var formatStr, output string

	cmd := &cobra.Command{
		Use:   "export PROJECT",
		Short: "Export budget lines to a .csv or .xlsx sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}

			var format importer.Format
			switch {
			case cmd.Flags().Changed("format"):
				format, err = importer.ParseFormat(formatStr)
			case output != "" && output != "-":
				format, err = importer.FormatFromPath(output)
			default:
				format = importer.FormatXLSX
			}
			if err != nil {
				return err
			}
			if output == "" {
				output = importer.DefaultExportName(p.Code, format)
			}

			var buf bytes.Buffer
			n, err := app.Budget.Export(ctx, p.ID, &buf, format)
			if err != nil {
				return err
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d budget lines to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "File format (csv|xlsx); defaults to the output extension, else xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout (default deviz_<code>.<ext>)")

	return cmd
}
