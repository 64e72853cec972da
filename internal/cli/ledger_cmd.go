package cli

import (
	"fmt"

	"github.com/alexanderramin/fundplan/internal/cli/formatter"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/spf13/cobra"
)

func newReimbursementCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reimbursement",
		Aliases: []string{"cr"},
		Short:   "Track reimbursement claims",
	}

	cmd.AddCommand(
		newReimbursementAddCmd(app),
		newReimbursementListCmd(app),
		newReimbursementAdvanceCmd(app),
		newReimbursementRemoveCmd(app),
	)

	return cmd
}

func pickReimbursement(items []*domain.Reimbursement, ref string) (*domain.Reimbursement, error) {
	return pick(items, ref, "reimbursement",
		func(r *domain.Reimbursement) string { return r.ID },
		noKeys[*domain.Reimbursement])
}

func newReimbursementAddCmd(app *App) *cobra.Command {
	var projectRef, date, amount string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Plan a reimbursement claim",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			d, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			if d == nil {
				return fmt.Errorf("--date is required")
			}
			v, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}

			r := &domain.Reimbursement{ProjectID: p.ID, Date: *d, Amount: v}
			if err := app.Reimbursements.Create(ctx, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Planned reimbursement %s of %s on %s\n",
				formatter.ShortID(r.ID), formatter.Money(r.Amount), formatter.Date(&r.Date))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	cmd.Flags().StringVar(&date, "date", "", "Claim date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&amount, "amount", "", "Claimed amount")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newReimbursementListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List reimbursement claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			items, err := app.Reimbursements.ListByProject(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReimbursements(items))
			return nil
		},
	}
}

func newReimbursementAdvanceCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "advance ID",
		Short: "Move a claim to its next status (planned, sent, approved, paid)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			items, err := app.Reimbursements.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			r, err := pickReimbursement(items, args[0])
			if err != nil {
				return err
			}
			updated, err := app.Reimbursements.Advance(ctx, r.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reimbursement %s is now %s\n", formatter.ShortID(updated.ID), updated.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newReimbursementRemoveCmd(app *App) *cobra.Command {
	var projectRef string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a reimbursement claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			items, err := app.Reimbursements.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			r, err := pickReimbursement(items, args[0])
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Remove the %s reimbursement of %s?", r.Date.Format("2006-01-02"), formatter.Money(r.Amount))
			if err := confirm(app, yes, title); err != nil {
				return err
			}
			if err := app.Reimbursements.Delete(ctx, r.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed reimbursement %s\n", formatter.ShortID(r.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	addYesFlag(cmd, &yes)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newPurchaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record purchases made under a project",
	}

	cmd.AddCommand(
		newPurchaseAddCmd(app),
		newPurchaseListCmd(app),
		newPurchaseRemoveCmd(app),
	)

	return cmd
}

func newPurchaseAddCmd(app *App) *cobra.Command {
	var projectRef, name, supplier, value, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			v, err := parseAmount("value", value)
			if err != nil {
				return err
			}
			d, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}

			pur := &domain.Purchase{ProjectID: p.ID, Name: name, Supplier: supplier, Value: v, Date: d}
			if err := app.Purchases.Create(ctx, pur); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded purchase %s (%s)\n", pur.Name, formatter.Money(pur.Value))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	cmd.Flags().StringVar(&name, "name", "", "What was bought")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Supplier")
	cmd.Flags().StringVar(&value, "value", "", "Purchase value")
	cmd.Flags().StringVar(&date, "date", "", "Purchase date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPurchaseListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List purchases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			items, err := app.Purchases.ListByProject(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPurchases(items))
			return nil
		},
	}
}

func newPurchaseRemoveCmd(app *App) *cobra.Command {
	var projectRef string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := projectScope(ctx, app, projectRef)
			if err != nil {
				return err
			}
			items, err := app.Purchases.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			pur, err := pick(items, args[0], "purchase",
				func(x *domain.Purchase) string { return x.ID },
				func(x *domain.Purchase) []string { return []string{x.Name} })
			if err != nil {
				return err
			}
			if err := confirm(app, yes, fmt.Sprintf("Remove purchase %s?", pur.Name)); err != nil {
				return err
			}
			if err := app.Purchases.Delete(ctx, pur.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed purchase %s\n", pur.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project code or ID")
	addYesFlag(cmd, &yes)
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
