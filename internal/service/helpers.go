package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/fundplan/internal/budget"
	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/repository"
	"github.com/alexanderramin/fundplan/internal/schedule"
	"github.com/google/uuid"
)

// newID returns a time-ordered UUID, so ID order follows creation order
// among records that share a sequence.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// repos bundles the repositories of one connection or transaction.
type repos struct {
	projects         repository.ProjectRepo
	lines            repository.BudgetLineRepo
	activities       repository.ActivityRepo
	acquisitions     repository.AcquisitionRepo
	activityTmpls    repository.ActivityTemplateRepo
	acquisitionTmpls repository.AcquisitionTemplateRepo
	seeds            repository.SeedMarkerRepo
	reimbursements   repository.ReimbursementRepo
	purchases        repository.PurchaseRepo
}

func reposFor(conn db.DBTX) *repos {
	return &repos{
		projects:         repository.NewSQLiteProjectRepo(conn),
		lines:            repository.NewSQLiteBudgetLineRepo(conn),
		activities:       repository.NewSQLiteActivityRepo(conn),
		acquisitions:     repository.NewSQLiteAcquisitionRepo(conn),
		activityTmpls:    repository.NewSQLiteActivityTemplateRepo(conn),
		acquisitionTmpls: repository.NewSQLiteAcquisitionTemplateRepo(conn),
		seeds:            repository.NewSQLiteSeedMarkerRepo(conn),
		reimbursements:   repository.NewSQLiteReimbursementRepo(conn),
		purchases:        repository.NewSQLitePurchaseRepo(conn),
	}
}

// withRepos runs fn inside a transaction with tx-scoped repositories.
func withRepos(ctx context.Context, uow db.UnitOfWork, fn func(ctx context.Context, r *repos) error) error {
	return uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, reposFor(tx))
	})
}

func isValidation(err error) bool {
	return domain.IsValidation(err)
}

// cycleAsValidation turns a schedule.CycleError into a validation failure
// and passes other errors through.
func cycleAsValidation(err error) error {
	var cycle *schedule.CycleError
	if errors.As(err, &cycle) {
		return &domain.ValidationError{
			Message:  "date rules form a cycle",
			Problems: []string{strings.Join(cycle.Path, " -> ")},
		}
	}
	return err
}

// recomputeDates re-derives every activity and acquisition date of the
// project in dependency order and writes back only the rows whose dates
// changed. Returns the number of rows written.
func recomputeDates(ctx context.Context, r *repos, projectID string) (int, error) {
	p, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	ms := p.Milestones()

	acts, err := r.activities.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	actSpans, err := schedule.Evaluate(schedule.ActivityItems(acts), ms, nil)
	if err != nil {
		return 0, cycleAsValidation(err)
	}

	changed := 0
	for _, a := range acts {
		span := actSpans[a.ID]
		if span.Equal(a.Span()) {
			continue
		}
		if err := r.activities.UpdateDates(ctx, a.ID, span); err != nil {
			return changed, err
		}
		changed++
	}

	acqs, err := r.acquisitions.ListByProject(ctx, projectID)
	if err != nil {
		return changed, err
	}
	external := func(id string) (domain.Span, bool) {
		s, ok := actSpans[id]
		return s, ok
	}
	acqSpans, err := schedule.Evaluate(schedule.AcquisitionItems(acqs), ms, external)
	if err != nil {
		return changed, cycleAsValidation(err)
	}
	for _, a := range acqs {
		span := acqSpans[a.ID]
		if span.Equal(a.Span()) {
			continue
		}
		if err := r.acquisitions.UpdateDates(ctx, a.ID, span); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// refreshTotals recomputes the project's stored totals from its lines and
// writes them when they differ.
func refreshTotals(ctx context.Context, r *repos, projectID string) (budget.ProjectTotals, error) {
	p, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		return budget.ProjectTotals{}, err
	}
	lines, err := r.lines.ListByProject(ctx, projectID)
	if err != nil {
		return budget.ProjectTotals{}, err
	}
	totals := budget.SumLines(lines)
	if !totals.Changed(p) {
		return totals, nil
	}
	totals.Apply(p)
	if err := r.projects.UpdateTotals(ctx, projectID, p.TotalEligible, p.TotalNonEligible, p.TotalGeneral); err != nil {
		return totals, fmt.Errorf("storing project totals: %w", err)
	}
	return totals, nil
}

// insertActivities writes freshly built activities. Entity references
// between them are checked by the database at commit.
func insertActivities(ctx context.Context, r *repos, acts []*domain.Activity) error {
	for _, a := range acts {
		if err := r.activities.Create(ctx, a); err != nil {
			return fmt.Errorf("creating activity %q: %w", a.Name, err)
		}
	}
	return nil
}
