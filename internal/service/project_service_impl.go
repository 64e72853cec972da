package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/fundplan/internal/budget"
	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
	tmpl "github.com/alexanderramin/fundplan/internal/template"
	"github.com/shopspring/decimal"
)

type projectService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewProjectService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) ProjectService {
	return &projectService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Create stores a new project and expands the activity templates into it
// when any exist.
func (s *projectService) Create(ctx context.Context, p *domain.Project) (result *GenerateResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"code": p.Code}
	defer func() { observe(ctx, s.observer, "create-project", startedAt, &err, fields) }()

	if p.ID == "" {
		p.ID = newID()
	}
	p.Code = strings.TrimSpace(p.Code)
	p.CreatedAt = startedAt
	p.UpdatedAt = startedAt
	p.ApplyDefaults()
	if err = domain.ValidationErrorFromList("invalid project", p.Validate()); err != nil {
		return nil, err
	}

	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if err := r.projects.Create(ctx, p); err != nil {
			return err
		}
		var genErr error
		result, genErr = generateActivities(ctx, r, p.ID, startedAt)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	fields["project_id"] = p.ID
	fields["activities"] = result.Created
	return result, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return reposFor(s.conn).projects.GetByID(ctx, id)
}

func (s *projectService) Find(ctx context.Context, ref string) (*domain.Project, error) {
	r := reposFor(s.conn)
	ref = strings.TrimSpace(ref)
	p, err := r.projects.GetByID(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	p, err = r.projects.GetByCode(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("project %q: %w", ref, domain.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return reposFor(s.conn).projects.List(ctx)
}

// Search matches term against code, beneficiary and name, ignoring case.
func (s *projectService) Search(ctx context.Context, term string) ([]*domain.Project, error) {
	all, err := reposFor(s.conn).projects.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Project
	for _, p := range all {
		if p.MatchesSearch(term) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update stores p. When a milestone changed, every activity and
// acquisition date is recomputed in the same transaction.
func (s *projectService) Update(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": p.ID}
	defer func() { observe(ctx, s.observer, "update-project", startedAt, &err, fields) }()

	p.Code = strings.TrimSpace(p.Code)
	p.ApplyDefaults()
	if err = domain.ValidationErrorFromList("invalid project", p.Validate()); err != nil {
		return err
	}

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		old, err := r.projects.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		p.CreatedAt = old.CreatedAt
		p.UpdatedAt = time.Now().UTC()
		if err := r.projects.Update(ctx, p); err != nil {
			return err
		}
		if !domain.MilestonesChanged(old, p) {
			return nil
		}
		changed, err := recomputeDates(ctx, r, p.ID)
		fields["dates_changed"] = changed
		return err
	})
}

// Delete removes a project that owns no budget lines, activities or
// acquisitions. Reimbursements and purchases go with it.
func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-project", startedAt, &err, map[string]any{"project_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		p, err := r.projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		lines, err := r.lines.CountByProject(ctx, id)
		if err != nil {
			return err
		}
		acts, err := r.activities.CountByProject(ctx, id)
		if err != nil {
			return err
		}
		acqs, err := r.acquisitions.CountByProject(ctx, id)
		if err != nil {
			return err
		}
		if lines+acts+acqs > 0 {
			return domain.NewValidationError(
				"project %s cannot be deleted: it still has %d budget lines, %d activities and %d acquisitions",
				p.DisplayName(), lines, acts, acqs)
		}
		return r.projects.Delete(ctx, id)
	})
}

func (s *projectService) GenerateActivities(ctx context.Context, projectID string) (result *GenerateResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID}
	defer func() { observe(ctx, s.observer, "generate-activities", startedAt, &err, fields) }()

	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.projects.GetByID(ctx, projectID); err != nil {
			return err
		}
		var genErr error
		result, genErr = generateActivities(ctx, r, projectID, startedAt)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	fields["created"] = result.Created
	return result, nil
}

// generateActivities expands every activity template into the project
// unless it already has activities.
func generateActivities(ctx context.Context, r *repos, projectID string, now time.Time) (*GenerateResult, error) {
	existing, err := r.activities.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return &GenerateResult{Notice: &domain.Notice{
			Message: fmt.Sprintf("The project already has %d activities. No activities were generated.", existing),
		}}, nil
	}
	tmpls, err := r.activityTmpls.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(tmpls) == 0 {
		return &GenerateResult{Notice: &domain.Notice{Message: "There are no activity templates. Seed them first."}}, nil
	}

	exp := tmpl.ExpandActivities(projectID, tmpls, newID, now)
	if err := insertActivities(ctx, r, exp.Activities); err != nil {
		return nil, err
	}
	if _, err := recomputeDates(ctx, r, projectID); err != nil {
		return nil, err
	}
	return &GenerateResult{Created: len(exp.Activities)}, nil
}

// GenerateAcquisitions replaces every acquisition of the project with a
// fresh expansion of the acquisition templates.
func (s *projectService) GenerateAcquisitions(ctx context.Context, projectID string) (result *GenerateResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID}
	defer func() { observe(ctx, s.observer, "generate-acquisitions", startedAt, &err, fields) }()

	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.projects.GetByID(ctx, projectID); err != nil {
			return err
		}
		acqTmpls, err := r.acquisitionTmpls.List(ctx)
		if err != nil {
			return err
		}
		if len(acqTmpls) == 0 {
			result = &GenerateResult{Notice: &domain.Notice{Message: "There are no acquisition templates. Seed them first."}}
			return nil
		}
		actTmpls, err := r.activityTmpls.List(ctx)
		if err != nil {
			return err
		}
		acts, err := r.activities.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}

		deleted, err := r.acquisitions.DeleteByProject(ctx, projectID)
		if err != nil {
			return err
		}
		exp := tmpl.ExpandAcquisitions(projectID, acqTmpls, actTmpls, acts, newID, startedAt)
		for _, a := range exp.Acquisitions {
			if err := r.acquisitions.Create(ctx, a); err != nil {
				return fmt.Errorf("creating acquisition %q: %w", a.Name, err)
			}
		}
		if _, err := recomputeDates(ctx, r, projectID); err != nil {
			return err
		}
		result = &GenerateResult{Created: len(exp.Acquisitions), Deleted: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["created"] = result.Created
	fields["deleted"] = result.Deleted
	return result, nil
}

func (s *projectService) DistributeCofinancing(ctx context.Context, projectID string, override *decimal.Decimal) (dist *budget.Distribution, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID}
	defer func() { observe(ctx, s.observer, "distribute-cofinancing", startedAt, &err, fields) }()

	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		totals, err := refreshTotals(ctx, r, projectID)
		if err != nil {
			return err
		}
		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		lines, err := r.lines.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		contribution := domain.DecimalFromPtrWithDefault(p.Cofinancing, override)
		dist, err = budget.DistributeCofinancing(contribution, totals.Eligible, lines)
		if err != nil || dist.Notice != nil {
			return err
		}
		dist.Apply(lines)
		for _, l := range lines {
			if err := r.lines.UpdateCofinancing(ctx, l.ID, l.CofinancedEligible, l.ReimbursableEligible); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["lines"] = len(dist.Allocations)
	fields["coefficient"] = dist.Coefficient.String()
	fields["drift"] = dist.Drift.String()
	return dist, nil
}

// Totals recomputes the project totals from its lines, storing them when
// the stored values had drifted.
func (s *projectService) Totals(ctx context.Context, projectID string) (totals budget.ProjectTotals, err error) {
	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		var tErr error
		totals, tErr = refreshTotals(ctx, r, projectID)
		return tErr
	})
	return totals, err
}
