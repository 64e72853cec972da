package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/schedule"
)

type acquisitionService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewAcquisitionService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) AcquisitionService {
	return &acquisitionService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func prepareAcquisition(a *domain.Acquisition) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Code = strings.TrimSpace(a.Code)
	if a.Sequence == 0 {
		a.Sequence = domain.DefaultSequence
	}
	a.ApplyDefaults()
	a.DependencyIDs = dedupe(a.DependencyIDs)
	return domain.ValidationErrorFromList("invalid acquisition", a.Validate())
}

// checkAcquisitionRefs makes sure rule references name activities and
// dependencies name other acquisitions, all of the same project.
func checkAcquisitionRefs(ctx context.Context, r *repos, a *domain.Acquisition) error {
	acts, err := r.activities.ListByProject(ctx, a.ProjectID)
	if err != nil {
		return err
	}
	activityIDs := make(map[string]bool, len(acts))
	for _, act := range acts {
		activityIDs[act.ID] = true
	}
	acqs, err := r.acquisitions.ListByProject(ctx, a.ProjectID)
	if err != nil {
		return err
	}
	acquisitionIDs := make(map[string]bool, len(acqs))
	for _, q := range acqs {
		if q.ID != a.ID {
			acquisitionIDs[q.ID] = true
		}
	}

	var problems []error
	for i, rule := range []domain.DateRule{a.StartRule, a.EndRule} {
		if rule.IsEntity() && rule.RefID != "" && !activityIDs[rule.RefID] {
			problems = append(problems, fmt.Errorf("%s rule references activity %s, which is not part of this project", ruleField(i), rule.RefID))
		}
	}
	for _, dep := range a.DependencyIDs {
		if !acquisitionIDs[dep] {
			problems = append(problems, fmt.Errorf("dependency %s is not another acquisition of this project", dep))
		}
	}
	return domain.ValidationErrorFromList("invalid acquisition", problems)
}

func (s *acquisitionService) Create(ctx context.Context, a *domain.Acquisition) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": a.ProjectID}
	defer func() { observe(ctx, s.observer, "create-acquisition", startedAt, &err, fields) }()

	if a.ID == "" {
		a.ID = newID()
	}
	a.CreatedAt = startedAt
	a.UpdatedAt = startedAt
	if err = prepareAcquisition(a); err != nil {
		return err
	}
	fields["acquisition_id"] = a.ID

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.projects.GetByID(ctx, a.ProjectID); err != nil {
			return err
		}
		if err := checkAcquisitionRefs(ctx, r, a); err != nil {
			return err
		}
		if err := r.acquisitions.Create(ctx, a); err != nil {
			return err
		}
		if _, err := recomputeDates(ctx, r, a.ProjectID); err != nil {
			return err
		}
		return reloadAcquisition(ctx, r, a)
	})
}

func (s *acquisitionService) GetByID(ctx context.Context, id string) (*domain.Acquisition, error) {
	return reposFor(s.conn).acquisitions.GetByID(ctx, id)
}

func (s *acquisitionService) ListByProject(ctx context.Context, projectID string) ([]*domain.Acquisition, error) {
	acqs, err := reposFor(s.conn).acquisitions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	schedule.SortAcquisitions(acqs)
	return acqs, nil
}

func (s *acquisitionService) Update(ctx context.Context, a *domain.Acquisition) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "update-acquisition", startedAt, &err, map[string]any{"acquisition_id": a.ID}) }()

	if err = prepareAcquisition(a); err != nil {
		return err
	}

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		old, err := r.acquisitions.GetByID(ctx, a.ID)
		if err != nil {
			return err
		}
		a.ProjectID = old.ProjectID
		a.CreatedAt = old.CreatedAt
		a.UpdatedAt = time.Now().UTC()
		a.DateStart, a.DateEnd = old.DateStart, old.DateEnd
		if err := checkAcquisitionRefs(ctx, r, a); err != nil {
			return err
		}
		if err := r.acquisitions.Update(ctx, a); err != nil {
			return err
		}
		if _, err := recomputeDates(ctx, r, a.ProjectID); err != nil {
			return err
		}
		return reloadAcquisition(ctx, r, a)
	})
}

func (s *acquisitionService) SetState(ctx context.Context, id string, state domain.AcquisitionState) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "set-acquisition-state", startedAt, &err, map[string]any{"acquisition_id": id, "state": string(state)})
	}()

	if !domain.ValidAcquisitionStates[string(state)] {
		return domain.NewValidationError("invalid acquisition state %q", state)
	}
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		a, err := r.acquisitions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		a.State = state
		a.UpdatedAt = time.Now().UTC()
		return r.acquisitions.Update(ctx, a)
	})
}

// Delete removes the acquisition. Dependency rows pointing at it go with it.
func (s *acquisitionService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-acquisition", startedAt, &err, map[string]any{"acquisition_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		return r.acquisitions.Delete(ctx, id)
	})
}

func reloadAcquisition(ctx context.Context, r *repos, a *domain.Acquisition) error {
	stored, err := r.acquisitions.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	a.DateStart, a.DateEnd = stored.DateStart, stored.DateEnd
	return nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
