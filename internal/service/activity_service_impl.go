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

type activityService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewActivityService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) ActivityService {
	return &activityService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func prepareActivity(a *domain.Activity) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Code = strings.TrimSpace(a.Code)
	if a.Sequence == 0 {
		a.Sequence = domain.DefaultSequence
	}
	a.ApplyDefaults()
	return domain.ValidationErrorFromList("invalid activity", a.Validate())
}

// checkActivityGraph validates a against its siblings: references must
// name activities of the same project, codes must be unique, and the
// resulting rules must not form a cycle.
func checkActivityGraph(ctx context.Context, r *repos, a *domain.Activity) error {
	siblings, err := r.activities.ListByProject(ctx, a.ProjectID)
	if err != nil {
		return err
	}

	known := map[string]bool{a.ID: true}
	set := make([]*domain.Activity, 0, len(siblings)+1)
	var problems []error
	for _, s := range siblings {
		if s.ID == a.ID {
			continue
		}
		known[s.ID] = true
		set = append(set, s)
		if a.Code != "" && strings.EqualFold(s.Code, a.Code) {
			problems = append(problems, fmt.Errorf("code %q is already used by activity %q", a.Code, s.Name))
		}
	}
	for i, rule := range []domain.DateRule{a.StartRule, a.EndRule} {
		if rule.IsEntity() && rule.RefID != "" && !known[rule.RefID] {
			problems = append(problems, fmt.Errorf("%s rule references activity %s, which is not part of this project", ruleField(i), rule.RefID))
		}
	}
	if err := domain.ValidationErrorFromList("invalid activity", problems); err != nil {
		return err
	}

	set = append(set, a)
	_, err = schedule.Order(schedule.ActivityItems(set))
	return cycleAsValidation(err)
}

func (s *activityService) Create(ctx context.Context, a *domain.Activity) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": a.ProjectID}
	defer func() { observe(ctx, s.observer, "create-activity", startedAt, &err, fields) }()

	if a.ID == "" {
		a.ID = newID()
	}
	a.CreatedAt = startedAt
	a.UpdatedAt = startedAt
	if err = prepareActivity(a); err != nil {
		return err
	}
	fields["activity_id"] = a.ID

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.projects.GetByID(ctx, a.ProjectID); err != nil {
			return err
		}
		if err := checkActivityGraph(ctx, r, a); err != nil {
			return err
		}
		if err := r.activities.Create(ctx, a); err != nil {
			return err
		}
		if _, err := recomputeDates(ctx, r, a.ProjectID); err != nil {
			return err
		}
		return reloadActivity(ctx, r, a)
	})
}

func (s *activityService) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	return reposFor(s.conn).activities.GetByID(ctx, id)
}

func (s *activityService) ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error) {
	acts, err := reposFor(s.conn).activities.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	schedule.SortActivities(acts)
	return acts, nil
}

// Update stores a and recomputes every date of its project, since other
// activities and acquisitions may read its endpoints.
func (s *activityService) Update(ctx context.Context, a *domain.Activity) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"activity_id": a.ID}
	defer func() { observe(ctx, s.observer, "update-activity", startedAt, &err, fields) }()

	if err = prepareActivity(a); err != nil {
		return err
	}

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		old, err := r.activities.GetByID(ctx, a.ID)
		if err != nil {
			return err
		}
		a.ProjectID = old.ProjectID
		a.CreatedAt = old.CreatedAt
		a.UpdatedAt = time.Now().UTC()
		a.DateStart, a.DateEnd = old.DateStart, old.DateEnd
		if err := checkActivityGraph(ctx, r, a); err != nil {
			return err
		}
		if err := r.activities.Update(ctx, a); err != nil {
			return err
		}
		changed, err := recomputeDates(ctx, r, a.ProjectID)
		if err != nil {
			return err
		}
		fields["dates_changed"] = changed
		return reloadActivity(ctx, r, a)
	})
}

func (s *activityService) SetState(ctx context.Context, id string, state domain.ActivityState) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "set-activity-state", startedAt, &err, map[string]any{"activity_id": id, "state": string(state)})
	}()

	if !domain.ValidActivityStates[string(state)] {
		return domain.NewValidationError("invalid activity state %q", state)
	}
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		a, err := r.activities.GetByID(ctx, id)
		if err != nil {
			return err
		}
		a.State = state
		a.UpdatedAt = time.Now().UTC()
		return r.activities.Update(ctx, a)
	})
}

// Delete removes an activity that no other activity or acquisition reads
// its dates from.
func (s *activityService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-activity", startedAt, &err, map[string]any{"activity_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		a, err := r.activities.GetByID(ctx, id)
		if err != nil {
			return err
		}
		siblings, err := r.activities.ListByProject(ctx, a.ProjectID)
		if err != nil {
			return err
		}
		var dependents []string
		for _, sib := range siblings {
			if sib.ID != id && sib.ReferencesID(id) {
				dependents = append(dependents, domain.CoalesceStr(sib.Code, sib.Name))
			}
		}
		acqs, err := r.acquisitions.CountReferencing(ctx, id)
		if err != nil {
			return err
		}
		if len(dependents) > 0 || acqs > 0 {
			ve := domain.NewValidationError("activity %q is referenced by other date rules", a.Name)
			for _, d := range dependents {
				ve.Problems = append(ve.Problems, "activity "+d)
			}
			if acqs > 0 {
				ve.Problems = append(ve.Problems, fmt.Sprintf("%d acquisitions", acqs))
			}
			return ve
		}
		return r.activities.Delete(ctx, id)
	})
}

func reloadActivity(ctx context.Context, r *repos, a *domain.Activity) error {
	stored, err := r.activities.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	a.DateStart, a.DateEnd = stored.DateStart, stored.DateEnd
	return nil
}

func ruleField(i int) string {
	if i == 0 {
		return "start"
	}
	return "end"
}
