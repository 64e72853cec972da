package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
	tmpl "github.com/alexanderramin/fundplan/internal/template"
)

const (
	seedKindActivity    = "activity"
	seedKindAcquisition = "acquisition"
)

type templateService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTemplateService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) TemplateService {
	return &templateService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// SeedActivityTemplates creates the default activity templates unless
// some already exist. The marker write comes first so that concurrent
// seeders queue on the write lock and the later one sees the templates.
func (s *templateService) SeedActivityTemplates(ctx context.Context) (result *SeedResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"kind": seedKindActivity}
	defer func() { observe(ctx, s.observer, "seed-activity-templates", startedAt, &err, fields) }()

	seed, err := tmpl.LoadDefaults()
	if err != nil {
		return nil, err
	}
	set, err := tmpl.Build(seed, newID)
	if err != nil {
		return nil, err
	}

	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.seeds.Mark(ctx, seedKindActivity); err != nil {
			return err
		}
		n, err := r.activityTmpls.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			result = &SeedResult{Notice: &domain.Notice{
				Message: fmt.Sprintf("There are already %d activity templates. Nothing was seeded.", n),
			}}
			return nil
		}
		for _, t := range set.Activities {
			if err := r.activityTmpls.Create(ctx, t); err != nil {
				return fmt.Errorf("seeding activity template %s: %w", t.Code, err)
			}
		}
		result = &SeedResult{Created: len(set.Activities)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["created"] = result.Created
	return result, nil
}

// SeedAcquisitionTemplates creates the default acquisition templates. Their
// rules are linked to the stored activity templates by code; a rule whose
// activity template is missing falls back to its milestone, at the
// milestone's end.
func (s *templateService) SeedAcquisitionTemplates(ctx context.Context) (result *SeedResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"kind": seedKindAcquisition}
	defer func() { observe(ctx, s.observer, "seed-acquisition-templates", startedAt, &err, fields) }()

	seed, err := tmpl.LoadDefaults()
	if err != nil {
		return nil, err
	}
	set, err := tmpl.Build(seed, newID)
	if err != nil {
		return nil, err
	}
	builtCodes := make(map[string]string, len(set.Activities))
	for _, t := range set.Activities {
		builtCodes[t.ID] = t.Code
	}

	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.seeds.Mark(ctx, seedKindAcquisition); err != nil {
			return err
		}
		n, err := r.acquisitionTmpls.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			result = &SeedResult{Notice: &domain.Notice{
				Message: fmt.Sprintf("There are already %d acquisition templates. Nothing was seeded.", n),
			}}
			return nil
		}
		stored, err := r.activityTmpls.List(ctx)
		if err != nil {
			return err
		}
		storedByCode := make(map[string]string, len(stored))
		for _, t := range stored {
			if t.Code != "" {
				storedByCode[strings.ToUpper(t.Code)] = t.ID
			}
		}
		relink := func(rule domain.DateRule) domain.DateRule {
			if !rule.IsEntity() {
				return rule
			}
			if id, ok := storedByCode[strings.ToUpper(builtCodes[rule.RefID])]; ok {
				rule.RefID = id
				return rule
			}
			return domain.MilestoneRule(rule.Milestone, domain.EndpointEnd, rule.OffsetDays)
		}
		for _, t := range set.Acquisitions {
			t.StartRule = relink(t.StartRule)
			t.EndRule = relink(t.EndRule)
			if err := r.acquisitionTmpls.Create(ctx, t); err != nil {
				return fmt.Errorf("seeding acquisition template %s: %w", t.Code, err)
			}
		}
		result = &SeedResult{Created: len(set.Acquisitions)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["created"] = result.Created
	return result, nil
}

func (s *templateService) ListActivityTemplates(ctx context.Context) ([]*domain.ActivityTemplate, error) {
	tmpls, err := reposFor(s.conn).activityTmpls.List(ctx)
	if err != nil {
		return nil, err
	}
	tmpl.SortActivityTemplates(tmpls)
	return tmpls, nil
}

func (s *templateService) ListAcquisitionTemplates(ctx context.Context) ([]*domain.AcquisitionTemplate, error) {
	tmpls, err := reposFor(s.conn).acquisitionTmpls.List(ctx)
	if err != nil {
		return nil, err
	}
	tmpl.SortAcquisitionTemplates(tmpls)
	return tmpls, nil
}

func prepareActivityTemplate(t *domain.ActivityTemplate) {
	t.Name = strings.TrimSpace(t.Name)
	t.Code = strings.TrimSpace(t.Code)
	if t.Sequence == 0 {
		t.Sequence = domain.DefaultSequence
	}
	t.ApplyDefaults()
}

// withActivityTemplate validates the full template set with t added or
// replacing its stored version.
func withActivityTemplate(ctx context.Context, r *repos, t *domain.ActivityTemplate) error {
	all, err := r.activityTmpls.List(ctx)
	if err != nil {
		return err
	}
	set := make([]*domain.ActivityTemplate, 0, len(all)+1)
	for _, o := range all {
		if o.ID != t.ID {
			set = append(set, o)
		}
	}
	set = append(set, t)
	return domain.ValidationErrorFromList("invalid activity template", tmpl.ValidateActivityTemplates(set))
}

func (s *templateService) CreateActivityTemplate(ctx context.Context, t *domain.ActivityTemplate) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "create-activity-template", startedAt, &err, map[string]any{"code": t.Code}) }()

	if t.ID == "" {
		t.ID = newID()
	}
	prepareActivityTemplate(t)
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if err := withActivityTemplate(ctx, r, t); err != nil {
			return err
		}
		return r.activityTmpls.Create(ctx, t)
	})
}

func (s *templateService) UpdateActivityTemplate(ctx context.Context, t *domain.ActivityTemplate) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "update-activity-template", startedAt, &err, map[string]any{"template_id": t.ID}) }()

	prepareActivityTemplate(t)
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.activityTmpls.GetByID(ctx, t.ID); err != nil {
			return err
		}
		if err := withActivityTemplate(ctx, r, t); err != nil {
			return err
		}
		return r.activityTmpls.Update(ctx, t)
	})
}

// DeleteActivityTemplate refuses while another activity or acquisition
// template reads its dates.
func (s *templateService) DeleteActivityTemplate(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-activity-template", startedAt, &err, map[string]any{"template_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		t, err := r.activityTmpls.GetByID(ctx, id)
		if err != nil {
			return err
		}
		var dependents []string
		acts, err := r.activityTmpls.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range acts {
			if o.ID != id && readsFrom(id, o.StartRule, o.EndRule) {
				dependents = append(dependents, "activity template "+domain.CoalesceStr(o.Code, o.Name))
			}
		}
		acqs, err := r.acquisitionTmpls.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range acqs {
			if readsFrom(id, o.StartRule, o.EndRule) {
				dependents = append(dependents, "acquisition template "+domain.CoalesceStr(o.Code, o.Name))
			}
		}
		if len(dependents) > 0 {
			return &domain.ValidationError{
				Message:  fmt.Sprintf("activity template %q is referenced by other templates", t.Name),
				Problems: dependents,
			}
		}
		return r.activityTmpls.Delete(ctx, id)
	})
}

func readsFrom(id string, rules ...domain.DateRule) bool {
	for _, r := range rules {
		if r.IsEntity() && r.RefID == id {
			return true
		}
	}
	return false
}

func prepareAcquisitionTemplate(t *domain.AcquisitionTemplate) {
	t.Name = strings.TrimSpace(t.Name)
	t.Code = strings.TrimSpace(t.Code)
	if t.Sequence == 0 {
		t.Sequence = domain.DefaultSequence
	}
	t.ApplyDefaults()
	t.DependencyIDs = dedupe(t.DependencyIDs)
}

func withAcquisitionTemplate(ctx context.Context, r *repos, t *domain.AcquisitionTemplate) error {
	all, err := r.acquisitionTmpls.List(ctx)
	if err != nil {
		return err
	}
	acts, err := r.activityTmpls.List(ctx)
	if err != nil {
		return err
	}
	set := make([]*domain.AcquisitionTemplate, 0, len(all)+1)
	for _, o := range all {
		if o.ID != t.ID {
			set = append(set, o)
		}
	}
	set = append(set, t)
	return domain.ValidationErrorFromList("invalid acquisition template", tmpl.ValidateAcquisitionTemplates(set, acts))
}

func (s *templateService) CreateAcquisitionTemplate(ctx context.Context, t *domain.AcquisitionTemplate) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "create-acquisition-template", startedAt, &err, map[string]any{"code": t.Code}) }()

	if t.ID == "" {
		t.ID = newID()
	}
	prepareAcquisitionTemplate(t)
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if err := withAcquisitionTemplate(ctx, r, t); err != nil {
			return err
		}
		return r.acquisitionTmpls.Create(ctx, t)
	})
}

func (s *templateService) UpdateAcquisitionTemplate(ctx context.Context, t *domain.AcquisitionTemplate) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "update-acquisition-template", startedAt, &err, map[string]any{"template_id": t.ID}) }()

	prepareAcquisitionTemplate(t)
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.acquisitionTmpls.GetByID(ctx, t.ID); err != nil {
			return err
		}
		if err := withAcquisitionTemplate(ctx, r, t); err != nil {
			return err
		}
		return r.acquisitionTmpls.Update(ctx, t)
	})
}

func (s *templateService) DeleteAcquisitionTemplate(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-acquisition-template", startedAt, &err, map[string]any{"template_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		return r.acquisitionTmpls.Delete(ctx, id)
	})
}
