package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/fundplan/internal/budget"
	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/importer"
)

type budgetService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewBudgetService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) BudgetService {
	return &budgetService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// prepareLine normalises codes, derives totals and validates l.
func prepareLine(l *domain.BudgetLine) error {
	l.Normalize()
	budget.ApplyLineTotals(l)
	return domain.ValidationErrorFromList("invalid budget line", l.Validate())
}

// checkSequenceFree rejects a sequence number already used by another line
// of the project.
func checkSequenceFree(ctx context.Context, r *repos, l *domain.BudgetLine) error {
	if l.SequenceNumber == "" {
		return nil
	}
	taken, err := r.lines.ExistsSequence(ctx, l.ProjectID, l.SequenceNumber, l.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.NewValidationError("budget line %s already exists in this project", l.SequenceNumber)
	}
	return nil
}

func (s *budgetService) Create(ctx context.Context, l *domain.BudgetLine) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": l.ProjectID}
	defer func() { observe(ctx, s.observer, "create-budget-line", startedAt, &err, fields) }()

	if l.ID == "" {
		l.ID = newID()
	}
	l.CreatedAt = startedAt
	l.UpdatedAt = startedAt
	if err = prepareLine(l); err != nil {
		return err
	}
	fields["sequence"] = l.SequenceNumber

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.projects.GetByID(ctx, l.ProjectID); err != nil {
			return err
		}
		if err := checkSequenceFree(ctx, r, l); err != nil {
			return err
		}
		if err := r.lines.Create(ctx, l); err != nil {
			return err
		}
		_, err := refreshTotals(ctx, r, l.ProjectID)
		return err
	})
}

func (s *budgetService) GetByID(ctx context.Context, id string) (*domain.BudgetLine, error) {
	return reposFor(s.conn).lines.GetByID(ctx, id)
}

func (s *budgetService) ListByProject(ctx context.Context, projectID string) ([]*domain.BudgetLine, error) {
	return reposFor(s.conn).lines.ListByProject(ctx, projectID)
}

func (s *budgetService) Update(ctx context.Context, l *domain.BudgetLine) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"line_id": l.ID}
	defer func() { observe(ctx, s.observer, "update-budget-line", startedAt, &err, fields) }()

	if err = prepareLine(l); err != nil {
		return err
	}

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		old, err := r.lines.GetByID(ctx, l.ID)
		if err != nil {
			return err
		}
		l.ProjectID = old.ProjectID
		l.CreatedAt = old.CreatedAt
		l.UpdatedAt = time.Now().UTC()
		if err := checkSequenceFree(ctx, r, l); err != nil {
			return err
		}
		if err := r.lines.Update(ctx, l); err != nil {
			return err
		}
		_, err = refreshTotals(ctx, r, l.ProjectID)
		return err
	})
}

func (s *budgetService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-budget-line", startedAt, &err, map[string]any{"line_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		l, err := r.lines.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := r.lines.Delete(ctx, id); err != nil {
			return err
		}
		_, err = refreshTotals(ctx, r, l.ProjectID)
		return err
	})
}

// ImportLines stores parsed lines for the project. Existing lines block the
// import unless overwrite is set, in which case they are replaced in the
// same transaction.
func (s *budgetService) ImportLines(ctx context.Context, projectID string, lines []*domain.BudgetLine, overwrite bool) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID, "rows": len(lines), "overwrite": overwrite}
	defer func() { observe(ctx, s.observer, "import-budget", startedAt, &err, fields) }()

	var problems []error
	for i, l := range lines {
		l.ID = newID()
		l.ProjectID = projectID
		l.CreatedAt = startedAt
		l.UpdatedAt = startedAt
		if pErr := prepareLine(l); pErr != nil {
			problems = append(problems, fmt.Errorf("line %d: %w", i+1, pErr))
		}
	}
	problems = append(problems, importer.CheckDuplicates(lines)...)
	if err = domain.ValidationErrorFromList("invalid budget import", problems); err != nil {
		return nil, err
	}

	result = &ImportResult{}
	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		existing, err := r.lines.CountByProject(ctx, projectID)
		if err != nil {
			return err
		}
		if existing > 0 {
			if !overwrite {
				return domain.NewValidationError(
					"project %s already has %d budget lines; confirm overwrite to replace them",
					p.DisplayName(), existing)
			}
			if result.Replaced, err = r.lines.DeleteByProject(ctx, projectID); err != nil {
				return err
			}
		}
		for _, l := range lines {
			if err := r.lines.Create(ctx, l); err != nil {
				return fmt.Errorf("importing line %s: %w", l.Label(), err)
			}
		}
		result.Created = len(lines)
		result.Totals, err = refreshTotals(ctx, r, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["replaced"] = result.Replaced
	return result, nil
}

func (s *budgetService) ImportFile(ctx context.Context, projectID, path string, overwrite bool) (*ImportResult, error) {
	lines, err := importer.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportLines(ctx, projectID, lines, overwrite)
}

// Export writes the project's lines ordered by chapter and subchapter and
// returns how many were written.
func (s *budgetService) Export(ctx context.Context, projectID string, w io.Writer, format importer.Format) (n int, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "export-budget", startedAt, &err, map[string]any{"project_id": projectID, "format": string(format)})
	}()

	r := reposFor(s.conn)
	if _, err = r.projects.GetByID(ctx, projectID); err != nil {
		return 0, err
	}
	lines, err := r.lines.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if err = importer.Write(w, format, lines); err != nil {
		return 0, err
	}
	return len(lines), nil
}
