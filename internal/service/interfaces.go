package service

import (
	"context"
	"io"

	"github.com/alexanderramin/fundplan/internal/budget"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/importer"
	"github.com/shopspring/decimal"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) (*GenerateResult, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Find resolves a project by ID or, failing that, by code.
	Find(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Search(ctx context.Context, term string) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	GenerateActivities(ctx context.Context, projectID string) (*GenerateResult, error)
	GenerateAcquisitions(ctx context.Context, projectID string) (*GenerateResult, error)
	// DistributeCofinancing spreads the project's stored co-financing amount,
	// or override when non-nil, over its budget lines.
	DistributeCofinancing(ctx context.Context, projectID string, override *decimal.Decimal) (*budget.Distribution, error)
	Totals(ctx context.Context, projectID string) (budget.ProjectTotals, error)
}

type BudgetService interface {
	Create(ctx context.Context, l *domain.BudgetLine) error
	GetByID(ctx context.Context, id string) (*domain.BudgetLine, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.BudgetLine, error)
	Update(ctx context.Context, l *domain.BudgetLine) error
	Delete(ctx context.Context, id string) error
	ImportLines(ctx context.Context, projectID string, lines []*domain.BudgetLine, overwrite bool) (*ImportResult, error)
	ImportFile(ctx context.Context, projectID, path string, overwrite bool) (*ImportResult, error)
	Export(ctx context.Context, projectID string, w io.Writer, format importer.Format) (int, error)
}

type ActivityService interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	SetState(ctx context.Context, id string, state domain.ActivityState) error
	Delete(ctx context.Context, id string) error
}

type AcquisitionService interface {
	Create(ctx context.Context, a *domain.Acquisition) error
	GetByID(ctx context.Context, id string) (*domain.Acquisition, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Acquisition, error)
	Update(ctx context.Context, a *domain.Acquisition) error
	SetState(ctx context.Context, id string, state domain.AcquisitionState) error
	Delete(ctx context.Context, id string) error
}

type TemplateService interface {
	SeedActivityTemplates(ctx context.Context) (*SeedResult, error)
	SeedAcquisitionTemplates(ctx context.Context) (*SeedResult, error)
	ListActivityTemplates(ctx context.Context) ([]*domain.ActivityTemplate, error)
	ListAcquisitionTemplates(ctx context.Context) ([]*domain.AcquisitionTemplate, error)
	CreateActivityTemplate(ctx context.Context, t *domain.ActivityTemplate) error
	UpdateActivityTemplate(ctx context.Context, t *domain.ActivityTemplate) error
	DeleteActivityTemplate(ctx context.Context, id string) error
	CreateAcquisitionTemplate(ctx context.Context, t *domain.AcquisitionTemplate) error
	UpdateAcquisitionTemplate(ctx context.Context, t *domain.AcquisitionTemplate) error
	DeleteAcquisitionTemplate(ctx context.Context, id string) error
}

type ReimbursementService interface {
	Create(ctx context.Context, r *domain.Reimbursement) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.Reimbursement, error)
	// Advance moves the reimbursement one status forward.
	Advance(ctx context.Context, id string) (*domain.Reimbursement, error)
	Delete(ctx context.Context, id string) error
}

type PurchaseService interface {
	Create(ctx context.Context, p *domain.Purchase) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.Purchase, error)
	Update(ctx context.Context, p *domain.Purchase) error
	Delete(ctx context.Context, id string) error
}

// GenerateResult reports what an expansion created. When Notice is set
// nothing was written.
type GenerateResult struct {
	Created int
	Deleted int
	Notice  *domain.Notice
}

// SeedResult reports what a template seed created.
type SeedResult struct {
	Created int
	Notice  *domain.Notice
}

// ImportResult holds the outcome of a budget import.
type ImportResult struct {
	Created  int
	Replaced int
	Totals   budget.ProjectTotals
}
