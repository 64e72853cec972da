package repository

import (
	"context"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/shopspring/decimal"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	UpdateTotals(ctx context.Context, id string, eligible, nonEligible, general decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

type BudgetLineRepo interface {
	Create(ctx context.Context, l *domain.BudgetLine) error
	GetByID(ctx context.Context, id string) (*domain.BudgetLine, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.BudgetLine, error)
	ExistsSequence(ctx context.Context, projectID, sequence, excludeID string) (bool, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
	Update(ctx context.Context, l *domain.BudgetLine) error
	UpdateCofinancing(ctx context.Context, id string, cofinanced, reimbursable decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) (int, error)
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
	Update(ctx context.Context, a *domain.Activity) error
	UpdateDates(ctx context.Context, id string, span domain.Span) error
	Delete(ctx context.Context, id string) error
}

type AcquisitionRepo interface {
	Create(ctx context.Context, a *domain.Acquisition) error
	GetByID(ctx context.Context, id string) (*domain.Acquisition, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Acquisition, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
	CountReferencing(ctx context.Context, activityID string) (int, error)
	Update(ctx context.Context, a *domain.Acquisition) error
	UpdateDates(ctx context.Context, id string, span domain.Span) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) (int, error)
}

type ActivityTemplateRepo interface {
	Create(ctx context.Context, t *domain.ActivityTemplate) error
	GetByID(ctx context.Context, id string) (*domain.ActivityTemplate, error)
	List(ctx context.Context) ([]*domain.ActivityTemplate, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, t *domain.ActivityTemplate) error
	Delete(ctx context.Context, id string) error
}

type AcquisitionTemplateRepo interface {
	Create(ctx context.Context, t *domain.AcquisitionTemplate) error
	GetByID(ctx context.Context, id string) (*domain.AcquisitionTemplate, error)
	List(ctx context.Context) ([]*domain.AcquisitionTemplate, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, t *domain.AcquisitionTemplate) error
	Delete(ctx context.Context, id string) error
}

// SeedMarkerRepo records which template kinds have been seeded. Mark
// reports false when the marker already existed.
type SeedMarkerRepo interface {
	Mark(ctx context.Context, kind string) (bool, error)
}

type ReimbursementRepo interface {
	Create(ctx context.Context, r *domain.Reimbursement) error
	GetByID(ctx context.Context, id string) (*domain.Reimbursement, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Reimbursement, error)
	Update(ctx context.Context, r *domain.Reimbursement) error
	Delete(ctx context.Context, id string) error
}

type PurchaseRepo interface {
	Create(ctx context.Context, p *domain.Purchase) error
	GetByID(ctx context.Context, id string) (*domain.Purchase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Purchase, error)
	Update(ctx context.Context, p *domain.Purchase) error
	Delete(ctx context.Context, id string) error
}
