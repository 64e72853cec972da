package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/domain"
)

type reimbursementService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewReimbursementService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) ReimbursementService {
	return &reimbursementService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *reimbursementService) Create(ctx context.Context, rb *domain.Reimbursement) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "create-reimbursement", startedAt, &err, map[string]any{"project_id": rb.ProjectID}) }()

	if rb.ID == "" {
		rb.ID = newID()
	}
	if rb.Status == "" {
		rb.Status = domain.ReimbursementFlow[0]
	}
	rb.CreatedAt = startedAt
	rb.UpdatedAt = startedAt
	if err = domain.ValidationErrorFromList("invalid reimbursement", rb.Validate()); err != nil {
		return err
	}
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.projects.GetByID(ctx, rb.ProjectID); err != nil {
			return err
		}
		return r.reimbursements.Create(ctx, rb)
	})
}

func (s *reimbursementService) ListByProject(ctx context.Context, projectID string) ([]*domain.Reimbursement, error) {
	return reposFor(s.conn).reimbursements.ListByProject(ctx, projectID)
}

func (s *reimbursementService) Advance(ctx context.Context, id string) (rb *domain.Reimbursement, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"reimbursement_id": id}
	defer func() { observe(ctx, s.observer, "advance-reimbursement", startedAt, &err, fields) }()

	err = withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		var gErr error
		if rb, gErr = r.reimbursements.GetByID(ctx, id); gErr != nil {
			return gErr
		}
		next, ok := rb.NextStatus()
		if !ok {
			return domain.NewValidationError("reimbursement is already %s", rb.Status)
		}
		rb.Status = next
		rb.UpdatedAt = time.Now().UTC()
		return r.reimbursements.Update(ctx, rb)
	})
	if err != nil {
		return nil, err
	}
	fields["status"] = string(rb.Status)
	return rb, nil
}

func (s *reimbursementService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-reimbursement", startedAt, &err, map[string]any{"reimbursement_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		return r.reimbursements.Delete(ctx, id)
	})
}

type purchaseService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPurchaseService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) PurchaseService {
	return &purchaseService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *purchaseService) Create(ctx context.Context, p *domain.Purchase) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "create-purchase", startedAt, &err, map[string]any{"project_id": p.ProjectID}) }()

	if p.ID == "" {
		p.ID = newID()
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Supplier = strings.TrimSpace(p.Supplier)
	p.CreatedAt = startedAt
	p.UpdatedAt = startedAt
	if err = domain.ValidationErrorFromList("invalid purchase", p.Validate()); err != nil {
		return err
	}
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		if _, err := r.projects.GetByID(ctx, p.ProjectID); err != nil {
			return err
		}
		return r.purchases.Create(ctx, p)
	})
}

func (s *purchaseService) ListByProject(ctx context.Context, projectID string) ([]*domain.Purchase, error) {
	return reposFor(s.conn).purchases.ListByProject(ctx, projectID)
}

func (s *purchaseService) Update(ctx context.Context, p *domain.Purchase) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "update-purchase", startedAt, &err, map[string]any{"purchase_id": p.ID}) }()

	p.Name = strings.TrimSpace(p.Name)
	p.Supplier = strings.TrimSpace(p.Supplier)
	if err = domain.ValidationErrorFromList("invalid purchase", p.Validate()); err != nil {
		return err
	}
	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		old, err := r.purchases.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		p.ProjectID = old.ProjectID
		p.CreatedAt = old.CreatedAt
		p.UpdatedAt = time.Now().UTC()
		return r.purchases.Update(ctx, p)
	})
}

func (s *purchaseService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { observe(ctx, s.observer, "delete-purchase", startedAt, &err, map[string]any{"purchase_id": id}) }()

	return withRepos(ctx, s.uow, func(ctx context.Context, r *repos) error {
		return r.purchases.Delete(ctx, id)
	})
}
