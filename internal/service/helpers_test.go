package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testServices struct {
	projects       ProjectService
	budget         BudgetService
	activities     ActivityService
	acquisitions   AcquisitionService
	templates      TemplateService
	reimbursements ReimbursementService
	purchases      PurchaseService
}

func setupServices(t *testing.T, observers ...UseCaseObserver) *testServices {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	return &testServices{
		projects:       NewProjectService(database, uow, observers...),
		budget:         NewBudgetService(database, uow, observers...),
		activities:     NewActivityService(database, uow, observers...),
		acquisitions:   NewAcquisitionService(database, uow, observers...),
		templates:      NewTemplateService(database, uow, observers...),
		reimbursements: NewReimbursementService(database, uow, observers...),
		purchases:      NewPurchaseService(database, uow, observers...),
	}
}

func createProject(t *testing.T, svc *testServices, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject("Modernizare școală", opts...)
	_, err := svc.projects.Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func activitiesByCode(t *testing.T, svc *testServices, projectID string) map[string]*domain.Activity {
	t.Helper()
	acts, err := svc.activities.ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	out := make(map[string]*domain.Activity, len(acts))
	for _, a := range acts {
		out[a.Code] = a
	}
	return out
}

func fmtDate(t *time.Time) string {
	return domain.FormatOptionalDate(t)
}
