package api

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Request bodies use pointer fields: a field left out of a PATCH keeps its
// stored value. Amounts accept JSON numbers or strings.

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// setDate parses v into dst. An empty string clears the date.
func setDate(dst **time.Time, field string, v *string) error {
	if v == nil {
		return nil
	}
	t, err := domain.ParseOptionalDate(strings.TrimSpace(*v))
	if err != nil {
		return domain.NewValidationError("invalid %s %q (expected YYYY-MM-DD)", field, *v)
	}
	*dst = t
	return nil
}

func setRule(dst *domain.DateRule, v *ruleView) {
	if v != nil {
		*dst = v.rule()
	}
}

// bindOptionalJSON binds the body into obj and accepts an empty body.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type projectInput struct {
	Code               *string          `json:"code"`
	Name               *string          `json:"name"`
	Beneficiary        *string          `json:"beneficiary"`
	TaxID              *string          `json:"tax_id"`
	SubmissionDate     *string          `json:"submission_date"`
	SigningDate        *string          `json:"signing_date"`
	CompletionDate     *string          `json:"completion_date"`
	Status             *string          `json:"status"`
	Cofinancing        *decimal.Decimal `json:"cofinancing"`
	FinancialProgress  *float64         `json:"financial_progress"`
	PhysicalProgress   *float64         `json:"physical_progress"`
	MonitoringEndDate  *string          `json:"monitoring_end_date"`
	EURRate            *decimal.Decimal `json:"eur_rate"`
	VATEligible        *string          `json:"vat_eligible"`
	BudgetNotes        *string          `json:"budget_notes"`
	AcquisitionNotes   *string          `json:"acquisition_notes"`
	ActivityNotes      *string          `json:"activity_notes"`
	ReimbursementNotes *string          `json:"reimbursement_notes"`
}

func (in *projectInput) apply(p *domain.Project) error {
	setString(&p.Code, in.Code)
	setString(&p.Name, in.Name)
	setString(&p.Beneficiary, in.Beneficiary)
	setString(&p.TaxID, in.TaxID)
	setString(&p.BudgetNotes, in.BudgetNotes)
	setString(&p.AcquisitionNotes, in.AcquisitionNotes)
	setString(&p.ActivityNotes, in.ActivityNotes)
	setString(&p.ReimbursementNotes, in.ReimbursementNotes)
	setDecimal(&p.Cofinancing, in.Cofinancing)
	setDecimal(&p.EURRate, in.EURRate)
	if in.Status != nil {
		p.Status = domain.ProjectStatus(strings.TrimSpace(*in.Status))
	}
	if in.VATEligible != nil {
		p.VATEligible = domain.VATEligibility(strings.TrimSpace(*in.VATEligible))
	}
	if in.FinancialProgress != nil {
		p.FinancialProgress = *in.FinancialProgress
	}
	if in.PhysicalProgress != nil {
		p.PhysicalProgress = *in.PhysicalProgress
	}

	dates := []struct {
		dst   **time.Time
		field string
		val   *string
	}{
		{&p.SubmissionDate, "submission_date", in.SubmissionDate},
		{&p.SigningDate, "signing_date", in.SigningDate},
		{&p.CompletionDate, "completion_date", in.CompletionDate},
		{&p.MonitoringEndDate, "monitoring_end_date", in.MonitoringEndDate},
	}
	for _, d := range dates {
		if err := setDate(d.dst, d.field, d.val); err != nil {
			return err
		}
	}
	return nil
}

type lineInput struct {
	Chapter         *string          `json:"chapter"`
	Subchapter      *string          `json:"subchapter"`
	Name            *string          `json:"name"`
	EligibleBase    *decimal.Decimal `json:"eligible_base"`
	EligibleVAT     *decimal.Decimal `json:"eligible_vat"`
	NonEligibleBase *decimal.Decimal `json:"non_eligible_base"`
	NonEligibleVAT  *decimal.Decimal `json:"non_eligible_vat"`
	ExpenseType     *string          `json:"expense_type"`
	CostCategory    *string          `json:"cost_category"`
}

func (in *lineInput) apply(l *domain.BudgetLine) {
	setString(&l.Chapter, in.Chapter)
	setString(&l.Subchapter, in.Subchapter)
	setString(&l.Name, in.Name)
	setDecimal(&l.EligibleBase, in.EligibleBase)
	setDecimal(&l.EligibleVAT, in.EligibleVAT)
	setDecimal(&l.NonEligibleBase, in.NonEligibleBase)
	setDecimal(&l.NonEligibleVAT, in.NonEligibleVAT)
	if in.ExpenseType != nil {
		l.ExpenseType = domain.ExpenseType(strings.TrimSpace(*in.ExpenseType))
	}
	if in.CostCategory != nil {
		l.CostCategory = domain.CostCategory(strings.TrimSpace(*in.CostCategory))
	}
}

type activityInput struct {
	Name      *string   `json:"name"`
	Code      *string   `json:"code"`
	Sequence  *int      `json:"sequence"`
	Phase     *string   `json:"phase"`
	State     *string   `json:"state"`
	StartRule *ruleView `json:"start_rule"`
	EndRule   *ruleView `json:"end_rule"`
}

func (in *activityInput) apply(a *domain.Activity) {
	setString(&a.Name, in.Name)
	setString(&a.Code, in.Code)
	setInt(&a.Sequence, in.Sequence)
	if in.Phase != nil {
		a.Phase = domain.ActivityPhase(strings.TrimSpace(*in.Phase))
	}
	if in.State != nil {
		a.State = domain.ActivityState(strings.TrimSpace(*in.State))
	}
	setRule(&a.StartRule, in.StartRule)
	setRule(&a.EndRule, in.EndRule)
}

func (in *activityInput) applyTemplate(t *domain.ActivityTemplate) {
	setString(&t.Name, in.Name)
	setString(&t.Code, in.Code)
	setInt(&t.Sequence, in.Sequence)
	if in.Phase != nil {
		t.Phase = domain.ActivityPhase(strings.TrimSpace(*in.Phase))
	}
	setRule(&t.StartRule, in.StartRule)
	setRule(&t.EndRule, in.EndRule)
}

type acquisitionInput struct {
	Name          *string   `json:"name"`
	Code          *string   `json:"code"`
	Sequence      *int      `json:"sequence"`
	Phase         *string   `json:"phase"`
	State         *string   `json:"state"`
	Description   *string   `json:"description"`
	StartRule     *ruleView `json:"start_rule"`
	EndRule       *ruleView `json:"end_rule"`
	DependencyIDs *[]string `json:"dependency_ids"`
}

func (in *acquisitionInput) apply(a *domain.Acquisition) {
	setString(&a.Name, in.Name)
	setString(&a.Code, in.Code)
	setInt(&a.Sequence, in.Sequence)
	setString(&a.Description, in.Description)
	if in.Phase != nil {
		a.Phase = domain.AcquisitionPhase(strings.TrimSpace(*in.Phase))
	}
	if in.State != nil {
		a.State = domain.AcquisitionState(strings.TrimSpace(*in.State))
	}
	setRule(&a.StartRule, in.StartRule)
	setRule(&a.EndRule, in.EndRule)
	if in.DependencyIDs != nil {
		a.DependencyIDs = *in.DependencyIDs
	}
}

func (in *acquisitionInput) applyTemplate(t *domain.AcquisitionTemplate) {
	setString(&t.Name, in.Name)
	setString(&t.Code, in.Code)
	setInt(&t.Sequence, in.Sequence)
	setString(&t.Description, in.Description)
	if in.Phase != nil {
		t.Phase = domain.AcquisitionPhase(strings.TrimSpace(*in.Phase))
	}
	setRule(&t.StartRule, in.StartRule)
	setRule(&t.EndRule, in.EndRule)
	if in.DependencyIDs != nil {
		t.DependencyIDs = *in.DependencyIDs
	}
}

type stateInput struct {
	State string `json:"state"`
}

type aportInput struct {
	Amount *decimal.Decimal `json:"amount"`
}

type reimbursementInput struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type purchaseInput struct {
	Name     *string          `json:"name"`
	Supplier *string          `json:"supplier"`
	Value    *decimal.Decimal `json:"value"`
	Date     *string          `json:"date"`
}

func (in *purchaseInput) apply(p *domain.Purchase) error {
	setString(&p.Name, in.Name)
	setString(&p.Supplier, in.Supplier)
	setDecimal(&p.Value, in.Value)
	return setDate(&p.Date, "date", in.Date)
}
