package api

import (
	"github.com/alexanderramin/fundplan/internal/budget"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/shopspring/decimal"
)

// Response bodies. Dates are YYYY-MM-DD, money is a string with two
// decimals.

func money(d decimal.Decimal) string { return d.StringFixed(2) }

type ruleView struct {
	Source     string `json:"source"`
	Milestone  string `json:"milestone,omitempty"`
	RefID      string `json:"ref_id,omitempty"`
	Endpoint   string `json:"endpoint"`
	OffsetDays int    `json:"offset_days"`
}

func newRuleView(r domain.DateRule) ruleView {
	return ruleView{
		Source:     string(r.Source),
		Milestone:  string(r.Milestone),
		RefID:      r.RefID,
		Endpoint:   string(r.Endpoint),
		OffsetDays: r.OffsetDays,
	}
}

func (v ruleView) rule() domain.DateRule {
	return domain.DateRule{
		Source:     domain.RuleSource(v.Source),
		Milestone:  domain.Milestone(v.Milestone),
		RefID:      v.RefID,
		Endpoint:   domain.Endpoint(v.Endpoint),
		OffsetDays: v.OffsetDays,
	}
}

type projectView struct {
	ID                 string  `json:"id"`
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Beneficiary        string  `json:"beneficiary,omitempty"`
	TaxID              string  `json:"tax_id,omitempty"`
	SubmissionDate     string  `json:"submission_date,omitempty"`
	SigningDate        string  `json:"signing_date,omitempty"`
	CompletionDate     string  `json:"completion_date,omitempty"`
	Status             string  `json:"status"`
	Cofinancing        string  `json:"cofinancing"`
	FinancialProgress  float64 `json:"financial_progress"`
	PhysicalProgress   float64 `json:"physical_progress"`
	MonitoringEndDate  string  `json:"monitoring_end_date,omitempty"`
	EURRate            string  `json:"eur_rate"`
	VATEligible        string  `json:"vat_eligible,omitempty"`
	BudgetNotes        string  `json:"budget_notes,omitempty"`
	AcquisitionNotes   string  `json:"acquisition_notes,omitempty"`
	ActivityNotes      string  `json:"activity_notes,omitempty"`
	ReimbursementNotes string  `json:"reimbursement_notes,omitempty"`
	TotalEligible      string  `json:"total_eligible"`
	TotalNonEligible   string  `json:"total_non_eligible"`
	TotalGeneral       string  `json:"total_general"`
}

func newProjectView(p *domain.Project) projectView {
	return projectView{
		ID:                 p.ID,
		Code:               p.Code,
		Name:               p.Name,
		Beneficiary:        p.Beneficiary,
		TaxID:              p.TaxID,
		SubmissionDate:     domain.FormatOptionalDate(p.SubmissionDate),
		SigningDate:        domain.FormatOptionalDate(p.SigningDate),
		CompletionDate:     domain.FormatOptionalDate(p.CompletionDate),
		Status:             string(p.Status),
		Cofinancing:        money(p.Cofinancing),
		FinancialProgress:  p.FinancialProgress,
		PhysicalProgress:   p.PhysicalProgress,
		MonitoringEndDate:  domain.FormatOptionalDate(p.MonitoringEndDate),
		EURRate:            p.EURRate.String(),
		VATEligible:        string(p.VATEligible),
		BudgetNotes:        p.BudgetNotes,
		AcquisitionNotes:   p.AcquisitionNotes,
		ActivityNotes:      p.ActivityNotes,
		ReimbursementNotes: p.ReimbursementNotes,
		TotalEligible:      money(p.TotalEligible),
		TotalNonEligible:   money(p.TotalNonEligible),
		TotalGeneral:       money(p.TotalGeneral),
	}
}

func newProjectViews(ps []*domain.Project) []projectView {
	out := make([]projectView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProjectView(p))
	}
	return out
}

type lineView struct {
	ID                   string `json:"id"`
	Chapter              string `json:"chapter"`
	Subchapter           string `json:"subchapter"`
	SequenceNumber       string `json:"sequence_number"`
	Name                 string `json:"name"`
	EligibleBase         string `json:"eligible_base"`
	EligibleVAT          string `json:"eligible_vat"`
	NonEligibleBase      string `json:"non_eligible_base"`
	NonEligibleVAT       string `json:"non_eligible_vat"`
	TotalEligible        string `json:"total_eligible"`
	TotalNonEligible     string `json:"total_non_eligible"`
	TotalBase            string `json:"total_base"`
	TotalVAT             string `json:"total_vat"`
	Total                string `json:"total"`
	ReimbursableEligible string `json:"reimbursable_eligible"`
	CofinancedEligible   string `json:"cofinanced_eligible"`
	ExpenseType          string `json:"expense_type,omitempty"`
	CostCategory         string `json:"cost_category,omitempty"`
}

func newLineView(l *domain.BudgetLine) lineView {
	return lineView{
		ID:                   l.ID,
		Chapter:              l.Chapter,
		Subchapter:           l.Subchapter,
		SequenceNumber:       l.SequenceNumber,
		Name:                 l.Name,
		EligibleBase:         money(l.EligibleBase),
		EligibleVAT:          money(l.EligibleVAT),
		NonEligibleBase:      money(l.NonEligibleBase),
		NonEligibleVAT:       money(l.NonEligibleVAT),
		TotalEligible:        money(l.TotalEligible),
		TotalNonEligible:     money(l.TotalNonEligible),
		TotalBase:            money(l.TotalBase),
		TotalVAT:             money(l.TotalVAT),
		Total:                money(l.Total),
		ReimbursableEligible: money(l.ReimbursableEligible),
		CofinancedEligible:   money(l.CofinancedEligible),
		ExpenseType:          string(l.ExpenseType),
		CostCategory:         string(l.CostCategory),
	}
}

func newLineViews(ls []*domain.BudgetLine) []lineView {
	out := make([]lineView, 0, len(ls))
	for _, l := range ls {
		out = append(out, newLineView(l))
	}
	return out
}

type activityView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Code      string   `json:"code"`
	Sequence  int      `json:"sequence"`
	Phase     string   `json:"phase"`
	State     string   `json:"state"`
	StartRule ruleView `json:"start_rule"`
	EndRule   ruleView `json:"end_rule"`
	DateStart string   `json:"date_start,omitempty"`
	DateEnd   string   `json:"date_end,omitempty"`
}

func newActivityView(a *domain.Activity) activityView {
	return activityView{
		ID:        a.ID,
		Name:      a.Name,
		Code:      a.Code,
		Sequence:  a.Sequence,
		Phase:     string(a.Phase),
		State:     string(a.State),
		StartRule: newRuleView(a.StartRule),
		EndRule:   newRuleView(a.EndRule),
		DateStart: domain.FormatOptionalDate(a.DateStart),
		DateEnd:   domain.FormatOptionalDate(a.DateEnd),
	}
}

func newActivityViews(as []*domain.Activity) []activityView {
	out := make([]activityView, 0, len(as))
	for _, a := range as {
		out = append(out, newActivityView(a))
	}
	return out
}

type acquisitionView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	Sequence      int      `json:"sequence"`
	Phase         string   `json:"phase"`
	State         string   `json:"state"`
	Description   string   `json:"description,omitempty"`
	StartRule     ruleView `json:"start_rule"`
	EndRule       ruleView `json:"end_rule"`
	DateStart     string   `json:"date_start,omitempty"`
	DateEnd       string   `json:"date_end,omitempty"`
	DependencyIDs []string `json:"dependency_ids"`
}

func newAcquisitionView(a *domain.Acquisition) acquisitionView {
	deps := a.DependencyIDs
	if deps == nil {
		deps = []string{}
	}
	return acquisitionView{
		ID:            a.ID,
		Name:          a.Name,
		Code:          a.Code,
		Sequence:      a.Sequence,
		Phase:         string(a.Phase),
		State:         string(a.State),
		Description:   a.Description,
		StartRule:     newRuleView(a.StartRule),
		EndRule:       newRuleView(a.EndRule),
		DateStart:     domain.FormatOptionalDate(a.DateStart),
		DateEnd:       domain.FormatOptionalDate(a.DateEnd),
		DependencyIDs: deps,
	}
}

func newAcquisitionViews(as []*domain.Acquisition) []acquisitionView {
	out := make([]acquisitionView, 0, len(as))
	for _, a := range as {
		out = append(out, newAcquisitionView(a))
	}
	return out
}

type activityTemplateView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Code      string   `json:"code"`
	Sequence  int      `json:"sequence"`
	Phase     string   `json:"phase"`
	StartRule ruleView `json:"start_rule"`
	EndRule   ruleView `json:"end_rule"`
}

type acquisitionTemplateView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	Sequence      int      `json:"sequence"`
	Phase         string   `json:"phase"`
	Description   string   `json:"description,omitempty"`
	StartRule     ruleView `json:"start_rule"`
	EndRule       ruleView `json:"end_rule"`
	DependencyIDs []string `json:"dependency_ids"`
}

func newActivityTemplateView(t *domain.ActivityTemplate) activityTemplateView {
	return activityTemplateView{
		ID:        t.ID,
		Name:      t.Name,
		Code:      t.Code,
		Sequence:  t.Sequence,
		Phase:     string(t.Phase),
		StartRule: newRuleView(t.StartRule),
		EndRule:   newRuleView(t.EndRule),
	}
}

func newAcquisitionTemplateView(t *domain.AcquisitionTemplate) acquisitionTemplateView {
	deps := t.DependencyIDs
	if deps == nil {
		deps = []string{}
	}
	return acquisitionTemplateView{
		ID:            t.ID,
		Name:          t.Name,
		Code:          t.Code,
		Sequence:      t.Sequence,
		Phase:         string(t.Phase),
		Description:   t.Description,
		StartRule:     newRuleView(t.StartRule),
		EndRule:       newRuleView(t.EndRule),
		DependencyIDs: deps,
	}
}

type reimbursementView struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

func newReimbursementView(r *domain.Reimbursement) reimbursementView {
	return reimbursementView{
		ID:     r.ID,
		Date:   domain.FormatOptionalDate(&r.Date),
		Amount: money(r.Amount),
		Status: string(r.Status),
	}
}

type purchaseView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Supplier string `json:"supplier,omitempty"`
	Value    string `json:"value"`
	Date     string `json:"date,omitempty"`
}

func newPurchaseView(p *domain.Purchase) purchaseView {
	return purchaseView{
		ID:       p.ID,
		Name:     p.Name,
		Supplier: p.Supplier,
		Value:    money(p.Value),
		Date:     domain.FormatOptionalDate(p.Date),
	}
}

type totalsView struct {
	Eligible    string `json:"eligible"`
	NonEligible string `json:"non_eligible"`
	General     string `json:"general"`
}

func newTotalsView(t budget.ProjectTotals) totalsView {
	return totalsView{
		Eligible:    money(t.Eligible),
		NonEligible: money(t.NonEligible),
		General:     money(t.General),
	}
}

type allocationView struct {
	LineID       string `json:"line_id"`
	Eligible     string `json:"eligible"`
	Cofinanced   string `json:"cofinanced"`
	Reimbursable string `json:"reimbursable"`
}

type distributionView struct {
	Contribution  string           `json:"contribution"`
	TotalEligible string           `json:"total_eligible"`
	Coefficient   string           `json:"coefficient"`
	Drift         string           `json:"drift"`
	Allocations   []allocationView `json:"allocations"`
	Summary       string           `json:"summary"`
	Notice        string           `json:"notice,omitempty"`
}

func newDistributionView(d *budget.Distribution) distributionView {
	v := distributionView{
		Contribution:  money(d.Contribution),
		TotalEligible: money(d.TotalEligible),
		Coefficient:   d.Coefficient.StringFixed(4),
		Drift:         money(d.Drift),
		Allocations:   make([]allocationView, 0, len(d.Allocations)),
		Summary:       d.Summary(),
		Notice:        d.Notice.String(),
	}
	for _, a := range d.Allocations {
		v.Allocations = append(v.Allocations, allocationView{
			LineID:       a.LineID,
			Eligible:     money(a.Eligible),
			Cofinanced:   money(a.Cofinanced),
			Reimbursable: money(a.Reimbursable),
		})
	}
	return v
}

type generateView struct {
	Created int    `json:"created"`
	Deleted int    `json:"deleted"`
	Notice  string `json:"notice,omitempty"`
}

func newGenerateView(r *service.GenerateResult) generateView {
	return generateView{Created: r.Created, Deleted: r.Deleted, Notice: r.Notice.String()}
}
