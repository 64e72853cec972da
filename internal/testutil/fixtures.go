package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testCodeCounter atomic.Int64

// Date parses a YYYY-MM-DD literal and panics on bad input.
func Date(s string) *time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &t
}

// Dec parses a decimal literal and panics on bad input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Project options
type ProjectOption func(*domain.Project)

func WithCode(code string) ProjectOption {
	return func(p *domain.Project) {
		p.Code = code
	}
}

func WithSubmissionDate(s string) ProjectOption {
	return func(p *domain.Project) {
		p.SubmissionDate = Date(s)
	}
}

func WithSigningDate(s string) ProjectOption {
	return func(p *domain.Project) {
		p.SigningDate = Date(s)
	}
}

func WithCompletionDate(s string) ProjectOption {
	return func(p *domain.Project) {
		p.CompletionDate = Date(s)
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithCofinancing(amount string) ProjectOption {
	return func(p *domain.Project) {
		p.Cofinancing = Dec(amount)
	}
}

func WithBeneficiary(b string) ProjectOption {
	return func(p *domain.Project) {
		p.Beneficiary = b
	}
}

// NewTestProject returns an unsaved project with a unique code.
func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        newID(),
		Code:      fmt.Sprintf("PRJ%03d", testCodeCounter.Add(1)),
		Name:      name,
		Status:    domain.ProjectInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BudgetLine options
type BudgetLineOption func(*domain.BudgetLine)

func WithEligible(base, vat string) BudgetLineOption {
	return func(l *domain.BudgetLine) {
		l.EligibleBase = Dec(base)
		l.EligibleVAT = Dec(vat)
	}
}

func WithNonEligible(base, vat string) BudgetLineOption {
	return func(l *domain.BudgetLine) {
		l.NonEligibleBase = Dec(base)
		l.NonEligibleVAT = Dec(vat)
	}
}

func WithCostCategory(c domain.CostCategory) BudgetLineOption {
	return func(l *domain.BudgetLine) {
		l.CostCategory = c
	}
}

// NewTestBudgetLine returns an unsaved, normalized line.
func NewTestBudgetLine(projectID, chapter, subchapter, name string, opts ...BudgetLineOption) *domain.BudgetLine {
	now := time.Now().UTC()
	l := &domain.BudgetLine{
		ID:         newID(),
		ProjectID:  projectID,
		Chapter:    chapter,
		Subchapter: subchapter,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.Normalize()
	return l
}

// Activity options
type ActivityOption func(*domain.Activity)

func WithActivityCode(code string) ActivityOption {
	return func(a *domain.Activity) {
		a.Code = code
	}
}

func WithActivitySequence(seq int) ActivityOption {
	return func(a *domain.Activity) {
		a.Sequence = seq
	}
}

func WithActivityPhase(p domain.ActivityPhase) ActivityOption {
	return func(a *domain.Activity) {
		a.Phase = p
	}
}

func WithActivityRules(start, end domain.DateRule) ActivityOption {
	return func(a *domain.Activity) {
		a.StartRule = start
		a.EndRule = end
	}
}

// NewTestActivity returns an unsaved activity with default rules.
func NewTestActivity(projectID, name string, opts ...ActivityOption) *domain.Activity {
	now := time.Now().UTC()
	a := &domain.Activity{
		ID:        newID(),
		ProjectID: projectID,
		Name:      name,
		Sequence:  domain.DefaultSequence,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ApplyDefaults()
	return a
}

// Acquisition options
type AcquisitionOption func(*domain.Acquisition)

func WithAcquisitionCode(code string) AcquisitionOption {
	return func(a *domain.Acquisition) {
		a.Code = code
	}
}

func WithAcquisitionRules(start, end domain.DateRule) AcquisitionOption {
	return func(a *domain.Acquisition) {
		a.StartRule = start
		a.EndRule = end
	}
}

func WithDependencies(ids ...string) AcquisitionOption {
	return func(a *domain.Acquisition) {
		a.DependencyIDs = ids
	}
}

// NewTestAcquisition returns an unsaved acquisition with default rules.
func NewTestAcquisition(projectID, name string, opts ...AcquisitionOption) *domain.Acquisition {
	now := time.Now().UTC()
	a := &domain.Acquisition{
		ID:        newID(),
		ProjectID: projectID,
		Name:      name,
		Sequence:  domain.DefaultSequence,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ApplyDefaults()
	return a
}

// NewTestReimbursement returns an unsaved planned reimbursement.
func NewTestReimbursement(projectID, date, amount string) *domain.Reimbursement {
	now := time.Now().UTC()
	return &domain.Reimbursement{
		ID:        newID(),
		ProjectID: projectID,
		Date:      *Date(date),
		Amount:    Dec(amount),
		Status:    domain.ReimbursementPlanned,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestPurchase returns an unsaved purchase.
func NewTestPurchase(projectID, name, value string) *domain.Purchase {
	now := time.Now().UTC()
	return &domain.Purchase{
		ID:        newID(),
		ProjectID: projectID,
		Name:      name,
		Value:     Dec(value),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
