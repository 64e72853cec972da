package domain

type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectContracted ProjectStatus = "contracted"
	ProjectMonitoring ProjectStatus = "monitoring"
	ProjectClosed     ProjectStatus = "closed"
)

// ValidProjectStatuses is the canonical set of accepted project status strings.
var ValidProjectStatuses = map[string]bool{
	"in_progress": true, "contracted": true, "monitoring": true, "closed": true,
}

// VATEligibility records whether VAT is an eligible expense for a project.
// The empty value means it was never set.
type VATEligibility string

const (
	VATUnset       VATEligibility = ""
	VATEligible    VATEligibility = "yes"
	VATNotEligible VATEligibility = "no"
)

var ValidVATEligibility = map[string]bool{"": true, "yes": true, "no": true}

// Milestone selects one of a project's three fixed dates.
type Milestone string

const (
	MilestoneSubmission Milestone = "submission"
	MilestoneSigning    Milestone = "signing"
	MilestoneCompletion Milestone = "completion"
)

var ValidMilestones = map[string]bool{"submission": true, "signing": true, "completion": true}

// RuleSource is the tag of a DateRule variant.
type RuleSource string

const (
	SourceMilestone RuleSource = "milestone"
	SourceEntity    RuleSource = "entity"
)

var ValidRuleSources = map[string]bool{"milestone": true, "entity": true}

// Endpoint selects the start or end date of a referenced entity.
type Endpoint string

const (
	EndpointStart Endpoint = "start"
	EndpointEnd   Endpoint = "end"
)

var ValidEndpoints = map[string]bool{"start": true, "end": true}

// ActivityPhase places an activity before or after contract signing.
type ActivityPhase string

const (
	PhasePre  ActivityPhase = "pre"
	PhasePost ActivityPhase = "post"
)

var ValidActivityPhases = map[string]bool{"pre": true, "post": true}

// AcquisitionPhase places an acquisition before or after contracting.
type AcquisitionPhase string

const (
	PhaseBefore AcquisitionPhase = "before"
	PhaseAfter  AcquisitionPhase = "after"
)

var ValidAcquisitionPhases = map[string]bool{"before": true, "after": true}

type ActivityState string

const (
	ActivityDraft      ActivityState = "draft"
	ActivityInProgress ActivityState = "in_progress"
	ActivityDone       ActivityState = "done"
)

var ValidActivityStates = map[string]bool{"draft": true, "in_progress": true, "done": true}

type AcquisitionState string

const (
	AcquisitionDraft      AcquisitionState = "draft"
	AcquisitionInProgress AcquisitionState = "in_progress"
	AcquisitionDone       AcquisitionState = "done"
	AcquisitionCancelled  AcquisitionState = "cancelled"
)

var ValidAcquisitionStates = map[string]bool{
	"draft": true, "in_progress": true, "done": true, "cancelled": true,
}

// ExpenseType classifies a budget line as direct or indirect cost.
type ExpenseType string

const (
	ExpenseUnset    ExpenseType = ""
	ExpenseDirect   ExpenseType = "Directa"
	ExpenseIndirect ExpenseType = "Indirecta"
)

var ValidExpenseTypes = map[string]bool{"": true, "Directa": true, "Indirecta": true}

// CostCategory is the MySMIS cost category of a budget line.
type CostCategory string

const (
	CostUnset          CostCategory = ""
	CostActiveTangible CostCategory = "Active C"
	CostActiveIntang   CostCategory = "Active N"
	CostOther          CostCategory = "Alte Ch."
	CostWorks          CostCategory = "Lucrari"
	CostMargin         CostCategory = "Marja"
	CostReserve        CostCategory = "Rezerva"
	CostServices       CostCategory = "Servicii"
	CostFees           CostCategory = "Taxe"
	CostEquipment      CostCategory = "Echipam."
)

var ValidCostCategories = map[string]bool{
	"": true, "Active C": true, "Active N": true, "Alte Ch.": true, "Lucrari": true,
	"Marja": true, "Rezerva": true, "Servicii": true, "Taxe": true, "Echipam.": true,
}

type ReimbursementStatus string

const (
	ReimbursementPlanned  ReimbursementStatus = "planned"
	ReimbursementSent     ReimbursementStatus = "sent"
	ReimbursementApproved ReimbursementStatus = "approved"
	ReimbursementPaid     ReimbursementStatus = "paid"
)

// ReimbursementFlow is the forward-only order of reimbursement statuses.
var ReimbursementFlow = []ReimbursementStatus{
	ReimbursementPlanned, ReimbursementSent, ReimbursementApproved, ReimbursementPaid,
}

var ValidReimbursementStatuses = map[string]bool{
	"planned": true, "sent": true, "approved": true, "paid": true,
}
