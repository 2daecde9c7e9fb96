package models

import "time"

// ProposedStatus is the outcome an investigator declares on a result
type ProposedStatus string

// Proposed statuses
const (
	ProposedUnderInvestigation     ProposedStatus = "UNDER_INVESTIGATION"
	ProposedEvidenceCollection     ProposedStatus = "EVIDENCE_COLLECTION"
	ProposedStatementAnalysis      ProposedStatus = "STATEMENT_ANALYSIS"
	ProposedReadyForRecommendation ProposedStatus = "READY_FOR_RECOMMENDATION"
	ProposedForwardedToRektorat    ProposedStatus = "FORWARDED_TO_REKTORAT"
	ProposedClosedTerminated       ProposedStatus = "CLOSED_TERMINATED"
)

// ProposedStatuses lists every proposed status
var ProposedStatuses = []ProposedStatus{
	ProposedUnderInvestigation, ProposedEvidenceCollection, ProposedStatementAnalysis,
	ProposedReadyForRecommendation, ProposedForwardedToRektorat, ProposedClosedTerminated,
}

// Valid reports whether p is a known proposed status
func (p ProposedStatus) Valid() bool { return oneOf(p, ProposedStatuses) }

// EvidenceProvenance tells where an evidence reference came from
type EvidenceProvenance string

// Evidence provenances
const (
	// ProvenanceLegacy marks free-form references carried over from older result forms
	ProvenanceLegacy  EvidenceProvenance = "legacy"
	ProvenanceTracked EvidenceProvenance = "tracked"
)

// Valid reports whether p is a known provenance
func (p EvidenceProvenance) Valid() bool {
	return p == ProvenanceLegacy || p == ProvenanceTracked
}

// EvidenceRef is an evidence item attached to a result
type EvidenceRef struct {
	Provenance  EvidenceProvenance `json:"provenance" bson:"provenance"`
	Description string             `json:"description,omitempty" bson:"description"`
	File        *FileRef           `json:"file,omitempty" bson:"file"`
}

// PartyAttendance records one party's attendance at the session
type PartyAttendance struct {
	PartyType PartyType        `json:"partyType" bson:"partyType"`
	Name      string           `json:"name,omitempty" bson:"name"`
	Status    AttendanceStatus `json:"status" bson:"status"`
	Reason    string           `json:"reason,omitempty" bson:"reason"`
}

// RecommendedAction is one follow-up recommended in the result
type RecommendedAction struct {
	Action   ActionTag `json:"action" bson:"action"`
	Priority Priority  `json:"priority" bson:"priority"`
	Note     string    `json:"note,omitempty" bson:"note"`
}

// Result holds the structure for the results collection (berita acara)
type Result struct {
	ID         string `json:"id" bson:"_id"`
	ScheduleID string `json:"scheduleId" bson:"scheduleId"`
	CaseID     string `json:"caseId" bson:"caseId"`

	Title      string                `json:"title" bson:"title"`
	Location   string                `json:"location" bson:"location"`
	Start      time.Time             `json:"start" bson:"start"`
	End        time.Time             `json:"end" bson:"end"`
	Methods    []InvestigationMethod `json:"methods" bson:"methods"`
	PartyTypes []PartyType           `json:"partyTypes" bson:"partyTypes"`

	SatgasPresent   []string          `json:"satgasPresent" bson:"satgasPresent"`
	PartyAttendance []PartyAttendance `json:"partyAttendance" bson:"partyAttendance"`

	IdentityVerified        bool          `json:"identityVerified" bson:"identityVerified"`
	PartiesStatementSummary string        `json:"partiesStatementSummary" bson:"partiesStatementSummary"`
	NewEvidenceDescription  string        `json:"newEvidenceDescription,omitempty" bson:"newEvidenceDescription"`
	Evidence                []EvidenceRef `json:"evidence" bson:"evidence"`
	StatementConsistency    string        `json:"statementConsistency,omitempty" bson:"statementConsistency"`
	InterimConclusion       string        `json:"interimConclusion,omitempty" bson:"interimConclusion"`

	RecommendedActions    []RecommendedAction `json:"recommendedActions" bson:"recommendedActions"`
	CaseStatusAfterResult ProposedStatus      `json:"caseStatusAfterResult,omitempty" bson:"caseStatusAfterResult"`
	StatusChangeReason    string              `json:"statusChangeReason,omitempty" bson:"statusChangeReason"`

	DataVerificationConfirmed bool   `json:"dataVerificationConfirmed" bson:"dataVerificationConfirmed"`
	CreatorSignature          string `json:"creatorSignature,omitempty" bson:"creatorSignature"`
	CreatorSignerName         string `json:"creatorSignerName,omitempty" bson:"creatorSignerName"`
	ChairSignature            string `json:"chairSignature,omitempty" bson:"chairSignature"`
	ChairSignerName           string `json:"chairSignerName,omitempty" bson:"chairSignerName"`

	InternalNotes string `json:"internalNotes,omitempty" bson:"internalNotes"`

	Finalized   bool       `json:"finalized" bson:"finalized"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty" bson:"finalizedAt"`

	CreatedBy string    `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Redacted returns a copy safe to show outside the handling team
func (r Result) Redacted() Result {
	r.InternalNotes = ""
	return r
}
