package models

func oneOf[T ~string](v T, set []T) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

func allOf[T ~string](vs []T, set []T) bool {
	for _, v := range vs {
		if !oneOf(v, set) {
			return false
		}
	}
	return true
}

// InvestigationMethod tags how a session is conducted
type InvestigationMethod string

// Investigation methods
const (
	MethodInterview          InvestigationMethod = "INTERVIEW"
	MethodMediation          InvestigationMethod = "MEDIATION"
	MethodDocumentReview     InvestigationMethod = "DOCUMENT_REVIEW"
	MethodSiteInspection     InvestigationMethod = "SITE_INSPECTION"
	MethodConfrontation      InvestigationMethod = "CONFRONTATION"
	MethodExpertConsultation InvestigationMethod = "EXPERT_CONSULTATION"
	MethodOther              InvestigationMethod = "OTHER"
)

// InvestigationMethods lists every method tag
var InvestigationMethods = []InvestigationMethod{
	MethodInterview, MethodMediation, MethodDocumentReview, MethodSiteInspection,
	MethodConfrontation, MethodExpertConsultation, MethodOther,
}

// Valid reports whether m is a known method
func (m InvestigationMethod) Valid() bool { return oneOf(m, InvestigationMethods) }

// ValidMethods reports whether every tag in ms is known
func ValidMethods(ms []InvestigationMethod) bool { return allOf(ms, InvestigationMethods) }

// PartyType tags a party involved in a session
type PartyType string

// Party types
const (
	PartyVictimSurvivor PartyType = "VICTIM_SURVIVOR"
	PartyReported       PartyType = "REPORTED_PARTY"
	PartyWitness        PartyType = "WITNESS"
	PartyReporter       PartyType = "REPORTER"
	PartyCompanion      PartyType = "COMPANION"
	PartyExpert         PartyType = "EXPERT"
	PartyOther          PartyType = "OTHER_PARTY"
)

// PartyTypes lists every party tag
var PartyTypes = []PartyType{
	PartyVictimSurvivor, PartyReported, PartyWitness, PartyReporter,
	PartyCompanion, PartyExpert, PartyOther,
}

// Valid reports whether p is a known party tag
func (p PartyType) Valid() bool { return oneOf(p, PartyTypes) }

// ValidPartyTypes reports whether every tag in ps is known
func ValidPartyTypes(ps []PartyType) bool { return allOf(ps, PartyTypes) }

// TeamRole is the role of a roster member
type TeamRole string

// Team roles
const (
	RoleChair     TeamRole = "CHAIR"
	RoleSecretary TeamRole = "SECRETARY"
	RoleMember    TeamRole = "MEMBER"
	RoleNoteTaker TeamRole = "NOTE_TAKER"
	RoleOther     TeamRole = "OTHER"
)

// TeamRoles lists every roster role
var TeamRoles = []TeamRole{RoleChair, RoleSecretary, RoleMember, RoleNoteTaker, RoleOther}

// Valid reports whether r is a known roster role
func (r TeamRole) Valid() bool { return oneOf(r, TeamRoles) }

// AccessLevel controls who may read a schedule or activity
type AccessLevel string

// Access levels
const (
	AccessTeamOnly        AccessLevel = "TEAM_ONLY"
	AccessAllSatgas       AccessLevel = "ALL_SATGAS"
	AccessSatgasAndRektor AccessLevel = "SATGAS_AND_REKTOR"
)

// AccessLevels lists every access level
var AccessLevels = []AccessLevel{AccessTeamOnly, AccessAllSatgas, AccessSatgasAndRektor}

// Valid reports whether a is a known access level. The empty level is valid and means unrestricted.
func (a AccessLevel) Valid() bool { return a == "" || oneOf(a, AccessLevels) }

// AttendanceStatus records whether a party attended a session
type AttendanceStatus string

// Attendance statuses
const (
	AttendancePresent          AttendanceStatus = "PRESENT"
	AttendanceAbsentNoReason   AttendanceStatus = "ABSENT_NO_REASON"
	AttendanceAbsentWithReason AttendanceStatus = "ABSENT_WITH_REASON"
)

// AttendanceStatuses lists every attendance status
var AttendanceStatuses = []AttendanceStatus{AttendancePresent, AttendanceAbsentNoReason, AttendanceAbsentWithReason}

// Valid reports whether a is a known attendance status
func (a AttendanceStatus) Valid() bool { return oneOf(a, AttendanceStatuses) }

// Priority of a recommended action
type Priority string

// Priorities
const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Priorities lists every priority
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool { return oneOf(p, Priorities) }

// ActionTag names a recommended follow-up action
type ActionTag string

// Action tags
const (
	ActionFurtherInvestigation   ActionTag = "FURTHER_INVESTIGATION"
	ActionPsychologicalSupport   ActionTag = "PSYCHOLOGICAL_SUPPORT"
	ActionLegalAssistance        ActionTag = "LEGAL_ASSISTANCE"
	ActionAcademicAccommodation  ActionTag = "ACADEMIC_ACCOMMODATION"
	ActionProtectionMeasure      ActionTag = "PROTECTION_MEASURE"
	ActionSanctionRecommendation ActionTag = "SANCTION_RECOMMENDATION"
	ActionMediation              ActionTag = "MEDIATION"
	ActionOther                  ActionTag = "OTHER"
)

// ActionTags lists every action tag
var ActionTags = []ActionTag{
	ActionFurtherInvestigation, ActionPsychologicalSupport, ActionLegalAssistance,
	ActionAcademicAccommodation, ActionProtectionMeasure, ActionSanctionRecommendation,
	ActionMediation, ActionOther,
}

// Valid reports whether a is a known action tag
func (a ActionTag) Valid() bool { return oneOf(a, ActionTags) }
