package models

import "time"

// ActivityType classifies an activity log entry
type ActivityType string

// Activity types
const (
	ActivityScheduledInvestigation ActivityType = "SCHEDULED_INVESTIGATION"
	ActivityScheduleCancelled      ActivityType = "SCHEDULE_CANCELLED"
	ActivityInterviewConducted     ActivityType = "INTERVIEW_CONDUCTED"
	ActivityEvidenceCollected      ActivityType = "EVIDENCE_COLLECTED"
	ActivitySiteVisit              ActivityType = "SITE_VISIT"
	ActivityMediationSession       ActivityType = "MEDIATION_SESSION"
	ActivityDocumentReview         ActivityType = "DOCUMENT_REVIEW"
	ActivityConsultation           ActivityType = "CONSULTATION"
	ActivityFollowUp               ActivityType = "FOLLOW_UP"
	ActivityOther                  ActivityType = "OTHER"
)

// ActivityTypes lists every activity type
var ActivityTypes = []ActivityType{
	ActivityScheduledInvestigation, ActivityScheduleCancelled, ActivityInterviewConducted,
	ActivityEvidenceCollected, ActivitySiteVisit, ActivityMediationSession,
	ActivityDocumentReview, ActivityConsultation, ActivityFollowUp, ActivityOther,
}

// Valid reports whether a is a known activity type
func (a ActivityType) Valid() bool { return oneOf(a, ActivityTypes) }

// Bookkeeping reports whether the type is written by the scheduler rather than by investigators
func (a ActivityType) Bookkeeping() bool {
	return a == ActivityScheduledInvestigation || a == ActivityScheduleCancelled
}

// Activity holds the structure for the activities collection. Entries are append-only.
type Activity struct {
	ID         string  `json:"id" bson:"_id"`
	CaseID     string  `json:"caseId" bson:"caseId"`
	ScheduleID *string `json:"scheduleId,omitempty" bson:"scheduleId"`

	Type       ActivityType `json:"type" bson:"type"`
	TypeDetail string       `json:"typeDetail,omitempty" bson:"typeDetail"`

	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description"`
	Location    string     `json:"location,omitempty" bson:"location"`
	Start       *time.Time `json:"start,omitempty" bson:"start"`
	End         *time.Time `json:"end,omitempty" bson:"end"`

	Participants    []string `json:"participants" bson:"participants"`
	Outcome         string   `json:"outcome,omitempty" bson:"outcome"`
	Challenges      string   `json:"challenges,omitempty" bson:"challenges"`
	Recommendations string   `json:"recommendations,omitempty" bson:"recommendations"`

	Confidential bool        `json:"confidential" bson:"confidential"`
	AccessLevel  AccessLevel `json:"accessLevel,omitempty" bson:"accessLevel"`
	ConductedBy  string      `json:"conductedBy" bson:"conductedBy"`
	Attachments  []FileRef   `json:"attachments" bson:"attachments"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// FileRef points at a document held by the external file store
type FileRef struct {
	FileID      string `json:"fileId" bson:"fileId"`
	FileName    string `json:"fileName" bson:"fileName"`
	FileType    string `json:"fileType,omitempty" bson:"fileType"`
	FileSize    int64  `json:"fileSize,omitempty" bson:"fileSize"`
	StoragePath string `json:"storagePath,omitempty" bson:"storagePath"`
}
