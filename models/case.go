package models

import (
	"strings"
	"time"
)

// CaseStatus is the lifecycle status of a report
type CaseStatus string

// Case statuses
const (
	StatusPending    CaseStatus = "PENDING"
	StatusVerified   CaseStatus = "VERIFIED"
	StatusScheduled  CaseStatus = "SCHEDULED"
	StatusInProgress CaseStatus = "IN_PROGRESS"
	StatusCompleted  CaseStatus = "COMPLETED"
	StatusRejected   CaseStatus = "REJECTED"
)

// CaseStatuses lists every status in lifecycle order
var CaseStatuses = []CaseStatus{
	StatusPending,
	StatusVerified,
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
	StatusRejected,
}

// Valid reports whether s is a known status
func (s CaseStatus) Valid() bool {
	return oneOf(s, CaseStatuses)
}

// Terminal reports whether no further workflow events may be applied
func (s CaseStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// ParseCaseStatus accepts any casing and '-' or ' ' as separators, e.g. "in-progress"
func ParseCaseStatus(v string) (CaseStatus, bool) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(strings.TrimSpace(v)))
	s := CaseStatus(norm)
	return s, s.Valid()
}

// Case holds the structure for the cases collection
type Case struct {
	ID               string     `json:"id" bson:"_id"`
	CaseNumber       string     `json:"caseNumber" bson:"caseNumber"`
	Title            string     `json:"title" bson:"title"`
	Description      string     `json:"description" bson:"description"`
	Category         string     `json:"category" bson:"category"`
	ReporterID       string     `json:"reporterId" bson:"reporterId"`
	IncidentLocation string     `json:"incidentLocation" bson:"incidentLocation"`
	IncidentDate     *time.Time `json:"incidentDate" bson:"incidentDate"`

	Status CaseStatus     `json:"status" bson:"status"`
	Phase  ProposedStatus `json:"phase,omitempty" bson:"phase"`

	// schedule summary, written only together with Status
	ScheduledDate  *time.Time `json:"scheduledDate" bson:"scheduledDate"`
	ScheduledBy    *string    `json:"scheduledBy" bson:"scheduledBy"`
	ScheduledNotes *string    `json:"scheduledNotes" bson:"scheduledNotes"`

	InvestigationProgress int `json:"investigationProgress" bson:"investigationProgress"`

	Version int64              `json:"version" bson:"version"`
	History []CaseHistoryEntry `json:"history" bson:"history"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CaseHistoryEntry is one step of the status audit trail
type CaseHistoryEntry struct {
	Event     string     `json:"event" bson:"event"`
	From      CaseStatus `json:"from,omitempty" bson:"from"`
	To        CaseStatus `json:"to" bson:"to"`
	ActorID   string     `json:"actorId" bson:"actorId"`
	Notes     string     `json:"notes,omitempty" bson:"notes"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
}

// EnteredStatus reports whether the history ever moved the case into s
func (c *Case) EnteredStatus(s CaseStatus) bool {
	for _, h := range c.History {
		if h.To == s && h.From != s {
			return true
		}
	}
	return false
}

// StatusBefore returns the status the case left when it last entered s, or "" when it never did
func (c *Case) StatusBefore(s CaseStatus) CaseStatus {
	for i := len(c.History) - 1; i >= 0; i-- {
		if h := c.History[i]; h.To == s && h.From != s {
			return h.From
		}
	}
	return ""
}

// ClearSchedule resets the denormalized schedule summary
func (c *Case) ClearSchedule() {
	c.ScheduledDate = nil
	c.ScheduledBy = nil
	c.ScheduledNotes = nil
}

// SyncSchedule copies the summary fields from s
func (c *Case) SyncSchedule(s *Schedule, actorID string) {
	start := s.Start
	c.ScheduledDate = &start
	by := actorID
	c.ScheduledBy = &by
	c.ScheduledNotes = nil
	if strings.TrimSpace(s.Notes) != "" {
		notes := s.Notes
		c.ScheduledNotes = &notes
	}
}
