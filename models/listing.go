package models

import "time"

// CaseFilter narrows a case listing
type CaseFilter struct {
	Search        string
	Statuses      []CaseStatus
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

// ScheduleSummary is the latest schedule attached to a listed case
type ScheduleSummary struct {
	ID       string    `json:"id" bson:"_id"`
	Start    time.Time `json:"start" bson:"start"`
	End      time.Time `json:"end" bson:"end"`
	Location string    `json:"location" bson:"location"`
	Active   bool      `json:"active" bson:"active"`
}

// CaseSummary is one row of a case listing
type CaseSummary struct {
	ID                    string         `json:"id" bson:"_id"`
	CaseNumber            string         `json:"caseNumber" bson:"caseNumber"`
	Title                 string         `json:"title" bson:"title"`
	Category              string         `json:"category" bson:"category"`
	ReporterID            string         `json:"reporterId" bson:"reporterId"`
	Status                CaseStatus     `json:"status" bson:"status"`
	Phase                 ProposedStatus `json:"phase,omitempty" bson:"phase"`
	ScheduledDate         *time.Time     `json:"scheduledDate" bson:"scheduledDate"`
	ScheduledNotes        *string        `json:"scheduledNotes" bson:"scheduledNotes"`
	InvestigationProgress int            `json:"investigationProgress" bson:"investigationProgress"`
	CreatedAt             time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt" bson:"updatedAt"`

	// only filled by the enriched listing
	LatestSchedule *ScheduleSummary `json:"latestSchedule,omitempty" bson:"latestSchedule"`
	DocumentCount  *int64           `json:"documentCount,omitempty" bson:"documentCount"`
}

// SummaryOf builds the plain listing row for c
func SummaryOf(c Case) CaseSummary {
	return CaseSummary{
		ID:                    c.ID,
		CaseNumber:            c.CaseNumber,
		Title:                 c.Title,
		Category:              c.Category,
		ReporterID:            c.ReporterID,
		Status:                c.Status,
		Phase:                 c.Phase,
		ScheduledDate:         c.ScheduledDate,
		ScheduledNotes:        c.ScheduledNotes,
		InvestigationProgress: c.InvestigationProgress,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// Pagination describes the page served by a listing
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// CaseList is a page of case listing rows
type CaseList struct {
	Items      []CaseSummary `json:"items"`
	Pagination Pagination    `json:"pagination"`
	Degraded   bool          `json:"degraded,omitempty"`
}
