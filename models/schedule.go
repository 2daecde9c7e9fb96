package models

import "time"

// Schedule holds the structure for the schedules collection
type Schedule struct {
	ID     string `json:"id" bson:"_id"`
	CaseID string `json:"caseId" bson:"caseId"`

	Start    time.Time `json:"start" bson:"start"`
	End      time.Time `json:"end" bson:"end"`
	Location string    `json:"location" bson:"location"`

	Methods            []InvestigationMethod `json:"methods" bson:"methods"`
	PartyTypes         []PartyType           `json:"partyTypes" bson:"partyTypes"`
	OtherPartiesDetail string                `json:"otherPartiesDetail,omitempty" bson:"otherPartiesDetail"`

	Team []TeamMember `json:"team" bson:"team"`

	ConsentObtained      bool   `json:"consentObtained" bson:"consentObtained"`
	ConsentDocumentation string `json:"consentDocumentation,omitempty" bson:"consentDocumentation"`

	RiskNotes      string     `json:"riskNotes,omitempty" bson:"riskNotes"`
	PlanSummary    string     `json:"planSummary,omitempty" bson:"planSummary"`
	FollowUpAction string     `json:"followUpAction,omitempty" bson:"followUpAction"`
	FollowUpDate   *time.Time `json:"followUpDate,omitempty" bson:"followUpDate"`
	FollowUpNotes  string     `json:"followUpNotes,omitempty" bson:"followUpNotes"`

	AccessLevel AccessLevel `json:"accessLevel,omitempty" bson:"accessLevel"`
	Notes       string      `json:"notes,omitempty" bson:"notes"`

	CreatedBy    string     `json:"createdBy" bson:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
	SupersededAt *time.Time `json:"supersededAt,omitempty" bson:"supersededAt"`
}

// TeamMember is one entry of a schedule roster
type TeamMember struct {
	MemberID   string   `json:"memberId" bson:"memberId"`
	Role       TeamRole `json:"role" bson:"role"`
	CustomRole string   `json:"customRole,omitempty" bson:"customRole"`
}

// Active reports whether the schedule has not been replaced by a newer one
func (s *Schedule) Active() bool {
	return s.SupersededAt == nil
}

// HasParty reports whether p is among the tagged parties
func (s *Schedule) HasParty(p PartyType) bool {
	return oneOf(p, s.PartyTypes)
}
