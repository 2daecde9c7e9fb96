package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/diantamela/satgas-ppk/models"
)

func TestParseCaseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.CaseStatus
		ok   bool
	}{
		{"PENDING", models.StatusPending, true},
		{"scheduled", models.StatusScheduled, true},
		{" in-progress ", models.StatusInProgress, true},
		{"In Progress", models.StatusInProgress, true},
		{"archived", "ARCHIVED", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := models.ParseCaseStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range models.CaseStatuses {
		want := s == models.StatusCompleted || s == models.StatusRejected
		assert.Equal(t, want, s.Terminal(), s)
	}
}

func TestTagValidation(t *testing.T) {
	assert.True(t, models.ValidMethods(nil))
	assert.True(t, models.ValidMethods([]models.InvestigationMethod{models.MethodMediation, models.MethodOther}))
	assert.False(t, models.ValidMethods([]models.InvestigationMethod{models.MethodInterview, "interview"}))
	assert.True(t, models.ValidPartyTypes([]models.PartyType{models.PartyOther}))
	assert.False(t, models.ValidPartyTypes([]models.PartyType{"OTHER"}))
	assert.True(t, models.AccessLevel("").Valid())
	assert.False(t, models.AccessLevel("PUBLIC").Valid())
	assert.False(t, models.TeamRole("").Valid())
	assert.True(t, models.ProvenanceLegacy.Valid())
	assert.False(t, models.NotificationCategory("CASE_ARCHIVED").Valid())
}

func TestActorRoles(t *testing.T) {
	role, ok := models.ParseRole(" satgas ")
	assert.True(t, ok)
	assert.Equal(t, models.RoleSatgas, role)
	_, ok = models.ParseRole("admin")
	assert.False(t, ok)

	assert.True(t, models.Actor{ID: "u", Role: models.RoleRektor}.HandlesCases())
	assert.False(t, models.Actor{ID: "u", Role: models.RoleUser}.HandlesCases())
	assert.False(t, models.Actor{Role: models.RoleSatgas}.HandlesCases())
}

func TestScheduleSummaryFields(t *testing.T) {
	start := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	c := &models.Case{}
	c.SyncSchedule(&models.Schedule{Start: start, Notes: "  "}, "satgas-1")
	assert.True(t, start.Equal(*c.ScheduledDate))
	assert.Equal(t, "satgas-1", *c.ScheduledBy)
	assert.Nil(t, c.ScheduledNotes)

	c.ClearSchedule()
	assert.Nil(t, c.ScheduledDate)
	assert.Nil(t, c.ScheduledBy)
}

func TestEnteredStatus(t *testing.T) {
	c := &models.Case{History: []models.CaseHistoryEntry{
		{To: models.StatusPending},
		{From: models.StatusPending, To: models.StatusScheduled},
		{From: models.StatusScheduled, To: models.StatusScheduled},
	}}
	assert.True(t, c.EnteredStatus(models.StatusScheduled))
	assert.False(t, c.EnteredStatus(models.StatusInProgress))
}

func TestStatusBefore(t *testing.T) {
	c := &models.Case{History: []models.CaseHistoryEntry{
		{To: models.StatusPending},
		{From: models.StatusPending, To: models.StatusScheduled},
		{From: models.StatusScheduled, To: models.StatusPending},
		{From: models.StatusPending, To: models.StatusVerified},
		{From: models.StatusVerified, To: models.StatusScheduled},
		{From: models.StatusScheduled, To: models.StatusScheduled},
	}}
	assert.Equal(t, models.StatusVerified, c.StatusBefore(models.StatusScheduled))
	assert.Equal(t, models.CaseStatus(""), c.StatusBefore(models.StatusInProgress))
}

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	in := time.Date(2025, 4, 1, 16, 0, 0, 123456789, loc)
	got := models.Timestamp(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123000000, got.Nanosecond())
	assert.Nil(t, models.TimestampPtr(nil))
}
