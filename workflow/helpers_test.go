package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/api/testhelpers"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/notification"
	"github.com/diantamela/satgas-ppk/repository"
	"github.com/diantamela/satgas-ppk/workflow"
)

var (
	reporter = testhelpers.Reporter
	satgas   = testhelpers.Satgas
	rektor   = testhelpers.Rektor

	// 2025 so numbers read LPN-25xxxx
	clock = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc   *workflow.Service
	store repository.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := testhelpers.NewStore(t)
	return withStore(store)
}

func withStore(store repository.Store) fixture {
	d := notification.NewDispatcher(store.Notifications(), nil)
	svc := workflow.NewService(store, d, workflow.WithClock(func() time.Time { return clock }))
	return fixture{svc: svc, store: store}
}

func (f fixture) newCase(t *testing.T) *models.Case {
	t.Helper()
	c, err := f.svc.CreateCase(context.Background(), reporter, workflow.CaseInput{Title: "Pelecehan di asrama"})
	require.NoError(t, err)
	return c
}

func (f fixture) reload(t *testing.T, id string) *models.Case {
	t.Helper()
	c, err := f.svc.GetCase(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f fixture) notifications(t *testing.T, recipient string) []models.Notification {
	t.Helper()
	ns, err := f.store.Notifications().ListByRecipient(context.Background(), recipient, false)
	require.NoError(t, err)
	return ns
}

func countCategory(ns []models.Notification, cat models.NotificationCategory) int {
	n := 0
	for _, x := range ns {
		if x.Category == cat {
			n++
		}
	}
	return n
}

func ptr[T any](v T) *T { return &v }

// sessionInput is room A at T..T+2h
func sessionInput(start time.Time) workflow.ScheduleInput {
	end := start.Add(2 * time.Hour)
	return workflow.ScheduleInput{
		Start:      &start,
		End:        &end,
		Location:   ptr("Room A"),
		Methods:    []models.InvestigationMethod{models.MethodInterview},
		PartyTypes: []models.PartyType{models.PartyVictimSurvivor, models.PartyReported},
	}
}

func finalInput(c *models.Case, outcome models.ProposedStatus) workflow.ResultInput {
	return workflow.ResultInput{
		CaseVersion:               ptr(c.Version),
		DataVerificationConfirmed: ptr(true),
		PartiesStatementSummary:   ptr("Keterangan para pihak saling menguatkan"),
		CreatorSignature:          ptr("sig"),
		CreatorSignerName:         ptr("Jane"),
		CaseStatusAfterResult:     &outcome,
	}
}

// assertScheduleInvariant checks a SCHEDULED case has an active schedule starting at scheduledDate
func assertScheduleInvariant(t *testing.T, f fixture, caseID string) {
	t.Helper()
	c := f.reload(t, caseID)
	active, err := f.svc.GetActiveSchedule(context.Background(), caseID)
	require.NoError(t, err)
	if c.Status == models.StatusScheduled {
		require.NotNil(t, active, "scheduled case without active schedule")
		require.NotNil(t, c.ScheduledDate)
		require.True(t, active.Start.Equal(*c.ScheduledDate))
	}
	if active == nil {
		require.Nil(t, c.ScheduledDate)
	}
}
