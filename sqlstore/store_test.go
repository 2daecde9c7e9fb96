package sqlstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
	"github.com/diantamela/satgas-ppk/sqlstore"
)

var at = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func open(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(filepath.Join(t.TempDir(), "nested", "ppk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func newCase(id, number string) *models.Case {
	notes := "bawa saksi"
	return &models.Case{
		ID:             id,
		CaseNumber:     number,
		Title:          "Laporan " + number,
		ReporterID:     "reporter-1",
		Status:         models.StatusPending,
		ScheduledNotes: &notes,
		Version:        1,
		History:        []models.CaseHistoryEntry{{Event: "case_created", To: models.StatusPending, ActorID: "reporter-1", Timestamp: at}},
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func newSchedule(id, caseID string, created time.Time) *models.Schedule {
	return &models.Schedule{
		ID:         id,
		CaseID:     caseID,
		Start:      created.Add(time.Hour),
		End:        created.Add(3 * time.Hour),
		Location:   "Room A",
		Methods:    []models.InvestigationMethod{models.MethodInterview},
		PartyTypes: []models.PartyType{models.PartyWitness},
		Team:       []models.TeamMember{{MemberID: "satgas-1", Role: models.RoleChair}, {MemberID: "satgas-2", Role: models.RoleNoteTaker}},
		CreatedBy:  "satgas-1",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestOpenMigratesTwice(t *testing.T) {
	s := open(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestCaseRoundTrip(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	c := newCase("c1", "LPN-250001")
	require.NoError(t, s.Cases().Insert(ctx, c))

	got, err := s.Cases().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	err = s.Cases().Insert(ctx, newCase("c2", "LPN-250001"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.Cases().Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := s.Cases().CountByNumberPrefix(ctx, "LPN-25")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Cases().CountByNumberPrefix(ctx, "LPN-26")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCaseOptimisticUpdate(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	require.NoError(t, s.Cases().Insert(ctx, newCase("c1", "LPN-250001")))

	a, err := s.Cases().Get(ctx, "c1")
	require.NoError(t, err)
	b, err := s.Cases().Get(ctx, "c1")
	require.NoError(t, err)

	a.Status = models.StatusVerified
	require.NoError(t, s.Cases().Update(ctx, a, a.Version))
	assert.Equal(t, int64(2), a.Version)

	b.Status = models.StatusRejected
	err = s.Cases().Update(ctx, b, b.Version)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, int64(1), b.Version)

	missing := newCase("nope", "LPN-259999")
	assert.ErrorIs(t, s.Cases().Update(ctx, missing, 1), repository.ErrNotFound)

	got, err := s.Cases().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, got.Status)
}

func TestTransactionRollsBack(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Cases().Insert(ctx, newCase("c1", "LPN-250001")); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return s.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.Schedules().Insert(ctx, newSchedule("s1", "c1", at)); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Cases().Get(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Schedules().Get(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.Cases().Insert(ctx, newCase("c1", "LPN-250001"))
	}))
	_, err = s.Cases().Get(ctx, "c1")
	assert.NoError(t, err)
}

func TestScheduleLifecycle(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	require.NoError(t, s.Cases().Insert(ctx, newCase("c1", "LPN-250001")))

	first := newSchedule("s1", "c1", at)
	require.NoError(t, s.Schedules().Insert(ctx, first))
	active, err := s.Schedules().Active(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, first, active)

	require.NoError(t, s.Schedules().Supersede(ctx, "s1", at.Add(time.Minute)))
	assert.ErrorIs(t, s.Schedules().Supersede(ctx, "s1", at.Add(time.Minute)), repository.ErrNotFound)
	_, err = s.Schedules().Active(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	second := newSchedule("s2", "c1", at.Add(time.Minute))
	require.NoError(t, s.Schedules().Insert(ctx, second))
	second.Location = "Room B"
	second.Team = second.Team[:1]
	require.NoError(t, s.Schedules().Update(ctx, second))

	active, err = s.Schedules().Active(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "s2", active.ID)
	assert.Equal(t, "Room B", active.Location)
	assert.Len(t, active.Team, 1)

	old, err := s.Schedules().Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, old.Active())

	require.NoError(t, s.Schedules().Delete(ctx, "s2"))
	assert.ErrorIs(t, s.Schedules().Delete(ctx, "s2"), repository.ErrNotFound)
	assert.ErrorIs(t, s.Schedules().Update(ctx, second), repository.ErrNotFound)
}

func TestResultsAndSummaries(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	require.NoError(t, s.Cases().Insert(ctx, newCase("c1", "LPN-250001")))
	require.NoError(t, s.Cases().Insert(ctx, newCase("c2", "LPN-250002")))
	require.NoError(t, s.Schedules().Insert(ctx, newSchedule("s1", "c1", at)))

	require.NoError(t, s.Activities().Insert(ctx, &models.Activity{
		ID: "a1", CaseID: "c1", Type: models.ActivityDocumentReview, ConductedBy: "satgas-1",
		Participants: []string{},
		Attachments:  []models.FileRef{{FileID: "f1", FileName: "a.pdf"}, {FileID: "f2", FileName: "b.pdf"}},
		CreatedAt:    at,
	}))
	r := &models.Result{
		ID: "r1", ScheduleID: "s1", CaseID: "c1",
		Methods:  []models.InvestigationMethod{models.MethodInterview},
		Evidence: []models.EvidenceRef{{Provenance: models.ProvenanceTracked, File: &models.FileRef{FileID: "f3"}}},
		CreatedBy: "satgas-1", CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(t, s.Results().Insert(ctx, r))
	assert.ErrorIs(t, s.Results().Insert(ctx, &models.Result{ID: "r2", ScheduleID: "s1", CaseID: "c1", CreatedAt: at, UpdatedAt: at}), repository.ErrDuplicate)

	assert.Error(t, s.Schedules().Delete(ctx, "s1"))
	kept, err := s.Schedules().Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, kept.Team, len(newSchedule("s1", "c1", at).Team))

	r.Finalized = true
	require.NoError(t, s.Results().Update(ctx, r))
	got, err := s.Results().GetBySchedule(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Finalized)
	require.Len(t, got.Evidence, 1)
	assert.Equal(t, "f3", got.Evidence[0].File.FileID)

	sums, err := s.Summaries().ListSummaries(ctx, repository.CaseQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, sums, 2)
	byID := map[string]models.CaseSummary{}
	for _, sum := range sums {
		byID[sum.ID] = sum
	}
	require.NotNil(t, byID["c1"].LatestSchedule)
	assert.Equal(t, "s1", byID["c1"].LatestSchedule.ID)
	assert.True(t, byID["c1"].LatestSchedule.Active)
	assert.Equal(t, int64(3), *byID["c1"].DocumentCount)
	assert.Nil(t, byID["c2"].LatestSchedule)
	assert.Equal(t, int64(0), *byID["c2"].DocumentCount)
}

func TestNotificationDelivery(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, s.Notifications().Insert(ctx, &models.Notification{
			ID: id, RecipientID: "reporter-1", Category: models.NotifyCaseReceived,
			Title: "Report received", CreatedAt: at.Add(time.Duration(i) * time.Second),
		}))
	}

	pending, err := s.Notifications().ListUndelivered(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "n1", pending[0].ID)

	require.NoError(t, s.Notifications().MarkDelivered(ctx, "n1", at))
	assert.ErrorIs(t, s.Notifications().MarkDelivered(ctx, "missing", at), repository.ErrNotFound)

	pending, err = s.Notifications().ListUndelivered(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	list, err := s.Notifications().ListByRecipient(ctx, "reporter-1", false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n3", list[0].ID)
	assert.Empty(t, mustList(t, s, "satgas-1"))
}

func mustList(t *testing.T, s *sqlstore.Store, recipient string) []models.Notification {
	t.Helper()
	list, err := s.Notifications().ListByRecipient(context.Background(), recipient, false)
	require.NoError(t, err)
	return list
}
