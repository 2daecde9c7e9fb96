package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/notification"
	"github.com/diantamela/satgas-ppk/sqlstore"
)

type sentMail struct {
	to      notification.Recipient
	subject string
	html    string
}

type fakeMailer struct {
	sent []sentMail
	fail map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, to notification.Recipient, subject, _, html string) error {
	if m.fail[to.Email] {
		return errors.New("smtp is down")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func seed(t *testing.T, store *sqlstore.Store, id, recipient string, at time.Time) {
	t.Helper()
	require.NoError(t, store.Notifications().Insert(context.Background(), &models.Notification{
		ID:                id,
		RecipientID:       recipient,
		Category:          models.NotifyScheduleCreated,
		Title:             "Jadwal investigasi dibuat",
		Message:           "Case LPN-26-0001 was scheduled",
		RelatedEntityID:   "case-1",
		RelatedEntityType: "case",
		CreatedAt:         at,
	}))
}

func TestDeliverPending(t *testing.T) {
	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "ppk.db"))
	require.NoError(t, err)
	defer store.Close(context.Background())

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seed(t, store, "n1", "reporter", base)
	seed(t, store, "n2", "unknown", base.Add(time.Second))
	seed(t, store, "n3", "satgas", base.Add(2*time.Second))

	dir := notification.StaticDirectory{
		"reporter": {Name: "Pelapor", Email: "pelapor@example.ac.id"},
		"satgas":   {Name: "Satgas", Email: "satgas@example.ac.id"},
	}
	mailer := &fakeMailer{fail: map[string]bool{"satgas@example.ac.id": true}}

	s := NewScheduler("@every 1m", store.Notifications(), dir, mailer, "https://ppk.example.ac.id/")
	s.now = func() time.Time { return base.Add(time.Minute) }

	report, err := s.DeliverPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Sent: 1, Failed: 1, Skipped: 1}, report)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "pelapor@example.ac.id", mailer.sent[0].to.Email)
	assert.Contains(t, mailer.sent[0].html, "https://ppk.example.ac.id/cases/case-1")

	// the failed one is retried next pass
	left, err := store.Notifications().ListUndelivered(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "n3", left[0].ID)

	mailer.fail = nil
	report, err = s.DeliverPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Sent: 1}, report)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler("not a cron spec", nil, notification.StaticDirectory{}, &fakeMailer{}, "")
	assert.Error(t, s.Start())
}
