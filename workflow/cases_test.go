package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/api/testhelpers"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
	"github.com/diantamela/satgas-ppk/workflow"
)

func TestCreateCaseNumbersSequentially(t *testing.T) {
	f := newFixture(t)
	first := f.newCase(t)
	second := f.newCase(t)

	assert.Equal(t, "LPN-250001", first.CaseNumber)
	assert.Equal(t, "LPN-250002", second.CaseNumber)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.Equal(t, int64(1), first.Version)
	require.Len(t, first.History, 1)
	assert.Equal(t, string(workflow.EventCaseCreated), first.History[0].Event)
	assert.Equal(t, 2, countCategory(f.notifications(t, reporter.ID), models.NotifyCaseReceived))
}

func TestCreateCaseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCase(ctx, reporter, workflow.CaseInput{Title: "   "})
	assert.True(t, workflow.IsKind(err, workflow.KindValidation), "got %v", err)

	_, err = f.svc.CreateCase(ctx, models.Actor{}, workflow.CaseInput{Title: "Laporan"})
	assert.True(t, workflow.IsKind(err, workflow.KindAuthorization), "got %v", err)
}

// takenNumbers reports a duplicate for the first n inserts
type takenNumbers struct {
	repository.CaseRepository
	left *int32
}

func (c takenNumbers) Insert(ctx context.Context, cs *models.Case) error {
	if atomic.AddInt32(c.left, -1) >= 0 {
		return repository.ErrDuplicate
	}
	return c.CaseRepository.Insert(ctx, cs)
}

type collidingStore struct {
	repository.Store
	left *int32
}

func (s collidingStore) Cases() repository.CaseRepository {
	return takenNumbers{s.Store.Cases(), s.left}
}

func TestCreateCaseRetriesNumberCollision(t *testing.T) {
	left := int32(2)
	f := withStore(collidingStore{testhelpers.NewStore(t), &left})

	c := f.newCase(t)
	assert.Equal(t, "LPN-250003", c.CaseNumber)

	left = 10
	_, err := f.svc.CreateCase(context.Background(), reporter, workflow.CaseInput{Title: "Laporan"})
	assert.True(t, workflow.IsKind(err, workflow.KindStorage), "got %v", err)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

// fullYear reports a prefix count close to the end of the yearly sequence
type fullYear struct {
	repository.CaseRepository
	used int64
}

func (c fullYear) CountByNumberPrefix(context.Context, string) (int64, error) {
	return c.used, nil
}

type fullYearStore struct {
	repository.Store
	used int64
}

func (s fullYearStore) Cases() repository.CaseRepository {
	return fullYear{s.Store.Cases(), s.used}
}

func TestCreateCaseNumberBounds(t *testing.T) {
	f := withStore(fullYearStore{testhelpers.NewStore(t), 9998})
	c := f.newCase(t)
	assert.Equal(t, "LPN-259999", c.CaseNumber)

	f = withStore(fullYearStore{testhelpers.NewStore(t), 9999})
	_, err := f.svc.CreateCase(context.Background(), reporter, workflow.CaseInput{Title: "Laporan"})
	assert.True(t, workflow.IsKind(err, workflow.KindStorage), "got %v", err)
	assert.ErrorIs(t, err, workflow.ErrCaseNumbersExhausted)
}

func TestVerifyAndReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t)

	_, err := f.svc.VerifyCase(ctx, reporter, c.ID, "")
	assert.True(t, workflow.IsKind(err, workflow.KindAuthorization), "got %v", err)

	verified, err := f.svc.VerifyCase(ctx, satgas, c.ID, "berkas lengkap")
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, verified.Status)
	assert.Equal(t, c.Version+1, verified.Version)
	last := verified.History[len(verified.History)-1]
	assert.Equal(t, models.StatusPending, last.From)
	assert.Equal(t, models.StatusVerified, last.To)
	assert.Equal(t, "berkas lengkap", last.Notes)

	_, err = f.svc.VerifyCase(ctx, satgas, c.ID, "")
	var werr *workflow.Error
	require.True(t, errors.As(err, &werr), "got %v", err)
	assert.Equal(t, workflow.KindInvalidState, werr.Kind)
	assert.Equal(t, workflow.EventCaseVerified, werr.Event)

	rejected, err := f.svc.RejectCase(ctx, satgas, c.ID, "bukan kewenangan satgas")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	_, err = f.svc.RejectCase(ctx, satgas, c.ID, "")
	assert.True(t, workflow.IsKind(err, workflow.KindInvalidState), "got %v", err)

	ns := f.notifications(t, reporter.ID)
	assert.Equal(t, 1, countCategory(ns, models.NotifyCaseVerified))
	assert.Equal(t, 1, countCategory(ns, models.NotifyCaseRejected))
}

func TestRejectSupersedesSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t)
	_, err := f.svc.CreateSchedule(ctx, satgas, c.ID, sessionInput(clock.Add(time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.RejectCase(ctx, satgas, c.ID, "dicabut pelapor")
	require.NoError(t, err)
	assertScheduleInvariant(t, f, c.ID)

	active, err := f.svc.GetActiveSchedule(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestStartInvestigationNeedsSchedule(t *testing.T) {
	f := newFixture(t)
	c := f.newCase(t)
	_, err := f.svc.StartInvestigation(context.Background(), satgas, c.ID)
	assert.True(t, workflow.IsKind(err, workflow.KindInvalidState), "got %v", err)
}

func TestOverrideStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t)

	_, err := f.svc.OverrideStatus(ctx, satgas, c.ID, "ARCHIVED", "")
	assert.True(t, workflow.IsKind(err, workflow.KindValidation), "got %v", err)

	_, err = f.svc.OverrideStatus(ctx, satgas, c.ID, models.StatusScheduled, "")
	assert.True(t, workflow.IsKind(err, workflow.KindInvalidState), "got %v", err)
	assert.Equal(t, models.StatusPending, f.reload(t, c.ID).Status)

	sched, err := f.svc.CreateSchedule(ctx, satgas, c.ID, sessionInput(clock.Add(time.Hour)))
	require.NoError(t, err)

	got, err := f.svc.OverrideStatus(ctx, rektor, c.ID, models.StatusInProgress, "langsung diperiksa")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	got, err = f.svc.OverrideStatus(ctx, rektor, c.ID, models.StatusScheduled, "kembali ke jadwal")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.True(t, sched.Start.Equal(*got.ScheduledDate))
	assertScheduleInvariant(t, f, c.ID)

	got, err = f.svc.OverrideStatus(ctx, rektor, c.ID, models.StatusVerified, "")
	require.NoError(t, err)
	assert.Nil(t, got.ScheduledDate)
	assertScheduleInvariant(t, f, c.ID)

	assert.Equal(t, 3, countCategory(f.notifications(t, reporter.ID), models.NotifyStatusChanged))
}

func TestSetInvestigationProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t)

	got, err := f.svc.SetInvestigationProgress(ctx, satgas, c.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, got.InvestigationProgress)
	assert.Equal(t, models.StatusPending, got.Status)

	_, err = f.svc.SetInvestigationProgress(ctx, satgas, c.ID, 101)
	assert.True(t, workflow.IsKind(err, workflow.KindValidation), "got %v", err)

	_, err = f.svc.SetInvestigationProgress(ctx, satgas, "missing", 10)
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound), "got %v", err)
}

// flakyCases fails the first Get with a driver error
type flakyCases struct {
	repository.CaseRepository
	calls *int32
}

func (c flakyCases) Get(ctx context.Context, id string) (*models.Case, error) {
	if atomic.AddInt32(c.calls, 1) == 1 {
		return nil, errors.New("connection reset")
	}
	return c.CaseRepository.Get(ctx, id)
}

type flakyStore struct {
	repository.Store
	calls *int32
}

func (s flakyStore) Cases() repository.CaseRepository {
	return flakyCases{s.Store.Cases(), s.calls}
}

func TestReadsRetryOnce(t *testing.T) {
	store := testhelpers.NewStore(t)
	c := withStore(store).newCase(t)

	calls := int32(0)
	f := withStore(flakyStore{store, &calls})
	got, err := f.svc.GetCase(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, int32(2), calls)
}

func TestWritesAreNotRetried(t *testing.T) {
	store := testhelpers.NewStore(t)
	c := withStore(store).newCase(t)

	calls := int32(0)
	f := withStore(flakyStore{store, &calls})
	_, err := f.svc.VerifyCase(context.Background(), satgas, c.ID, "")
	assert.True(t, workflow.IsKind(err, workflow.KindStorage), "got %v", err)
	assert.Equal(t, int32(1), calls)
	assert.Equal(t, models.StatusPending, withStore(store).reload(t, c.ID).Status)
}
