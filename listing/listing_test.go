package listing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/api/testhelpers"
	"github.com/diantamela/satgas-ppk/listing"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

var base = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func seed(t *testing.T, store repository.Store, n int, status models.CaseStatus, offset int) {
	t.Helper()
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(offset+i) * time.Minute)
		c := &models.Case{
			ID:         uuid.NewString(),
			CaseNumber: fmt.Sprintf("LPN-25%04d", offset+i+1),
			Title:      fmt.Sprintf("Laporan %d", offset+i+1),
			ReporterID: "reporter-1",
			Status:     status,
			Version:    1,
			History:    []models.CaseHistoryEntry{},
			CreatedAt:  at,
			UpdatedAt:  at,
		}
		if status == models.StatusScheduled {
			d := at.Add(24 * time.Hour)
			c.ScheduledDate = &d
		}
		require.NoError(t, store.Cases().Insert(context.Background(), c))
	}
}

func TestListCasesByStatus(t *testing.T) {
	store := testhelpers.NewStore(t)
	seed(t, store, 15, models.StatusScheduled, 0)
	seed(t, store, 5, models.StatusPending, 15)

	statuses, unknown := listing.ParseStatuses("scheduled")
	require.Empty(t, unknown)

	svc := listing.ForStore(store)
	page, err := svc.ListCases(context.Background(), models.CaseFilter{Statuses: statuses}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 15, TotalPages: 2}, page.Pagination)
	assert.False(t, page.Degraded)
	for _, it := range page.Items {
		assert.Equal(t, models.StatusScheduled, it.Status)
		require.NotNil(t, it.DocumentCount)
	}

	page, err = svc.ListCases(context.Background(), models.CaseFilter{Statuses: statuses}, 2, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	// newest first
	assert.Equal(t, "LPN-250005", page.Items[0].CaseNumber)
}

func TestListCasesFilters(t *testing.T) {
	store := testhelpers.NewStore(t)
	seed(t, store, 3, models.StatusScheduled, 0)
	seed(t, store, 2, models.StatusPending, 3)
	svc := listing.ForStore(store)
	ctx := context.Background()

	page, err := svc.ListCases(ctx, models.CaseFilter{Search: "laporan 4"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "LPN-250004", page.Items[0].CaseNumber)

	from := base.Add(24*time.Hour + time.Minute)
	page, err = svc.ListCases(ctx, models.CaseFilter{ScheduledFrom: &from}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.Total)

	page, err = svc.ListCases(ctx, models.CaseFilter{Statuses: []models.CaseStatus{"pending", "in-progress"}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, listing.DefaultPageSize, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.Page)
}

func TestListCasesEmpty(t *testing.T) {
	svc := listing.ForStore(testhelpers.NewStore(t))
	page, err := svc.ListCases(context.Background(), models.CaseFilter{}, 3, 500)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, models.Pagination{Page: 3, Limit: listing.MaxPageSize}, page.Pagination)
}

type fakeStrategy struct {
	name  string
	items []models.CaseSummary
	total int64
	err   error
	calls int
	last  repository.CaseQuery
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) List(_ context.Context, q repository.CaseQuery) ([]models.CaseSummary, int64, error) {
	f.calls++
	f.last = q
	return f.items, f.total, f.err
}

func TestListCasesFallsBack(t *testing.T) {
	primary := &fakeStrategy{name: "enriched", err: errors.New("no such table: schedules")}
	degraded := &fakeStrategy{name: "plain", items: []models.CaseSummary{{ID: "c1"}}, total: 21}

	page, err := listing.NewService(primary, degraded).ListCases(context.Background(), models.CaseFilter{}, 3, 10)
	require.NoError(t, err)
	assert.True(t, page.Degraded)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, degraded.calls)
	assert.Equal(t, 20, degraded.last.Offset)
	assert.Equal(t, 10, degraded.last.Limit)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, "c1", page.Items[0].ID)
}

func TestListCasesPrimaryServes(t *testing.T) {
	primary := &fakeStrategy{name: "enriched", items: []models.CaseSummary{{ID: "c1"}}, total: 1}
	degraded := &fakeStrategy{name: "plain"}

	page, err := listing.NewService(primary, degraded).ListCases(context.Background(), models.CaseFilter{}, 1, 10)
	require.NoError(t, err)
	assert.False(t, page.Degraded)
	assert.Zero(t, degraded.calls)
}

func TestListCasesBothTiersFail(t *testing.T) {
	primary := &fakeStrategy{name: "enriched", err: errors.New("timeout")}
	degraded := &fakeStrategy{name: "plain", err: errors.New("database is locked")}

	_, err := listing.NewService(primary, degraded).ListCases(context.Background(), models.CaseFilter{}, 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Contains(t, err.Error(), "timeout")
}

func TestParseStatuses(t *testing.T) {
	tests := []struct {
		raw     string
		want    []models.CaseStatus
		unknown []string
	}{
		{"", nil, nil},
		{"scheduled", []models.CaseStatus{models.StatusScheduled}, nil},
		{"Pending, in-progress ,COMPLETED", []models.CaseStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted}, nil},
		{"pending,archived", []models.CaseStatus{models.StatusPending}, []string{"archived"}},
		{",,", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, unknown := listing.ParseStatuses(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.unknown, unknown)
		})
	}
}
