package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/workflow"
)

func TestRecordActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t)

	a, err := f.svc.RecordActivity(ctx, satgas, c.ID, workflow.ActivityInput{
		Title:       "Koordinasi dengan fakultas",
		Attachments: []models.FileRef{{FileID: "f1", FileName: "notulen.pdf", FileType: "application/pdf", FileSize: 2048, StoragePath: "satgas-ppk/cases/x/notulen.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityOther, a.Type)
	assert.Equal(t, []string{}, a.Participants)
	assert.Equal(t, satgas.ID, a.ConductedBy)

	// the log never moves the case
	got := f.reload(t, c.ID)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, c.Version, got.Version)

	list, err := f.svc.ListActivities(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Attachments, 1)
	assert.Equal(t, "notulen.pdf", list[0].Attachments[0].FileName)
}

func TestRecordActivityRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t)

	_, err := f.svc.RecordActivity(ctx, satgas, c.ID, workflow.ActivityInput{Type: "PICNIC"})
	assert.True(t, workflow.IsKind(err, workflow.KindValidation), "got %v", err)

	_, err = f.svc.RecordActivity(ctx, satgas, c.ID, workflow.ActivityInput{AccessLevel: "EVERYONE"})
	assert.True(t, workflow.IsKind(err, workflow.KindValidation), "got %v", err)

	_, err = f.svc.RecordActivity(ctx, reporter, c.ID, workflow.ActivityInput{})
	assert.True(t, workflow.IsKind(err, workflow.KindAuthorization), "got %v", err)

	_, err = f.svc.RecordActivity(ctx, satgas, "missing", workflow.ActivityInput{})
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound), "got %v", err)

	_, err = f.svc.ListActivities(ctx, "missing")
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound), "got %v", err)
}
