// Package testhelpers builds throwaway stores and tokens for handler and workflow tests.
package testhelpers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/sqlstore"
)

// Secret signs tokens issued by Token
const Secret = "test-secret"

// Actors used across tests
var (
	Reporter = models.Actor{ID: "reporter-1", Role: models.RoleUser}
	Satgas   = models.Actor{ID: "satgas-1", Role: models.RoleSatgas}
	Rektor   = models.Actor{ID: "rektor-1", Role: models.RoleRektor}
)

// NewStore opens a SQLite store in a temp dir that is closed when the test ends
func NewStore(t testing.TB) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "satgas-ppk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

// Token issues a bearer token for actor signed with Secret
func Token(t testing.TB, actor models.Actor) string {
	t.Helper()
	token, err := api.NewIdentity(Secret, time.Hour).IssueToken(actor, time.Now())
	require.NoError(t, err)
	return token
}
