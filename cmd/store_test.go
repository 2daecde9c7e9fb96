package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/config"
)

func TestOpenStoreSQLite(t *testing.T) {
	conf := &config.Config{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "ppk.db")}
	b, err := openStore(conf)
	require.NoError(t, err)
	defer b.Close(context.Background())

	assert.NoError(t, b.ping(context.Background()))
	assert.NoError(t, b.migrate(context.Background()))
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := openStore(&config.Config{Driver: "postgres"})
	assert.EqualError(t, err, `unknown DB_DRIVER "postgres"`)
}
