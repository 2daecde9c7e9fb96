package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/diantamela/satgas-ppk/models"
)

func TestNew(t *testing.T) {
	t.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
	assert.Equal(t, DriverSQLite, conf.Driver)
	assert.Equal(t, "@every 1m", conf.DeliverySchedule)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dbDriver: mongo
port: "9000"
recipients:
  user-1:
    name: Rina
    email: rina@example.ac.id
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")

	conf, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, conf.Driver)
	assert.Equal(t, "9000", conf.Port)
	assert.Equal(t, "from-env", conf.JWTSecret)

	r, ok := conf.Recipients.Lookup("user-1")
	assert.True(t, ok)
	assert.Equal(t, "rina@example.ac.id", r.Email)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestErrorStatus(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, w, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Response.Message)
	assert.Equal(t, "bad request", body.Response.Error)
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
