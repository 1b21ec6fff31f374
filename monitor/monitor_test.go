package monitor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"research-tracker-api/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMonitorRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevCfg, prevDB, prevRedis, prevPath := config.AppConfig, config.DB, config.Redis, logFilePath
	cfg := *prevCfg
	config.AppConfig = &cfg
	t.Cleanup(func() {
		config.AppConfig, config.DB, config.Redis, logFilePath = prevCfg, prevDB, prevRedis, prevPath
	})
	config.Redis = nil

	router := gin.New()
	RegisterMonitorRoutes(router)
	return router
}

func TestHealth(t *testing.T) {
	router := newMonitorRouter(t)

	config.DB = nil
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/monitor/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not initialized")

	db, err := gorm.Open(sqlite.Open("file:monitor_health?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	config.DB = db

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/monitor/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"disabled"`)
}

func TestLogsRoute(t *testing.T) {
	router := newMonitorRouter(t)

	path := filepath.Join(t.TempDir(), "api.log")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))
	logFilePath = func() string { return path }

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		return rec
	}

	// no hash configured
	assert.Equal(t, http.StatusUnauthorized, get("/logs?token=secret").Code)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	config.AppConfig.LogsTokenHash = string(hash)

	assert.Equal(t, http.StatusUnauthorized, get("/logs").Code)
	assert.Equal(t, http.StatusUnauthorized, get("/logs?token=wrong").Code)

	rec := get("/logs?token=secret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "line one\nline two\n", rec.Body.String())
}

func TestReadTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tail.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 10)+"tail"), 0o644))

	data, err := readTail(path, 4)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(data))

	data, err = readTail(path, 1024)
	require.NoError(t, err)
	assert.Len(t, data, 14)

	_, err = readTail(filepath.Join(t.TempDir(), "missing.log"), 4)
	assert.Error(t, err)
}
