package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-red/sentinel-backend/config"
	projectdomain "github.com/sentinel-red/sentinel-backend/internal/projects/domain"
	scandomain "github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: "0", AllowedOrigins: []string{"http://localhost:5173"}},
		Scan: config.ScanConfig{
			TickInterval:    2 * time.Millisecond,
			Retention:       time.Hour,
			JanitorSchedule: "@every 1h",
			StartRate:       100,
			StartBurst:      10,
			SeedFixtures:    true,
		},
		Session: config.SessionConfig{DBPath: filepath.Join(t.TempDir(), "session.db")},
		App:     config.AppConfig{Environment: "test", Version: "test"},
	}
}

func setupApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })
	return app
}

func call(app *App, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestApp_ScanLifecycle(t *testing.T) {
	app := setupApp(t)

	w := call(app, http.MethodGet, "/api/v1/projects")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Projects []projectdomain.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Projects, 2)
	assert.Equal(t, "proj-1", list.Projects[0].ID)

	w = call(app, http.MethodPost, "/api/v1/projects/proj-1/scans")
	require.Equal(t, http.StatusAccepted, w.Code)
	var started struct {
		ScanID string `json:"scan_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	require.Eventually(t, func() bool {
		st, ok := app.Simulator.Snapshot(started.ScanID)
		return ok && st.Status == scandomain.StatusCompleted
	}, 5*time.Second, 5*time.Millisecond)

	w = call(app, http.MethodGet, "/api/v1/scans/"+started.ScanID+"/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"progress":100`)

	w = call(app, http.MethodGet, "/api/v1/projects/proj-1")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Project projectdomain.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, started.ScanID, got.Project.LastScanID)
	assert.Equal(t, scandomain.StatusCompleted, got.Project.LastScanStatus)
	require.NotNil(t, got.Project.VulnerabilityCounts)
	assert.Equal(t, simulator.DefaultSummary, *got.Project.VulnerabilityCounts)

	w = call(app, http.MethodGet, "/api/v1/projects/proj-1/scans")
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Scans []scandomain.HistoryItem `json:"scans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.NotEmpty(t, hist.Scans)
	assert.Equal(t, started.ScanID, hist.Scans[0].ScanID)
	assert.Equal(t, simulator.DefaultSummary.Total(), hist.Scans[0].VulnerabilityCount)

	w = call(app, http.MethodGet, "/api/v1/scans/"+started.ScanID+"/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"project_name":"E-Commerce API"`)
}

func TestApp_AmbientRoutes(t *testing.T) {
	app := setupApp(t)

	w := call(app, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"session":"up"`)
	assert.Contains(t, w.Body.String(), `"db":"disabled"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = call(app, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sentinel_scans_active")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = call(app, http.MethodGet, "/api/v1/attack-graph/nodes/node-1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(app, http.MethodGet, "/api/v1/settings/theme")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOriginHosts(t *testing.T) {
	assert.Equal(t,
		[]string{"localhost:5173", "*", "app.example.com"},
		originHosts([]string{"http://localhost:5173", "*", " ", "app.example.com"}),
	)
}

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	SetGinMode("production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	SetGinMode("test")
	assert.Equal(t, gin.TestMode, gin.Mode())

	SetGinMode("development")
	assert.Equal(t, gin.DebugMode, gin.Mode())
}
