package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-red/sentinel-backend/internal/fixtures"
	"github.com/sentinel-red/sentinel-backend/internal/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpl, err := fixtures.Report()
	require.NoError(t, err)

	r := gin.New()
	New(reports.NewService(tmpl, nil, nil, "", nil)).Register(r.Group("/scans"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReport(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/scans/scan-9/report")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Report reports.SecurityReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "scan-9", resp.Report.ScanID)
	assert.Equal(t, "E-Commerce API", resp.Report.ProjectName)
	assert.NotEmpty(t, resp.Report.Findings)
}

func TestExport(t *testing.T) {
	r := setupRouter(t)

	t.Run("json by default", func(t *testing.T) {
		w := get(r, "/scans/scan-9/report/export")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "security-report-scan-9.json")
	})

	t.Run("markdown", func(t *testing.T) {
		w := get(r, "/scans/scan-9/report/export?format=markdown")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
		assert.Contains(t, w.Body.String(), "# ")
	})

	t.Run("pdf without font", func(t *testing.T) {
		w := get(r, "/scans/scan-9/report/export?format=pdf")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown format", func(t *testing.T) {
		w := get(r, "/scans/scan-9/report/export?format=docx")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
