package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterscope/evidence-core/internal/config"
	"github.com/clusterscope/evidence-core/internal/models"
	"github.com/clusterscope/evidence-core/internal/services"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

func newEvidenceRouter(t *testing.T, releaseStoreURL, logStoreURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.New("error")

	releases := services.NewReleaseStoreService(config.ReleaseStoreConfig{Endpoint: releaseStoreURL, Timeout: 5000}, log)
	logStore := services.NewLogStoreService(config.LogStoreConfig{Endpoint: logStoreURL, Timeout: 5000, TailLines: 500}, log)
	handler := NewEvidenceHandler(releases, logStore, log)

	router := gin.New()
	router.POST("/api/v1/tools/diff", handler.DiffRevisions)
	router.POST("/api/v1/tools/logs/analyze", handler.AnalyzeLogs)
	router.GET("/api/v1/tools/exitcode/:code", handler.ClassifyExitCode)
	return router
}

func TestDiffRevisions_InlineValues(t *testing.T) {
	router := newEvidenceRouter(t, "http://unused", "http://unused")

	w := postJSON(t, router, "/api/v1/tools/diff", map[string]interface{}{
		"old_values": map[string]interface{}{"replicas": 2, "image": map[string]interface{}{"tag": "v1.0"}},
		"new_values": map[string]interface{}{"replicas": 3, "image": map[string]interface{}{"tag": "v1.0"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status  string                `json:"status"`
		Changes []models.ChangeRecord `json:"changes"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "replicas", resp.Changes[0].Path)
	assert.Equal(t, models.ChangeChanged, resp.Changes[0].Kind)
}

func TestDiffRevisions_IdenticalTreesEmptyList(t *testing.T) {
	router := newEvidenceRouter(t, "http://unused", "http://unused")

	values := map[string]interface{}{"a": map[string]interface{}{"b": 1}}
	w := postJSON(t, router, "/api/v1/tools/diff", map[string]interface{}{
		"old_values": values,
		"new_values": values,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changes":[]`)
}

func TestDiffRevisions_FetchesFromReleaseStore(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/releases/payments/api/revisions/1/values":
			w.Write([]byte("replicas: 2\n"))
		case "/api/v1/releases/payments/api/revisions/2/values":
			w.Write([]byte("replicas: 3\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer store.Close()

	router := newEvidenceRouter(t, store.URL, "http://unused")
	w := postJSON(t, router, "/api/v1/tools/diff", map[string]interface{}{
		"release":      "api",
		"namespace":    "payments",
		"old_revision": 1,
		"new_revision": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"path":"replicas"`)
}

func TestDiffRevisions_ReleaseStoreDownReturns502(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer store.Close()

	router := newEvidenceRouter(t, store.URL, "http://unused")
	w := postJSON(t, router, "/api/v1/tools/diff", map[string]interface{}{
		"release":      "api",
		"namespace":    "payments",
		"old_revision": 1,
		"new_revision": 2,
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestDiffRevisions_MissingInput(t *testing.T) {
	router := newEvidenceRouter(t, "http://unused", "http://unused")

	w := postJSON(t, router, "/api/v1/tools/diff", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiffRevisions_ScalarRootRejected(t *testing.T) {
	router := newEvidenceRouter(t, "http://unused", "http://unused")

	w := postJSON(t, router, "/api/v1/tools/diff", map[string]interface{}{
		"old_values": "just a string",
		"new_values": map[string]interface{}{"a": 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeLogs_InlineText(t *testing.T) {
	router := newEvidenceRouter(t, "http://unused", "http://unused")

	w := postJSON(t, router, "/api/v1/tools/logs/analyze", map[string]interface{}{
		"text":      "INFO: ok\nERROR: boom\n",
		"exit_code": 137,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Evidence models.LogEvidence `json:"evidence"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Evidence.ErrorLines, 1)
	assert.Equal(t, 2, resp.Evidence.ErrorLines[0].Line)
	require.NotNil(t, resp.Evidence.ExitCode)
	assert.Equal(t, models.ExitOOMKilled, resp.Evidence.ExitCode.Category)
}

func TestAnalyzeLogs_FetchesFromLogStore(t *testing.T) {
	logStore := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "payments", r.URL.Query().Get("namespace"))
		assert.Equal(t, "api-0", r.URL.Query().Get("pod"))
		w.Write([]byte("panic: runtime error\n"))
	}))
	defer logStore.Close()

	router := newEvidenceRouter(t, "http://unused", logStore.URL)
	w := postJSON(t, router, "/api/v1/tools/logs/analyze", map[string]interface{}{
		"namespace": "payments",
		"pod":       "api-0",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pattern":"panic"`)
}

func TestAnalyzeLogs_MissingInput(t *testing.T) {
	router := newEvidenceRouter(t, "http://unused", "http://unused")

	w := postJSON(t, router, "/api/v1/tools/logs/analyze", map[string]interface{}{"pod": "api-0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassifyExitCode_Endpoint(t *testing.T) {
	router := newEvidenceRouter(t, "http://unused", "http://unused")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tools/exitcode/137", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"oom_killed"`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tools/exitcode/notanumber", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
