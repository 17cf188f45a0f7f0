package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterscope/evidence-core/internal/config"
	"github.com/clusterscope/evidence-core/internal/diffengine"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

func TestGetRevisionValues_ParsesYAML(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/releases/payments/api/revisions/4/values", r.URL.Path)
		w.Write([]byte("replicas: 3\nimage:\n  tag: v2.1\n"))
	}))
	defer store.Close()

	svc := NewReleaseStoreService(config.ReleaseStoreConfig{Endpoint: store.URL, Timeout: 5000}, logger.New("error"))
	tree, err := svc.GetRevisionValues(context.Background(), "api", "payments", 4)
	require.NoError(t, err)

	assert.Equal(t, 3, tree["replicas"])
	image, ok := tree["image"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "v2.1", image["tag"])
}

func TestGetRevisionValues_SendsBasicAuth(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "reader", user)
		assert.Equal(t, "secret", pass)
		w.Write([]byte("a: 1\n"))
	}))
	defer store.Close()

	svc := NewReleaseStoreService(config.ReleaseStoreConfig{
		Endpoint: store.URL,
		Timeout:  5000,
		Username: "reader",
		Password: "secret",
	}, logger.New("error"))

	_, err := svc.GetRevisionValues(context.Background(), "api", "payments", 1)
	require.NoError(t, err)
}

func TestGetRevisionValues_NonOKStatus(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "revision not found", http.StatusNotFound)
	}))
	defer store.Close()

	svc := NewReleaseStoreService(config.ReleaseStoreConfig{Endpoint: store.URL, Timeout: 5000}, logger.New("error"))
	_, err := svc.GetRevisionValues(context.Background(), "api", "payments", 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "revision not found")
}

func TestGetRevisionValues_NonMappingBody(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("- just\n- a list\n"))
	}))
	defer store.Close()

	svc := NewReleaseStoreService(config.ReleaseStoreConfig{Endpoint: store.URL, Timeout: 5000}, logger.New("error"))
	_, err := svc.GetRevisionValues(context.Background(), "api", "payments", 1)
	assert.ErrorIs(t, err, diffengine.ErrNotATree)
}

func TestFetchLogs_BuildsQuery(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/logs", r.URL.Path)
		assert.Equal(t, "payments", r.URL.Query().Get("namespace"))
		assert.Equal(t, "api-0", r.URL.Query().Get("pod"))
		assert.Equal(t, "app", r.URL.Query().Get("container"))
		assert.Equal(t, "200", r.URL.Query().Get("tail"))
		w.Write([]byte("line one\nline two\n"))
	}))
	defer store.Close()

	svc := NewLogStoreService(config.LogStoreConfig{Endpoint: store.URL, Timeout: 5000, TailLines: 500}, logger.New("error"))
	text, err := svc.FetchLogs(context.Background(), "payments", "api-0", "app", 200)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
}

func TestFetchLogs_DefaultTail(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "500", r.URL.Query().Get("tail"))
		assert.Empty(t, r.URL.Query().Get("container"))
		w.Write([]byte("ok\n"))
	}))
	defer store.Close()

	svc := NewLogStoreService(config.LogStoreConfig{Endpoint: store.URL, Timeout: 5000, TailLines: 500}, logger.New("error"))
	_, err := svc.FetchLogs(context.Background(), "payments", "api-0", "", 0)
	require.NoError(t, err)
}

func TestFetchLogs_NonOKStatus(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pod not found", http.StatusNotFound)
	}))
	defer store.Close()

	svc := NewLogStoreService(config.LogStoreConfig{Endpoint: store.URL, Timeout: 5000, TailLines: 500}, logger.New("error"))
	_, err := svc.FetchLogs(context.Background(), "payments", "gone-0", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
