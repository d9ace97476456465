//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/api"
	"github.com/yourusername/yt-grabber-go/internal/app"
	"github.com/yourusername/yt-grabber-go/internal/domain"
	"github.com/yourusername/yt-grabber-go/internal/infrastructure"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// stubExtractor fakes the yt-dlp engine for end-to-end tests
type stubExtractor struct {
	block       chan struct{} // when set, Download waits here or for ctx
	extractFail bool
	downloadErr error
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (*domain.VideoInfo, error) {
	if s.extractFail {
		return nil, assert.AnError
	}
	return &domain.VideoInfo{
		VideoID:  domain.ExtractVideoID(url),
		Title:    "Test Video",
		Uploader: "Test Channel",
		Duration: 123,
		FileSize: 4096,
	}, nil
}

func (s *stubExtractor) Download(ctx context.Context, req domain.DownloadRequest, progress domain.ProgressFunc) (*domain.DownloadResult, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, domain.ErrCancelled
		}
	}
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}

	progress(2048, 4096, 1024, false)
	progress(4096, 4096, 1024, false)
	progress(0, 0, 0, true)

	return &domain.DownloadResult{
		Filename: "Test Video.mp4",
		FilePath: filepath.Join(req.OutputDir, "Test Video.mp4"),
		FileSize: 4096,
	}, nil
}

func setupTestServer(t *testing.T, extractor domain.Extractor) *httptest.Server {
	t.Helper()
	tmpDir := t.TempDir()
	log := zap.NewNop()

	library, err := infrastructure.NewLibraryStore(filepath.Join(tmpDir, "library.json"), log)
	require.NoError(t, err)

	history, err := infrastructure.NewSQLiteHistoryRepository(filepath.Join(tmpDir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	config := domain.DefaultConfig()
	config.Download.OutputDir = tmpDir

	orch := app.NewOrchestrator(extractor, &config.Download, log)
	session := app.NewSessionModel(orch, library, history, nil, log)
	session.Start()
	t.Cleanup(session.Close)

	router := api.SetupRouter(session, library, history, log)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func addDownload(t *testing.T, server *httptest.Server, url, quality string) string {
	t.Helper()
	payload := map[string]string{"url": url}
	if quality != "" {
		payload["quality"] = quality
	}
	data, _ := json.Marshal(payload)

	resp, err := http.Post(server.URL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	taskID, _ := result["task_id"].(string)
	require.NotEmpty(t, taskID)
	return taskID
}

func getDownload(t *testing.T, server *httptest.Server, taskID string) map[string]interface{} {
	t.Helper()
	resp, err := http.Get(server.URL + "/api/v1/downloads/" + taskID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// waitForStatus polls the download endpoint until the task reports the
// wanted status
func waitForStatus(t *testing.T, server *httptest.Server, taskID, status string) map[string]interface{} {
	t.Helper()
	var last map[string]interface{}
	require.Eventually(t, func() bool {
		last = getDownload(t, server, taskID)
		return last["status"] == status
	}, 3*time.Second, 10*time.Millisecond, "task never reached status %s, last: %v", status, last)
	return last
}

func TestAPI_AddDownload(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	payload := map[string]string{"url": testVideoURL, "quality": "720p"}
	data, _ := json.Marshal(payload)

	resp, err := http.Post(server.URL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.NotEmpty(t, result["task_id"])
	assert.Equal(t, testVideoURL, result["url"])
	assert.Equal(t, "720p", result["quality"])
}

func TestAPI_AddDownload_InvalidURL(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	payload := map[string]string{"url": "https://example.com/watch?v=nope"}
	data, _ := json.Marshal(payload)

	resp, err := http.Post(server.URL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ListDownloads(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	first := addDownload(t, server, testVideoURL, "")
	second := addDownload(t, server, "https://youtu.be/abcdefghijk", "1080p")
	require.NotEqual(t, first, second)

	resp, err := http.Get(server.URL + "/api/v1/downloads")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var downloads []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&downloads))
	assert.Len(t, downloads, 2)
}

func TestAPI_GetDownload_NotFound(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	resp, err := http.Get(server.URL + "/api/v1/downloads/no-such-task")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CancelDownload(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{block: make(chan struct{})})

	taskID := addDownload(t, server, testVideoURL, "")
	waitForStatus(t, server, taskID, "downloading")

	resp, err := http.Post(server.URL+"/api/v1/downloads/"+taskID+"/cancel", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	waitForStatus(t, server, taskID, "cancelled")
}

func TestAPI_CancelDownload_NotFound(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	resp, err := http.Post(server.URL+"/api/v1/downloads/no-such-task/cancel", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DeleteDownload(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	taskID := addDownload(t, server, testVideoURL, "")
	waitForStatus(t, server, taskID, "completed")

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/downloads/"+taskID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	getResp, err := http.Get(server.URL + "/api/v1/downloads/" + taskID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestAPI_GetStats(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	taskID := addDownload(t, server, testVideoURL, "")
	waitForStatus(t, server, taskID, "completed")

	resp, err := http.Get(server.URL + "/api/v1/downloads/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))

	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["completed"])
}

func TestAPI_Health(t *testing.T) {
	server := setupTestServer(t, &stubExtractor{})

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("unexpected status for %s", path))
	}
}
