package infrastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yt-grabber-go/internal/domain"
)

func newTestHistory(t *testing.T) *SQLiteHistoryRepository {
	t.Helper()
	repo, err := NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHistoryRepository_CreateAndFind(t *testing.T) {
	repo := newTestHistory(t)

	entry := &domain.HistoryEntry{
		TaskID:  "task-1",
		URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID: "dQw4w9WgXcQ",
		Quality: domain.Quality720p,
		Status:  domain.StatusPending,
	}
	require.NoError(t, repo.Create(entry))

	found, err := repo.FindByTaskID("task-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entry.URL, found.URL)
	assert.Equal(t, domain.StatusPending, found.Status)
}

func TestHistoryRepository_FindMissingReturnsNil(t *testing.T) {
	repo := newTestHistory(t)

	found, err := repo.FindByTaskID("nope")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestHistoryRepository_Update(t *testing.T) {
	repo := newTestHistory(t)

	entry := &domain.HistoryEntry{TaskID: "task-1", URL: "u", Status: domain.StatusPending}
	require.NoError(t, repo.Create(entry))

	now := time.Now()
	entry.Status = domain.StatusCompleted
	entry.FilePath = "/downloads/video.mp4"
	entry.CompletedAt = &now
	require.NoError(t, repo.Update(entry))

	found, err := repo.FindByTaskID("task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, found.Status)
	assert.Equal(t, "/downloads/video.mp4", found.FilePath)
	assert.NotNil(t, found.CompletedAt)
}

func TestHistoryRepository_GetStats(t *testing.T) {
	repo := newTestHistory(t)

	entries := []*domain.HistoryEntry{
		{TaskID: "t1", URL: "u1", Status: domain.StatusCompleted},
		{TaskID: "t2", URL: "u2", Status: domain.StatusCompleted},
		{TaskID: "t3", URL: "u3", Status: domain.StatusError},
		{TaskID: "t4", URL: "u4", Status: domain.StatusCancelled},
		{TaskID: "t5", URL: "u5", Status: domain.StatusDownloading},
	}
	for _, e := range entries {
		require.NoError(t, repo.Create(e))
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(1), stats.Downloading)
}

func TestHistoryRepository_FindRecent(t *testing.T) {
	repo := newTestHistory(t)

	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, repo.Create(&domain.HistoryEntry{TaskID: id, URL: "u", Status: domain.StatusPending}))
		time.Sleep(5 * time.Millisecond)
	}

	recent, err := repo.FindRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "t3", recent[0].TaskID)
	assert.Equal(t, "t2", recent[1].TaskID)
}
