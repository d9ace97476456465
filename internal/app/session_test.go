package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// fakeLibrary is an in-memory LibraryStore
type fakeLibrary struct {
	mu     sync.Mutex
	videos map[string]*domain.VideoInfo
	saveCh chan string // receives the video id on every save
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		videos: make(map[string]*domain.VideoInfo),
		saveCh: make(chan string, 16),
	}
}

func (f *fakeLibrary) Save(info *domain.VideoInfo) error {
	f.mu.Lock()
	f.videos[info.VideoID] = info.Clone()
	f.mu.Unlock()
	f.saveCh <- info.VideoID
	return nil
}

func (f *fakeLibrary) LoadAll() ([]*domain.VideoInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*domain.VideoInfo, 0, len(f.videos))
	for _, v := range f.videos {
		all = append(all, v.Clone())
	}
	return all, nil
}

func (f *fakeLibrary) Find(videoID string) (*domain.VideoInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.videos[videoID]; ok {
		return v.Clone(), nil
	}
	return nil, nil
}

func (f *fakeLibrary) Remove(videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.videos, videoID)
	return nil
}

func (f *fakeLibrary) Search(string) ([]*domain.VideoInfo, error) {
	return f.LoadAll()
}

func newTestSession(t *testing.T, fake *fakeExtractor) (*SessionModel, *fakeLibrary) {
	t.Helper()
	orch := newTestOrchestrator(fake, 0)
	library := newFakeLibrary()
	session := NewSessionModel(orch, library, nil, nil, zap.NewNop())
	session.Start()
	t.Cleanup(session.Close)
	return session, library
}

// waitForTaskStatus polls until the task record reaches the wanted status
func waitForTaskStatus(t *testing.T, session *SessionModel, taskID string, status domain.VideoStatus) *TaskView {
	t.Helper()
	var view *TaskView
	require.Eventually(t, func() bool {
		v, ok := session.Get(taskID)
		if !ok {
			return false
		}
		view = v
		return v.Status == status
	}, 2*time.Second, 5*time.Millisecond, "task never reached status %s", status)
	return view
}

func TestSessionModel_SubmitRejectsInvalidURL(t *testing.T) {
	session, _ := newTestSession(t, &fakeExtractor{})

	taskID, err := session.Submit("not a url", domain.QualityBest)

	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.Empty(t, taskID)
	assert.Empty(t, session.List())
}

func TestSessionModel_SubmitCreatesPlaceholder(t *testing.T) {
	// The unbuffered gate holds the extractor so the placeholder is
	// observable before metadata arrives
	fake := &fakeExtractor{extractGate: make(chan string)}
	session, _ := newTestSession(t, fake)

	taskID, err := session.Submit(testURL, domain.Quality720p)
	require.NoError(t, err)

	view, ok := session.Get(taskID)
	require.True(t, ok)
	assert.Equal(t, placeholderTitle, view.Title)
	assert.Equal(t, "dQw4w9WgXcQ", view.VideoID)
	assert.Equal(t, domain.Quality720p, view.Quality)
	assert.Equal(t, domain.StatusPending, view.Status)

	<-fake.extractGate
}

func TestSessionModel_DownloadLifecycle720p(t *testing.T) {
	fake := &fakeExtractor{
		steps: []progressStep{
			{downloaded: 1024, total: 2048, speed: 512},
			{downloaded: 2048, total: 2048, speed: 512},
		},
	}
	session, library := newTestSession(t, fake)

	taskID, err := session.Submit(testURL, domain.Quality720p)
	require.NoError(t, err)

	view := waitForTaskStatus(t, session, taskID, domain.StatusCompleted)

	assert.Equal(t, "Test Video", view.Title)
	assert.Equal(t, domain.Quality720p, view.Quality)
	assert.Equal(t, 100.0, view.Progress)
	assert.NotEmpty(t, view.FilePath)
	assert.Equal(t, "Test Video.mp4", view.Filename)

	// Completion writes through to the library
	select {
	case id := <-library.saveCh:
		assert.Equal(t, "dQw4w9WgXcQ", id)
	case <-time.After(time.Second):
		t.Fatal("completed record was never saved to the library")
	}

	saved, err := library.Find("dQw4w9WgXcQ")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, domain.Quality720p, saved.Quality)
	assert.NotNil(t, saved.DownloadedAt)

	assert.Equal(t, 0, session.ActiveCount())
	assert.Equal(t, 1, session.CompletedCount())
}

func TestSessionModel_FailedDownloadKeepsLibraryUntouched(t *testing.T) {
	fake := &fakeExtractor{downloadErr: assert.AnError}
	session, library := newTestSession(t, fake)

	taskID, err := session.Submit(testURL, domain.QualityBest)
	require.NoError(t, err)

	view := waitForTaskStatus(t, session, taskID, domain.StatusError)
	assert.Contains(t, view.ErrorMessage, "download failed")

	all, err := library.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionModel_CancelMarksRecordCancelled(t *testing.T) {
	fake := &fakeExtractor{blockUntil: make(chan struct{})}
	session, library := newTestSession(t, fake)

	taskID, err := session.Submit(testURL, domain.QualityBest)
	require.NoError(t, err)

	waitForTaskStatus(t, session, taskID, domain.StatusDownloading)

	assert.True(t, session.Cancel(taskID))

	view := waitForTaskStatus(t, session, taskID, domain.StatusCancelled)
	assert.Equal(t, domain.StatusCancelled, view.Status)

	// A cancelled task is never persisted
	all, err := library.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	// Cancelling a terminal task reports inactive
	assert.Eventually(t, func() bool {
		return !session.Cancel(taskID)
	}, time.Second, 5*time.Millisecond)
}

func TestSessionModel_CancelUnknownTask(t *testing.T) {
	session, _ := newTestSession(t, &fakeExtractor{})

	assert.False(t, session.Cancel("no-such-task"))
}

func TestSessionModel_RemoveDeletesRecord(t *testing.T) {
	fake := &fakeExtractor{}
	session, _ := newTestSession(t, fake)

	taskID, err := session.Submit(testURL, domain.QualityBest)
	require.NoError(t, err)
	waitForTaskStatus(t, session, taskID, domain.StatusCompleted)

	assert.True(t, session.Remove(taskID))

	_, ok := session.Get(taskID)
	assert.False(t, ok)
	assert.False(t, session.Remove(taskID))
}

func TestSessionModel_RemoveCancelsActiveTask(t *testing.T) {
	fake := &fakeExtractor{blockUntil: make(chan struct{})}
	session, _ := newTestSession(t, fake)

	taskID, err := session.Submit(testURL, domain.QualityBest)
	require.NoError(t, err)
	waitForTaskStatus(t, session, taskID, domain.StatusDownloading)

	assert.True(t, session.Remove(taskID))

	_, ok := session.Get(taskID)
	assert.False(t, ok)

	// The orchestrator handle is released once the worker observes the
	// cancellation
	assert.Eventually(t, func() bool {
		return session.ActiveCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSessionModel_ListSnapshotsAreIndependent(t *testing.T) {
	fake := &fakeExtractor{}
	session, _ := newTestSession(t, fake)

	taskID, err := session.Submit(testURL, domain.QualityBest)
	require.NoError(t, err)
	waitForTaskStatus(t, session, taskID, domain.StatusCompleted)

	views := session.List()
	require.Len(t, views, 1)

	// Mutating a snapshot never affects the session's record
	views[0].Title = "mutated"
	fresh, ok := session.Get(taskID)
	require.True(t, ok)
	assert.Equal(t, "Test Video", fresh.Title)
}

func TestSessionModel_StatsWithoutHistory(t *testing.T) {
	fake := &fakeExtractor{}
	session, _ := newTestSession(t, fake)

	first, err := session.Submit(testURL, domain.QualityBest)
	require.NoError(t, err)
	second, err := session.Submit("https://youtu.be/abcdefghijk", domain.QualityBest)
	require.NoError(t, err)

	waitForTaskStatus(t, session, first, domain.StatusCompleted)
	waitForTaskStatus(t, session, second, domain.StatusCompleted)

	stats, err := session.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Completed)
}

func TestSessionModel_ListenerReceivesEvents(t *testing.T) {
	fake := &fakeExtractor{}
	orch := newTestOrchestrator(fake, 0)
	session := NewSessionModel(orch, newFakeLibrary(), nil, nil, zap.NewNop())

	var mu sync.Mutex
	var seen []domain.Event
	session.SetListener(func(e domain.Event) {
		mu.Lock()
		seen = append(seen, e)
		mu.Unlock()
	})
	session.Start()

	taskID, err := session.Submit(testURL, domain.QualityBest)
	require.NoError(t, err)
	waitForTaskStatus(t, session, taskID, domain.StatusCompleted)

	session.Close()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	_, isMeta := seen[0].(domain.MetadataExtracted)
	assert.True(t, isMeta)
}
