package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/domain"
	"github.com/yourusername/yt-grabber-go/internal/infrastructure"
)

// placeholderTitle is shown until metadata extraction fills in the record
const placeholderTitle = "Loading..."

// TaskView is the consumer-facing snapshot of one task
type TaskView struct {
	TaskID string `json:"task_id"`
	*domain.VideoInfo
}

// SessionModel is the authoritative, presentation-agnostic view of all
// tasks known in this run. It folds orchestrator events into per-task
// records, persists completed records to the library, and exposes
// aggregate counters. It is the only writer to the library store.
type SessionModel struct {
	orch     *Orchestrator
	library  domain.LibraryStore
	history  domain.HistoryRepository // optional
	notifier *infrastructure.NotificationService
	logger   *zap.Logger

	mu    sync.RWMutex
	tasks map[string]*domain.VideoInfo

	listener func(domain.Event)

	consumeWg sync.WaitGroup
}

// NewSessionModel creates a new session model. history and notifier may
// be nil.
func NewSessionModel(
	orch *Orchestrator,
	library domain.LibraryStore,
	history domain.HistoryRepository,
	notifier *infrastructure.NotificationService,
	logger *zap.Logger,
) *SessionModel {
	return &SessionModel{
		orch:     orch,
		library:  library,
		history:  history,
		notifier: notifier,
		logger:   logger,
		tasks:    make(map[string]*domain.VideoInfo),
	}
}

// SetListener registers a callback that receives every folded event.
// Intended for the presentation layer; invoked from the consume goroutine.
func (s *SessionModel) SetListener(fn func(domain.Event)) {
	s.listener = fn
}

// Start begins consuming orchestrator events. Call exactly once.
func (s *SessionModel) Start() {
	s.consumeWg.Add(1)
	go s.consume()
}

// Close shuts down the orchestrator and waits for the event stream to
// drain
func (s *SessionModel) Close() {
	s.orch.Close()
	s.consumeWg.Wait()
}

// Submit validates the URL, creates a placeholder record for immediate
// display and delegates to the orchestrator. Invalid input is rejected
// with an explicit error rather than silently ignored.
func (s *SessionModel) Submit(url string, quality domain.Quality) (string, error) {
	if !domain.IsValidURL(url) {
		return "", domain.ErrInvalidURL
	}
	quality = domain.NormalizeQuality(quality)

	taskID, err := s.orch.Submit(url, quality)
	if err != nil {
		return "", err
	}

	placeholder := &domain.VideoInfo{
		VideoID: domain.ExtractVideoID(url),
		Title:   placeholderTitle,
		URL:     url,
		Quality: quality,
		Status:  domain.StatusPending,
	}

	s.mu.Lock()
	// The worker may have extracted metadata before we got here; never
	// clobber a record the fold already created.
	if _, ok := s.tasks[taskID]; !ok {
		s.tasks[taskID] = placeholder
	}
	s.mu.Unlock()

	if s.history != nil {
		entry := &domain.HistoryEntry{
			TaskID:  taskID,
			URL:     url,
			VideoID: placeholder.VideoID,
			Quality: quality,
			Status:  domain.StatusPending,
		}
		if err := s.history.Create(entry); err != nil {
			s.logger.Error("Failed to record history entry",
				zap.String("task_id", taskID),
				zap.Error(err))
		}
	}

	return taskID, nil
}

// Cancel forwards cancellation to the orchestrator and optimistically
// marks the local record cancelled. The worker may still be mid-transfer;
// the eventual terminal event reconciles the final state. Returns false
// when the task is unknown or already terminal.
func (s *SessionModel) Cancel(taskID string) bool {
	active := s.orch.Cancel(taskID)

	s.mu.Lock()
	if rec, ok := s.tasks[taskID]; ok && !rec.Status.IsTerminal() {
		rec.MarkCancelled()
	}
	s.mu.Unlock()

	return active
}

// Remove deletes the task from the in-memory set, cancelling it first if
// it is still active. The library is untouched.
func (s *SessionModel) Remove(taskID string) bool {
	s.mu.RLock()
	rec, ok := s.tasks[taskID]
	active := ok && rec.Status.IsActive()
	s.mu.RUnlock()

	if !ok {
		return false
	}
	if active {
		s.Cancel(taskID)
	}

	s.mu.Lock()
	delete(s.tasks, taskID)
	s.mu.Unlock()
	return true
}

// Get returns a snapshot of one task's record
func (s *SessionModel) Get(taskID string) (*TaskView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	return &TaskView{TaskID: taskID, VideoInfo: rec.Clone()}, true
}

// List returns snapshots of all tasks known in this run
func (s *SessionModel) List() []*TaskView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]*TaskView, 0, len(s.tasks))
	for id, rec := range s.tasks {
		views = append(views, &TaskView{TaskID: id, VideoInfo: rec.Clone()})
	}
	return views
}

// ActiveCount returns the number of pending or downloading tasks.
// Computed on demand so it can never drift from the records.
func (s *SessionModel) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.tasks {
		if rec.Status.IsActive() {
			n++
		}
	}
	return n
}

// CompletedCount returns the number of completed tasks
func (s *SessionModel) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.tasks {
		if rec.Status == domain.StatusCompleted {
			n++
		}
	}
	return n
}

// Stats returns aggregate statistics from the history repository, or
// counters over this run's tasks when no history is configured
func (s *SessionModel) Stats() (*domain.DownloadStats, error) {
	if s.history != nil {
		return s.history.GetStats()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.DownloadStats{}
	for _, rec := range s.tasks {
		stats.Total++
		switch rec.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusDownloading:
			stats.Downloading++
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusError:
			stats.Failed++
		case domain.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

// consume folds orchestrator events into the task map until the event
// channel closes
func (s *SessionModel) consume() {
	defer s.consumeWg.Done()
	for event := range s.orch.Events() {
		s.fold(event)
		if s.listener != nil {
			s.listener(event)
		}
	}
}

func (s *SessionModel) fold(event domain.Event) {
	switch e := event.(type) {
	case domain.MetadataExtracted:
		s.foldMetadata(e)
	case domain.Progress:
		s.foldProgress(e)
	case domain.StatusChanged:
		s.foldStatus(e)
	case domain.Completed:
		s.foldCompleted(e)
	case domain.Failed:
		s.foldFailed(e)
	}
}

// foldMetadata overwrites the placeholder display fields in place; the
// record's identity is preserved so consumers see the update without
// re-fetching. If the event beats Submit's placeholder insert, the record
// is created from the event instead.
func (s *SessionModel) foldMetadata(e domain.MetadataExtracted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tasks[e.TaskID]
	if !ok {
		s.tasks[e.TaskID] = e.Info.Clone()
		return
	}
	rec.VideoID = e.Info.VideoID
	rec.Title = e.Info.Title
	rec.Uploader = e.Info.Uploader
	rec.UploadDate = e.Info.UploadDate
	rec.Duration = e.Info.Duration
	rec.ThumbnailURL = e.Info.ThumbnailURL
	rec.FileSize = e.Info.FileSize
}

func (s *SessionModel) foldProgress(e domain.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.tasks[e.TaskID]; ok {
		rec.Progress = e.Percent
		rec.Speed = e.Speed
	}
}

func (s *SessionModel) foldStatus(e domain.StatusChanged) {
	s.mu.Lock()
	rec, ok := s.tasks[e.TaskID]
	if ok {
		rec.Status = e.Status
	}
	s.mu.Unlock()

	if ok && e.Status == domain.StatusCancelled {
		s.updateHistory(e.TaskID, func(entry *domain.HistoryEntry) {
			entry.Status = domain.StatusCancelled
		})
	}
}

// foldCompleted stamps the final record, writes it through to the library
// and notifies. A failed library or history write never turns a completed
// download into a failure.
func (s *SessionModel) foldCompleted(e domain.Completed) {
	s.mu.Lock()
	rec, ok := s.tasks[e.TaskID]
	if ok {
		rec.Status = domain.StatusCompleted
		rec.Progress = 100
		rec.VideoID = e.Info.VideoID
		rec.Title = e.Info.Title
		rec.Uploader = e.Info.Uploader
		rec.Filename = e.Info.Filename
		rec.FilePath = e.Info.FilePath
		rec.FileSize = e.Info.FileSize
		rec.DownloadedAt = e.Info.DownloadedAt
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	record := e.Info.Clone()
	if record.DownloadedAt == nil {
		now := time.Now()
		record.DownloadedAt = &now
	}
	if err := s.library.Save(record); err != nil {
		s.logger.Error("Failed to save record to library",
			zap.String("task_id", e.TaskID),
			zap.String("video_id", record.VideoID),
			zap.Error(err))
	}

	s.updateHistory(e.TaskID, func(entry *domain.HistoryEntry) {
		entry.Status = domain.StatusCompleted
		entry.VideoID = record.VideoID
		entry.Title = record.Title
		entry.FilePath = record.FilePath
		entry.CompletedAt = record.DownloadedAt
	})

	if s.notifier != nil {
		s.notifier.NotifyDownloadCompleted(record.Title)
	}
}

func (s *SessionModel) foldFailed(e domain.Failed) {
	s.mu.Lock()
	rec, ok := s.tasks[e.TaskID]
	var title string
	if ok {
		rec.MarkFailed(e.Message)
		title = rec.Title
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	s.updateHistory(e.TaskID, func(entry *domain.HistoryEntry) {
		entry.Status = domain.StatusError
		entry.ErrorMessage = e.Message
	})

	if s.notifier != nil {
		s.notifier.NotifyDownloadFailed(title, e.Message)
	}
}

func (s *SessionModel) updateHistory(taskID string, mutate func(*domain.HistoryEntry)) {
	if s.history == nil {
		return
	}
	entry, err := s.history.FindByTaskID(taskID)
	if err != nil || entry == nil {
		if err != nil {
			s.logger.Error("Failed to load history entry",
				zap.String("task_id", taskID),
				zap.Error(err))
		}
		return
	}
	mutate(entry)
	if err := s.history.Update(entry); err != nil {
		s.logger.Error("Failed to update history entry",
			zap.String("task_id", taskID),
			zap.Error(err))
	}
}
