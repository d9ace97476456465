package domain

import "time"

// HistoryEntry records one accepted submission across runs. Unlike the
// library, which only holds completed items, the history keeps every
// attempt including failures and cancellations.
type HistoryEntry struct {
	TaskID       string      `json:"task_id" gorm:"primaryKey"`
	URL          string      `json:"url" gorm:"not null"`
	VideoID      string      `json:"video_id" gorm:"index"`
	Title        string      `json:"title"`
	Quality      Quality     `json:"quality"`
	Status       VideoStatus `json:"status" gorm:"not null;index"`
	ErrorMessage string      `json:"error_message,omitempty"`
	FilePath     string      `json:"file_path,omitempty"`
	CreatedAt    time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// HistoryRepository defines the interface for download history persistence
type HistoryRepository interface {
	// Create records a new accepted submission
	Create(entry *HistoryEntry) error

	// Update updates an existing entry
	Update(entry *HistoryEntry) error

	// FindByTaskID finds an entry by task id
	FindByTaskID(taskID string) (*HistoryEntry, error)

	// FindRecent returns the most recent entries, newest first
	FindRecent(limit int) ([]*HistoryEntry, error)

	// GetStats returns aggregate download statistics
	GetStats() (*DownloadStats, error)
}

// DownloadStats represents aggregate download statistics
type DownloadStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Downloading int64 `json:"downloading"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	Cancelled   int64 `json:"cancelled"`
}
