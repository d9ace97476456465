package domain

import (
	"fmt"
	"time"
)

// VideoStatus represents the current lifecycle status of a download task
type VideoStatus string

const (
	StatusPending     VideoStatus = "pending"
	StatusDownloading VideoStatus = "downloading"
	StatusCompleted   VideoStatus = "completed"
	StatusError       VideoStatus = "error"
	StatusCancelled   VideoStatus = "cancelled"
)

// IsTerminal checks if the status is a terminal state (no further events follow)
func (s VideoStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// IsActive checks if the status counts towards the active downloads
func (s VideoStatus) IsActive() bool {
	return s == StatusPending || s == StatusDownloading
}

// Quality represents a user-chosen quality tier for a download
type Quality string

const (
	QualityBest  Quality = "best"
	Quality1440p Quality = "1440p"
	Quality1080p Quality = "1080p"
	Quality720p  Quality = "720p"
	Quality480p  Quality = "480p"
	Quality360p  Quality = "360p"
	QualityAudio Quality = "audio"
)

// formatSelectors maps each quality tier to a yt-dlp format expression.
// Separate video+audio streams allow resolutions above 720p (DASH).
var formatSelectors = map[Quality]string{
	QualityBest:  "bestvideo+bestaudio/best",
	Quality1440p: "bestvideo[height<=1440]+bestaudio/best[height<=1440]/best",
	Quality1080p: "bestvideo[height<=1080]+bestaudio/best[height<=1080]/best",
	Quality720p:  "bestvideo[height<=720]+bestaudio/best[height<=720]/best",
	Quality480p:  "bestvideo[height<=480]+bestaudio/best[height<=480]/best",
	Quality360p:  "bestvideo[height<=360]+bestaudio/best[height<=360]/best",
	QualityAudio: "bestaudio/best",
}

// NormalizeQuality maps an unrecognized quality string to QualityBest.
// The fallback is deliberate: callers always get a usable tier back.
func NormalizeQuality(q Quality) Quality {
	if _, ok := formatSelectors[q]; ok {
		return q
	}
	return QualityBest
}

// FormatSelector returns the yt-dlp format expression for the quality,
// falling back to the least-constrained tier for unknown values.
func (q Quality) FormatSelector() string {
	if sel, ok := formatSelectors[q]; ok {
		return sel
	}
	return formatSelectors[QualityBest]
}

// VideoInfo describes one media item across its lifecycle. Status,
// Progress, Speed and ErrorMessage are transient run state; the library
// store persists only the durable subset of fields.
type VideoInfo struct {
	VideoID      string     `json:"video_id"`
	Title        string     `json:"title"`
	Uploader     string     `json:"uploader"`
	UploadDate   string     `json:"upload_date,omitempty"`
	Duration     int        `json:"duration"`
	Filename     string     `json:"filename"`
	FilePath     string     `json:"filepath"`
	FileSize     int64      `json:"file_size"`
	Quality      Quality    `json:"quality"`
	ThumbnailURL string     `json:"thumbnail_url"`
	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`
	URL          string     `json:"url"`

	Status       VideoStatus `json:"status"`
	Progress     float64     `json:"progress"`
	Speed        float64     `json:"speed"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// Clone returns a copy of the record. Consumers receive snapshots so the
// session model can keep mutating its own copy under lock.
func (v *VideoInfo) Clone() *VideoInfo {
	c := *v
	return &c
}

// MarkDownloading marks the record as actively transferring
func (v *VideoInfo) MarkDownloading() {
	v.Status = StatusDownloading
}

// MarkCompleted marks the record as completed and stamps the completion time
func (v *VideoInfo) MarkCompleted(filename, filePath string, fileSize int64) {
	v.Status = StatusCompleted
	v.Filename = filename
	v.FilePath = filePath
	v.FileSize = fileSize
	v.Progress = 100
	now := time.Now()
	v.DownloadedAt = &now
}

// MarkFailed marks the record as failed with a human-readable message
func (v *VideoInfo) MarkFailed(message string) {
	v.Status = StatusError
	v.ErrorMessage = message
}

// MarkCancelled marks the record as cancelled
func (v *VideoInfo) MarkCancelled() {
	v.Status = StatusCancelled
}

// FormatDuration formats the duration as MM:SS or HH:MM:SS
func (v *VideoInfo) FormatDuration() string {
	h := v.Duration / 3600
	m := (v.Duration % 3600) / 60
	s := v.Duration % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
