package domain

import (
	"context"
	"errors"
)

// ErrCancelled is returned by Download when the transfer was stopped
// through context cancellation rather than failing on its own.
var ErrCancelled = errors.New("download cancelled")

// ErrInvalidURL is returned when a submitted URL is not a recognized
// YouTube URL. No task is created for invalid URLs.
var ErrInvalidURL = errors.New("invalid YouTube URL")

// DownloadRequest describes one transfer to the extraction engine
type DownloadRequest struct {
	URL            string
	Format         string // yt-dlp format selector expression
	OutputDir      string
	OutputTemplate string
}

// DownloadResult carries the final on-disk outcome of a transfer
type DownloadResult struct {
	Filename string
	FilePath string
	FileSize int64
}

// ProgressFunc receives transfer progress. Total may be zero when the
// engine reports no usable size; finished signals the terminal progress
// update. Implementations must not block.
type ProgressFunc func(downloaded, total int64, speed float64, finished bool)

// Extractor is the external media extraction/transfer capability.
// Extract fetches metadata without transferring any bytes; Download
// streams the media to disk, invoking progress as it goes. Both honor
// context cancellation; a cancelled Download returns ErrCancelled.
type Extractor interface {
	Extract(ctx context.Context, url string) (*VideoInfo, error)
	Download(ctx context.Context, req DownloadRequest, progress ProgressFunc) (*DownloadResult, error)
}
