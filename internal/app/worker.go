package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// runWorker drives one task from URL to a terminal state. The protocol is
// strictly ordered: metadata extraction, then transfer with progress
// reporting, then finalization. Exactly one terminal event is emitted:
// Completed, Failed, or a StatusChanged carrying StatusCancelled.
func (o *Orchestrator) runWorker(ctx context.Context, taskID string, url string, quality domain.Quality) {
	defer o.workerWg.Done()

	o.mu.Lock()
	cancel := o.tasks[taskID]
	o.mu.Unlock()
	defer o.release(taskID, cancel)

	if o.sem != nil {
		select {
		case o.sem <- struct{}{}:
			defer func() { <-o.sem }()
		case <-ctx.Done():
			o.publish(domain.StatusChanged{TaskID: taskID, Status: domain.StatusCancelled})
			return
		}
	}

	// Phase 1: metadata extraction, no bytes transferred yet
	info, err := o.extractor.Extract(ctx, url)
	if err != nil {
		if isCancellation(ctx, err) {
			o.logger.Info("Task cancelled during extraction", zap.String("task_id", taskID))
			o.publish(domain.StatusChanged{TaskID: taskID, Status: domain.StatusCancelled})
			return
		}
		o.logger.Warn("Metadata extraction failed",
			zap.String("task_id", taskID),
			zap.String("url", url),
			zap.Error(err))
		o.publish(domain.Failed{TaskID: taskID, Message: fmt.Sprintf("metadata extraction failed: %v", err)})
		return
	}

	info.URL = url
	info.Quality = quality
	info.Status = domain.StatusPending

	o.publish(domain.MetadataExtracted{TaskID: taskID, Info: info.Clone()})
	o.publish(domain.StatusChanged{TaskID: taskID, Status: domain.StatusDownloading})
	info.MarkDownloading()

	// Phase 2: transfer
	req := domain.DownloadRequest{
		URL:            url,
		Format:         quality.FormatSelector(),
		OutputDir:      o.config.OutputDir,
		OutputTemplate: "%(title)s.%(ext)s",
	}

	result, err := o.extractor.Download(ctx, req, o.progressFunc(taskID))
	if err != nil {
		if isCancellation(ctx, err) {
			o.logger.Info("Task cancelled during transfer", zap.String("task_id", taskID))
			o.publish(domain.StatusChanged{TaskID: taskID, Status: domain.StatusCancelled})
			return
		}
		o.logger.Warn("Transfer failed",
			zap.String("task_id", taskID),
			zap.String("url", url),
			zap.Error(err))
		o.publish(domain.Failed{TaskID: taskID, Message: fmt.Sprintf("download failed: %v", err)})
		return
	}

	// Phase 3: finalization. The transfer result is authoritative for the
	// on-disk name, path and size.
	size := result.FileSize
	if size == 0 {
		size = info.FileSize
	}
	info.MarkCompleted(result.Filename, result.FilePath, size)

	o.logger.Info("Download completed",
		zap.String("task_id", taskID),
		zap.String("video_id", info.VideoID),
		zap.String("file", info.FilePath))

	o.publish(domain.Completed{TaskID: taskID, Info: info.Clone()})
	o.publish(domain.StatusChanged{TaskID: taskID, Status: domain.StatusCompleted})
}

// progressFunc builds the per-task progress callback handed to the
// extractor. Updates without a usable total are suppressed rather than
// reporting misleading numbers, percents never move backwards, and the
// engine's finished signal maps to a single final 100%.
func (o *Orchestrator) progressFunc(taskID string) domain.ProgressFunc {
	var lastPercent float64
	return func(downloaded, total int64, speed float64, finished bool) {
		if finished {
			// The final 100% precedes the terminal lifecycle event, so it
			// is delivered with a blocking send like lifecycle events are.
			if lastPercent < 100 {
				lastPercent = 100
				o.publish(domain.Progress{TaskID: taskID, Percent: 100})
			}
			return
		}
		if total <= 0 {
			return
		}
		percent := float64(downloaded) / float64(total) * 100
		if percent > 100 {
			percent = 100
		}
		if percent < lastPercent {
			return
		}
		lastPercent = percent
		o.publishProgress(domain.Progress{TaskID: taskID, Percent: percent, Speed: speed})
	}
}

// isCancellation distinguishes a cooperative stop from a genuine failure
func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, domain.ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		ctx.Err() != nil
}
