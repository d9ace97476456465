package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// progressTemplate makes yt-dlp emit one machine-readable line per
// progress tick. Fields missing from the engine's report come out as
// "NA".
const progressTemplate = "progress:%(progress.downloaded_bytes)s|%(progress.total_bytes)s|%(progress.total_bytes_estimate)s|%(progress.speed)s"

// YTDLPExtractor implements domain.Extractor by shelling out to the
// yt-dlp binary. Extraction runs in metadata-only mode; transfers stream
// progress lines on stdout and print the final file path after any merge
// or move step.
type YTDLPExtractor struct {
	config *domain.DownloadConfig
	logger *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp backed extractor
func NewYTDLPExtractor(config *domain.DownloadConfig, logger *zap.Logger) *YTDLPExtractor {
	return &YTDLPExtractor{config: config, logger: logger}
}

// ytdlpMetadata is the subset of yt-dlp's JSON dump this extractor reads
type ytdlpMetadata struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Uploader       string  `json:"uploader"`
	UploadDate     string  `json:"upload_date"`
	Duration       float64 `json:"duration"`
	Thumbnail      string  `json:"thumbnail"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// Extract fetches metadata without downloading any media
func (e *YTDLPExtractor) Extract(ctx context.Context, url string) (*domain.VideoInfo, error) {
	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		url,
	}

	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled
		}
		return nil, fmt.Errorf("yt-dlp metadata extraction failed: %s", stderrTail(&stderr, err))
	}

	var meta ytdlpMetadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = "Unknown"
	}
	uploader := meta.Uploader
	if uploader == "" {
		uploader = "Unknown"
	}
	size := meta.Filesize
	if size == 0 {
		size = meta.FilesizeApprox
	}

	return &domain.VideoInfo{
		VideoID:      meta.ID,
		Title:        title,
		Uploader:     uploader,
		UploadDate:   meta.UploadDate,
		Duration:     int(meta.Duration),
		ThumbnailURL: meta.Thumbnail,
		FileSize:     size,
		Filename:     SanitizeFilename(title, DefaultMaxFilenameLength) + "." + e.mergeFormat(),
		Status:       domain.StatusPending,
	}, nil
}

// Download streams the media to disk, reporting progress as yt-dlp emits
// it. Context cancellation kills the process and surfaces as
// ErrCancelled.
func (e *YTDLPExtractor) Download(ctx context.Context, req domain.DownloadRequest, progress domain.ProgressFunc) (*domain.DownloadResult, error) {
	if progress == nil {
		progress = func(downloaded, total int64, speed float64, finished bool) {}
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-f", req.Format,
		"-o", req.OutputTemplate,
		"-P", req.OutputDir,
		"--newline",
		"--no-warnings",
		"--no-quiet",
		"--merge-output-format", e.mergeFormat(),
		"--progress-template", progressTemplate,
		"--print", "after_move:%(filepath)s",
		req.URL,
	}

	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	downloadLog := e.openLogFile()
	if downloadLog != nil {
		defer downloadLog.Close()
		e.writeLogHeader(downloadLog, req.URL, ShellEscapeCommand(e.config.YTDLPBinary, args...))
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	// Scan output for progress lines and the printed final file path
	var finalPath string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if downloadLog != nil {
			fmt.Fprintln(downloadLog, line)
		}

		if downloaded, total, speed, ok := parseProgressLine(line); ok {
			progress(downloaded, total, speed, false)
			continue
		}
		if filepath.IsAbs(line) {
			finalPath = line
		}
	}

	err = cmd.Wait()
	if ctx.Err() != nil {
		e.writeLogFooter(downloadLog, false, "cancelled")
		return nil, domain.ErrCancelled
	}
	if err != nil {
		msg := stderrTail(&stderr, err)
		e.writeLogFooter(downloadLog, false, msg)
		return nil, fmt.Errorf("yt-dlp failed: %s", msg)
	}
	if finalPath == "" {
		e.writeLogFooter(downloadLog, false, "no output file reported")
		return nil, fmt.Errorf("yt-dlp reported no output file")
	}

	var size int64
	if info, statErr := os.Stat(finalPath); statErr == nil {
		size = info.Size()
	}

	progress(0, 0, 0, true)
	e.writeLogFooter(downloadLog, true, finalPath)

	return &domain.DownloadResult{
		Filename: filepath.Base(finalPath),
		FilePath: finalPath,
		FileSize: size,
	}, nil
}

func (e *YTDLPExtractor) mergeFormat() string {
	if e.config.MergeFormat != "" {
		return e.config.MergeFormat
	}
	return "mp4"
}

// parseProgressLine parses one progress-template line. Lines whose total
// is unknown still parse, with total 0; callers decide whether to
// suppress them.
func parseProgressLine(line string) (downloaded, total int64, speed float64, ok bool) {
	rest, found := strings.CutPrefix(line, "progress:")
	if !found {
		return 0, 0, 0, false
	}

	parts := strings.Split(rest, "|")
	if len(parts) != 4 {
		return 0, 0, 0, false
	}

	downloaded = parseByteField(parts[0])
	total = parseByteField(parts[1])
	if total == 0 {
		total = parseByteField(parts[2])
	}
	speed = parseFloatField(parts[3])
	return downloaded, total, speed, true
}

// parseByteField parses a numeric progress field; "NA" and malformed
// values read as 0. yt-dlp formats some byte counts as floats.
func parseByteField(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" || s == "null" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseFloatField(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" || s == "null" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// stderrTail extracts the last non-empty stderr line for a human-readable
// failure message, falling back to the exec error
func stderrTail(stderr *bytes.Buffer, err error) string {
	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return err.Error()
}

// openLogFile opens the daily download log. Logging is best-effort; a nil
// return disables it for this transfer.
func (e *YTDLPExtractor) openLogFile() *os.File {
	if e.config.LogsDir == "" {
		return nil
	}
	if err := os.MkdirAll(e.config.LogsDir, 0755); err != nil {
		e.logger.Warn("Failed to create logs directory", zap.Error(err))
		return nil
	}

	dateStr := time.Now().Format("20060102")
	logPath := filepath.Join(e.config.LogsDir, "download-"+dateStr+".log")
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		e.logger.Warn("Failed to open download log", zap.Error(err))
		return nil
	}
	return file
}

// writeLogHeader writes the transfer start marker
func (e *YTDLPExtractor) writeLogHeader(file *os.File, url, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(file, "\n=== [%s] Download: %s ===\n", timestamp, url)
	fmt.Fprintf(file, "$ %s\n", cmdLine)
}

// writeLogFooter writes the transfer end marker
func (e *YTDLPExtractor) writeLogFooter(file *os.File, success bool, message string) {
	if file == nil {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(file, "[%s] %s: %s\n", timestamp, status, message)
	fmt.Fprintln(file, "=== END ===")
}
