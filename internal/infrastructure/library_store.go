package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// LibraryStore persists completed video records to a single JSON file
// mapping video id to record. Missing or corrupt storage reads as an
// empty library; write failures are logged and returned, never raised
// past this boundary. The file is single-writer from the session model's
// perspective, so a plain mutex around read-modify-write is enough.
type LibraryStore struct {
	filePath string
	logger   *zap.Logger
	mu       sync.Mutex
}

// persistedVideo is the exact on-disk record schema: the durable subset
// of VideoInfo, nothing else.
type persistedVideo struct {
	VideoID      string     `json:"video_id"`
	Title        string     `json:"title"`
	Uploader     string     `json:"uploader"`
	UploadDate   string     `json:"upload_date,omitempty"`
	Duration     int        `json:"duration"`
	Filename     string     `json:"filename"`
	FilePath     string     `json:"filepath"`
	FileSize     int64      `json:"file_size"`
	Quality      string     `json:"quality"`
	ThumbnailURL string     `json:"thumbnail_url"`
	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`
	URL          string     `json:"url"`
}

// NewLibraryStore creates a library store backed by the given file,
// creating the parent directory if needed
func NewLibraryStore(filePath string, logger *zap.Logger) (*LibraryStore, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}
	return &LibraryStore{filePath: filePath, logger: logger}, nil
}

// Save merges the record into the library keyed by video id,
// inserting or overwriting, and rewrites the library file
func (s *LibraryStore) Save(info *domain.VideoInfo) error {
	if info.VideoID == "" {
		return fmt.Errorf("cannot save record without video id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	library := s.loadLibrary()
	library[info.VideoID] = toPersisted(info)

	if err := s.writeLibrary(library); err != nil {
		s.logger.Error("Failed to write library file",
			zap.String("path", s.filePath),
			zap.Error(err))
		return err
	}
	return nil
}

// LoadAll returns every record in the library
func (s *LibraryStore) LoadAll() ([]*domain.VideoInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	library := s.loadLibrary()
	videos := make([]*domain.VideoInfo, 0, len(library))
	for _, record := range library {
		videos = append(videos, fromPersisted(record))
	}
	return videos, nil
}

// Find returns the record for a video id, or nil when the library has no
// such entry
func (s *LibraryStore) Find(videoID string) (*domain.VideoInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	library := s.loadLibrary()
	record, ok := library[videoID]
	if !ok {
		return nil, nil
	}
	return fromPersisted(record), nil
}

// Remove deletes the record for a video id and rewrites the library
func (s *LibraryStore) Remove(videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	library := s.loadLibrary()
	if _, ok := library[videoID]; !ok {
		return nil
	}
	delete(library, videoID)

	if err := s.writeLibrary(library); err != nil {
		s.logger.Error("Failed to write library file",
			zap.String("path", s.filePath),
			zap.Error(err))
		return err
	}
	return nil
}

// Search returns records whose title or uploader contains the query,
// case-insensitively
func (s *LibraryStore) Search(query string) ([]*domain.VideoInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(query)
	library := s.loadLibrary()

	var results []*domain.VideoInfo
	for _, record := range library {
		if strings.Contains(strings.ToLower(record.Title), query) ||
			strings.Contains(strings.ToLower(record.Uploader), query) {
			results = append(results, fromPersisted(record))
		}
	}
	return results, nil
}

// loadLibrary reads the library file. A missing or unparseable file is an
// empty library, never an error.
func (s *LibraryStore) loadLibrary() map[string]persistedVideo {
	library := make(map[string]persistedVideo)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read library file, treating as empty",
				zap.String("path", s.filePath),
				zap.Error(err))
		}
		return library
	}

	if err := json.Unmarshal(data, &library); err != nil {
		s.logger.Warn("Library file is corrupt, treating as empty",
			zap.String("path", s.filePath),
			zap.Error(err))
		return make(map[string]persistedVideo)
	}
	return library
}

func (s *LibraryStore) writeLibrary(library map[string]persistedVideo) error {
	data, err := json.MarshalIndent(library, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0644)
}

func toPersisted(info *domain.VideoInfo) persistedVideo {
	return persistedVideo{
		VideoID:      info.VideoID,
		Title:        info.Title,
		Uploader:     info.Uploader,
		UploadDate:   info.UploadDate,
		Duration:     info.Duration,
		Filename:     info.Filename,
		FilePath:     info.FilePath,
		FileSize:     info.FileSize,
		Quality:      string(info.Quality),
		ThumbnailURL: info.ThumbnailURL,
		DownloadedAt: info.DownloadedAt,
		URL:          info.URL,
	}
}

func fromPersisted(record persistedVideo) *domain.VideoInfo {
	return &domain.VideoInfo{
		VideoID:      record.VideoID,
		Title:        record.Title,
		Uploader:     record.Uploader,
		UploadDate:   record.UploadDate,
		Duration:     record.Duration,
		Filename:     record.Filename,
		FilePath:     record.FilePath,
		FileSize:     record.FileSize,
		Quality:      domain.Quality(record.Quality),
		ThumbnailURL: record.ThumbnailURL,
		DownloadedAt: record.DownloadedAt,
		URL:          record.URL,
		Status:       domain.StatusCompleted,
		Progress:     100,
	}
}
