package domain

// LibraryStore defines the interface for durable persistence of completed
// video records, keyed by video id. Implementations must treat missing or
// corrupt storage as an empty library and must never panic across this
// boundary; write failures are returned as errors for the caller to log.
type LibraryStore interface {
	// Save inserts or overwrites the record keyed by its video id
	Save(info *VideoInfo) error

	// LoadAll returns every persisted record
	LoadAll() ([]*VideoInfo, error)

	// Find returns the record for a video id, or nil when absent
	Find(videoID string) (*VideoInfo, error)

	// Remove deletes the record for a video id
	Remove(videoID string) error

	// Search returns records whose title or uploader contains the query,
	// case-insensitively
	Search(query string) ([]*VideoInfo, error)
}
