package domain

import "regexp"

// urlPatterns covers the accepted YouTube URL forms. The capture group is
// always the 11-character video id.
var urlPatterns = []*regexp.Regexp{
	// Standard: youtube.com/watch?v=VIDEO_ID
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	// Short: youtu.be/VIDEO_ID
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	// Embed: youtube.com/embed/VIDEO_ID
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	// Shorts: youtube.com/shorts/VIDEO_ID
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	// Watch URL with extra query params before v=
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID extracts the video id from a YouTube URL, or returns ""
// when the URL matches none of the known forms.
func ExtractVideoID(url string) string {
	if url == "" {
		return ""
	}
	for _, p := range urlPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// IsValidURL checks whether the URL is a recognized YouTube URL
func IsValidURL(url string) bool {
	return ExtractVideoID(url) != ""
}

// NormalizeURL rewrites any accepted URL form to the canonical watch URL.
// Returns "" for URLs that fail validation.
func NormalizeURL(url string) string {
	id := ExtractVideoID(url)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + id
}
