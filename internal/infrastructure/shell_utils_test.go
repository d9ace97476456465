package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain path needs no quoting",
			input:    "/tmp/simple/path",
			expected: "/tmp/simple/path",
		},
		{
			name:     "spaces",
			input:    "/tmp/path with spaces",
			expected: "'/tmp/path with spaces'",
		},
		{
			name:     "embedded single quote",
			input:    "/tmp/it's a test",
			expected: `'/tmp/it'"'"'s a test'`,
		},
		{
			name:     "dollar and backtick",
			input:    "/tmp/$dir/`cmd`",
			expected: "'/tmp/$dir/`cmd`'",
		},
		{
			name:     "format template",
			input:    "%(title)s.%(ext)s",
			expected: "'%(title)s.%(ext)s'",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	tests := []struct {
		name     string
		binary   string
		args     []string
		expected string
	}{
		{
			name:     "simple command",
			binary:   "yt-dlp",
			args:     []string{"--version"},
			expected: "yt-dlp --version",
		},
		{
			name:     "output template and directory",
			binary:   "yt-dlp",
			args:     []string{"-o", "%(title)s.%(ext)s", "-P", "/tmp/my downloads"},
			expected: "yt-dlp -o '%(title)s.%(ext)s' -P '/tmp/my downloads'",
		},
		{
			name:     "binary with space",
			binary:   "/tmp/my apps/yt-dlp",
			args:     []string{"--version"},
			expected: "'/tmp/my apps/yt-dlp' --version",
		},
		{
			name:     "url with query params",
			binary:   "yt-dlp",
			args:     []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s"},
			expected: "yt-dlp 'https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscapeCommand(tt.binary, tt.args...))
		})
	}
}
