package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "yt-dlp", config.Download.YTDLPBinary)
	assert.Equal(t, 0, config.Download.ConcurrentLimit)
	assert.Equal(t, "mp4", config.Download.MergeFormat)
	assert.NotEmpty(t, config.Library.FilePath)
	assert.NotEmpty(t, config.History.DatabasePath)
	assert.True(t, config.Notification.Enabled)
	assert.Equal(t, "info", config.Logging.Level)
}
