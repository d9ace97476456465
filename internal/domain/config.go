package domain

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Library      LibraryConfig      `mapstructure:"library"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	OutputDir       string `mapstructure:"output_dir"`
	LogsDir         string `mapstructure:"logs_dir"`
	YTDLPBinary     string `mapstructure:"ytdlp_binary"`
	ConcurrentLimit int    `mapstructure:"concurrent_limit"` // 0 = unbounded
	MergeFormat     string `mapstructure:"merge_format"`
}

// LibraryConfig contains library persistence configuration
type LibraryConfig struct {
	FilePath string `mapstructure:"file_path"`
}

// HistoryConfig contains download history configuration
type HistoryConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send, etc.
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Download: DownloadConfig{
			OutputDir:       "$HOME/Downloads",
			LogsDir:         "$HOME/Downloads/yt-grabber/logs",
			YTDLPBinary:     "yt-dlp",
			ConcurrentLimit: 0,
			MergeFormat:     "mp4",
		},
		Library: LibraryConfig{
			FilePath: "$HOME/Downloads/yt-grabber/library.json",
		},
		History: HistoryConfig{
			DatabasePath: "$HOME/Downloads/yt-grabber/history.db",
		},
		Notification: NotificationConfig{
			Enabled: true,
			Sound:   true,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
