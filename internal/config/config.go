// Package config provides configuration management for the Cutroom Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort            = 8878
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".cutroom"
	DefaultAutosaveSeconds = 30

	// Environment variable names
	EnvPort            = "CUTROOM_PORT"
	EnvLogLevel        = "CUTROOM_LOG_LEVEL"
	EnvDataDir         = "CUTROOM_DATA_DIR"
	EnvOverlapPolicy   = "CUTROOM_OVERLAP_POLICY"
	EnvHeadless        = "CUTROOM_HEADLESS"
	EnvAutosaveSeconds = "CUTROOM_AUTOSAVE_SECONDS"
	EnvFFmpeg          = "CUTROOM_FFMPEG"
	EnvFFprobe         = "CUTROOM_FFPROBE"
	EnvBackupURL       = "CUTROOM_BACKUP_URL"

	// Database filename
	DBFilename = "cutroom.db"

	// Tool probe timeout
	DefaultDoctorTimeout = 30 // seconds
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ProjectsDir() string
	ThumbnailsDir() string
	OverlapPolicy() string
	Headless() bool
	AutosaveInterval() time.Duration
	FFmpegPath() string
	FFprobePath() string
	BackupURL() string
	DoctorTimeout() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	overlapPolicy   string
	headless        bool
	autosaveSeconds int

	ffmpegPath  string
	ffprobePath string
	backupURL   string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		autosaveSeconds: DefaultAutosaveSeconds,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.overlapPolicy = os.Getenv(EnvOverlapPolicy)

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	if as := os.Getenv(EnvAutosaveSeconds); as != "" {
		secs, err := strconv.Atoi(as)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvAutosaveSeconds, err)
		}
		if secs < 1 {
			return nil, fmt.Errorf("invalid %s: must be at least 1 second", EnvAutosaveSeconds)
		}
		cfg.autosaveSeconds = secs
	}

	cfg.ffmpegPath = os.Getenv(EnvFFmpeg)
	cfg.ffprobePath = os.Getenv(EnvFFprobe)
	cfg.backupURL = os.Getenv(EnvBackupURL)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ProjectsDir returns the directory holding project snapshot files
func (c *EnvConfig) ProjectsDir() string {
	return filepath.Join(c.dataDir, "projects")
}

// ThumbnailsDir returns the directory holding generated preview images
func (c *EnvConfig) ThumbnailsDir() string {
	return filepath.Join(c.dataDir, "thumbnails")
}

// OverlapPolicy returns the configured clip overlap policy name.
// Empty means the default (ripple).
func (c *EnvConfig) OverlapPolicy() string {
	return c.overlapPolicy
}

// Headless reports whether the system tray UI should be skipped
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// AutosaveInterval returns the time between project snapshot autosaves
func (c *EnvConfig) AutosaveInterval() time.Duration {
	return time.Duration(c.autosaveSeconds) * time.Second
}

// FFmpegPath returns an explicit ffmpeg binary path, empty to use PATH
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// FFprobePath returns an explicit ffprobe binary path, empty to use PATH
func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

// BackupURL returns the cloud backup endpoint, empty to disable backups
func (c *EnvConfig) BackupURL() string {
	return c.backupURL
}

func (c *EnvConfig) DoctorTimeout() time.Duration {
	return time.Duration(DefaultDoctorTimeout) * time.Second
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
