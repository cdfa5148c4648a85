package media

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaFile is an imported source asset. Duration and dimensions come from
// the ffprobe pass that runs at import; clips reference these records by ID
// and never copy the underlying file.
type MediaFile struct {
	ID              string    `json:"id"`
	Path            string    `json:"path"`
	Filename        string    `json:"filename"`
	Kind            string    `json:"kind"`
	DurationSeconds float64   `json:"duration_seconds"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	SizeBytes       int64     `json:"size_bytes"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
	ThumbnailPath   string    `json:"thumbnail_path,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	KindVideo = "video"
	KindAudio = "audio"

	StatusProbing = "probing"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

var AudioExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".m4a": true,
}

func NewID() string {
	return uuid.NewString()
}

func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}

func IsAudioFile(filename string) bool {
	return AudioExtensions[strings.ToLower(filepath.Ext(filename))]
}
