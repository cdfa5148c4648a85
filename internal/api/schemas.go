package api

import (
	"time"

	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/store"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State           string              `json:"state"`
	ProjectID       string              `json:"project_id,omitempty"`
	ProjectName     string              `json:"project_name,omitempty"`
	DurationSeconds float64             `json:"duration_seconds"`
	ClipCount       int                 `json:"clip_count"`
	MediaCount      int                 `json:"media_count"`
	OverlapPolicy   string              `json:"overlap_policy"`
	AutosavePaused  bool                `json:"autosave_paused"`
	Tools           *ToolStatusResponse `json:"tools,omitempty"`
}

type ToolStatusResponse struct {
	HasFFmpeg     bool   `json:"has_ffmpeg"`
	HasFFprobe    bool   `json:"has_ffprobe"`
	FFmpegVersion string `json:"ffmpeg_version,omitempty"`
	LastProbeAt   string `json:"last_probe_at,omitempty"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type ProjectResponse struct {
	Project         *timeline.Project `json:"project"`
	DurationSeconds float64           `json:"duration_seconds"`
}

type ProjectListResponse struct {
	Projects []store.ProjectInfo `json:"projects"`
}

type AddClipRequest struct {
	MediaFileID string  `json:"media_file_id"`
	TrackIndex  int     `json:"track_index"`
	StartTime   float64 `json:"start_time"`
}

type AddOverlayClipRequest struct {
	MediaFileID       string  `json:"media_file_id"`
	StartTime         float64 `json:"start_time"`
	LinkedRecordingID string  `json:"linked_recording_id,omitempty"`
}

type ClipIDResponse struct {
	ClipID string `json:"clip_id"`
}

type TrimClipRequest struct {
	TrimStart *float64 `json:"trim_start,omitempty"`
	TrimEnd   *float64 `json:"trim_end,omitempty"`
}

type SplitClipRequest struct {
	SplitTime float64 `json:"split_time"`
}

type SplitClipResponse struct {
	LeftClipID  string `json:"left_clip_id"`
	RightClipID string `json:"right_clip_id"`
}

type MoveClipRequest struct {
	TrackIndex int     `json:"track_index"`
	StartTime  float64 `json:"start_time"`
}

type TrackVolumeRequest struct {
	Volume float64 `json:"volume"`
}

type TrackMuteRequest struct {
	Muted bool `json:"muted"`
}

type HistoryResponse struct {
	Records []timeline.Record `json:"records"`
}

type ImportMediaRequest struct {
	Path string `json:"path"`
}

type MediaFileResponse struct {
	ID              string  `json:"id"`
	Path            string  `json:"path"`
	Filename        string  `json:"filename"`
	Kind            string  `json:"kind"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	SizeBytes       int64   `json:"size_bytes"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
	ThumbnailPath   string  `json:"thumbnail_path,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type MediaFilesResponse struct {
	MediaFiles []MediaFileResponse `json:"media_files"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func MediaFileToResponse(f *media.MediaFile) MediaFileResponse {
	return MediaFileResponse{
		ID:              f.ID,
		Path:            f.Path,
		Filename:        f.Filename,
		Kind:            f.Kind,
		DurationSeconds: f.DurationSeconds,
		Width:           f.Width,
		Height:          f.Height,
		SizeBytes:       f.SizeBytes,
		Status:          f.Status,
		Error:           f.Error,
		ThumbnailPath:   f.ThumbnailPath,
		CreatedAt:       f.CreatedAt.Format(time.RFC3339),
	}
}
