package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cutroom/cutroom-agent/internal/pipeline"
)

// LibraryService is the media library surface used by the HTTP layer and,
// through MediaDuration/RequestThumbnail, by the edit engine.
type LibraryService interface {
	ImportFile(ctx context.Context, path string) (*MediaFile, error)
	GetMediaFile(ctx context.Context, id string) (*MediaFile, error)
	ListMediaFiles(ctx context.Context) ([]*MediaFile, error)
	RemoveMediaFile(ctx context.Context, id string) error
	CountMediaFiles(ctx context.Context) (int, error)
	MediaDuration(ctx context.Context, id string) (float64, error)
	MediaPath(ctx context.Context, id string) (string, error)
	RequestThumbnail(ctx context.Context, id string, offsetSeconds float64) error
}

type Service struct {
	repo      Repository
	ffmpeg    pipeline.FFmpeg
	thumbsDir string
	logger    *slog.Logger
}

func NewService(repo Repository, ffmpeg pipeline.FFmpeg, thumbsDir string, logger *slog.Logger) *Service {
	return &Service{repo: repo, ffmpeg: ffmpeg, thumbsDir: thumbsDir, logger: logger}
}

// ImportFile registers a media file and probes it for duration and
// dimensions. Importing the same path twice returns the existing record.
func (s *Service) ImportFile(ctx context.Context, path string) (*MediaFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory")
	}

	existing, err := s.repo.GetMediaFileByPath(ctx, absPath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	kind := KindVideo
	if IsAudioFile(absPath) {
		kind = KindAudio
	}

	now := time.Now()
	file := &MediaFile{
		ID:        NewID(),
		Path:      absPath,
		Filename:  filepath.Base(absPath),
		Kind:      kind,
		SizeBytes: info.Size(),
		Status:    StatusProbing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateMediaFile(ctx, file); err != nil {
		return nil, err
	}

	probe, err := s.ffmpeg.Probe(ctx, absPath)
	if err != nil {
		s.repo.UpdateMediaFileStatus(ctx, file.ID, StatusFailed, err.Error())
		return nil, fmt.Errorf("probe failed: %w", err)
	}
	if err := s.repo.UpdateMediaFileProbe(ctx, file.ID, probe.Duration, probe.Width, probe.Height); err != nil {
		return nil, err
	}

	// Initial preview is best-effort; the import itself has succeeded.
	if err := s.generateThumbnail(ctx, file.ID, absPath, 0); err != nil && s.logger != nil {
		s.logger.Warn("initial thumbnail failed", "media_file_id", file.ID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("media file imported",
			"media_file_id", file.ID,
			"filename", file.Filename,
			"duration_seconds", probe.Duration,
		)
	}
	return s.repo.GetMediaFile(ctx, file.ID)
}

func (s *Service) GetMediaFile(ctx context.Context, id string) (*MediaFile, error) {
	return s.repo.GetMediaFile(ctx, id)
}

func (s *Service) ListMediaFiles(ctx context.Context) ([]*MediaFile, error) {
	return s.repo.ListMediaFiles(ctx)
}

func (s *Service) RemoveMediaFile(ctx context.Context, id string) error {
	return s.repo.DeleteMediaFile(ctx, id)
}

func (s *Service) CountMediaFiles(ctx context.Context) (int, error) {
	return s.repo.CountMediaFiles(ctx)
}

// MediaDuration returns the probed duration of a ready media file. It is
// the precondition check for every clip placement.
func (s *Service) MediaDuration(ctx context.Context, id string) (float64, error) {
	file, err := s.repo.GetMediaFile(ctx, id)
	if err != nil {
		return 0, err
	}
	if file == nil {
		return 0, fmt.Errorf("media file %s not found", id)
	}
	if file.Status != StatusReady {
		return 0, fmt.Errorf("media file %s is %s, not ready", id, file.Status)
	}
	return file.DurationSeconds, nil
}

// MediaPath returns the absolute source path for a media file.
func (s *Service) MediaPath(ctx context.Context, id string) (string, error) {
	file, err := s.repo.GetMediaFile(ctx, id)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("media file %s not found", id)
	}
	return file.Path, nil
}

// RequestThumbnail regenerates the preview frame at the given source
// offset, typically after a clip's trim-in point changes.
func (s *Service) RequestThumbnail(ctx context.Context, id string, offsetSeconds float64) error {
	file, err := s.repo.GetMediaFile(ctx, id)
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("media file %s not found", id)
	}
	return s.generateThumbnail(ctx, id, file.Path, offsetSeconds)
}

func (s *Service) generateThumbnail(ctx context.Context, id, srcPath string, offsetSeconds float64) error {
	outPath := filepath.Join(s.thumbsDir, fmt.Sprintf("%s_%d.jpg", id, int(offsetSeconds*1000)))
	if err := s.ffmpeg.GenerateThumbnail(ctx, srcPath, outPath, offsetSeconds); err != nil {
		return err
	}
	return s.repo.UpdateMediaFileThumbnail(ctx, id, outPath)
}
