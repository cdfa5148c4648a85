package pipeline

import (
	"context"
	"log/slog"
)

type FFmpeg interface {
	Probe(ctx context.Context, filePath string) (*ProbeResult, error)
	GenerateThumbnail(ctx context.Context, filePath, outputPath string, timeOffset float64) error
}

type ProbeResult struct {
	Duration  float64
	Width     int
	Height    int
	Codec     string
	Bitrate   int64
	FrameRate float64
}

// StubFFmpeg satisfies the interface without touching any binaries. It is
// used in tests and when the agent runs on a machine without ffmpeg.
type StubFFmpeg struct {
	logger *slog.Logger

	// StubDuration is returned from Probe so imports still get a usable
	// timeline duration.
	StubDuration float64
}

func NewStubFFmpeg(logger *slog.Logger) *StubFFmpeg {
	return &StubFFmpeg{logger: logger, StubDuration: 60}
}

func (f *StubFFmpeg) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	f.logger.Info("ffmpeg stub: probe requested", "path", filePath)
	return &ProbeResult{Duration: f.StubDuration}, nil
}

func (f *StubFFmpeg) GenerateThumbnail(ctx context.Context, filePath, outputPath string, timeOffset float64) error {
	f.logger.Info("ffmpeg stub: thumbnail requested",
		"input", filePath, "output", outputPath, "offset", timeOffset)
	return nil
}
