package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics
)

// Config holds the subprocess ffmpeg configuration.
type Config struct {
	FFmpegPath       string // path to ffmpeg binary; empty = auto-detect
	FFprobePath      string // path to ffprobe binary; empty = auto-detect
	ProbeTimeout     time.Duration
	ThumbnailTimeout time.Duration
	Logger           *slog.Logger
	DebugPaths       bool // if true, log full file paths; otherwise sanitise
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig(logger *slog.Logger) Config {
	return Config{
		ProbeTimeout:     30 * time.Second,
		ThumbnailTimeout: 60 * time.Second,
		Logger:           logger,
		DebugPaths:       false,
	}
}

// SubprocessFFmpeg is the production FFmpeg implementation. It shells out
// to ffprobe for metadata and ffmpeg for thumbnail frames.
type SubprocessFFmpeg struct {
	cfg     Config
	ffmpeg  string // resolved ffmpeg path
	ffprobe string // resolved ffprobe path
}

// NewSubprocessFFmpeg creates a SubprocessFFmpeg, resolving both binaries.
func NewSubprocessFFmpeg(cfg Config) (*SubprocessFFmpeg, error) {
	ffmpeg, err := resolveBinary(cfg.FFmpegPath, "ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("cannot locate ffmpeg: %w", err)
	}
	ffprobe, err := resolveBinary(cfg.FFprobePath, "ffprobe")
	if err != nil {
		return nil, fmt.Errorf("cannot locate ffprobe: %w", err)
	}

	cfg.Logger.Info("ffmpeg runner initialised", "ffmpeg", ffmpeg, "ffprobe", ffprobe)

	return &SubprocessFFmpeg{cfg: cfg, ffmpeg: ffmpeg, ffprobe: ffprobe}, nil
}

// Probe reads container and stream metadata for a media file.
func (f *SubprocessFFmpeg) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.ProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		f.cfg.Logger.Warn("ffprobe failed",
			"path", f.safePath(filePath),
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(stderrBuf.String(), 512),
		)
		return nil, fmt.Errorf("ffprobe %s: %w", f.safePath(filePath), err)
	}

	result, err := parseProbeOutput(stdoutBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", f.safePath(filePath), err)
	}

	f.cfg.Logger.Info("probe complete",
		"path", f.safePath(filePath),
		"duration_seconds", result.Duration,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// GenerateThumbnail extracts a single frame at timeOffset seconds.
func (f *SubprocessFFmpeg) GenerateThumbnail(ctx context.Context, filePath, outputPath string, timeOffset float64) error {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.ThumbnailTimeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("cannot create thumbnail dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.ffmpeg,
		"-ss", strconv.FormatFloat(timeOffset, 'f', 3, 64),
		"-i", filePath,
		"-frames:v", "1",
		"-q:v", "3",
		"-y",
		outputPath,
	)

	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	cmd.Stdout = io.Discard

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		f.cfg.Logger.Warn("thumbnail generation failed",
			"path", f.safePath(filePath),
			"offset", timeOffset,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(stderrBuf.String(), 512),
		)
		return fmt.Errorf("ffmpeg thumbnail for %s: %w", f.safePath(filePath), err)
	}

	f.cfg.Logger.Info("thumbnail generated",
		"output", f.safePath(outputPath),
		"offset", timeOffset,
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

// parseProbeOutput converts raw ffprobe JSON into a ProbeResult. The first
// video stream supplies dimensions, codec and frame rate.
func parseProbeOutput(data []byte) (*ProbeResult, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	result := &ProbeResult{}

	if out.Format.Duration != "" {
		d, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", out.Format.Duration, err)
		}
		result.Duration = d
	}
	if out.Format.BitRate != "" {
		if b, err := strconv.ParseInt(out.Format.BitRate, 10, 64); err == nil {
			result.Bitrate = b
		}
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		result.Width = s.Width
		result.Height = s.Height
		result.Codec = s.CodecName
		result.FrameRate = parseFrameRate(s.RFrameRate)
		break
	}

	return result, nil
}

// parseFrameRate evaluates ffprobe's rational frame rate ("30000/1001").
func parseFrameRate(s string) float64 {
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func (f *SubprocessFFmpeg) safePath(path string) string {
	if f.cfg.DebugPaths {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Base(path)
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return filepath.Base(path)
}

// resolveBinary finds a usable binary, preferring an explicit path.
func resolveBinary(preferred, fallback string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured binary %q not found", preferred)
	}
	if p, err := exec.LookPath(fallback); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%s not found on PATH", fallback)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
