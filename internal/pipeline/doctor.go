package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

// Capabilities describes which media tools are usable on this machine.
type Capabilities struct {
	HasFFmpeg     bool      `json:"has_ffmpeg"`
	HasFFprobe    bool      `json:"has_ffprobe"`
	FFmpegVersion string    `json:"ffmpeg_version,omitempty"`
	ProbedAt      time.Time `json:"probed_at"`
}

// Doctor probes the local tool environment.
type Doctor interface {
	RunDoctor(ctx context.Context) (*Capabilities, error)
}

// ToolDoctor checks for ffmpeg/ffprobe by running `-version`.
type ToolDoctor struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	logger      *slog.Logger
}

func NewToolDoctor(ffmpegPath, ffprobePath string, timeout time.Duration, logger *slog.Logger) *ToolDoctor {
	return &ToolDoctor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		logger:      logger,
	}
}

func (d *ToolDoctor) RunDoctor(ctx context.Context) (*Capabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	caps := &Capabilities{ProbedAt: time.Now()}

	if version, ok := d.checkTool(ctx, d.ffmpegPath, "ffmpeg"); ok {
		caps.HasFFmpeg = true
		caps.FFmpegVersion = version
	}
	if _, ok := d.checkTool(ctx, d.ffprobePath, "ffprobe"); ok {
		caps.HasFFprobe = true
	}

	d.logger.Info("doctor probe complete",
		"ffmpeg", caps.HasFFmpeg,
		"ffprobe", caps.HasFFprobe,
		"version", caps.FFmpegVersion,
	)
	return caps, nil
}

func (d *ToolDoctor) checkTool(ctx context.Context, preferred, fallback string) (string, bool) {
	bin, err := resolveBinary(preferred, fallback)
	if err != nil {
		return "", false
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-version")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", false
	}

	// First line looks like "ffmpeg version 6.1.1 ..."
	line, _, _ := strings.Cut(out.String(), "\n")
	return strings.TrimSpace(line), true
}

// CachedDoctor wraps a Doctor to cache probe results with a TTL so the
// status endpoint does not spawn a subprocess on every request.
type CachedDoctor struct {
	doctor Doctor
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.RWMutex
	cached *Capabilities
}

// NewCachedDoctor creates a caching wrapper around doctor probes.
func NewCachedDoctor(doctor Doctor, logger *slog.Logger) *CachedDoctor {
	return &CachedDoctor{
		doctor: doctor,
		ttl:    defaultCacheTTL,
		logger: logger,
	}
}

// Get returns cached capabilities if fresh, otherwise re-probes.
func (d *CachedDoctor) Get(ctx context.Context) (*Capabilities, error) {
	d.mu.RLock()
	if d.cached != nil && time.Since(d.cached.ProbedAt) < d.ttl {
		caps := d.cached
		d.mu.RUnlock()
		return caps, nil
	}
	d.mu.RUnlock()

	return d.Refresh(ctx)
}

func (d *CachedDoctor) Peek() *Capabilities {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cached
}

// Refresh forces a new doctor probe regardless of cache freshness.
func (d *CachedDoctor) Refresh(ctx context.Context) (*Capabilities, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	caps, err := d.doctor.RunDoctor(ctx)
	if err != nil {
		d.logger.Warn("doctor probe failed", "error", err)
		// Return stale cache if available
		if d.cached != nil {
			d.logger.Info("returning stale capabilities cache")
			return d.cached, nil
		}
		return nil, err
	}

	d.cached = caps
	return caps, nil
}

// Invalidate clears the cached capabilities.
func (d *CachedDoctor) Invalidate() {
	d.mu.Lock()
	d.cached = nil
	d.mu.Unlock()
}
