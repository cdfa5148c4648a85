package export

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// MediaPathResolver maps a media file ID to its source path on disk.
type MediaPathResolver interface {
	MediaPath(ctx context.Context, mediaFileID string) (string, error)
}

// ResolveTimeline flattens a project into resolved clips for export. Only
// video tracks participate: overlay clips are picture-in-picture and have
// no place in a single-channel cut list, and audio tracks carry no video.
// Clips whose media cannot be resolved are reported, not exported.
func ResolveTimeline(ctx context.Context, p *timeline.Project, resolver MediaPathResolver) ([]ResolvedClip, []string) {
	var resolved []ResolvedClip
	var unresolved []string

	for _, track := range p.Tracks {
		if track.Kind != timeline.TrackVideo {
			continue
		}
		for _, clip := range track.Clips {
			path, err := resolver.MediaPath(ctx, clip.MediaFileID)
			if err != nil {
				unresolved = append(unresolved, clip.ID)
				continue
			}
			dur := timeline.ClipDuration(clip)
			resolved = append(resolved, ResolvedClip{
				ClipName:  filepath.Base(path),
				MediaPath: path,
				SrcInMs:   secondsToMs(clip.TrimStart),
				SrcOutMs:  secondsToMs(clip.TrimStart + dur),
				RecInMs:   secondsToMs(clip.StartTime),
				RecOutMs:  secondsToMs(clip.EndTime),
			})
		}
	}
	return resolved, unresolved
}

// ExportEDL resolves the project and writes the EDL file into the
// requested directory.
func ExportEDL(ctx context.Context, p *timeline.Project, resolver MediaPathResolver, req ExportRequest) (*ExportResponse, error) {
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return nil, err
	}

	clips, unresolved := ResolveTimeline(ctx, p, resolver)
	if len(clips) == 0 {
		return nil, fmt.Errorf("no exportable clips on video tracks")
	}

	title := SanitizeName(p.Name, 60)
	if title == "" {
		title = "Untitled"
	}
	content := GenerateEDL(clips, title, req.FrameRate)

	filename := fmt.Sprintf("%s_%s.edl", title, time.Now().Format("20060102_150405"))
	outPath := filepath.Join(req.OutputDir, filename)
	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write EDL: %w", err)
	}

	status := "completed"
	if len(unresolved) > 0 {
		status = "partial"
	}
	return &ExportResponse{
		Status:          status,
		Format:          "edl",
		OutputPath:      outPath,
		ClipCount:       len(clips),
		UnresolvedClips: unresolved,
	}, nil
}

func secondsToMs(s float64) int {
	return int(math.Round(s * 1000))
}
