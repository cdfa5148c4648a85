package timeline

import (
	"context"
	"fmt"
	"log/slog"
)

// MediaLibrary is the collaborator that owns imported media assets. The
// engine only ever asks for durations; an error means the media file is
// unknown or unavailable, which is a hard precondition failure for edits.
type MediaLibrary interface {
	MediaDuration(ctx context.Context, mediaFileID string) (float64, error)
}

// Thumbnailer regenerates a clip's preview image after a trim. Calls are
// best-effort: the engine commits the edit first and swallows failures.
type Thumbnailer interface {
	RequestThumbnail(ctx context.Context, mediaFileID string, offsetSeconds float64) error
}

// Engine is the edit operation surface over the active project. Every
// operation validates against the current model, mutates it atomically
// (no partial mutation is ever observable on error) and appends a history
// record. The mutation model is single-caller synchronous; the engine does
// no internal locking.
type Engine struct {
	session *Session
	media   MediaLibrary
	policy  OverlapPolicy
	history *History
	logger  *slog.Logger

	thumbs        Thumbnailer
	onClipDeleted []func(clipID string)
}

func NewEngine(session *Session, media MediaLibrary, policy OverlapPolicy, logger *slog.Logger) *Engine {
	return &Engine{
		session: session,
		media:   media,
		policy:  policy,
		history: NewHistory(),
		logger:  logger,
	}
}

// SetThumbnailer installs the optional preview regeneration collaborator.
func (e *Engine) SetThumbnailer(t Thumbnailer) {
	e.thumbs = t
}

// OnClipDeleted registers an observer notified after a clip is removed.
// Selection bookkeeping lives with the observer, not in the engine.
func (e *Engine) OnClipDeleted(fn func(clipID string)) {
	e.onClipDeleted = append(e.onClipDeleted, fn)
}

func (e *Engine) Policy() OverlapPolicy {
	return e.policy
}

// CreateProject replaces the active project with a fresh one holding the
// two default tracks.
func (e *Engine) CreateProject(name string) *Project {
	p := NewProject(name)
	e.session.SetProject(p)
	e.history.Append(EditCreateProject, CreateProjectPayload{ProjectID: p.ID, Name: name})
	if e.logger != nil {
		e.logger.Info("project created", "project_id", p.ID, "name", name)
	}
	return p.Clone()
}

type CreateProjectPayload struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

type AddClipPayload struct {
	ClipID      string  `json:"clip_id"`
	MediaFileID string  `json:"media_file_id"`
	TrackIndex  int     `json:"track_index"`
	StartTime   float64 `json:"start_time"`
	PlacedStart float64 `json:"placed_start"`
}

// AddClip places a new untrimmed clip for the given media file on the
// track, resolving conflicts per the engine's overlap policy. Returns the
// new clip's id.
func (e *Engine) AddClip(ctx context.Context, mediaFileID string, trackIndex int, startTime float64) (string, error) {
	p := e.session.Project()
	if p == nil {
		return "", ErrNoActiveProject
	}
	track, err := e.trackAt(p, trackIndex)
	if err != nil {
		return "", err
	}
	if track.Kind == TrackAudio {
		return "", fmt.Errorf("%w: adding clips to audio tracks", ErrUnimplemented)
	}
	if startTime < 0 {
		return "", fmt.Errorf("%w: start time %g is negative", ErrInvalidArgument, startTime)
	}
	mediaDur, err := e.media.MediaDuration(ctx, mediaFileID)
	if err != nil {
		return "", fmt.Errorf("%w: media file %s: %v", ErrNotFound, mediaFileID, err)
	}

	placed, err := resolvePlacement(track, startTime, mediaDur, "", e.policy)
	if err != nil {
		return "", err
	}

	clip := &Clip{
		ID:          NewID(),
		MediaFileID: mediaFileID,
		TrackIndex:  trackIndex,
		StartTime:   placed,
		EndTime:     placed + mediaDur,
		Volume:      1.0,
	}
	track.Clips = append(track.Clips, clip)
	track.sortClips()
	e.session.touch()

	e.history.Append(EditAddClip, AddClipPayload{
		ClipID:      clip.ID,
		MediaFileID: mediaFileID,
		TrackIndex:  trackIndex,
		StartTime:   startTime,
		PlacedStart: placed,
	})
	if e.logger != nil {
		e.logger.Info("clip added", "clip_id", clip.ID, "track", trackIndex,
			"start", placed, "end", clip.EndTime, "policy", e.policy.String())
	}
	return clip.ID, nil
}

type AddOverlayPayload struct {
	ClipID            string  `json:"clip_id"`
	MediaFileID       string  `json:"media_file_id"`
	TrackIndex        int     `json:"track_index"`
	StartTime         float64 `json:"start_time"`
	LinkedRecordingID string  `json:"linked_recording_id,omitempty"`
}

// AddOverlayClip places a picture-in-picture clip on the overlay track,
// creating the track lazily when the project has none. The clip gets the
// default inset position and scale; linkedRecordingID ties it to the clip
// recorded in the same session.
func (e *Engine) AddOverlayClip(ctx context.Context, mediaFileID string, startTime float64, linkedRecordingID string) (string, error) {
	p := e.session.Project()
	if p == nil {
		return "", ErrNoActiveProject
	}
	if startTime < 0 {
		return "", fmt.Errorf("%w: start time %g is negative", ErrInvalidArgument, startTime)
	}
	mediaDur, err := e.media.MediaDuration(ctx, mediaFileID)
	if err != nil {
		return "", fmt.Errorf("%w: media file %s: %v", ErrNotFound, mediaFileID, err)
	}

	trackIndex := -1
	for i, tr := range p.Tracks {
		if tr.Kind == TrackOverlay {
			trackIndex = i
			break
		}
	}
	if trackIndex == -1 {
		p.Tracks = append(p.Tracks, &Track{
			ID:     NewID(),
			Name:   "Overlay",
			Kind:   TrackOverlay,
			Volume: 1.0,
		})
		trackIndex = len(p.Tracks) - 1
	}
	track := p.Tracks[trackIndex]

	placed, err := resolvePlacement(track, startTime, mediaDur, "", e.policy)
	if err != nil {
		return "", err
	}

	clip := &Clip{
		ID:                NewID(),
		MediaFileID:       mediaFileID,
		TrackIndex:        trackIndex,
		StartTime:         placed,
		EndTime:           placed + mediaDur,
		Position:          &Position{X: 75, Y: 75},
		Scale:             0.25,
		LinkedRecordingID: linkedRecordingID,
		Volume:            1.0,
	}
	track.Clips = append(track.Clips, clip)
	track.sortClips()
	e.session.touch()

	e.history.Append(EditAddOverlay, AddOverlayPayload{
		ClipID:            clip.ID,
		MediaFileID:       mediaFileID,
		TrackIndex:        trackIndex,
		StartTime:         startTime,
		LinkedRecordingID: linkedRecordingID,
	})
	if e.logger != nil {
		e.logger.Info("overlay clip added", "clip_id", clip.ID, "track", trackIndex, "start", placed)
	}
	return clip.ID, nil
}

type TrimClipPayload struct {
	ClipID    string   `json:"clip_id"`
	TrimStart *float64 `json:"trim_start,omitempty"`
	TrimEnd   *float64 `json:"trim_end,omitempty"`
}

// TrimClip adjusts the clip's trim offsets, keeping the timeline footprint
// consistent: growing trimStart by d moves the left edge right by d,
// growing trimEnd by d moves the right edge left by d; the untouched edge
// never moves. A nil value leaves that side's trim unchanged.
func (e *Engine) TrimClip(ctx context.Context, clipID string, trimStart, trimEnd *float64) error {
	p := e.session.Project()
	if p == nil {
		return ErrNoActiveProject
	}
	clip, track := p.findClip(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}
	mediaDur, err := e.media.MediaDuration(ctx, clip.MediaFileID)
	if err != nil {
		return fmt.Errorf("%w: media file %s: %v", ErrNotFound, clip.MediaFileID, err)
	}

	newStart := clip.TrimStart
	newEnd := clip.TrimEnd
	if trimStart != nil {
		newStart = *trimStart
	}
	if trimEnd != nil {
		newEnd = *trimEnd
	}
	if newStart < 0 || newEnd < 0 {
		return fmt.Errorf("%w: trim offsets must be non-negative", ErrInvalidArgument)
	}
	visible := mediaDur - newStart - newEnd
	if visible < MinClipDuration {
		return fmt.Errorf("%w: trim leaves %.3fs visible, minimum is %.1fs",
			ErrInvalidArgument, visible, MinClipDuration)
	}

	startEdge := clip.StartTime + (newStart - clip.TrimStart)
	endEdge := clip.EndTime - (newEnd - clip.TrimEnd)
	// A clip trimmed then moved toward the origin may not have room to
	// loosen the trim back out; the left edge can never cross zero.
	if startEdge < 0 {
		return fmt.Errorf("%w: trim would move clip start to %g, before the timeline origin",
			ErrInvalidArgument, startEdge)
	}
	// Loosening a trim extends the clip outward and may collide with a
	// neighbour; the sorted non-overlap invariant wins over the trim.
	if c := firstConflict(track, startEdge, endEdge, clip.ID); c != nil {
		return fmt.Errorf("%w: trimmed clip would overlap clip %s", ErrConflict, c.ID)
	}

	clip.TrimStart = newStart
	clip.TrimEnd = newEnd
	clip.StartTime = startEdge
	clip.EndTime = endEdge
	track.sortClips()
	e.session.touch()

	e.history.Append(EditTrimClip, TrimClipPayload{ClipID: clipID, TrimStart: trimStart, TrimEnd: trimEnd})
	if e.logger != nil {
		e.logger.Info("clip trimmed", "clip_id", clipID,
			"trim_start", clip.TrimStart, "trim_end", clip.TrimEnd,
			"start", clip.StartTime, "end", clip.EndTime)
	}

	if e.thumbs != nil && trimStart != nil {
		mediaID, offset := clip.MediaFileID, clip.TrimStart
		go func() {
			if err := e.thumbs.RequestThumbnail(context.Background(), mediaID, offset); err != nil && e.logger != nil {
				e.logger.Warn("thumbnail regeneration failed", "media_file_id", mediaID, "error", err)
			}
		}()
	}
	return nil
}

type SplitClipPayload struct {
	ClipID      string  `json:"clip_id"`
	SplitTime   float64 `json:"split_time"`
	LeftClipID  string  `json:"left_clip_id"`
	RightClipID string  `json:"right_clip_id"`
}

// SplitClip cuts a clip in two at splitTime seconds into the clip. The
// original becomes the left portion; a new clip takes over the tail. The
// two resulting intervals partition the original exactly: no gap, no
// overlap at the cut.
func (e *Engine) SplitClip(ctx context.Context, clipID string, splitTime float64) (leftID, rightID string, err error) {
	p := e.session.Project()
	if p == nil {
		return "", "", ErrNoActiveProject
	}
	clip, track := p.findClip(clipID)
	if clip == nil {
		return "", "", fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}
	dur := ClipDuration(clip)
	if splitTime <= 0 || splitTime >= dur {
		return "", "", fmt.Errorf("%w: split time %g outside clip duration (0, %g)",
			ErrInvalidArgument, splitTime, dur)
	}

	// Capture pre-mutation values: the right clip is computed entirely
	// from the clip as it was before the left portion is truncated.
	preEnd := clip.EndTime
	preTrimEnd := clip.TrimEnd

	right := &Clip{
		ID:                NewID(),
		MediaFileID:       clip.MediaFileID,
		TrackIndex:        clip.TrackIndex,
		StartTime:         clip.StartTime + splitTime,
		EndTime:           preEnd,
		TrimStart:         clip.TrimStart + splitTime,
		TrimEnd:           preTrimEnd,
		LinkedRecordingID: clip.LinkedRecordingID,
		Scale:             clip.Scale,
		Volume:            clip.Volume,
		Muted:             clip.Muted,
	}
	if clip.Position != nil {
		pos := *clip.Position
		right.Position = &pos
	}

	clip.EndTime = clip.StartTime + splitTime
	clip.TrimEnd = preTrimEnd + (dur - splitTime)

	// The right clip occupies exactly the tail the left vacated, so no
	// overlap resolution is needed.
	track.Clips = append(track.Clips, right)
	track.sortClips()
	e.session.touch()

	e.history.Append(EditSplitClip, SplitClipPayload{
		ClipID:      clipID,
		SplitTime:   splitTime,
		LeftClipID:  clip.ID,
		RightClipID: right.ID,
	})
	if e.logger != nil {
		e.logger.Info("clip split", "left_clip_id", clip.ID, "right_clip_id", right.ID, "split_time", splitTime)
	}
	return clip.ID, right.ID, nil
}

type MoveClipPayload struct {
	ClipID      string  `json:"clip_id"`
	TrackIndex  int     `json:"track_index"`
	StartTime   float64 `json:"start_time"`
	PlacedStart float64 `json:"placed_start"`
}

// MoveClip relocates a clip to a new track and/or position. The clip's
// duration and trims are preserved; conflicts on the target track are
// resolved per the engine policy with the moving clip excluded from
// conflict consideration.
func (e *Engine) MoveClip(ctx context.Context, clipID string, newTrackIndex int, newStartTime float64) error {
	p := e.session.Project()
	if p == nil {
		return ErrNoActiveProject
	}
	clip, sourceTrack := p.findClip(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}
	target, err := e.trackAt(p, newTrackIndex)
	if err != nil {
		return err
	}
	if target.Kind == TrackAudio {
		return fmt.Errorf("%w: moving clips onto audio tracks", ErrUnimplemented)
	}
	if newStartTime < 0 {
		return fmt.Errorf("%w: start time %g is negative", ErrInvalidArgument, newStartTime)
	}

	dur := ClipDuration(clip)
	placed, err := resolvePlacement(target, newStartTime, dur, clip.ID, e.policy)
	if err != nil {
		return err
	}

	sourceTrack.removeClip(clip.ID)
	clip.TrackIndex = newTrackIndex
	clip.StartTime = placed
	clip.EndTime = placed + dur
	target.Clips = append(target.Clips, clip)
	target.sortClips()
	sourceTrack.sortClips()
	e.session.touch()

	e.history.Append(EditMoveClip, MoveClipPayload{
		ClipID:      clipID,
		TrackIndex:  newTrackIndex,
		StartTime:   newStartTime,
		PlacedStart: placed,
	})
	if e.logger != nil {
		e.logger.Info("clip moved", "clip_id", clipID, "track", newTrackIndex, "start", placed)
	}
	return nil
}

type DeleteClipPayload struct {
	ClipID string `json:"clip_id"`
}

// DeleteClip removes a clip from its track and notifies observers so the
// UI layer can drop any selection pointing at it.
func (e *Engine) DeleteClip(clipID string) error {
	p := e.session.Project()
	if p == nil {
		return ErrNoActiveProject
	}
	clip, track := p.findClip(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}
	track.removeClip(clipID)
	e.session.touch()

	e.history.Append(EditDeleteClip, DeleteClipPayload{ClipID: clipID})
	if e.logger != nil {
		e.logger.Info("clip deleted", "clip_id", clipID)
	}
	for _, fn := range e.onClipDeleted {
		fn(clipID)
	}
	return nil
}

// ClipProperties carries optional per-clip attribute updates. Nil fields
// are left unchanged. The engine records these values; interpreting them
// is the export collaborator's job.
type ClipProperties struct {
	Volume   *float64  `json:"volume,omitempty"`
	Muted    *bool     `json:"muted,omitempty"`
	FadeIn   *float64  `json:"fade_in,omitempty"`
	FadeOut  *float64  `json:"fade_out,omitempty"`
	Position *Position `json:"position,omitempty"`
	Scale    *float64  `json:"scale,omitempty"`
}

// UpdateClipProperties validates and applies playback/overlay attributes.
func (e *Engine) UpdateClipProperties(clipID string, props ClipProperties) error {
	p := e.session.Project()
	if p == nil {
		return ErrNoActiveProject
	}
	clip, _ := p.findClip(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}

	if props.Volume != nil && (*props.Volume < 0 || *props.Volume > 1) {
		return fmt.Errorf("%w: volume %g outside [0, 1]", ErrInvalidArgument, *props.Volume)
	}
	if props.Scale != nil && *props.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive", ErrInvalidArgument)
	}
	fadeIn := clip.FadeIn
	fadeOut := clip.FadeOut
	if props.FadeIn != nil {
		fadeIn = *props.FadeIn
	}
	if props.FadeOut != nil {
		fadeOut = *props.FadeOut
	}
	if fadeIn < 0 || fadeOut < 0 {
		return fmt.Errorf("%w: fades must be non-negative", ErrInvalidArgument)
	}
	if fadeIn+fadeOut > ClipDuration(clip) {
		return fmt.Errorf("%w: fades exceed clip duration", ErrInvalidArgument)
	}

	if props.Volume != nil {
		clip.Volume = *props.Volume
	}
	if props.Muted != nil {
		clip.Muted = *props.Muted
	}
	clip.FadeIn = fadeIn
	clip.FadeOut = fadeOut
	if props.Position != nil {
		pos := *props.Position
		clip.Position = &pos
	}
	if props.Scale != nil {
		clip.Scale = *props.Scale
	}
	e.session.touch()

	e.history.Append(EditUpdateClip, struct {
		ClipID string         `json:"clip_id"`
		Props  ClipProperties `json:"props"`
	}{clipID, props})
	return nil
}

type UpdateTrackPayload struct {
	TrackIndex int      `json:"track_index"`
	Volume     *float64 `json:"volume,omitempty"`
	Muted      *bool    `json:"muted,omitempty"`
}

// SetTrackVolume updates a track's output volume.
func (e *Engine) SetTrackVolume(trackIndex int, volume float64) error {
	p := e.session.Project()
	if p == nil {
		return ErrNoActiveProject
	}
	track, err := e.trackAt(p, trackIndex)
	if err != nil {
		return err
	}
	if volume < 0 || volume > 1 {
		return fmt.Errorf("%w: volume %g outside [0, 1]", ErrInvalidArgument, volume)
	}
	track.Volume = volume
	e.session.touch()
	e.history.Append(EditUpdateTrack, UpdateTrackPayload{TrackIndex: trackIndex, Volume: &volume})
	return nil
}

// SetTrackMuted toggles a track's mute flag.
func (e *Engine) SetTrackMuted(trackIndex int, muted bool) error {
	p := e.session.Project()
	if p == nil {
		return ErrNoActiveProject
	}
	track, err := e.trackAt(p, trackIndex)
	if err != nil {
		return err
	}
	track.Muted = muted
	e.session.touch()
	e.history.Append(EditUpdateTrack, UpdateTrackPayload{TrackIndex: trackIndex, Muted: &muted})
	return nil
}

// GetTimeline returns a deep copy of the active project. Snapshots are
// point-in-time: they go stale at the next mutation.
func (e *Engine) GetTimeline() (*Project, error) {
	p := e.session.Project()
	if p == nil {
		return nil, ErrNoActiveProject
	}
	return p.Clone(), nil
}

// GetClip returns a copy of a single clip.
func (e *Engine) GetClip(clipID string) (*Clip, error) {
	p := e.session.Project()
	if p == nil {
		return nil, ErrNoActiveProject
	}
	clip, _ := p.findClip(clipID)
	if clip == nil {
		return nil, fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}
	cp := *clip
	if clip.Position != nil {
		pos := *clip.Position
		cp.Position = &pos
	}
	return &cp, nil
}

// History returns the recorded edit log, oldest first.
func (e *Engine) History() []Record {
	return e.history.Records()
}

func (e *Engine) trackAt(p *Project, index int) (*Track, error) {
	if index < 0 || index >= len(p.Tracks) {
		return nil, fmt.Errorf("%w: track index %d (project has %d tracks)",
			ErrNotFound, index, len(p.Tracks))
	}
	return p.Tracks[index], nil
}
