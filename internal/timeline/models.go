package timeline

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current project snapshot schema. Older snapshots are
// migrated forward by the store before the engine ever sees them.
const SchemaVersion = 2

// MinClipDuration is the smallest visible duration, in seconds, a clip may
// be trimmed down to.
const MinClipDuration = 0.5

type TrackKind string

const (
	TrackVideo   TrackKind = "video"
	TrackAudio   TrackKind = "audio"
	TrackOverlay TrackKind = "overlay"
)

// Position places an overlay clip on the frame, in percent of frame size.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clip is a bounded reference to a region of a media file placed on the
// timeline. StartTime/EndTime are absolute timeline seconds; TrimStart and
// TrimEnd are offsets into the source media measured from its natural start
// and end. For every clip the engine maintains
//
//	EndTime - StartTime == mediaDuration - TrimStart - TrimEnd
type Clip struct {
	ID          string  `json:"id"`
	MediaFileID string  `json:"media_file_id"`
	TrackIndex  int     `json:"track_index"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	TrimStart   float64 `json:"trim_start"`
	TrimEnd     float64 `json:"trim_end"`

	// Overlay attributes, set only for picture-in-picture clips.
	Position *Position `json:"position,omitempty"`
	Scale    float64   `json:"scale,omitempty"`

	// LinkedRecordingID groups clips created from one recording session
	// (screen + webcam). Recorded for correlated edits, not enforced here.
	LinkedRecordingID string `json:"linked_recording_id,omitempty"`

	// Playback attributes consumed by the export collaborator.
	Volume  float64 `json:"volume"`
	Muted   bool    `json:"muted"`
	FadeIn  float64 `json:"fade_in,omitempty"`
	FadeOut float64 `json:"fade_out,omitempty"`
}

// Track is a lane of clips of one kind. Clips are kept sorted by StartTime
// after every mutation; overlap search and gap search rely on that order.
type Track struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Kind   TrackKind `json:"kind"`
	Volume float64   `json:"volume"`
	Muted  bool      `json:"muted"`
	Clips  []*Clip   `json:"clips"`
}

// Project is the root aggregate. Duration is derived, never stored.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SchemaVersion int       `json:"schema_version"`
	Tracks        []*Track  `json:"tracks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewID() string {
	return uuid.NewString()
}

// NewProject creates an empty project with the two default tracks.
func NewProject(name string) *Project {
	now := time.Now()
	return &Project{
		ID:            NewID(),
		Name:          name,
		SchemaVersion: SchemaVersion,
		Tracks: []*Track{
			{ID: NewID(), Name: "Main", Kind: TrackVideo, Volume: 1.0},
			{ID: NewID(), Name: "Overlay", Kind: TrackOverlay, Volume: 1.0},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Track) sortClips() {
	sort.SliceStable(t.Clips, func(i, j int) bool {
		return t.Clips[i].StartTime < t.Clips[j].StartTime
	})
}

func (t *Track) removeClip(clipID string) bool {
	for i, c := range t.Clips {
		if c.ID == clipID {
			t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
			return true
		}
	}
	return false
}

// findClip locates a clip anywhere in the project.
func (p *Project) findClip(clipID string) (*Clip, *Track) {
	for _, tr := range p.Tracks {
		for _, c := range tr.Clips {
			if c.ID == clipID {
				return c, tr
			}
		}
	}
	return nil, nil
}

// Clone returns a deep copy of the project, safe to hand to readers.
func (p *Project) Clone() *Project {
	cp := *p
	cp.Tracks = make([]*Track, len(p.Tracks))
	for i, tr := range p.Tracks {
		tc := *tr
		tc.Clips = make([]*Clip, len(tr.Clips))
		for j, c := range tr.Clips {
			cc := *c
			if c.Position != nil {
				pos := *c.Position
				cc.Position = &pos
			}
			tc.Clips[j] = &cc
		}
		cp.Tracks[i] = &tc
	}
	return &cp
}
