package timeline

import "time"

// historyCapacity bounds the in-memory edit log. Oldest entries are evicted
// first; this is a memory policy, not a correctness invariant.
const historyCapacity = 50

// Edit record types.
const (
	EditAddClip       = "add_clip"
	EditAddOverlay    = "add_overlay_clip"
	EditTrimClip      = "trim_clip"
	EditSplitClip     = "split_clip"
	EditMoveClip      = "move_clip"
	EditDeleteClip    = "delete_clip"
	EditUpdateClip    = "update_clip"
	EditUpdateTrack   = "update_track"
	EditCreateProject = "create_project"
)

// Record is one entry in the edit history log, recorded for future replay
// and for debugging. Payloads are the operation's raw parameters.
type Record struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// History is an append-only, capacity-bounded edit log.
type History struct {
	records []Record
	cap     int
}

func NewHistory() *History {
	return &History{cap: historyCapacity}
}

func (h *History) Append(editType string, payload any) {
	if len(h.records) >= h.cap {
		h.records = h.records[1:]
	}
	h.records = append(h.records, Record{
		Type:      editType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// Records returns a copy of the log, oldest first.
func (h *History) Records() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

func (h *History) Len() int {
	return len(h.records)
}
