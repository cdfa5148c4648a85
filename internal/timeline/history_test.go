package timeline

import (
	"fmt"
	"testing"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory()
	for i := 0; i < historyCapacity+10; i++ {
		h.Append(EditAddClip, fmt.Sprintf("payload-%d", i))
	}
	if h.Len() != historyCapacity {
		t.Fatalf("len = %d, want %d", h.Len(), historyCapacity)
	}
	records := h.Records()
	if got := records[0].Payload.(string); got != "payload-10" {
		t.Errorf("oldest surviving payload = %s, want payload-10", got)
	}
	if got := records[len(records)-1].Payload.(string); got != fmt.Sprintf("payload-%d", historyCapacity+9) {
		t.Errorf("newest payload = %s", got)
	}
}

func TestHistoryRecordsIsACopy(t *testing.T) {
	h := NewHistory()
	h.Append(EditDeleteClip, "x")
	records := h.Records()
	records[0].Type = "tampered"
	if h.Records()[0].Type != EditDeleteClip {
		t.Error("mutating the returned slice leaked into the log")
	}
}

func TestHistoryOrder(t *testing.T) {
	h := NewHistory()
	h.Append(EditAddClip, nil)
	h.Append(EditTrimClip, nil)
	h.Append(EditDeleteClip, nil)
	want := []string{EditAddClip, EditTrimClip, EditDeleteClip}
	records := h.Records()
	for i, w := range want {
		if records[i].Type != w {
			t.Errorf("records[%d].Type = %s, want %s", i, records[i].Type, w)
		}
	}
}
