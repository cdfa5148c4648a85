package export

import (
	"strings"
	"testing"
)

func TestMsToTimecode(t *testing.T) {
	cases := []struct {
		ms   int
		fps  int
		want string
	}{
		{0, 30, "00:00:00:00"},
		{1000, 30, "00:00:01:00"},
		{1500, 30, "00:00:01:15"},
		{500, 25, "00:00:00:13"},
		{3661000, 30, "01:01:01:00"},
	}
	for _, tc := range cases {
		if got := msToTimecode(tc.ms, tc.fps); got != tc.want {
			t.Errorf("msToTimecode(%d, %d) = %s, want %s", tc.ms, tc.fps, got, tc.want)
		}
	}
}

func TestGenerateEDL(t *testing.T) {
	clips := []ResolvedClip{
		{
			ClipName:  "intro.mp4",
			MediaPath: "/media/intro.mp4",
			SrcInMs:   2000,
			SrcOutMs:  7000,
			RecInMs:   0,
			RecOutMs:  5000,
		},
		{
			ClipName:  "demo.mp4",
			MediaPath: "/media/demo.mp4",
			SrcInMs:   0,
			SrcOutMs:  3000,
			// Gap between 5s and 8s on the timeline must survive.
			RecInMs:  8000,
			RecOutMs: 11000,
		},
	}

	edl := GenerateEDL(clips, "My Cut", 30)

	if !strings.Contains(edl, "TITLE: My Cut") {
		t.Error("missing title line")
	}
	if !strings.Contains(edl, "FCM: NON-DROP FRAME") {
		t.Error("missing FCM line")
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:02:00 00:00:07:00 00:00:00:00 00:00:05:00") {
		t.Errorf("first event malformed:\n%s", edl)
	}
	if !strings.Contains(edl, "002  AX       V     C        00:00:00:00 00:00:03:00 00:00:08:00 00:00:11:00") {
		t.Errorf("second event lost its timeline gap:\n%s", edl)
	}
	if !strings.Contains(edl, "* FROM CLIP NAME:  intro.mp4") {
		t.Error("missing clip name comment")
	}
	if !strings.Contains(edl, "* MEDIA PATH:  /media/demo.mp4") {
		t.Error("missing media path comment")
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	edl := GenerateEDL(nil, "DF", 29.97)
	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Error("29.97 fps should emit drop-frame FCM")
	}
}

func TestGenerateEDL_BadFrameRateDefaultsTo30(t *testing.T) {
	edl := GenerateEDL([]ResolvedClip{{SrcOutMs: 1000, RecOutMs: 1000}}, "X", 0)
	if !strings.Contains(edl, "00:00:01:00") {
		t.Errorf("expected 30fps fallback:\n%s", edl)
	}
}
