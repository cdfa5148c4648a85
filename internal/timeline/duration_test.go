package timeline

import "testing"

func TestDurations(t *testing.T) {
	empty := testTrack()
	short := testTrack(clipAt("a", 0, 5))
	long := testTrack(clipAt("b", 2, 8), clipAt("c", 10, 30))

	if d := TrackDuration(empty); d != 0 {
		t.Errorf("empty track duration = %g, want 0", d)
	}
	if d := TrackDuration(long); d != 30 {
		t.Errorf("track duration = %g, want 30", d)
	}
	if d := ProjectDuration(nil); d != 0 {
		t.Errorf("no-track project duration = %g, want 0", d)
	}
	if d := ProjectDuration([]*Track{empty, short, long}); d != 30 {
		t.Errorf("project duration = %g, want 30", d)
	}

	c := clipAt("d", 3.5, 9)
	if d := ClipDuration(c); d != 5.5 {
		t.Errorf("clip duration = %g, want 5.5", d)
	}
}

func TestFindClipAt(t *testing.T) {
	track := testTrack(clipAt("a", 0, 5), clipAt("b", 5, 10), clipAt("c", 12, 20))

	cases := []struct {
		at   float64
		want string // "" means gap
	}{
		{0, "a"},
		{4.999, "a"},
		{5, "b"}, // end boundary is exclusive, next clip's start wins
		{10, ""},
		{11.5, ""},
		{12, "c"},
		{19.999, "c"},
		{20, ""},
	}
	for _, tc := range cases {
		got := FindClipAt(track, tc.at)
		switch {
		case tc.want == "" && got != nil:
			t.Errorf("FindClipAt(%g) = %s, want nil", tc.at, got.ID)
		case tc.want != "" && got == nil:
			t.Errorf("FindClipAt(%g) = nil, want %s", tc.at, tc.want)
		case tc.want != "" && got != nil && got.ID != tc.want:
			t.Errorf("FindClipAt(%g) = %s, want %s", tc.at, got.ID, tc.want)
		}
	}
}
