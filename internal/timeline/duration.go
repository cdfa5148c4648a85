package timeline

// Pure time arithmetic over the model. No state, no failure modes;
// degenerate input is rejected by the engine before it gets here.

// ClipDuration returns the clip's visible timeline footprint in seconds.
func ClipDuration(c *Clip) float64 {
	return c.EndTime - c.StartTime
}

// TrackDuration returns the end of the last clip on the track, 0 if empty.
func TrackDuration(t *Track) float64 {
	var max float64
	for _, c := range t.Clips {
		if c.EndTime > max {
			max = c.EndTime
		}
	}
	return max
}

// ProjectDuration returns the longest track duration, 0 with no tracks.
func ProjectDuration(tracks []*Track) float64 {
	var max float64
	for _, t := range tracks {
		if d := TrackDuration(t); d > max {
			max = d
		}
	}
	return max
}

// Duration is ProjectDuration over the project's own tracks.
func (p *Project) Duration() float64 {
	return ProjectDuration(p.Tracks)
}

// FindClipAt returns the first clip occupying timeline position t,
// i.e. StartTime <= t < EndTime, or nil if the position is in a gap.
func FindClipAt(track *Track, t float64) *Clip {
	for _, c := range track.Clips {
		if c.StartTime <= t && t < c.EndTime {
			return c
		}
	}
	return nil
}
