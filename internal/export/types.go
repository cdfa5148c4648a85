package export

// ExportRequest describes a cut-list export of the active project.
type ExportRequest struct {
	Format    string  `json:"format"`
	FrameRate float64 `json:"frame_rate"`
	OutputDir string  `json:"output_dir"`
}

// ResolvedClip is a timeline clip with its media path resolved and all
// times converted to milliseconds. Source times are offsets into the
// media file (trim-in to trim-out); record times are timeline positions.
type ResolvedClip struct {
	ClipName  string
	MediaPath string
	SrcInMs   int
	SrcOutMs  int
	RecInMs   int
	RecOutMs  int
}

type ExportResponse struct {
	Status          string   `json:"status"`
	Format          string   `json:"format"`
	OutputPath      string   `json:"output_path"`
	ClipCount       int      `json:"clip_count"`
	UnresolvedClips []string `json:"unresolved_clips"`
}
