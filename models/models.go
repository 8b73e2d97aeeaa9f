package models

// PromptAnalysis is the structured reading of a free-text learning request.
type PromptAnalysis struct {
	TotalTimeMinutes    int      `json:"total_time_minutes"`
	RequestedTopics     []string `json:"requested_topics"`
	RequiresSuggestion  bool     `json:"requires_suggestion"`
	SegmentsNeeded      int      `json:"segments_needed"`
	SegmentsBasedOnTime bool     `json:"segments_based_on_time"`
}

// Segment is one narrated topic that produced both a script and an audio file.
type Segment struct {
	Index         int    `json:"segment_number"`
	Topic         string `json:"topic"`
	ScriptPreview string `json:"script_preview"`
	AudioFile     string `json:"audio_file"`
}

// PlaylistManifest is written as playlist_summary.json next to the audio files.
type PlaylistManifest struct {
	Title         string    `json:"playlist_title"`
	FolderName    string    `json:"output_folder_name"`
	FolderPath    string    `json:"output_folder_path"`
	TotalSegments int       `json:"total_segments"`
	Segments      []Segment `json:"segments"`
}

// FolderInfo is a lightweight entry in the list of past playlists.
type FolderInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Request is one run of the pipeline. History is the caller's session history
// and is never mutated by the pipeline.
type Request struct {
	Prompt    string
	History   []string
	SessionID string
	Progress  func(ProgressEvent)
}

// Result describes a successful run. Topics lists the topics actually narrated,
// in segment order, for the caller to append to its history.
type Result struct {
	FolderName string
	FolderPath string
	Title      string
	Topics     []string
	Manifest   PlaylistManifest
}

const (
	StageAnalyze  = "analyze"
	StageTopics   = "topics"
	StageSearch   = "search"
	StageScript   = "script"
	StageAudio    = "audio"
	StageSkipped  = "skipped"
	StageManifest = "manifest"
	StageDone     = "done"
	StageFailed   = "failed"
)

// ProgressEvent is pushed to websocket listeners while a run is in flight.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Segment int    `json:"segment,omitempty"`
	Total   int    `json:"total,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message,omitempty"`
}
