package services

import (
	"fmt"

	"github.com/srgchrksv/bitecast/models"
)

const suggestedTitle = "Suggested 5-Min Bite (History Considered)"

// PlaylistTitle labels a finished run.
func PlaylistTitle(a models.PromptAnalysis, finalTopics []string, segments []models.Segment) string {
	switch {
	case len(a.RequestedTopics) == 0 && a.RequiresSuggestion && len(segments) == 1:
		return suggestedTitle
	case len(segments) == 1 && len(finalTopics) == 1:
		return fmt.Sprintf("%d-Min Bite: %s", SegmentMinutes, segments[0].Topic)
	}
	minutes := a.TotalTimeMinutes
	if minutes <= 0 {
		minutes = len(segments) * SegmentMinutes
	}
	return fmt.Sprintf("%d-Min Playlist (%d Segments)", minutes, len(segments))
}

// BuildManifest assembles the manifest for the successful segments of a run.
func BuildManifest(title, folderName, folderPath string, segments []models.Segment) models.PlaylistManifest {
	return models.PlaylistManifest{
		Title:         title,
		FolderName:    folderName,
		FolderPath:    folderPath,
		TotalSegments: len(segments),
		Segments:      segments,
	}
}

func scriptPreview(script string) string {
	r := []rune(script)
	if len(r) > previewLength {
		r = r[:previewLength]
	}
	return string(r) + "..."
}
