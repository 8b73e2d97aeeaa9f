// Package playlist owns the on-disk layout of generated playlists: one folder
// per run holding segment audio files and a playlist_summary.json manifest.
package playlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/srgchrksv/bitecast/models"
)

const (
	ManifestFile   = "playlist_summary.json"
	FolderPrefix   = "playlist_"
	maxNameLength  = 50
	timestampStyle = "20060102_150405"
)

var (
	ErrOutsideBase = errors.New("playlist: path resolves outside base directory")

	unsafeChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	audioExts   = map[string]bool{".wav": true, ".mp3": true, ".ogg": true, ".flac": true}
)

// Sanitize makes a topic safe to embed in a file name: path-breaking
// characters are dropped, spaces become underscores, and the result is cut
// to 50 characters.
func Sanitize(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, " ", "_")
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	return name
}

// FolderName is playlist_<YYYYMMDD_HHMMSS>_<sanitized first topic>.
func FolderName(now time.Time, firstTopic string) string {
	base := Sanitize(firstTopic)
	if base == "" {
		base = "general"
	}
	return FolderPrefix + now.Format(timestampStyle) + "_" + base
}

// SegmentFileName is segment_<n>_<sanitized topic>.mp3.
func SegmentFileName(index int, topic string) string {
	return fmt.Sprintf("segment_%d_%s.mp3", index, Sanitize(topic))
}

// CreateFolder makes a new run folder under base. If name is already taken a
// numeric suffix is appended so two runs never share a folder.
func CreateFolder(base, name string) (string, string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", "", fmt.Errorf("creating base directory: %w", err)
	}
	candidate := name
	for i := 2; ; i++ {
		path := filepath.Join(base, candidate)
		err := os.Mkdir(path, 0o755)
		if err == nil {
			return candidate, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", fmt.Errorf("creating output folder %q: %w", path, err)
		}
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
}

// WriteManifest stores m as indented JSON in dir.
func WriteManifest(dir string, m models.PlaylistManifest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest in dir. A missing manifest yields an error
// matching os.ErrNotExist.
func ReadManifest(dir string) (models.PlaylistManifest, error) {
	var m models.PlaylistManifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decoding manifest: %w", err)
	}
	return m, nil
}

// Resolve joins rel onto base and rejects anything that lands outside base.
// Nothing on disk is touched.
func Resolve(base, rel string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(filepath.Join(absBase, rel))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, absBase+string(os.PathSeparator)) {
		return "", ErrOutsideBase
	}
	return abs, nil
}

// Listing is what the viewer needs to render one playlist folder.
type Listing struct {
	Title      string
	AudioFiles []string
	Manifest   *models.PlaylistManifest
}

// List reads the folder's manifest, falling back to scanning for audio files
// when the manifest is missing (for example after a crash mid-run).
func List(dir, fallbackTitle string) (Listing, error) {
	out := Listing{Title: fallbackTitle}

	m, err := ReadManifest(dir)
	switch {
	case err == nil:
		out.Manifest = &m
		if m.Title != "" {
			out.Title = m.Title
		}
		for _, seg := range m.Segments {
			if seg.AudioFile != "" {
				out.AudioFiles = append(out.AudioFiles, filepath.Base(filepath.FromSlash(seg.AudioFile)))
			}
		}
	case errors.Is(err, os.ErrNotExist):
		entries, err := os.ReadDir(dir)
		if err != nil {
			return out, fmt.Errorf("listing folder: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && audioExts[strings.ToLower(filepath.Ext(e.Name()))] {
				out.AudioFiles = append(out.AudioFiles, e.Name())
			}
		}
	default:
		return out, err
	}

	sort.Strings(out.AudioFiles)
	return out, nil
}
