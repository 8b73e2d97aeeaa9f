package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/srgchrksv/bitecast/models"
	"github.com/srgchrksv/bitecast/playlist"
)

// FolderIndex is the newest-first list of playlists shown on the index page.
type FolderIndex struct {
	mu      sync.RWMutex
	folders []models.FolderInfo
}

func NewFolderIndex() *FolderIndex {
	return &FolderIndex{}
}

// Add prepends info unless a folder with the same name is already listed.
// It reports whether the entry was added.
func (f *FolderIndex) Add(info models.FolderInfo) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.folders {
		if existing.Name == info.Name {
			return false
		}
	}
	f.folders = append([]models.FolderInfo{info}, f.folders...)
	return true
}

func (f *FolderIndex) List() []models.FolderInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.FolderInfo(nil), f.folders...)
}

// Rebuild replaces the index with the playlist folders found in dir. Folder
// names start with a timestamp, so reverse name order is newest first.
func (f *FolderIndex) Rebuild(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.mu.Lock()
			f.folders = nil
			f.mu.Unlock()
			return nil
		}
		return err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), playlist.FolderPrefix) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	folders := make([]models.FolderInfo, 0, len(names))
	for _, name := range names {
		folders = append(folders, models.FolderInfo{Name: name, Title: folderTitle(dir, name)})
	}

	f.mu.Lock()
	f.folders = folders
	f.mu.Unlock()
	return nil
}

// DefaultTitle labels a folder whose manifest has no title.
func DefaultTitle(name string) string {
	return "Playlist: " + name
}

func folderTitle(dir, name string) string {
	m, err := playlist.ReadManifest(filepath.Join(dir, name))
	if err != nil || m.Title == "" {
		return DefaultTitle(name)
	}
	return m.Title
}
