package storage

import "github.com/srgchrksv/bitecast/logger"

// Storage bundles the per-process state the web app shares between requests.
type Storage struct {
	History  HistoryStore
	Folders  *FolderIndex
	Progress *ProgressHub
}

// NewStorage keeps history in memory unless a Redis-backed store is supplied.
func NewStorage(history HistoryStore, log *logger.Logger) *Storage {
	if history == nil {
		history = NewMemoryHistory()
	}
	return &Storage{
		History:  history,
		Folders:  NewFolderIndex(),
		Progress: NewProgressHub(log),
	}
}
