package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/srgchrksv/bitecast/models"
	"github.com/srgchrksv/bitecast/playlist"
)

func TestMemoryHistoryIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory()

	if err := h.Append(ctx, "a", "Cars", "Engines"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := h.Append(ctx, "b", "Tides"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, _ := h.Get(ctx, "a")
	if len(got) != 2 || got[1] != "Engines" {
		t.Fatalf("session a: %v", got)
	}
	got[0] = "mutated"
	again, _ := h.Get(ctx, "a")
	if again[0] != "Cars" {
		t.Fatal("Get must return a copy")
	}
	if other, _ := h.Get(ctx, "b"); len(other) != 1 {
		t.Fatalf("session b: %v", other)
	}
	if none, _ := h.Get(ctx, "c"); len(none) != 0 {
		t.Fatalf("unknown session: %v", none)
	}
}

func TestNewRedisHistoryRejectsBadURL(t *testing.T) {
	if _, err := NewRedisHistory(context.Background(), "not-a-url://", time.Hour); err == nil {
		t.Fatal("expected error for malformed url")
	}
}

func TestFolderIndexAddDeduplicates(t *testing.T) {
	idx := NewFolderIndex()
	if !idx.Add(models.FolderInfo{Name: "playlist_1", Title: "one"}) {
		t.Fatal("first add should succeed")
	}
	idx.Add(models.FolderInfo{Name: "playlist_2", Title: "two"})
	if idx.Add(models.FolderInfo{Name: "playlist_1", Title: "again"}) {
		t.Fatal("duplicate name should not be added")
	}

	got := idx.List()
	if len(got) != 2 || got[0].Name != "playlist_2" || got[1].Title != "one" {
		t.Fatalf("unexpected index: %+v", got)
	}
}

func TestFolderIndexRebuild(t *testing.T) {
	dir := t.TempDir()
	older := "playlist_20240101_100000_Cars"
	newer := "playlist_20240102_090000_Tides"
	for _, name := range []string{older, newer, "scratch"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := playlist.WriteManifest(filepath.Join(dir, newer), models.PlaylistManifest{Title: "5-Min Bite: Tides"}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "playlist_file"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	idx := NewFolderIndex()
	idx.Add(models.FolderInfo{Name: "stale"})
	if err := idx.Rebuild(dir); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	got := idx.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 folders, got %+v", got)
	}
	if got[0].Name != newer || got[0].Title != "5-Min Bite: Tides" {
		t.Fatalf("newest first with manifest title: %+v", got[0])
	}
	if got[1].Title != DefaultTitle(older) {
		t.Fatalf("fallback title: %+v", got[1])
	}
}

func TestFolderIndexRebuildMissingDir(t *testing.T) {
	idx := NewFolderIndex()
	if err := idx.Rebuild(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Fatalf("missing dir should be an empty index: %v", err)
	}
	if len(idx.List()) != 0 {
		t.Fatal("expected empty index")
	}
}

func TestProgressHubDeliversPerSession(t *testing.T) {
	hub := NewProgressHub(nil)
	mine, unsubscribe := hub.Subscribe("mine")
	other, unsubscribeOther := hub.Subscribe("other")
	defer unsubscribeOther()

	report := hub.Reporter("mine")
	report(models.ProgressEvent{Stage: models.StageAnalyze})
	report(models.ProgressEvent{Stage: models.StageDone})

	for _, want := range []string{models.StageAnalyze, models.StageDone} {
		select {
		case ev := <-mine:
			if ev.Stage != want {
				t.Fatalf("got stage %q want %q", ev.Stage, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for progress event")
		}
	}
	select {
	case ev := <-other:
		t.Fatalf("other session received %+v", ev)
	default:
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-mine; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	hub.Publish("mine", models.ProgressEvent{Stage: models.StageFailed})
}

func TestProgressHubDropsWhenListenerIsSlow(t *testing.T) {
	hub := NewProgressHub(nil)
	ch, unsubscribe := hub.Subscribe("s")
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish("s", models.ProgressEvent{Stage: models.StageSearch, Segment: i})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestNewStorageDefaultsToMemory(t *testing.T) {
	s := NewStorage(nil, nil)
	if _, ok := s.History.(*MemoryHistory); !ok {
		t.Fatalf("expected memory history, got %T", s.History)
	}
	if s.Folders == nil || s.Progress == nil {
		t.Fatal("storage not fully initialised")
	}
}
