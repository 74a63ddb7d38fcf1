package feedstore

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreIndexesAndWatches(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "morning-static.xml"), []byte("<rss/>"), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	store, err := NewStore(root, 10*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})

	waitFor(t, func() bool { return len(store.List()) == 1 }, "initial scan")

	feed, ok := store.Lookup("morning-static")
	if !ok {
		t.Fatalf("expected lookup to find morning-static")
	}
	if feed.Path != filepath.Join(root, "morning-static.xml") {
		t.Fatalf("unexpected feed path %s", feed.Path)
	}

	if err := os.WriteFile(filepath.Join(root, "book-bar.xml"), []byte("<rss/>"), 0o644); err != nil {
		t.Fatalf("write second feed: %v", err)
	}
	waitFor(t, func() bool { return len(store.List()) == 2 }, "detect new feed")

	if err := os.Remove(filepath.Join(root, "morning-static.xml")); err != nil {
		t.Fatalf("remove feed: %v", err)
	}
	waitFor(t, func() bool { return len(store.List()) == 1 }, "reflect removal")

	if _, ok := store.Lookup("morning-static"); ok {
		t.Fatalf("removed feed should no longer resolve")
	}
}

func TestStoreIgnoresTempAndForeignFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "show.xml"), []byte("<rss/>"), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".feed-123.xml"), []byte("partial"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	store, err := NewStore(root, 10*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	waitFor(t, func() bool { return len(store.List()) == 1 }, "initial scan")

	feeds := store.List()
	if feeds[0].Slug != "show" {
		t.Fatalf("expected show, got %s", feeds[0].Slug)
	}
}

func TestStoreCreatesMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "feeds")

	logger := log.New(io.Discard, "", 0)
	store, err := NewStore(root, 10*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if len(store.List()) != 0 {
		t.Fatalf("expected empty index, got %d feeds", len(store.List()))
	}

	if err := os.WriteFile(filepath.Join(root, "late.xml"), []byte("<rss/>"), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	waitFor(t, func() bool { return len(store.List()) == 1 }, "detect feed in created dir")
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "soulmat.xml"), []byte("<rss/>"), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	store, err := NewStore(root, 10*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	waitFor(t, func() bool { return len(store.List()) == 1 }, "initial scan")

	if _, ok := store.Lookup("SoulMat"); !ok {
		t.Fatalf("expected case-insensitive lookup to succeed")
	}
}

func waitFor(t *testing.T, predicate func() bool, label string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if predicate() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", label)
}
