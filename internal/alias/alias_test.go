package alias

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeAliasFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write alias file: %v", err)
	}
}

func waitForAlias(t *testing.T, store *Store, name, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := store.Resolve(name); ok && got == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for alias %q to resolve to %q", name, want)
}

func TestStoreResolvesAndWatches(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "aliases.yaml")
	writeAliasFile(t, file, "perrong-perrong: morning-static\n")

	store, err := NewStore(file, 20*time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})

	if got, ok := store.Resolve("perrong-perrong"); !ok || got != "morning-static" {
		t.Fatalf("Resolve = %q, %v", got, ok)
	}
	if _, ok := store.Resolve("unknown-show"); ok {
		t.Fatalf("unknown slug must not resolve")
	}

	writeAliasFile(t, file, "perrong-perrong: morning-static\nbokbaren: book-bar\n")
	waitForAlias(t, store, "bokbaren", "book-bar")
}

func TestResolveNormalizesLookups(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "aliases.yaml")
	writeAliasFile(t, file, "Postkaakk: soulmat\n")

	store, err := NewStore(file, 5*time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if got, ok := store.Resolve("PostKaakk"); !ok || got != "soulmat" {
		t.Fatalf("case-insensitive lookup failed: %q, %v", got, ok)
	}
}

func TestResolveFollowsChains(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "aliases.yaml")
	writeAliasFile(t, file, "oldest-name: old-name\nold-name: current-name\n")

	store, err := NewStore(file, 5*time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if got, ok := store.Resolve("oldest-name"); !ok || got != "current-name" {
		t.Fatalf("chain resolution failed: %q, %v", got, ok)
	}
}

func TestResolveSurvivesCycles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "aliases.yaml")
	writeAliasFile(t, file, "ping: pong\npong: ping\n")

	store, err := NewStore(file, 5*time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	// A cyclic file is an editor mistake; resolution must still terminate.
	if _, ok := store.Resolve("ping"); !ok {
		t.Fatalf("cyclic alias should still resolve to something")
	}
}

func TestStoreHandlesMissingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "aliases.yaml")
	writeAliasFile(t, file, "a: b\n")

	store, err := NewStore(file, 5*time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := os.Remove(file); err != nil {
		t.Fatalf("remove alias file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := store.Resolve("a"); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("aliases should empty out after file removal")
}
