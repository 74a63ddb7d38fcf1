package generator

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podcast-feed-gen/internal/models"
	"podcast-feed-gen/internal/source"
)

type fakeCatalog struct {
	shows []models.Show
	err   error
}

func (f *fakeCatalog) ListShows(context.Context) ([]models.Show, error) {
	return f.shows, f.err
}

type fakeLister struct {
	episodes map[int][]models.Episode
	skipped  []string
	err      error
}

func (f *fakeLister) ListEpisodes(_ context.Context, showID int) ([]models.Episode, []string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	eps := make([]models.Episode, len(f.episodes[showID]))
	copy(eps, f.episodes[showID])
	return eps, f.skipped, nil
}

type fakeShowChain struct{}

func (fakeShowChain) Resolve(_ context.Context, show models.Show) (models.Show, []source.Warning) {
	if show.Description == "" {
		show.Description = "About " + show.Title
	}
	if show.Link == "" {
		show.Link = "https://example.org/shows"
	}
	return show, nil
}

// fakeEpisodeChain stamps descriptions so tests can tell enriched episodes
// from preserved ones.
type fakeEpisodeChain struct {
	description string
	warnings    []source.Warning
}

func (f *fakeEpisodeChain) Resolve(_ context.Context, ep models.Episode) (models.Episode, []source.Warning) {
	if f.description != "" {
		ep.Description = f.description
	}
	return ep, f.warnings
}

func testEpisode(guid, title string, published time.Time) models.Episode {
	return models.Episode{
		GUID:        guid,
		Title:       title,
		Description: "baseline",
		PublishedAt: published,
		Enclosure:   models.Enclosure{URL: "https://audio.example.org/" + guid + ".mp3", Length: 1000, Type: "audio/mpeg"},
		Status:      models.StatusPublished,
	}
}

func newTestGenerator(t *testing.T, dir string, lister *fakeLister, epChain EpisodeResolver, now time.Time) *Generator {
	t.Helper()
	gen, err := New(Options{
		Catalog:      &fakeCatalog{},
		Episodes:     lister,
		ShowChain:    fakeShowChain{},
		EpisodeChain: epChain,
		TargetDir:    dir,
		NamingScheme: "%i-%t.xml",
		FeedBaseURL:  "https://feeds.example.org",
		Logger:       log.New(io.Discard, "", 0),
		Now:          func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return gen
}

func TestGenerateShowWritesFeed(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{episodes: map[int][]models.Episode{
		7: {testEpisode("e1", "Episode one", now.Add(-48*time.Hour))},
	}}

	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{description: "enriched"}, now)
	result := gen.GenerateShow(context.Background(), models.Show{ID: 7, Title: "Morning Static"})
	if result.Err != nil {
		t.Fatalf("GenerateShow: %v", result.Err)
	}
	if result.Episodes != 1 || result.Frozen != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if filepath.Base(result.File) != "7-morning-static.xml" {
		t.Fatalf("unexpected feed file: %s", result.File)
	}

	data, err := os.ReadFile(result.File)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if !strings.Contains(string(data), "enriched") {
		t.Fatalf("fresh episode should have been enriched:\n%s", data)
	}
}

func TestPreservationAcrossUpstreamEdits(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stub := models.Show{ID: 7, Title: "Morning Static"}

	lister := &fakeLister{episodes: map[int][]models.Episode{
		7: {testEpisode("e1", "Old Title", now.Add(-48*time.Hour))},
	}}
	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{}, now)
	if r := gen.GenerateShow(context.Background(), stub); r.Err != nil {
		t.Fatalf("first run: %v", r.Err)
	}

	// Upstream retroactively edits the title and a second episode appears.
	lister.episodes[7] = []models.Episode{
		testEpisode("e1", "New Title", now.Add(-48*time.Hour)),
		testEpisode("e2", "Second episode", now.Add(-24*time.Hour)),
	}
	result := gen.GenerateShow(context.Background(), stub)
	if result.Err != nil {
		t.Fatalf("second run: %v", result.Err)
	}
	if result.Frozen != 1 {
		t.Fatalf("expected e1 frozen, got %+v", result)
	}

	data, err := os.ReadFile(result.File)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Old Title") {
		t.Fatalf("preserved episode must keep its published title:\n%s", text)
	}
	if strings.Contains(text, "New Title") {
		t.Fatalf("upstream edit must not reach a frozen episode:\n%s", text)
	}
	if !strings.Contains(text, "Second episode") {
		t.Fatalf("new episode missing:\n%s", text)
	}
}

func TestSecondRunIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stub := models.Show{ID: 7, Title: "Morning Static"}
	lister := &fakeLister{episodes: map[int][]models.Episode{
		7: {
			testEpisode("e1", "Episode one", now.Add(-48*time.Hour)),
			testEpisode("e2", "Episode two", now.Add(-24*time.Hour)),
		},
	}}

	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{description: "enriched"}, now)
	first := gen.GenerateShow(context.Background(), stub)
	if first.Err != nil {
		t.Fatalf("first run: %v", first.Err)
	}
	firstData, err := os.ReadFile(first.File)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	second := gen.GenerateShow(context.Background(), stub)
	if second.Err != nil {
		t.Fatalf("second run: %v", second.Err)
	}
	secondData, err := os.ReadFile(second.File)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(firstData) != string(secondData) {
		t.Fatalf("second run output differs from first:\n--- first\n%s\n--- second\n%s", firstData, secondData)
	}
	if second.Frozen != 2 {
		t.Fatalf("second run should freeze both episodes, got %+v", second)
	}
}

func TestScheduledEpisodeAppearsAfterItsTime(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stub := models.Show{ID: 7, Title: "Morning Static"}

	future := testEpisode("e2", "Scheduled episode", now.Add(time.Hour))
	future.Status = models.StatusScheduled
	lister := &fakeLister{episodes: map[int][]models.Episode{
		7: {testEpisode("e1", "Published episode", now.Add(-time.Hour)), future},
	}}

	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{}, now)
	result := gen.GenerateShow(context.Background(), stub)
	if result.Err != nil {
		t.Fatalf("GenerateShow: %v", result.Err)
	}
	data, _ := os.ReadFile(result.File)
	if strings.Contains(string(data), "Scheduled episode") {
		t.Fatalf("future scheduled episode leaked into the feed:\n%s", data)
	}

	// Two hours later the schedule has fired.
	later := newTestGenerator(t, dir, lister, &fakeEpisodeChain{}, now.Add(2*time.Hour))
	result = later.GenerateShow(context.Background(), stub)
	if result.Err != nil {
		t.Fatalf("later run: %v", result.Err)
	}
	data, _ = os.ReadFile(result.File)
	if !strings.Contains(string(data), "Scheduled episode") {
		t.Fatalf("fired schedule should appear:\n%s", data)
	}
	if result.Frozen != 1 {
		t.Fatalf("previously published episode should be frozen, got %+v", result)
	}
}

func TestBackendFailureAbortsShowWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	backendErr := errors.New("backend unreachable")
	lister := &fakeLister{err: backendErr}

	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{}, now)
	result := gen.GenerateShow(context.Background(), models.Show{ID: 7, Title: "Morning Static"})
	if !errors.Is(result.Err, backendErr) {
		t.Fatalf("expected backend error, got %v", result.Err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed show must not leave output behind, found %v", entries)
	}
}

func TestCorruptSnapshotDegradesToFullResolve(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stub := models.Show{ID: 7, Title: "Morning Static"}
	lister := &fakeLister{episodes: map[int][]models.Episode{
		7: {testEpisode("e1", "Episode one", now.Add(-48*time.Hour))},
	}}
	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{}, now)

	path := filepath.Join(dir, gen.FeedFilename(stub))
	if err := os.WriteFile(path, []byte("<<< trashed by a disk error"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result := gen.GenerateShow(context.Background(), stub)
	if result.Err != nil {
		t.Fatalf("corrupt snapshot must not be fatal: %v", result.Err)
	}
	if result.Frozen != 0 {
		t.Fatalf("corrupt snapshot means nothing is frozen, got %+v", result)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "unreadable") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a snapshot warning, got %v", result.Warnings)
	}
}

func TestGenerateAllRunsEveryShow(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{episodes: map[int][]models.Episode{
		1: {testEpisode("a1", "A one", now.Add(-time.Hour))},
		2: {testEpisode("b1", "B one", now.Add(-time.Hour))},
		3: {testEpisode("c1", "C one", now.Add(-time.Hour))},
	}}
	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{}, now)
	gen.workers = 3

	shows := []models.Show{
		{ID: 1, Title: "Alpha"}, {ID: 2, Title: "Beta"}, {ID: 3, Title: "Gamma"},
	}
	var progressed int
	results := gen.GenerateAll(context.Background(), shows, func(done, total int, _ Result) {
		progressed++
		if total != 3 {
			t.Errorf("unexpected total %d", total)
		}
	})

	if len(results) != 3 || progressed != 3 {
		t.Fatalf("expected 3 results and 3 progress calls, got %d and %d", len(results), progressed)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("show %d failed: %v", shows[i].ID, r.Err)
		}
		if r.Show.ID != shows[i].ID {
			t.Fatalf("results out of order: %+v", results)
		}
	}
}

func TestMissingRequiredFieldDropsEpisodeOnly(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	untitled := testEpisode("e2", "", now.Add(-time.Hour))
	lister := &fakeLister{episodes: map[int][]models.Episode{
		7: {testEpisode("e1", "Good episode", now.Add(-2*time.Hour)), untitled},
	}}

	gen := newTestGenerator(t, dir, lister, &fakeEpisodeChain{}, now)
	result := gen.GenerateShow(context.Background(), models.Show{ID: 7, Title: "Morning Static"})
	if result.Err != nil {
		t.Fatalf("a droppable episode must not fail the show: %v", result.Err)
	}
	if result.Episodes != 1 {
		t.Fatalf("expected 1 emitted episode, got %+v", result)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "missing title") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a drop warning, got %v", result.Warnings)
	}
}
