// Package server exposes the generated feeds over HTTP. It serves whatever
// the feedstore has indexed; the generator is never invoked per request.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"podcast-feed-gen/internal/feedstore"
)

// FeedIndex abstracts the feed directory index for the HTTP handlers.
type FeedIndex interface {
	Lookup(slug string) (feedstore.Feed, bool)
	List() []feedstore.Feed
}

// AliasResolver maps old show slugs to their current slug.
type AliasResolver interface {
	Resolve(requested string) (string, bool)
}

type serverHandler struct {
	feeds   FeedIndex
	aliases AliasResolver
	logger  *log.Logger
}

// New creates the HTTP handler that serves feed files and the feed listing.
func New(feeds FeedIndex, aliases AliasResolver, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	h := &serverHandler{
		feeds:   feeds,
		aliases: aliases,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/shows", h.handleList)
	mux.HandleFunc("/podcast/", h.handleFeed)

	return logRequests(mux, logger)
}

func (h *serverHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type feedListing struct {
	Slug     string    `json:"slug"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (h *serverHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	feeds := h.feeds.List()
	listing := make([]feedListing, 0, len(feeds))
	for _, feed := range feeds {
		listing = append(listing, feedListing{
			Slug:     feed.Slug,
			URL:      "/podcast/" + feed.Slug + ".xml",
			Size:     feed.Size,
			Modified: feed.Modified.UTC(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(listing); err != nil {
		h.logger.Printf("failed to encode feed listing: %v", err)
	}
}

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	slug := requestedSlug(r.URL.Path)
	if slug == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	feed, ok := h.feeds.Lookup(slug)
	if !ok && h.aliases != nil {
		// Renamed shows keep their old URLs working through the alias map.
		if current, found := h.aliases.Resolve(slug); found {
			if _, exists := h.feeds.Lookup(current); exists {
				target := &url.URL{Path: "/podcast/" + current + ".xml"}
				http.Redirect(w, r, target.String(), http.StatusMovedPermanently)
				return
			}
		}
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if _, err := os.Stat(feed.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("failed to stat feed file %s: %v", feed.Path, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	http.ServeFile(w, r, feed.Path)
}

// requestedSlug strips the route prefix and an optional .xml suffix so both
// /podcast/show and /podcast/show.xml resolve the same feed.
func requestedSlug(path string) string {
	slug := strings.TrimPrefix(path, "/podcast/")
	slug = strings.TrimSuffix(slug, ".xml")
	slug = strings.Trim(slug, "/")
	if strings.Contains(slug, "/") {
		return ""
	}
	return slug
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func logRequests(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		duration := time.Since(start)
		logger.Printf("%s %s -> %d (%dB) in %s", r.Method, r.URL.Path, sw.status, sw.size, duration)
	})
}
