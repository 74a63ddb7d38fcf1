// Package audioprobe derives metadata from the audio itself: the exact
// duration by decoding every mp3 frame, and the ID3 title when the upload
// carries one. The enclosure is spooled to a temp file because both probes
// need to seek.
package audioprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"podcast-feed-gen/internal/models"
	"podcast-feed-gen/internal/source"
)

// Source implements the episode capability by probing the enclosure audio.
type Source struct {
	httpc *http.Client
}

// New builds an audio probing source.
func New(httpc *http.Client) *Source {
	if httpc == nil {
		httpc = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Source{httpc: httpc}
}

func (s *Source) Name() string { return "audioprobe" }

// AppliesToEpisode restricts probing to mp3 enclosures; that is the only
// container the frame decoder understands.
func (s *Source) AppliesToEpisode(ep models.Episode) bool {
	if ep.Enclosure.URL == "" {
		return false
	}
	if ep.Enclosure.Type == "audio/mpeg" {
		return true
	}
	return strings.EqualFold(path.Ext(ep.Enclosure.URL), ".mp3")
}

// EnrichEpisode downloads the enclosure and probes it. Only confidently
// decoded attributes are supplied: a broken download is unavailability, a
// file that decodes to nothing yields an empty patch.
func (s *Source) EnrichEpisode(ctx context.Context, ep models.Episode) (models.EpisodePatch, error) {
	file, err := s.download(ctx, ep.Enclosure.URL)
	if err != nil {
		return models.EpisodePatch{}, err
	}
	defer func() {
		file.Close()
		os.Remove(file.Name())
	}()

	var patch models.EpisodePatch
	if title := readTitle(file); title != "" {
		patch.Title = models.Optional(title)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return patch, nil
	}
	if duration, err := decodeDuration(file); err == nil && duration > 0 {
		rounded := duration.Round(time.Second)
		patch.Duration = &rounded
	}
	return patch, nil
}

// download spools the enclosure into a temp file so the probes can seek.
func (s *Source) download(ctx context.Context, rawURL string) (*os.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "podcast-feed-gen")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: audioprobe: %v", source.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: audioprobe: %s returned %s", source.ErrSourceUnavailable, rawURL, resp.Status)
	}

	file, err := os.CreateTemp("", "audioprobe-*.mp3")
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("%w: audioprobe: download %s: %v", source.ErrSourceUnavailable, rawURL, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, err
	}
	return file, nil
}

func readTitle(file *os.File) string {
	meta, err := tag.ReadFrom(file)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(meta.Title())
}

func decodeDuration(r io.Reader) (time.Duration, error) {
	decoder := mp3.NewDecoder(r)
	var frame mp3.Frame
	var skipped int
	var total time.Duration

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration()
	}
	return total, nil
}
