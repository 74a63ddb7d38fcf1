package audioprobe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"podcast-feed-gen/internal/models"
	"podcast-feed-gen/internal/source"
)

func TestAppliesToEpisode(t *testing.T) {
	src := New(nil)

	cases := []struct {
		name    string
		ep      models.Episode
		applies bool
	}{
		{"no enclosure", models.Episode{}, false},
		{"mp3 by type", models.Episode{Enclosure: models.Enclosure{URL: "https://a/x", Type: "audio/mpeg"}}, true},
		{"mp3 by extension", models.Episode{Enclosure: models.Enclosure{URL: "https://a/x.MP3"}}, true},
		{"other container", models.Episode{Enclosure: models.Enclosure{URL: "https://a/x.ogg", Type: "audio/ogg"}}, false},
	}
	for _, tc := range cases {
		if got := src.AppliesToEpisode(tc.ep); got != tc.applies {
			t.Fatalf("%s: applies = %v, want %v", tc.name, got, tc.applies)
		}
	}
}

func TestEnrichEpisodeInvalidAudioYieldsEmptyPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not really an mp3"))
	}))
	defer srv.Close()

	src := New(srv.Client())
	patch, err := src.EnrichEpisode(context.Background(), models.Episode{
		Enclosure: models.Enclosure{URL: srv.URL + "/broken.mp3", Type: "audio/mpeg"},
	})
	if err != nil {
		t.Fatalf("undecodable audio must not be an error, got %v", err)
	}
	if !patch.IsZero() {
		t.Fatalf("undecodable audio must supply nothing, got %+v", patch)
	}
}

func TestEnrichEpisodeDownloadFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := New(srv.Client())
	_, err := src.EnrichEpisode(context.Background(), models.Episode{
		Enclosure: models.Enclosure{URL: srv.URL + "/ep.mp3", Type: "audio/mpeg"},
	})
	if !errors.Is(err, source.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}
