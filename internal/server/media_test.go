package server

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/froydnj/contentdir/internal/shared"
)

// stubSource maps object IDs to paths from a fixed table.
type stubSource struct {
	tracks map[int64]string
	videos map[int64]string
	images map[int64]string
}

func (s *stubSource) TrackPath(_ context.Context, id int64) (string, error) {
	return s.lookup(s.tracks, id)
}

func (s *stubSource) VideoPath(_ context.Context, id int64) (string, error) {
	return s.lookup(s.videos, id)
}

func (s *stubSource) ImagePath(_ context.Context, id int64) (string, error) {
	return s.lookup(s.images, id)
}

func (s *stubSource) lookup(m map[int64]string, id int64) (string, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %d", shared.ErrNoSuchObject, id)
}

func newMediaHandler(t *testing.T) *MediaHandler {
	t.Helper()
	dir := t.TempDir()
	track := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(track, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	source := &stubSource{
		tracks: map[int64]string{9: track},
		videos: map[int64]string{},
		images: map[int64]string{},
	}
	return NewMediaHandler(source, shared.NewLogger(io.Discard))
}

func TestMediaServesTrack(t *testing.T) {
	h := newMediaHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/stream/track/9", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// renderers seek with range requests, so partial content must work.
func TestMediaServesRange(t *testing.T) {
	h := newMediaHandler(t)

	req := httptest.NewRequest("GET", "/stream/track/9", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != 206 {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q, want 2345", rec.Body.String())
	}
}

func TestMediaNotFound(t *testing.T) {
	h := newMediaHandler(t)

	for _, path := range []string{
		"/stream/track/404",
		"/stream/track/notanumber",
		"/stream/video/1",
		"/image/1",
		"/albumart/9.jpg", // the fixture track has no embedded picture
		"/elsewhere",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != 404 {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
		}
	}
}

func TestMediaRejectsOtherMethods(t *testing.T) {
	h := newMediaHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/stream/track/9", nil))
	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
