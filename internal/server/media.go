package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/froydnj/contentdir/internal/shared"
)

// MediaSource resolves library object IDs to on-disk files.
type MediaSource interface {
	TrackPath(ctx context.Context, id int64) (string, error)
	VideoPath(ctx context.Context, id int64) (string, error)
	ImagePath(ctx context.Context, id int64) (string, error)
}

// MediaHandler streams the files behind the res URLs the directory renders:
// track and video streams, images, and embedded album art.
type MediaHandler struct {
	source MediaSource
	logger *log.Logger
}

// NewMediaHandler creates the streaming endpoints.
func NewMediaHandler(source MediaSource, logger *log.Logger) *MediaHandler {
	return &MediaHandler{source: source, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *MediaHandler) Routes() []string {
	return []string{"/stream/track/", "/stream/video/", "/image/", "/albumart/"}
}

// ServeHTTP resolves the object ID in the URL and serves the file.
// http.ServeFile handles range requests, which renderers rely on for seeking.
func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/stream/track/"):
		h.serve(w, r, h.source.TrackPath, strings.TrimPrefix(r.URL.Path, "/stream/track/"))
	case strings.HasPrefix(r.URL.Path, "/stream/video/"):
		h.serve(w, r, h.source.VideoPath, strings.TrimPrefix(r.URL.Path, "/stream/video/"))
	case strings.HasPrefix(r.URL.Path, "/image/"):
		h.serve(w, r, h.source.ImagePath, strings.TrimPrefix(r.URL.Path, "/image/"))
	case strings.HasPrefix(r.URL.Path, "/albumart/"):
		h.albumArt(w, r, strings.TrimPrefix(r.URL.Path, "/albumart/"))
	default:
		http.NotFound(w, r)
	}
}

type pathLookup func(ctx context.Context, id int64) (string, error)

func (h *MediaHandler) serve(w http.ResponseWriter, r *http.Request, lookup pathLookup, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	path, err := lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNoSuchObject) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("media lookup failed", "id", id, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.ServeFile(w, r, path)
}

// albumArt serves the picture embedded in a track's tags. The URL carries a
// .jpg suffix for renderers that key content type off the extension.
func (h *MediaHandler) albumArt(w http.ResponseWriter, r *http.Request, rawID string) {
	rawID = strings.TrimSuffix(rawID, ".jpg")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	path, err := h.source.TrackPath(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil || m.Picture() == nil {
		http.NotFound(w, r)
		return
	}

	pic := m.Picture()
	if pic.MIMEType != "" {
		w.Header().Set("Content-Type", pic.MIMEType)
	}
	w.Write(pic.Data)
}
