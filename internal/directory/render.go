package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/froydnj/contentdir/internal/didl"
	"github.com/froydnj/contentdir/internal/models"
	"github.com/froydnj/contentdir/internal/shared"
)

// Filter gates which optional DIDL-Lite properties a response includes.
// "*" includes everything; otherwise only the named properties are emitted.
type Filter struct {
	all   bool
	props map[string]bool
}

// ParseFilter parses a comma-separated UPnP Filter argument.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "*" || s == "" {
		return Filter{all: s == "*"}
	}
	f := Filter{props: make(map[string]bool)}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			f.props[p] = true
		}
	}
	return f
}

// Allows reports whether the optional property should be emitted.
func (f Filter) Allows(prop string) bool {
	return f.all || f.props[prop]
}

// trackLookup batch-resolves track metadata for rows spliced into
// musicfolder listings.
type trackLookup func(ctx context.Context, ids []int64) ([]models.TrackRow, error)

// renderer converts backend rows into DIDL-Lite objects with correctly
// derived id/parentID pairs.
type renderer struct {
	resourceBase string
	logger       *log.Logger
	lookupTracks trackLookup
}

// render serializes the query result for the given plan. It returns the
// rendered objects, the number rendered, and the adjusted total.
func (r *renderer) render(ctx context.Context, pl plan, res *models.QueryResult, filter Filter) ([]didl.Object, uint32, uint32, error) {
	total := res.Count
	if pl.totalCap > 0 && total > pl.totalCap {
		total = pl.totalCap
	}

	base := pl.path.Raw
	var objects []didl.Object

	switch {
	case pl.folderMode:
		var err error
		objects, total, err = r.renderFolder(ctx, pl, res, filter, total)
		if err != nil {
			return nil, 0, 0, err
		}

	case res.Artists != nil:
		for _, row := range res.Artists {
			o := r.container(pl, base, strconv.FormatInt(row.ID, 10), didl.ClassMusicArtist, row.Name)
			objects = append(objects, o)
		}

	case res.Albums != nil:
		for _, row := range res.Albums {
			o := r.container(pl, base, strconv.FormatInt(row.ID, 10), didl.ClassMusicAlbum, row.Title)
			if filter.Allows(didl.TagCreator) {
				o.AddProp(didl.TagCreator, row.Artist)
			}
			if filter.Allows(didl.TagArtist) {
				o.AddProp(didl.TagArtist, row.Artist)
			}
			if filter.Allows(didl.TagDate) && row.Year > 0 {
				o.AddProp(didl.TagDate, fmt.Sprintf("%04d-01-01", row.Year))
			}
			if filter.Allows(didl.TagAlbumArtURI) && row.ArtworkTrackID > 0 {
				o.AddProp(didl.TagAlbumArtURI, r.albumArtURI(row.ArtworkTrackID))
			}
			objects = append(objects, o)
		}

	case res.Genres != nil:
		for _, row := range res.Genres {
			o := r.container(pl, base, strconv.FormatInt(row.ID, 10), didl.ClassMusicGenre, row.Name)
			objects = append(objects, o)
		}

	case res.Years != nil:
		for _, row := range res.Years {
			o := r.container(pl, base, strconv.Itoa(row.Year), didl.ClassStorageFolder, strconv.Itoa(row.Year))
			objects = append(objects, o)
		}

	case res.Playlists != nil:
		for _, row := range res.Playlists {
			o := r.container(pl, base, strconv.FormatInt(row.ID, 10), didl.ClassPlaylist, row.Name)
			objects = append(objects, o)
		}

	case res.Tracks != nil:
		for _, row := range res.Tracks {
			id := childID(base, strconv.FormatInt(row.ID, 10), "")
			parent := base
			if pl.metadata {
				id = pl.path.Raw
				parent = pl.path.ParentID()
			}
			objects = append(objects, r.trackItem(row, id, parent, filter))
		}

	case res.Videos != nil:
		for _, row := range res.Videos {
			o := r.item(pl, base, strconv.FormatInt(row.ID, 10), didl.ClassVideoItem, row.Title)
			if filter.Allows(didl.TagLastUpdated) && row.UpdatedAt > 0 {
				o.AddProp(didl.TagLastUpdated, strconv.FormatInt(row.UpdatedAt, 10))
			}
			o.AddResource(didl.Resource{
				ProtocolInfo: protocolInfo(row.MimeType),
				Size:         row.FileSize,
				Duration:     formatDuration(row.DurationMS),
				Resolution:   resolution(row.Width, row.Height),
				URL:          r.resourceBase + "/stream/video/" + strconv.FormatInt(row.ID, 10),
			})
			objects = append(objects, o)
		}

	case res.Images != nil:
		for _, row := range res.Images {
			o := r.item(pl, base, strconv.FormatInt(row.ID, 10), didl.ClassPhoto, row.Title)
			if filter.Allows(didl.TagDate) && row.TakenAt > 0 {
				o.AddProp(didl.TagDate, formatDateKey(row.TakenAt))
			}
			if filter.Allows(didl.TagLastUpdated) && row.UpdatedAt > 0 {
				o.AddProp(didl.TagLastUpdated, strconv.FormatInt(row.UpdatedAt, 10))
			}
			o.AddResource(didl.Resource{
				ProtocolInfo: protocolInfo(row.MimeType),
				Size:         row.FileSize,
				Resolution:   resolution(row.Width, row.Height),
				URL:          r.resourceBase + "/image/" + strconv.FormatInt(row.ID, 10),
			})
			objects = append(objects, o)
		}

	case res.ImageAlbums != nil:
		for _, row := range res.ImageAlbums {
			o := r.container(pl, base, row.Hash, didl.ClassPhotoAlbum, row.Name)
			objects = append(objects, o)
		}

	case res.ImageDates != nil:
		for _, row := range res.ImageDates {
			key := strconv.Itoa(row.Date)
			o := r.container(pl, base, key, didl.ClassPhotoAlbum, formatDateKey(row.Date))
			objects = append(objects, o)
		}
	}

	if pl.metadata && len(objects) == 0 {
		return nil, 0, 0, fmt.Errorf("%w: %q", shared.ErrNoSuchObject, pl.path.Raw)
	}
	if pl.metadata {
		total = 1
	}

	return objects, uint32(len(objects)), total, nil
}

// renderFolder handles the heterogeneous musicfolder rows: subfolders become
// containers, bare tracks are batch-resolved and spliced back in with their
// IDs rewritten onto the track suffix, and playlist rows are dropped with
// the total adjusted to stay consistent.
//
// Track rows at the mount itself are dropped the same way: the splice needs
// an enclosing folder key to keep id and parentID round-trippable, and the
// scanner always files tracks under a folder row, so a track with no folder
// only appears from inconsistent data.
func (r *renderer) renderFolder(ctx context.Context, pl plan, res *models.QueryResult, filter Filter, total uint32) ([]didl.Object, uint32, error) {
	base := pl.path.Raw
	atMount := base == "/"+string(MountFolders)

	var trackIDs []int64
	for _, row := range res.Folders {
		if row.Kind == models.FolderEntryTrack && !atMount {
			trackIDs = append(trackIDs, row.ID)
		}
	}

	found := map[int64]models.TrackRow{}
	if len(trackIDs) > 0 {
		rows, err := r.lookupTracks(ctx, trackIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: folder track lookup: %v", shared.ErrQueryFailed, err)
		}
		for _, row := range rows {
			found[row.ID] = row
		}
	}

	trackBase := strings.TrimSuffix(base, "/"+string(MountFolders)) + "/" + string(MountTracks)
	var objects []didl.Object

	for _, row := range res.Folders {
		switch row.Kind {
		case models.FolderEntryFolder:
			o := r.container(pl, base, strconv.FormatInt(row.ID, 10), didl.ClassStorageFolder, row.Name)
			objects = append(objects, o)

		case models.FolderEntryTrack:
			if atMount {
				r.logger.Warn("skipping unfiled track at music folder root", "track_id", row.ID)
				if total > 0 {
					total--
				}
				continue
			}
			trow, ok := found[row.ID]
			if !ok {
				// stale reference; adjust rather than abort
				r.logger.Warn("skipping unresolved track in music folder", "track_id", row.ID)
				if total > 0 {
					total--
				}
				continue
			}
			id := trackBase + "/" + strconv.FormatInt(trow.ID, 10)
			parent := base
			if pl.metadata {
				id = pl.path.Raw
				parent = pl.path.ParentID()
			}
			objects = append(objects, r.trackItem(trow, id, parent, filter))

		case models.FolderEntryPlaylist:
			// Playlist files inside the music folder are not browsable
			// through this hierarchy; keep the window consistent.
			r.logger.Warn("skipping playlist entry in music folder", "name", row.Name)
			if total > 0 {
				total--
			}

		default:
			r.logger.Warn("skipping unknown music folder entry", "name", row.Name)
			if total > 0 {
				total--
			}
		}
	}

	return objects, total, nil
}

// container builds a child container (or, in metadata mode, the node
// itself). Children get base + "/" + key + "/" + suffix IDs; metadata keeps
// the input ID and recomputes the parent by stripping path segments.
func (r *renderer) container(pl plan, base, key, class, title string) didl.Object {
	o := didl.Object{
		Container: true,
		Class:     class,
		Title:     title,
	}
	if pl.metadata {
		o.ID = pl.path.Raw
		o.ParentID = pl.path.ParentID()
	} else {
		o.ID = childID(base, key, string(pl.childSuffix))
		o.ParentID = base
	}
	return o
}

func (r *renderer) item(pl plan, base, key, class, title string) didl.Object {
	o := didl.Object{Class: class, Title: title}
	if pl.metadata {
		o.ID = pl.path.Raw
		o.ParentID = pl.path.ParentID()
	} else {
		o.ID = childID(base, key, "")
		o.ParentID = base
	}
	return o
}

func (r *renderer) trackItem(row models.TrackRow, id, parent string, filter Filter) didl.Object {
	o := didl.Object{
		ID:       id,
		ParentID: parent,
		Class:    didl.ClassMusicTrack,
		Title:    row.Title,
	}
	if filter.Allows(didl.TagCreator) {
		o.AddProp(didl.TagCreator, row.Artist)
	}
	if filter.Allows(didl.TagArtist) {
		o.AddProp(didl.TagArtist, row.Artist)
	}
	if filter.Allows(didl.TagAlbum) {
		o.AddProp(didl.TagAlbum, row.Album)
	}
	if filter.Allows(didl.TagGenre) {
		o.AddProp(didl.TagGenre, row.Genre)
	}
	if filter.Allows(didl.TagOriginalTrackNumber) && row.Tracknum > 0 {
		o.AddProp(didl.TagOriginalTrackNumber, strconv.Itoa(row.Tracknum))
	}
	if filter.Allows(didl.TagDate) && row.Year > 0 {
		o.AddProp(didl.TagDate, fmt.Sprintf("%04d-01-01", row.Year))
	}
	if filter.Allows(didl.TagAlbumArtURI) && row.ArtworkTrackID > 0 {
		o.AddProp(didl.TagAlbumArtURI, r.albumArtURI(row.ArtworkTrackID))
	}
	o.AddResource(didl.Resource{
		ProtocolInfo: protocolInfo(row.MimeType),
		Size:         row.FileSize,
		Duration:     formatDuration(row.DurationMS),
		URL:          r.resourceBase + "/stream/track/" + strconv.FormatInt(row.ID, 10),
	})
	return o
}

func (r *renderer) albumArtURI(trackID int64) string {
	return r.resourceBase + "/albumart/" + strconv.FormatInt(trackID, 10) + ".jpg"
}

func childID(base, key, suffix string) string {
	if suffix == "" {
		return base + "/" + key
	}
	return base + "/" + key + "/" + suffix
}

func protocolInfo(mime string) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "http-get:*:" + mime + ":*"
}

// formatDuration renders milliseconds as the DLNA H:MM:SS form.
func formatDuration(ms int64) string {
	if ms <= 0 {
		return ""
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// formatDateKey renders YYYY or YYYYMMDD keys as ISO dates.
func formatDateKey(key int) string {
	if key < 10000 {
		return strconv.Itoa(key)
	}
	return fmt.Sprintf("%04d-%02d-%02d", key/10000, (key/100)%100, key%100)
}

func resolution(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}
