package directory

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/froydnj/contentdir/internal/models"
	"github.com/froydnj/contentdir/internal/shared"
)

// BrowseFlag selects whether a Browse fetches one node's own metadata or a
// page of its children.
type BrowseFlag int

const (
	BrowseMetadata BrowseFlag = iota
	BrowseDirectChildren
)

// ParseBrowseFlag maps the wire BrowseFlag values.
func ParseBrowseFlag(s string) (BrowseFlag, error) {
	switch s {
	case "BrowseMetadata":
		return BrowseMetadata, nil
	case "BrowseDirectChildren":
		return BrowseDirectChildren, nil
	default:
		return 0, fmt.Errorf("%w: %q", shared.ErrInvalidBrowseFlag, s)
	}
}

// PageWindow requests a sub-range of children at one depth.
type PageWindow struct {
	Start uint32
	Limit uint32
}

// plan is a translated browse: the backend request to run plus everything
// the renderer needs to turn rows back into objects.
type plan struct {
	req         models.QueryRequest
	path        ParsedPath
	metadata    bool
	childSuffix Mount  // appended to child container IDs; empty for leaf items
	totalCap    uint32 // nonzero caps the reported total (new music)
	folderMode  bool   // heterogeneous musicfolder rows
}

// supportedSort advertises the single UPnP sort property each command
// accepts beyond its native order.
var supportedSort = map[string]string{
	models.CmdArtists:   "dc:title",
	models.CmdAlbums:    "dc:title",
	models.CmdGenres:    "dc:title",
	models.CmdPlaylists: "dc:title",
	models.CmdTitles:    "dc:title",
	models.CmdVideos:    "dc:title",
	models.CmdImages:    "dc:title",
}

// translate selects the backend query for a parsed path and browse flag.
// Requests for sort orders a node does not support degrade to the node's
// native order with a warning rather than failing the request.
func translate(p ParsedPath, flag BrowseFlag, page PageWindow, sortCriteria string, caps Caps, logger *log.Logger) (plan, error) {
	var pl plan
	var err error

	switch flag {
	case BrowseMetadata:
		pl, err = translateMetadata(p)
	case BrowseDirectChildren:
		pl, err = translateChildren(p, page, caps)
	default:
		return plan{}, shared.ErrInvalidBrowseFlag
	}
	if err != nil {
		return plan{}, err
	}

	pl.path = p
	pl.req.Sort = resolveSort(pl.req.Command, pl.req.Sort, sortCriteria, logger)
	return pl, nil
}

// resolveSort validates the requested SortCriteria against the command's
// advertised sort field, falling back to native order when unsupported.
func resolveSort(command, native, criteria string, logger *log.Logger) string {
	specs := parseSortSpecs(criteria)
	if len(specs) == 0 {
		return native
	}
	if len(specs) == 1 && !specs[0].desc && specs[0].prop == supportedSort[command] {
		return models.SortTitle
	}
	if logger != nil {
		logger.Warn("unsupported sort criteria, using native order", "command", command, "criteria", criteria)
	}
	return native
}

// translateChildren builds the query listing the page of children one level
// below the path. Paths ending in a keyed node have no listing depth here;
// children of such nodes are addressed by suffixed IDs.
func translateChildren(p ParsedPath, page PageWindow, caps Caps) (plan, error) {
	last := p.Last()
	if last.Key != nil {
		return plan{}, fmt.Errorf("%w: %q has no child listing", shared.ErrNoSuchObject, p.Raw)
	}

	req := models.QueryRequest{
		Start:  page.Start,
		Limit:  page.Limit,
		Params: map[string]string{},
	}
	pl := plan{req: req}

	switch last.Kind {
	case MountArtists:
		pl.req.Command = models.CmdArtists
		pl.req.Sort = models.SortTitle
		pl.childSuffix = MountAlbums
		addKeyParam(&pl.req, p, MountGenres, models.ParamGenreID)

	case MountAlbums:
		pl.req.Command = models.CmdAlbums
		pl.req.Sort = models.SortTitle
		pl.childSuffix = MountTracks
		pl.req.Tags = []models.Tag{models.TagArtist}
		addKeyParam(&pl.req, p, MountArtists, models.ParamArtistID)
		addKeyParam(&pl.req, p, MountGenres, models.ParamGenreID)
		addKeyParam(&pl.req, p, MountYears, models.ParamYear)

	case MountGenres:
		pl.req.Command = models.CmdGenres
		pl.req.Sort = models.SortTitle
		pl.childSuffix = MountArtists

	case MountYears:
		pl.req.Command = models.CmdYears
		pl.childSuffix = MountAlbums

	case MountNewMusic:
		pl.req.Command = models.CmdAlbums
		pl.req.Sort = models.SortNewest
		pl.childSuffix = MountTracks
		pl.req.Tags = []models.Tag{models.TagArtist}
		pl.totalCap = caps.NewMusicLimit
		if pl.totalCap > 0 {
			if pl.req.Start >= pl.totalCap {
				pl.req.Limit = 0
			} else if pl.req.Start+pl.req.Limit > pl.totalCap {
				pl.req.Limit = pl.totalCap - pl.req.Start
			}
		}

	case MountFolders:
		pl.req.Command = models.CmdMusicFolder
		pl.childSuffix = MountFolders
		pl.folderMode = true
		addKeyParam(&pl.req, p, MountFolders, models.ParamFolderID)

	case MountPlaylists:
		pl.req.Command = models.CmdPlaylists
		pl.req.Sort = models.SortTitle
		pl.childSuffix = MountTracks

	case MountTracks:
		pl.req.Sort = models.SortTrack
		switch {
		case hasKey(p, MountPlaylists):
			pl.req.Command = models.CmdPlaylistTracks
			addKeyParam(&pl.req, p, MountPlaylists, models.ParamPlaylistID)
		case hasKey(p, MountAlbums):
			pl.req.Command = models.CmdTitles
			addKeyParam(&pl.req, p, MountAlbums, models.ParamAlbumID)
		case hasKey(p, MountNewMusic):
			pl.req.Command = models.CmdTitles
			addKeyParam(&pl.req, p, MountNewMusic, models.ParamAlbumID)
		default:
			// bare /t: the search results container
			pl.req.Command = models.CmdTitles
			pl.req.Sort = models.SortTitle
		}

	case MountVideos:
		pl.req.Command = models.CmdVideos
		pl.req.Sort = models.SortTitle

	case MountImages:
		pl.req.Command = models.CmdImages
		pl.req.Sort = models.SortTitle
		addKeyParam(&pl.req, p, MountImageAlbums, models.ParamAlbumHash)
		addKeyParam(&pl.req, p, MountImageDates, models.ParamDate)

	case MountImageAlbums:
		pl.req.Command = models.CmdImageAlbums
		pl.childSuffix = MountImages

	case MountImageDates:
		pl.req.Command = models.CmdImageDates
		pl.childSuffix = MountImages
		addKeyParam(&pl.req, p, MountImageTimeline, models.ParamYear)

	case MountImageTimeline:
		pl.req.Command = models.CmdImageYears
		pl.childSuffix = MountImageDates

	default:
		return plan{}, fmt.Errorf("%w: no query for %q", shared.ErrNoSuchObject, p.Raw)
	}

	return pl, nil
}

// translateMetadata builds the single-row query describing the deepest keyed
// node on the path.
func translateMetadata(p ParsedPath) (plan, error) {
	lv, ok := p.LastKeyed()
	if !ok {
		return plan{}, fmt.Errorf("%w: %q names no object", shared.ErrNoSuchObject, p.Raw)
	}

	req := models.QueryRequest{
		Start:  0,
		Limit:  1,
		Params: map[string]string{},
	}
	pl := plan{req: req, metadata: true}
	key := lv.Key.String()

	switch lv.Kind {
	case MountArtists:
		pl.req.Command = models.CmdArtists
		pl.req.Params[models.ParamArtistID] = key
	case MountAlbums, MountNewMusic:
		pl.req.Command = models.CmdAlbums
		pl.req.Params[models.ParamAlbumID] = key
		pl.req.Tags = []models.Tag{models.TagArtist}
	case MountGenres:
		pl.req.Command = models.CmdGenres
		pl.req.Params[models.ParamGenreID] = key
	case MountYears:
		pl.req.Command = models.CmdYears
		pl.req.Params[models.ParamYear] = key
	case MountFolders:
		pl.req.Command = models.CmdMusicFolder
		pl.req.Params[models.ParamFolderID] = key
		pl.req.Params[models.ParamSelf] = "1"
		pl.folderMode = true
	case MountPlaylists:
		pl.req.Command = models.CmdPlaylists
		pl.req.Params[models.ParamPlaylistID] = key
	case MountTracks:
		pl.req.Command = models.CmdTitles
		pl.req.Params[models.ParamTrackID] = key
	case MountVideos:
		pl.req.Command = models.CmdVideos
		pl.req.Params[models.ParamVideoID] = key
	case MountImages:
		pl.req.Command = models.CmdImages
		pl.req.Params[models.ParamImageID] = key
	case MountImageAlbums:
		pl.req.Command = models.CmdImageAlbums
		pl.req.Params[models.ParamAlbumHash] = key
	case MountImageDates:
		pl.req.Command = models.CmdImageDates
		pl.req.Params[models.ParamDate] = key
	case MountImageTimeline:
		pl.req.Command = models.CmdImageYears
		pl.req.Params[models.ParamYear] = key
	default:
		return plan{}, fmt.Errorf("%w: no query for %q", shared.ErrNoSuchObject, p.Raw)
	}

	return pl, nil
}

func hasKey(p ParsedPath, kind Mount) bool {
	_, ok := p.KeyFor(kind)
	return ok
}

func addKeyParam(req *models.QueryRequest, p ParsedPath, kind Mount, param string) {
	if key, ok := p.KeyFor(kind); ok {
		req.Params[param] = key.String()
	}
}
