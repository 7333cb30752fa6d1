package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/froydnj/contentdir/internal/didl"
	"github.com/froydnj/contentdir/internal/models"
	"github.com/froydnj/contentdir/internal/shared"
)

// Capability strings advertised to control points.
const (
	SearchCapabilities = "dc:title,dc:creator,upnp:artist,upnp:album,upnp:genre,@id,@refID,pv:lastUpdated"
	SortCapabilities   = "dc:title"
)

// UPnP ContentDirectory fault codes.
const (
	FaultNoSuchObject  = 701
	FaultBadCriteria   = 708
	FaultCannotProcess = 720
)

// Caps carries the tunable limits of the service.
type Caps struct {
	// NewMusicLimit caps the total the /n hierarchy reports regardless of
	// the backend count. Zero means uncapped.
	NewMusicLimit uint32
	// ResourceBase prefixes res and albumArtURI URLs, e.g. "http://host:port".
	ResourceBase string
}

// BrowseResult is the outcome of one Browse or Search action.
type BrowseResult struct {
	Objects  []didl.Object
	XML      string
	Returned uint32
	Total    uint32
	UpdateID uint32
}

// Service answers ContentDirectory actions against a media library backend.
type Service struct {
	backend  models.Backend
	caps     Caps
	notifier *Notifier
	logger   *log.Logger
	renderer *renderer
}

// NewService wires the content directory core. The notifier's revision
// should be initialized from the library's last completed scan time.
func NewService(backend models.Backend, caps Caps, notifier *Notifier, logger *log.Logger) *Service {
	s := &Service{
		backend:  backend,
		caps:     caps,
		notifier: notifier,
		logger:   logger,
	}
	s.renderer = &renderer{
		resourceBase: caps.ResourceBase,
		logger:       logger,
		lookupTracks: s.lookupTracks,
	}
	return s
}

// Notifier exposes the event state machine for the eventing layer and the
// scanner.
func (s *Service) Notifier() *Notifier {
	return s.notifier
}

// SystemUpdateID returns the current revision.
func (s *Service) SystemUpdateID() uint32 {
	return s.notifier.Revision()
}

// Browse resolves an object ID and returns either the node's own metadata
// or a page of its children as DIDL-Lite.
func (s *Service) Browse(ctx context.Context, objectID, browseFlag, filterStr string, start, limit uint32, sortCriteria string) (BrowseResult, error) {
	flag, err := ParseBrowseFlag(browseFlag)
	if err != nil {
		return BrowseResult{}, err
	}
	filter := ParseFilter(filterStr)
	page := normalizePage(start, limit)

	if objectID == RootID || objectID == "" {
		return s.browseRoot(flag, page, filter), nil
	}

	parsed, err := Parse(objectID)
	if err != nil {
		return BrowseResult{}, err
	}

	// bare mount containers are static, not backed by a query
	if flag == BrowseMetadata && len(parsed.Levels) == 1 && parsed.Levels[0].Key == nil {
		return s.mountMetadata(parsed), nil
	}

	pl, err := translate(parsed, flag, page, sortCriteria, s.caps, s.logger)
	if err != nil {
		return BrowseResult{}, err
	}

	return s.run(ctx, pl, filter)
}

// Search runs a SearchCriteria query. Only the root container is
// searchable; the decoded criteria picks the track, video, or image family.
func (s *Service) Search(ctx context.Context, containerID, criteria, filterStr string, start, limit uint32, sortCriteria string) (BrowseResult, error) {
	if containerID != RootID {
		return BrowseResult{}, fmt.Errorf("%w: search requires the root container", shared.ErrUnsupportedContainer)
	}

	command, pred, tags, err := decodeSearch(criteria)
	if err != nil {
		return BrowseResult{}, err
	}

	order, sortTags := decodeSort(sortCriteria, command)
	for _, t := range sortTags {
		tags = appendTag(tags, t)
	}

	page := normalizePage(start, limit)
	pl := plan{
		req: models.QueryRequest{
			Command: command,
			Start:   page.Start,
			Limit:   page.Limit,
			Params:  map[string]string{},
			Search:  &pred,
			Order:   order,
			Tags:    tags,
		},
	}

	// search results live under the flat mounts so their IDs resolve on
	// re-navigation
	switch command {
	case models.CmdVideos:
		pl.path = mustParseMount(MountVideos)
	case models.CmdImages:
		pl.path = mustParseMount(MountImages)
	default:
		pl.path = mustParseMount(MountTracks)
	}

	res, err := s.run(ctx, pl, ParseFilter(filterStr))
	if err != nil {
		return BrowseResult{}, err
	}
	return res, nil
}

// run executes a plan against the backend and renders the rows.
func (s *Service) run(ctx context.Context, pl plan, filter Filter) (BrowseResult, error) {
	result, err := s.backend.Query(ctx, pl.req)
	if err != nil {
		return BrowseResult{}, fmt.Errorf("%w: %s: %v", shared.ErrQueryFailed, pl.req.Command, err)
	}

	objects, count, total, err := s.renderer.render(ctx, pl, result, filter)
	if err != nil {
		return BrowseResult{}, err
	}

	return BrowseResult{
		Objects:  objects,
		XML:      didl.Render(objects),
		Returned: count,
		Total:    total,
		UpdateID: s.notifier.Revision(),
	}, nil
}

// browseRoot serves the static top-level containers.
func (s *Service) browseRoot(flag BrowseFlag, page PageWindow, filter Filter) BrowseResult {
	if flag == BrowseMetadata {
		root := didl.Object{
			Container:  true,
			ID:         RootID,
			ParentID:   "-1",
			Searchable: true,
			Class:      didl.ClassStorageFolder,
			Title:      "contentdir",
		}
		objects := []didl.Object{root}
		return BrowseResult{
			Objects:  objects,
			XML:      didl.Render(objects),
			Returned: 1,
			Total:    1,
			UpdateID: s.notifier.Revision(),
		}
	}

	total := uint32(len(mountOrder))
	var objects []didl.Object
	for i := page.Start; i < total && uint32(len(objects)) < page.Limit; i++ {
		m := mountOrder[i]
		objects = append(objects, didl.Object{
			Container: true,
			ID:        "/" + string(m),
			ParentID:  RootID,
			Class:     didl.ClassStorageFolder,
			Title:     mountTitles[m],
		})
	}
	return BrowseResult{
		Objects:  objects,
		XML:      didl.Render(objects),
		Returned: uint32(len(objects)),
		Total:    total,
		UpdateID: s.notifier.Revision(),
	}
}

// mountMetadata describes a bare mount container such as "/g".
func (s *Service) mountMetadata(p ParsedPath) BrowseResult {
	o := didl.Object{
		Container: true,
		ID:        p.Raw,
		ParentID:  RootID,
		Class:     didl.ClassStorageFolder,
		Title:     mountTitles[p.Mount],
	}
	objects := []didl.Object{o}
	return BrowseResult{
		Objects:  objects,
		XML:      didl.Render(objects),
		Returned: 1,
		Total:    1,
		UpdateID: s.notifier.Revision(),
	}
}

// lookupTracks batch-resolves tracks spliced into musicfolder listings.
func (s *Service) lookupTracks(ctx context.Context, ids []int64) ([]models.TrackRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	csv := make([]byte, 0, len(ids)*8)
	for i, id := range ids {
		if i > 0 {
			csv = append(csv, ',')
		}
		csv = strconv.AppendInt(csv, id, 10)
	}
	req := models.QueryRequest{
		Command: models.CmdTitles,
		Start:   0,
		Limit:   uint32(len(ids)),
		Params:  map[string]string{models.ParamTrackIDs: string(csv)},
	}
	result, err := s.backend.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	return result.Tracks, nil
}

// FaultCode maps a core error to its UPnP ContentDirectory fault code.
func FaultCode(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidPath), errors.Is(err, shared.ErrNoSuchObject):
		return FaultNoSuchObject
	case errors.Is(err, shared.ErrUnsupportedCriteria), errors.Is(err, shared.ErrUnsupportedContainer):
		return FaultBadCriteria
	default:
		return FaultCannotProcess
	}
}

// normalizePage applies the UPnP convention that RequestedCount 0 means
// "everything".
func normalizePage(start, limit uint32) PageWindow {
	if limit == 0 {
		limit = 1<<31 - 1
	}
	return PageWindow{Start: start, Limit: limit}
}

func mustParseMount(m Mount) ParsedPath {
	p, err := Parse("/" + string(m))
	if err != nil {
		panic(fmt.Sprintf("mount %q failed to parse: %v", m, err))
	}
	return p
}

// NowRevision converts a wall-clock time to a revision value.
func NowRevision(t time.Time) uint32 {
	return uint32(t.Unix())
}
