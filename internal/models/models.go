// package models defines the query contract between the content directory
// core and the media library backend.
//
// The core issues a QueryRequest naming a backend command plus a page window
// and filter parameters; the backend answers with a QueryResult carrying the
// total count and exactly one populated row slice for the entity kind the
// command addresses.
package models

import "context"

// Backend executes library queries on behalf of the content directory.
//
// Implementations treat the call as synchronous; the core has no partial
// result or retry semantics, a failed query fails the whole request.
type Backend interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)
}

// Backend command names.
const (
	CmdArtists        = "artists"
	CmdAlbums         = "albums"
	CmdGenres         = "genres"
	CmdYears          = "years"
	CmdMusicFolder    = "musicfolder"
	CmdTitles         = "titles"
	CmdPlaylists      = "playlists"
	CmdPlaylistTracks = "playlisttracks"
	CmdVideos         = "videos"
	CmdImages         = "images"
	CmdImageAlbums    = "imagealbums"
	CmdImageDates     = "imagedates"
	CmdImageYears     = "imageyears"
)

// Filter parameter keys understood by backend commands.
const (
	ParamArtistID   = "artist_id"
	ParamAlbumID    = "album_id"
	ParamGenreID    = "genre_id"
	ParamYear       = "year"
	ParamFolderID   = "folder_id"
	ParamPlaylistID = "playlist_id"
	ParamTrackID    = "track_id"
	ParamTrackIDs   = "track_ids" // comma-separated batch lookup
	ParamVideoID    = "video_id"
	ParamImageID    = "image_id"
	ParamAlbumHash  = "album_hash"
	ParamDate       = "date" // YYYYMMDD
	ParamSelf       = "self" // musicfolder: describe the folder itself
)

// Sort tokens a command may natively support.
const (
	SortTitle   = "title"
	SortNewest  = "new" // most recently added first
	SortTrack   = "tracknum"
	SortDate    = "date"
	SortDefault = ""
)

// Tag marks an extra column or join a query must fetch because a decoded
// search or sort criterion (or the renderer) needs it.
type Tag string

const (
	TagArtist      Tag = "artist"
	TagAlbum       Tag = "album"
	TagGenre       Tag = "genre"
	TagLastUpdated Tag = "lastUpdated"
	TagRefID       Tag = "refID"
)

// SearchPredicate is a decoded UPnP SearchCriteria expression lowered to a
// SQL fragment with positional arguments.
type SearchPredicate struct {
	SQL  string
	Args []any
}

// QueryRequest describes one backend invocation.
type QueryRequest struct {
	Command string
	Start   uint32
	Limit   uint32
	Params  map[string]string
	Sort    string           // one of the Sort tokens; empty means native order
	Order   string           // decoded SortCriteria ORDER BY fragment; overrides Sort
	Search  *SearchPredicate // decoded SearchCriteria predicate
	Tags    []Tag
}

// HasTag reports whether the request carries the given extra tag.
func (r QueryRequest) HasTag(t Tag) bool {
	for _, tag := range r.Tags {
		if tag == t {
			return true
		}
	}
	return false
}

// QueryResult is a page of rows plus the un-paginated total for the query.
type QueryResult struct {
	Count uint32 // total matches before pagination

	Artists     []ArtistRow
	Albums      []AlbumRow
	Genres      []GenreRow
	Years       []YearRow
	Folders     []FolderRow
	Tracks      []TrackRow
	Playlists   []PlaylistRow
	Videos      []VideoRow
	Images      []ImageRow
	ImageAlbums []ImageAlbumRow
	ImageDates  []ImageDateRow
}

// ArtistRow is one contributor.
type ArtistRow struct {
	ID   int64
	Name string
}

// AlbumRow is one album, optionally joined with its contributor.
type AlbumRow struct {
	ID             int64
	Title          string
	Artist         string
	Year           int
	ArtworkTrackID int64
}

// GenreRow is one genre.
type GenreRow struct {
	ID   int64
	Name string
}

// YearRow is one release year.
type YearRow struct {
	Year int
}

// FolderEntryKind distinguishes the heterogeneous musicfolder rows.
type FolderEntryKind string

const (
	FolderEntryFolder   FolderEntryKind = "folder"
	FolderEntryTrack    FolderEntryKind = "track"
	FolderEntryPlaylist FolderEntryKind = "playlist"
)

// FolderRow is one musicfolder child: a subfolder, a bare track, or a
// playlist file. For tracks and playlists ID refers to the tracks or
// playlists table respectively.
type FolderRow struct {
	ID   int64
	Name string
	Kind FolderEntryKind
}

// TrackRow is one audio track with its joined display metadata.
type TrackRow struct {
	ID             int64
	Title          string
	Artist         string
	Album          string
	Genre          string
	AlbumID        int64
	ArtworkTrackID int64
	Year           int
	Tracknum       int
	DurationMS     int64
	MimeType       string
	FileSize       int64
	UpdatedAt      int64
}

// PlaylistRow is one saved playlist.
type PlaylistRow struct {
	ID   int64
	Name string
}

// VideoRow is one video file.
type VideoRow struct {
	ID         int64
	Title      string
	MimeType   string
	DurationMS int64
	FileSize   int64
	Width      int
	Height     int
	UpdatedAt  int64
}

// ImageRow is one image file.
type ImageRow struct {
	ID        int64
	Title     string
	MimeType  string
	FileSize  int64
	Width     int
	Height    int
	TakenAt   int // YYYYMMDD
	UpdatedAt int64
}

// ImageAlbumRow is one image grouping keyed by a stable hash.
type ImageAlbumRow struct {
	Hash  string
	Name  string
	Count int
}

// ImageDateRow is one capture date (YYYYMMDD) or year (YYYY) grouping.
type ImageDateRow struct {
	Date  int
	Count int
}
