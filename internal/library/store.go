// package library implements the media library: a SQLite-backed store
// answering content directory queries, and a filesystem scanner that
// populates it.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/froydnj/contentdir/internal/models"
	"github.com/froydnj/contentdir/internal/shared"
)

// Store answers backend queries against the library database.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// NewStore creates a Store over an open database handle.
func NewStore(db *sql.DB, logger *log.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Query dispatches a backend command. Exactly one row slice of the result is
// populated, matching the entity kind the command addresses.
func (s *Store) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	switch req.Command {
	case models.CmdArtists:
		return s.queryArtists(ctx, req)
	case models.CmdAlbums:
		return s.queryAlbums(ctx, req)
	case models.CmdGenres:
		return s.queryGenres(ctx, req)
	case models.CmdYears:
		return s.queryYears(ctx, req)
	case models.CmdMusicFolder:
		return s.queryMusicFolder(ctx, req)
	case models.CmdTitles:
		return s.queryTitles(ctx, req)
	case models.CmdPlaylists:
		return s.queryPlaylists(ctx, req)
	case models.CmdPlaylistTracks:
		return s.queryPlaylistTracks(ctx, req)
	case models.CmdVideos:
		return s.queryVideos(ctx, req)
	case models.CmdImages:
		return s.queryImages(ctx, req)
	case models.CmdImageAlbums:
		return s.queryImageAlbums(ctx, req)
	case models.CmdImageDates:
		return s.queryImageDates(ctx, req)
	case models.CmdImageYears:
		return s.queryImageYears(ctx, req)
	default:
		return nil, fmt.Errorf("%w: unknown command %q", shared.ErrQueryFailed, req.Command)
	}
}

// TrackPath returns the on-disk path of a track.
func (s *Store) TrackPath(ctx context.Context, id int64) (string, error) {
	return s.path(ctx, "tracks", id)
}

// VideoPath returns the on-disk path of a video.
func (s *Store) VideoPath(ctx context.Context, id int64) (string, error) {
	return s.path(ctx, "videos", id)
}

// ImagePath returns the on-disk path of an image.
func (s *Store) ImagePath(ctx context.Context, id int64) (string, error) {
	return s.path(ctx, "images", id)
}

func (s *Store) path(ctx context.Context, table string, id int64) (string, error) {
	var p string
	err := s.db.QueryRowContext(ctx,
		"SELECT path FROM "+table+" WHERE id = ?", id).Scan(&p)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s %d", shared.ErrNoSuchObject, table, id)
	}
	if err != nil {
		return "", fmt.Errorf("%s path: %w", table, err)
	}
	return p, nil
}

// LastScanTime returns the completion time of the most recent finished scan,
// or zero when the library has never been scanned.
func (s *Store) LastScanTime(ctx context.Context) (int64, error) {
	var t sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(completed_at) FROM scans WHERE completed_at > 0`).Scan(&t)
	if err != nil {
		return 0, fmt.Errorf("last scan time: %w", err)
	}
	return t.Int64, nil
}

// conditions accumulates WHERE fragments and their positional arguments.
type conditions struct {
	where []string
	args  []any
}

func (c *conditions) add(cond string, args ...any) {
	c.where = append(c.where, cond)
	c.args = append(c.args, args...)
}

// addParam adds an equality condition when the request carries the parameter.
func (c *conditions) addParam(req models.QueryRequest, param, column string) {
	if v, ok := req.Params[param]; ok {
		c.add(column+" = ?", v)
	}
}

// addSearch injects a decoded search predicate.
func (c *conditions) addSearch(req models.QueryRequest) {
	if req.Search != nil && req.Search.SQL != "" {
		c.where = append(c.where, "("+req.Search.SQL+")")
		c.args = append(c.args, req.Search.Args...)
	}
}

func (c *conditions) clause() string {
	if len(c.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.where, " AND ")
}

// orderClause picks the ORDER BY: a decoded SortCriteria fragment wins,
// then the requested sort token, then the command's native order.
func orderClause(req models.QueryRequest, bySort map[string]string, native string) string {
	if req.Order != "" {
		return " ORDER BY " + req.Order
	}
	if o, ok := bySort[req.Sort]; ok {
		return " ORDER BY " + o
	}
	if native == "" {
		return ""
	}
	return " ORDER BY " + native
}

func pageClause(req models.QueryRequest) (string, []any) {
	return " LIMIT ? OFFSET ?", []any{int64(req.Limit), int64(req.Start)}
}

func (s *Store) count(ctx context.Context, query string, args []any) (uint32, error) {
	var n uint32
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *Store) queryArtists(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.addParam(req, models.ParamArtistID, "contributors.id")
	if v, ok := req.Params[models.ParamGenreID]; ok {
		c.add("contributors.id IN (SELECT DISTINCT contributor_id FROM tracks WHERE genre_id = ?)", v)
	}

	count, err := s.count(ctx, `SELECT COUNT(*) FROM contributors`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	order := orderClause(req, map[string]string{
		models.SortTitle: "contributors.name_sort",
	}, "contributors.name_sort")
	page, pageArgs := pageClause(req)

	rows, err := s.db.QueryContext(ctx,
		`SELECT contributors.id, contributors.name FROM contributors`+c.clause()+order+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("artists: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Artists: []models.ArtistRow{}}
	for rows.Next() {
		var row models.ArtistRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, fmt.Errorf("artists scan: %w", err)
		}
		result.Artists = append(result.Artists, row)
	}
	return result, rows.Err()
}

func (s *Store) queryAlbums(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.addParam(req, models.ParamAlbumID, "albums.id")
	c.addParam(req, models.ParamArtistID, "albums.contributor_id")
	c.addParam(req, models.ParamYear, "albums.year")
	if v, ok := req.Params[models.ParamGenreID]; ok {
		c.add("albums.id IN (SELECT DISTINCT album_id FROM tracks WHERE genre_id = ?)", v)
	}

	count, err := s.count(ctx, `SELECT COUNT(*) FROM albums`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	// the contributor join only happens when the plan tagged the request as
	// needing the artist display name
	from, artist := ` FROM albums`, `''`
	if req.HasTag(models.TagArtist) {
		from += ` LEFT JOIN contributors ON contributors.id = albums.contributor_id`
		artist = `COALESCE(contributors.name, '')`
	}

	order := orderClause(req, map[string]string{
		models.SortTitle:  "albums.title_sort",
		models.SortNewest: "albums.added_at DESC, albums.id DESC",
	}, "albums.title_sort")
	page, pageArgs := pageClause(req)

	rows, err := s.db.QueryContext(ctx,
		`SELECT albums.id, albums.title, `+artist+`,
			albums.year, COALESCE(albums.artwork_track_id, 0)`+
			from+c.clause()+order+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("albums: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Albums: []models.AlbumRow{}}
	for rows.Next() {
		var row models.AlbumRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Artist, &row.Year, &row.ArtworkTrackID); err != nil {
			return nil, fmt.Errorf("albums scan: %w", err)
		}
		result.Albums = append(result.Albums, row)
	}
	return result, rows.Err()
}

func (s *Store) queryGenres(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.addParam(req, models.ParamGenreID, "genres.id")

	count, err := s.count(ctx, `SELECT COUNT(*) FROM genres`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	order := orderClause(req, map[string]string{
		models.SortTitle: "genres.name",
	}, "genres.name")
	page, pageArgs := pageClause(req)

	rows, err := s.db.QueryContext(ctx,
		`SELECT genres.id, genres.name FROM genres`+c.clause()+order+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Genres: []models.GenreRow{}}
	for rows.Next() {
		var row models.GenreRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, fmt.Errorf("genres scan: %w", err)
		}
		result.Genres = append(result.Genres, row)
	}
	return result, rows.Err()
}

func (s *Store) queryYears(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.add("albums.year > 0")
	c.addParam(req, models.ParamYear, "albums.year")

	count, err := s.count(ctx, `SELECT COUNT(DISTINCT albums.year) FROM albums`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	page, pageArgs := pageClause(req)
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT albums.year FROM albums`+c.clause()+
			` ORDER BY albums.year DESC`+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("years: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Years: []models.YearRow{}}
	for rows.Next() {
		var row models.YearRow
		if err := rows.Scan(&row.Year); err != nil {
			return nil, fmt.Errorf("years scan: %w", err)
		}
		result.Years = append(result.Years, row)
	}
	return result, rows.Err()
}

// folderChildren lists a folder's heterogeneous contents: subfolders first,
// then tracks and playlist files interleaved by name.
const folderChildren = `
SELECT id, name, 'folder' AS kind, name AS sort_name
  FROM folders WHERE %[1]s
UNION ALL
SELECT id, title, 'track', title_sort
  FROM tracks WHERE %[2]s
UNION ALL
SELECT id, name, 'playlist', name
  FROM playlists WHERE %[2]s`

func (s *Store) queryMusicFolder(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	// metadata lookup: describe the folder itself
	if req.Params[models.ParamSelf] != "" {
		return s.queryFolderSelf(ctx, req)
	}

	parentCond, childCond := "parent_id IS NULL", "folder_id IS NULL"
	var args []any
	if v, ok := req.Params[models.ParamFolderID]; ok {
		parentCond, childCond = "parent_id = ?", "folder_id = ?"
		args = []any{v, v, v}
	}
	body := fmt.Sprintf(folderChildren, parentCond, childCond)

	count, err := s.count(ctx, `SELECT COUNT(*) FROM (`+body+`)`, args)
	if err != nil {
		return nil, err
	}

	page, pageArgs := pageClause(req)
	rows, err := s.db.QueryContext(ctx,
		body+` ORDER BY kind = 'folder' DESC, sort_name, id`+page,
		append(args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("musicfolder: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Folders: []models.FolderRow{}}
	for rows.Next() {
		var row models.FolderRow
		var sortName string
		if err := rows.Scan(&row.ID, &row.Name, &row.Kind, &sortName); err != nil {
			return nil, fmt.Errorf("musicfolder scan: %w", err)
		}
		result.Folders = append(result.Folders, row)
	}
	return result, rows.Err()
}

func (s *Store) queryFolderSelf(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	id, ok := req.Params[models.ParamFolderID]
	if !ok {
		return nil, fmt.Errorf("%w: folder self lookup without folder_id", shared.ErrQueryFailed)
	}

	var row models.FolderRow
	row.Kind = models.FolderEntryFolder
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM folders WHERE id = ?`, id).Scan(&row.ID, &row.Name)
	if err == sql.ErrNoRows {
		return &models.QueryResult{Count: 0, Folders: []models.FolderRow{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("folder self: %w", err)
	}
	return &models.QueryResult{Count: 1, Folders: []models.FolderRow{row}}, nil
}

// titleColumns is the projection every track query shares; the joined
// display columns come along unconditionally so decoded search predicates
// can reference them.
const titleColumns = `
SELECT tracks.id, tracks.title,
	COALESCE(contributors.name, ''), COALESCE(albums.title, ''),
	COALESCE(genres.name, ''), COALESCE(tracks.album_id, 0),
	COALESCE(albums.artwork_track_id, 0),
	tracks.year, tracks.tracknum, tracks.duration_ms,
	tracks.mime_type, tracks.file_size, tracks.updated_at`

const titleJoins = `
 FROM tracks
 LEFT JOIN contributors ON contributors.id = tracks.contributor_id
 LEFT JOIN albums ON albums.id = tracks.album_id
 LEFT JOIN genres ON genres.id = tracks.genre_id`

func (s *Store) queryTitles(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.addParam(req, models.ParamTrackID, "tracks.id")
	c.addParam(req, models.ParamAlbumID, "tracks.album_id")
	if v, ok := req.Params[models.ParamTrackIDs]; ok {
		ids := strings.Split(v, ",")
		placeholders := strings.Repeat("?,", len(ids))
		c.where = append(c.where, "tracks.id IN ("+placeholders[:len(placeholders)-1]+")")
		for _, id := range ids {
			c.args = append(c.args, id)
		}
	}
	c.addSearch(req)

	count, err := s.count(ctx, `SELECT COUNT(*)`+titleJoins+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	order := orderClause(req, map[string]string{
		models.SortTitle: "tracks.title_sort",
		models.SortTrack: "tracks.tracknum, tracks.title_sort",
	}, "tracks.title_sort")
	page, pageArgs := pageClause(req)

	rows, err := s.db.QueryContext(ctx,
		titleColumns+titleJoins+c.clause()+order+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows, count)
}

func (s *Store) queryPlaylists(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.addParam(req, models.ParamPlaylistID, "playlists.id")

	count, err := s.count(ctx, `SELECT COUNT(*) FROM playlists`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	order := orderClause(req, map[string]string{
		models.SortTitle: "playlists.name",
	}, "playlists.name")
	page, pageArgs := pageClause(req)

	rows, err := s.db.QueryContext(ctx,
		`SELECT playlists.id, playlists.name FROM playlists`+c.clause()+order+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("playlists: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Playlists: []models.PlaylistRow{}}
	for rows.Next() {
		var row models.PlaylistRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, fmt.Errorf("playlists scan: %w", err)
		}
		result.Playlists = append(result.Playlists, row)
	}
	return result, rows.Err()
}

func (s *Store) queryPlaylistTracks(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	id, ok := req.Params[models.ParamPlaylistID]
	if !ok {
		return nil, fmt.Errorf("%w: playlisttracks without playlist_id", shared.ErrQueryFailed)
	}

	count, err := s.count(ctx,
		`SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?`, []any{id})
	if err != nil {
		return nil, err
	}

	page, pageArgs := pageClause(req)
	rows, err := s.db.QueryContext(ctx,
		titleColumns+titleJoins+
			` JOIN playlist_tracks ON playlist_tracks.track_id = tracks.id
			 WHERE playlist_tracks.playlist_id = ?
			 ORDER BY playlist_tracks.position`+page,
		append([]any{id}, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("playlisttracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows, count)
}

func scanTracks(rows *sql.Rows, count uint32) (*models.QueryResult, error) {
	result := &models.QueryResult{Count: count, Tracks: []models.TrackRow{}}
	for rows.Next() {
		var row models.TrackRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Artist, &row.Album, &row.Genre,
			&row.AlbumID, &row.ArtworkTrackID, &row.Year, &row.Tracknum,
			&row.DurationMS, &row.MimeType, &row.FileSize, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("tracks scan: %w", err)
		}
		result.Tracks = append(result.Tracks, row)
	}
	return result, rows.Err()
}

func (s *Store) queryVideos(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.addParam(req, models.ParamVideoID, "videos.id")
	c.addSearch(req)

	count, err := s.count(ctx, `SELECT COUNT(*) FROM videos`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	order := orderClause(req, map[string]string{
		models.SortTitle: "videos.title",
	}, "videos.title")
	page, pageArgs := pageClause(req)

	rows, err := s.db.QueryContext(ctx,
		`SELECT videos.id, videos.title, videos.mime_type, videos.duration_ms,
			videos.file_size, videos.width, videos.height, videos.updated_at
		 FROM videos`+c.clause()+order+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Videos: []models.VideoRow{}}
	for rows.Next() {
		var row models.VideoRow
		if err := rows.Scan(&row.ID, &row.Title, &row.MimeType, &row.DurationMS,
			&row.FileSize, &row.Width, &row.Height, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("videos scan: %w", err)
		}
		result.Videos = append(result.Videos, row)
	}
	return result, rows.Err()
}

func (s *Store) queryImages(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.addParam(req, models.ParamImageID, "images.id")
	c.addParam(req, models.ParamAlbumHash, "images.album_hash")
	c.addParam(req, models.ParamDate, "images.taken_at")
	c.addSearch(req)

	count, err := s.count(ctx, `SELECT COUNT(*) FROM images`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	order := orderClause(req, map[string]string{
		models.SortTitle: "images.title",
		models.SortDate:  "images.taken_at, images.title",
	}, "images.title")
	page, pageArgs := pageClause(req)

	rows, err := s.db.QueryContext(ctx,
		`SELECT images.id, images.title, images.mime_type, images.file_size,
			images.width, images.height, images.taken_at, images.updated_at
		 FROM images`+c.clause()+order+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("images: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, Images: []models.ImageRow{}}
	for rows.Next() {
		var row models.ImageRow
		if err := rows.Scan(&row.ID, &row.Title, &row.MimeType, &row.FileSize,
			&row.Width, &row.Height, &row.TakenAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("images scan: %w", err)
		}
		result.Images = append(result.Images, row)
	}
	return result, rows.Err()
}

func (s *Store) queryImageAlbums(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.add("images.album_hash <> ''")
	c.addParam(req, models.ParamAlbumHash, "images.album_hash")

	count, err := s.count(ctx,
		`SELECT COUNT(DISTINCT images.album_hash) FROM images`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	page, pageArgs := pageClause(req)
	rows, err := s.db.QueryContext(ctx,
		`SELECT images.album_hash, MIN(images.album_name), COUNT(*)
		 FROM images`+c.clause()+
			` GROUP BY images.album_hash ORDER BY MIN(images.album_name)`+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("imagealbums: %w", err)
	}
	defer rows.Close()

	result := &models.QueryResult{Count: count, ImageAlbums: []models.ImageAlbumRow{}}
	for rows.Next() {
		var row models.ImageAlbumRow
		if err := rows.Scan(&row.Hash, &row.Name, &row.Count); err != nil {
			return nil, fmt.Errorf("imagealbums scan: %w", err)
		}
		result.ImageAlbums = append(result.ImageAlbums, row)
	}
	return result, rows.Err()
}

func (s *Store) queryImageDates(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.add("images.taken_at > 0")
	c.addParam(req, models.ParamDate, "images.taken_at")
	if v, ok := req.Params[models.ParamYear]; ok {
		c.add("images.taken_at / 10000 = ?", v)
	}

	count, err := s.count(ctx,
		`SELECT COUNT(DISTINCT images.taken_at) FROM images`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	page, pageArgs := pageClause(req)
	rows, err := s.db.QueryContext(ctx,
		`SELECT images.taken_at, COUNT(*) FROM images`+c.clause()+
			` GROUP BY images.taken_at ORDER BY images.taken_at DESC`+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("imagedates: %w", err)
	}
	defer rows.Close()

	return scanImageDates(rows, count)
}

func (s *Store) queryImageYears(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	var c conditions
	c.add("images.taken_at > 0")
	if v, ok := req.Params[models.ParamYear]; ok {
		c.add("images.taken_at / 10000 = ?", v)
	}

	count, err := s.count(ctx,
		`SELECT COUNT(DISTINCT images.taken_at / 10000) FROM images`+c.clause(), c.args)
	if err != nil {
		return nil, err
	}

	page, pageArgs := pageClause(req)
	rows, err := s.db.QueryContext(ctx,
		`SELECT images.taken_at / 10000 AS y, COUNT(*) FROM images`+c.clause()+
			` GROUP BY y ORDER BY y DESC`+page,
		append(c.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("imageyears: %w", err)
	}
	defer rows.Close()

	return scanImageDates(rows, count)
}

func scanImageDates(rows *sql.Rows, count uint32) (*models.QueryResult, error) {
	result := &models.QueryResult{Count: count, ImageDates: []models.ImageDateRow{}}
	for rows.Next() {
		var row models.ImageDateRow
		if err := rows.Scan(&row.Date, &row.Count); err != nil {
			return nil, fmt.Errorf("imagedates scan: %w", err)
		}
		result.ImageDates = append(result.ImageDates, row)
	}
	return result, rows.Err()
}
