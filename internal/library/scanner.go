package library

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/froydnj/contentdir/internal/shared"
)

// Phase names one stage of a library scan.
type Phase string

const (
	PhaseWalk   Phase = "walk"
	PhaseCommit Phase = "commit"
	PhaseDone   Phase = "done"
	PhaseFailed Phase = "failed"
)

// ProgressUpdate is one scan progress event. Updates are best-effort; a slow
// consumer drops them rather than stalling the scan.
type ProgressUpdate struct {
	Phase     Phase
	Path      string
	FilesSeen int
	Err       error
}

// ScanResult summarizes a completed scan.
type ScanResult struct {
	CompletedAt int64
	FilesSeen   int
	Elapsed     time.Duration
}

// Scanner walks the configured media directories and rebuilds the library
// tables from what it finds on disk.
type Scanner struct {
	db       *sql.DB
	dirs     []string
	logger   *log.Logger
	scanning atomic.Bool
}

// NewScanner creates a Scanner over the given media directories.
func NewScanner(db *sql.DB, dirs []string, logger *log.Logger) *Scanner {
	return &Scanner{db: db, dirs: dirs, logger: logger}
}

var audioExts = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
}

var videoExts = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// Scan performs a full rescan: the library tables are rebuilt inside one
// transaction so readers never observe a half-scanned library. Only one scan
// may run at a time.
func (s *Scanner) Scan(ctx context.Context, progress chan<- ProgressUpdate) (*ScanResult, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, shared.ErrScanInProgress
	}
	defer s.scanning.Store(false)

	started := time.Now()
	res, err := s.scan(ctx, started, progress)
	if err != nil {
		s.emit(progress, ProgressUpdate{Phase: PhaseFailed, Err: err})
		return nil, err
	}
	res.Elapsed = time.Since(started)
	s.emit(progress, ProgressUpdate{Phase: PhaseDone, FilesSeen: res.FilesSeen})
	s.logger.Info("scan complete", "files", res.FilesSeen, "elapsed", res.Elapsed)
	return res, nil
}

func (s *Scanner) scan(ctx context.Context, started time.Time, progress chan<- ProgressUpdate) (*ScanResult, error) {
	var scanID int64
	row, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (started_at) VALUES (?)`, started.Unix())
	if err != nil {
		return nil, fmt.Errorf("record scan start: %w", err)
	}
	if scanID, err = row.LastInsertId(); err != nil {
		return nil, fmt.Errorf("record scan start: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin scan: %w", err)
	}
	defer tx.Rollback()

	// folders reference their parent rows, so a wholesale DELETE can drop a
	// parent before its children; defer the check to commit, when the tables
	// are consistent again
	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("begin scan: %w", err)
	}

	for _, table := range []string{
		"playlist_tracks", "playlists", "tracks", "videos", "images",
		"albums", "contributors", "genres", "folders",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	w := &walker{ctx: ctx, tx: tx, logger: s.logger, folders: map[string]int64{}}
	for _, dir := range s.dirs {
		if err := w.walkDir(dir, progress, s.emit); err != nil {
			return nil, err
		}
	}
	if err := w.resolvePlaylists(); err != nil {
		return nil, err
	}

	s.emit(progress, ProgressUpdate{Phase: PhaseCommit, FilesSeen: w.filesSeen})
	completed := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		`UPDATE scans SET completed_at = ?, files_seen = ? WHERE id = ?`,
		completed, w.filesSeen, scanID); err != nil {
		return nil, fmt.Errorf("record scan completion: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit scan: %w", err)
	}

	return &ScanResult{CompletedAt: completed, FilesSeen: w.filesSeen}, nil
}

// emit sends a progress update without blocking the scan on a slow consumer.
func (s *Scanner) emit(progress chan<- ProgressUpdate, u ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- u:
	default:
	}
}

// walker carries the per-scan state: the open transaction, the folder path
// cache, and deferred playlist files.
type walker struct {
	ctx       context.Context
	tx        *sql.Tx
	logger    *log.Logger
	folders   map[string]int64
	playlists []playlistFile
	filesSeen int
}

type playlistFile struct {
	path     string
	folderID int64
}

func (w *walker) walkDir(root string, progress chan<- ProgressUpdate, emit func(chan<- ProgressUpdate, ProgressUpdate)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping unreadable entry", "path", path, "err", err)
			return nil
		}
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			_, ferr := w.ensureFolder(path, root)
			return ferr
		}

		info, err := d.Info()
		if err != nil {
			w.logger.Warn("skipping unstattable file", "path", path, "err", err)
			return nil
		}
		folderID, err := w.ensureFolder(filepath.Dir(path), root)
		if err != nil {
			return err
		}

		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case audioExts[ext] != "":
			err = w.addTrack(path, info, folderID, audioExts[ext])
		case videoExts[ext] != "":
			err = w.addVideo(path, info, videoExts[ext])
		case imageExts[ext] != "":
			err = w.addImage(path, info, imageExts[ext])
		case playlistExts[ext]:
			w.playlists = append(w.playlists, playlistFile{path: path, folderID: folderID})
		default:
			return nil
		}
		if err != nil {
			return err
		}

		w.filesSeen++
		if w.filesSeen%100 == 0 {
			emit(progress, ProgressUpdate{Phase: PhaseWalk, Path: path, FilesSeen: w.filesSeen})
		}
		return nil
	})
}

// ensureFolder inserts the folder chain from root down to path, returning the
// folder row id. Paths at or above a media root map to a NULL parent.
func (w *walker) ensureFolder(path, root string) (int64, error) {
	if id, ok := w.folders[path]; ok {
		return id, nil
	}

	var parent sql.NullInt64
	if path != root && strings.HasPrefix(path, root+string(filepath.Separator)) {
		pid, err := w.ensureFolder(filepath.Dir(path), root)
		if err != nil {
			return 0, err
		}
		parent = sql.NullInt64{Int64: pid, Valid: true}
	}

	res, err := w.tx.ExecContext(w.ctx,
		`INSERT INTO folders (parent_id, path, name) VALUES (?, ?, ?)`,
		parent, path, filepath.Base(path))
	if err != nil {
		return 0, fmt.Errorf("folder %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	w.folders[path] = id
	return id, nil
}

func (w *walker) addTrack(path string, info fs.FileInfo, folderID int64, mime string) error {
	title := stripExt(filepath.Base(path))
	var artist, album, genre string
	var year, tracknum int

	f, err := os.Open(path)
	if err != nil {
		w.logger.Warn("skipping unreadable audio file", "path", path, "err", err)
		return nil
	}
	m, err := tag.ReadFrom(f)
	f.Close()
	if err == nil {
		if t := strings.TrimSpace(m.Title()); t != "" {
			title = t
		}
		artist = strings.TrimSpace(m.Artist())
		album = strings.TrimSpace(m.Album())
		genre = strings.TrimSpace(m.Genre())
		year = m.Year()
		tracknum, _ = m.Track()
	} else {
		w.logger.Debug("no readable tags", "path", path, "err", err)
	}

	contributorID, err := w.ensureNamed("contributors", artist)
	if err != nil {
		return err
	}
	genreID, err := w.ensureNamed("genres", genre)
	if err != nil {
		return err
	}
	albumID, err := w.ensureAlbum(album, contributorID, year, info.ModTime().Unix())
	if err != nil {
		return err
	}

	res, err := w.tx.ExecContext(w.ctx,
		`INSERT INTO tracks (path, title, title_sort, album_id, contributor_id,
			genre_id, folder_id, year, tracknum, mime_type, file_size, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, title, sortKey(title), albumID, contributorID, genreID,
		folderID, year, tracknum, mime, info.Size(), info.ModTime().Unix())
	if err != nil {
		return fmt.Errorf("track %s: %w", path, err)
	}

	// first track of an album doubles as its artwork source
	if albumID.Valid {
		trackID, _ := res.LastInsertId()
		_, err = w.tx.ExecContext(w.ctx,
			`UPDATE albums SET artwork_track_id = ? WHERE id = ? AND artwork_track_id IS NULL`,
			trackID, albumID.Int64)
		if err != nil {
			return fmt.Errorf("album artwork %s: %w", path, err)
		}
	}
	return nil
}

// ensureNamed upserts a row in a (id, name) lookup table, returning NULL for
// an empty name.
func (w *walker) ensureNamed(table, name string) (sql.NullInt64, error) {
	if name == "" {
		return sql.NullInt64{}, nil
	}
	var id int64
	err := w.tx.QueryRowContext(w.ctx,
		"SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		var res sql.Result
		if table == "contributors" {
			res, err = w.tx.ExecContext(w.ctx,
				`INSERT INTO contributors (name, name_sort) VALUES (?, ?)`, name, sortKey(name))
		} else {
			res, err = w.tx.ExecContext(w.ctx,
				"INSERT INTO "+table+" (name) VALUES (?)", name)
		}
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("%s %q: %w", table, name, err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func (w *walker) ensureAlbum(title string, contributorID sql.NullInt64, year int, addedAt int64) (sql.NullInt64, error) {
	if title == "" {
		return sql.NullInt64{}, nil
	}
	var id int64
	err := w.tx.QueryRowContext(w.ctx,
		`SELECT id FROM albums WHERE title = ? AND contributor_id IS ?`,
		title, contributorID).Scan(&id)
	if err == sql.ErrNoRows {
		var res sql.Result
		res, err = w.tx.ExecContext(w.ctx,
			`INSERT INTO albums (title, title_sort, contributor_id, year, added_at)
			 VALUES (?, ?, ?, ?, ?)`,
			title, sortKey(title), contributorID, year, addedAt)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("album %q: %w", title, err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func (w *walker) addVideo(path string, info fs.FileInfo, mime string) error {
	_, err := w.tx.ExecContext(w.ctx,
		`INSERT INTO videos (path, title, mime_type, file_size, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		path, stripExt(filepath.Base(path)), mime, info.Size(), info.ModTime().Unix())
	if err != nil {
		return fmt.Errorf("video %s: %w", path, err)
	}
	return nil
}

func (w *walker) addImage(path string, info fs.FileInfo, mime string) error {
	dir := filepath.Dir(path)
	mod := info.ModTime()
	takenAt := mod.Year()*10000 + int(mod.Month())*100 + mod.Day()

	_, err := w.tx.ExecContext(w.ctx,
		`INSERT INTO images (path, title, album_hash, album_name, mime_type,
			file_size, taken_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		path, stripExt(filepath.Base(path)), hashDir(dir), filepath.Base(dir),
		mime, info.Size(), takenAt, mod.Unix())
	if err != nil {
		return fmt.Errorf("image %s: %w", path, err)
	}
	return nil
}

// resolvePlaylists runs after the walk so playlist entries can reference
// tracks discovered later in the traversal.
func (w *walker) resolvePlaylists() error {
	for _, pf := range w.playlists {
		if err := w.addPlaylist(pf); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) addPlaylist(pf playlistFile) error {
	data, err := os.ReadFile(pf.path)
	if err != nil {
		w.logger.Warn("skipping unreadable playlist", "path", pf.path, "err", err)
		return nil
	}

	res, err := w.tx.ExecContext(w.ctx,
		`INSERT INTO playlists (name, path, folder_id) VALUES (?, ?, ?)`,
		stripExt(filepath.Base(pf.path)), pf.path, pf.folderID)
	if err != nil {
		return fmt.Errorf("playlist %s: %w", pf.path, err)
	}
	playlistID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	position := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry := line
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(filepath.Dir(pf.path), entry)
		}

		var trackID int64
		err := w.tx.QueryRowContext(w.ctx,
			`SELECT id FROM tracks WHERE path = ?`, filepath.Clean(entry)).Scan(&trackID)
		if err == sql.ErrNoRows {
			w.logger.Debug("playlist entry not in library", "playlist", pf.path, "entry", line)
			continue
		}
		if err != nil {
			return fmt.Errorf("playlist entry %s: %w", line, err)
		}

		if _, err := w.tx.ExecContext(w.ctx,
			`INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)`,
			playlistID, trackID, position); err != nil {
			return fmt.Errorf("playlist entry %s: %w", line, err)
		}
		position++
	}
	return nil
}

// sortKey normalizes a display name for ordering: case-folded with leading
// English articles dropped.
func sortKey(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(lower, article) && len(lower) > len(article) {
			return lower[len(article):]
		}
	}
	return lower
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// hashDir derives the stable album hash for images grouped by directory.
func hashDir(dir string) string {
	sum := sha1.Sum([]byte(dir))
	return hex.EncodeToString(sum[:8])
}
