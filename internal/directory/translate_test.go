package directory

import (
	"errors"
	"testing"

	"github.com/froydnj/contentdir/internal/models"
	"github.com/froydnj/contentdir/internal/shared"
)

func mustParse(t *testing.T, id string) ParsedPath {
	t.Helper()
	p, err := Parse(id)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", id, err)
	}
	return p
}

func TestTranslateChildren(t *testing.T) {
	page := PageWindow{Start: 0, Limit: 10}

	tests := []struct {
		name    string
		id      string
		command string
		sort    string
		params  map[string]string
		suffix  Mount
	}{
		{
			name:    "root artists",
			id:      "/a",
			command: models.CmdArtists,
			sort:    models.SortTitle,
			params:  map[string]string{},
			suffix:  MountAlbums,
		},
		{
			name:    "artists within genre",
			id:      "/g/12/a",
			command: models.CmdArtists,
			sort:    models.SortTitle,
			params:  map[string]string{models.ParamGenreID: "12"},
			suffix:  MountAlbums,
		},
		{
			name:    "albums within genre and artist",
			id:      "/g/12/a/7/l",
			command: models.CmdAlbums,
			sort:    models.SortTitle,
			params:  map[string]string{models.ParamGenreID: "12", models.ParamArtistID: "7"},
			suffix:  MountTracks,
		},
		{
			name:    "albums of a year",
			id:      "/y/1999/l",
			command: models.CmdAlbums,
			sort:    models.SortTitle,
			params:  map[string]string{models.ParamYear: "1999"},
			suffix:  MountTracks,
		},
		{
			name:    "tracks of album",
			id:      "/a/7/l/3/t",
			command: models.CmdTitles,
			sort:    models.SortTrack,
			params:  map[string]string{models.ParamAlbumID: "3"},
		},
		{
			name:    "playlist entries keep playlist order",
			id:      "/p/2/t",
			command: models.CmdPlaylistTracks,
			sort:    models.SortTrack,
			params:  map[string]string{models.ParamPlaylistID: "2"},
		},
		{
			name:    "new music is newest-first albums",
			id:      "/n",
			command: models.CmdAlbums,
			sort:    models.SortNewest,
			params:  map[string]string{},
			suffix:  MountTracks,
		},
		{
			name:    "folder children",
			id:      "/m/5/m",
			command: models.CmdMusicFolder,
			params:  map[string]string{models.ParamFolderID: "5"},
			suffix:  MountFolders,
		},
		{
			name:    "images of album hash",
			id:      "/il/ab34f0/ia",
			command: models.CmdImages,
			sort:    models.SortTitle,
			params:  map[string]string{models.ParamAlbumHash: "ab34f0"},
		},
		{
			name:    "dates within timeline year",
			id:      "/it/2024/id",
			command: models.CmdImageDates,
			params:  map[string]string{models.ParamYear: "2024"},
			suffix:  MountImages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, err := translate(mustParse(t, tt.id), BrowseDirectChildren, page, "", Caps{}, nil)
			if err != nil {
				t.Fatalf("translate(%q) error: %v", tt.id, err)
			}
			if pl.req.Command != tt.command {
				t.Errorf("command = %q, want %q", pl.req.Command, tt.command)
			}
			if pl.req.Sort != tt.sort {
				t.Errorf("sort = %q, want %q", pl.req.Sort, tt.sort)
			}
			if pl.childSuffix != tt.suffix {
				t.Errorf("childSuffix = %q, want %q", pl.childSuffix, tt.suffix)
			}
			if len(pl.req.Params) != len(tt.params) {
				t.Fatalf("params = %v, want %v", pl.req.Params, tt.params)
			}
			for k, v := range tt.params {
				if pl.req.Params[k] != v {
					t.Errorf("param %q = %q, want %q", k, pl.req.Params[k], v)
				}
			}
			if pl.req.Start != page.Start || pl.req.Limit != page.Limit {
				t.Errorf("page = %d/%d, want %d/%d", pl.req.Start, pl.req.Limit, page.Start, page.Limit)
			}
		})
	}
}

func TestTranslateAlbumPlansTagArtist(t *testing.T) {
	// album listings render dc:creator, so every album plan must ask the
	// backend for the joined artist name
	for _, id := range []string{"/l", "/n", "/a/7/l"} {
		pl, err := translate(mustParse(t, id), BrowseDirectChildren, PageWindow{Limit: 10}, "", Caps{}, nil)
		if err != nil {
			t.Fatalf("translate(%q) error: %v", id, err)
		}
		if !pl.req.HasTag(models.TagArtist) {
			t.Errorf("children plan for %q missing artist tag: %v", id, pl.req.Tags)
		}
	}

	pl, err := translate(mustParse(t, "/l/3"), BrowseMetadata, PageWindow{}, "", Caps{}, nil)
	if err != nil {
		t.Fatalf("translate(/l/3) error: %v", err)
	}
	if !pl.req.HasTag(models.TagArtist) {
		t.Errorf("metadata plan missing artist tag: %v", pl.req.Tags)
	}
}

func TestTranslateChildrenOfKeyedNode(t *testing.T) {
	// a keyed node has no direct listing; children live under suffixed IDs
	_, err := translate(mustParse(t, "/a/7"), BrowseDirectChildren, PageWindow{Limit: 10}, "", Caps{}, nil)
	if !errors.Is(err, shared.ErrNoSuchObject) {
		t.Errorf("translate(/a/7) error = %v, want ErrNoSuchObject", err)
	}
}

func TestTranslateNewMusicCap(t *testing.T) {
	caps := Caps{NewMusicLimit: 100}

	tests := []struct {
		name  string
		start uint32
		limit uint32
		want  uint32
	}{
		{"window inside cap", 0, 50, 50},
		{"window clipped at cap", 80, 50, 20},
		{"window past cap", 120, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, err := translate(mustParse(t, "/n"), BrowseDirectChildren,
				PageWindow{Start: tt.start, Limit: tt.limit}, "", caps, nil)
			if err != nil {
				t.Fatalf("translate error: %v", err)
			}
			if pl.req.Limit != tt.want {
				t.Errorf("limit = %d, want %d", pl.req.Limit, tt.want)
			}
			if pl.totalCap != 100 {
				t.Errorf("totalCap = %d, want 100", pl.totalCap)
			}
		})
	}
}

func TestTranslateMetadata(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		command string
		params  map[string]string
	}{
		{
			name:    "keyed artist",
			id:      "/a/7",
			command: models.CmdArtists,
			params:  map[string]string{models.ParamArtistID: "7"},
		},
		{
			name:    "deepest keyed node wins",
			id:      "/g/12/a/7/l",
			command: models.CmdArtists,
			params:  map[string]string{models.ParamArtistID: "7"},
		},
		{
			name:    "track leaf",
			id:      "/a/7/l/3/t/9",
			command: models.CmdTitles,
			params:  map[string]string{models.ParamTrackID: "9"},
		},
		{
			name:    "folder self",
			id:      "/m/5",
			command: models.CmdMusicFolder,
			params:  map[string]string{models.ParamFolderID: "5", models.ParamSelf: "1"},
		},
		{
			name:    "image date",
			id:      "/id/20240115",
			command: models.CmdImageDates,
			params:  map[string]string{models.ParamDate: "20240115"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, err := translate(mustParse(t, tt.id), BrowseMetadata, PageWindow{Limit: 10}, "", Caps{}, nil)
			if err != nil {
				t.Fatalf("translate(%q) error: %v", tt.id, err)
			}
			if !pl.metadata {
				t.Error("plan should be metadata")
			}
			if pl.req.Command != tt.command {
				t.Errorf("command = %q, want %q", pl.req.Command, tt.command)
			}
			if pl.req.Limit != 1 {
				t.Errorf("limit = %d, want 1", pl.req.Limit)
			}
			for k, v := range tt.params {
				if pl.req.Params[k] != v {
					t.Errorf("param %q = %q, want %q", k, pl.req.Params[k], v)
				}
			}
		})
	}
}

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		native   string
		criteria string
		want     string
	}{
		{"empty keeps native", models.CmdTitles, models.SortTrack, "", models.SortTrack},
		{"supported title sort", models.CmdAlbums, models.SortNewest, "+dc:title", models.SortTitle},
		{"descending falls back", models.CmdAlbums, models.SortNewest, "-dc:title", models.SortNewest},
		{"unknown property falls back", models.CmdArtists, models.SortTitle, "+upnp:rating", models.SortTitle},
		{"multi-key falls back", models.CmdTitles, models.SortTrack, "+dc:title,+upnp:artist", models.SortTrack},
		{"years have no sort support", models.CmdYears, "", "+dc:title", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveSort(tt.command, tt.native, tt.criteria, nil); got != tt.want {
				t.Errorf("resolveSort = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseBrowseFlag(t *testing.T) {
	if _, err := ParseBrowseFlag("BrowseMetadata"); err != nil {
		t.Errorf("BrowseMetadata: %v", err)
	}
	if _, err := ParseBrowseFlag("BrowseDirectChildren"); err != nil {
		t.Errorf("BrowseDirectChildren: %v", err)
	}
	if _, err := ParseBrowseFlag("BrowseBoth"); !errors.Is(err, shared.ErrInvalidBrowseFlag) {
		t.Errorf("BrowseBoth error = %v, want ErrInvalidBrowseFlag", err)
	}
}
