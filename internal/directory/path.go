// package directory implements the ContentDirectory core: it parses opaque
// hierarchical object IDs, translates them into media library queries,
// renders query rows as DIDL-Lite, and delivers rate-limited change events
// to subscribers.
package directory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/froydnj/contentdir/internal/shared"
)

// RootID is the object ID of the hierarchy root.
const RootID = "0"

// Mount identifies a top-level hierarchy.
type Mount string

const (
	MountArtists       Mount = "a"
	MountAlbums        Mount = "l"
	MountGenres        Mount = "g"
	MountYears         Mount = "y"
	MountNewMusic      Mount = "n"
	MountFolders       Mount = "m"
	MountPlaylists     Mount = "p"
	MountTracks        Mount = "t"
	MountVideos        Mount = "va"
	MountImages        Mount = "ia"
	MountImageAlbums   Mount = "il"
	MountImageTimeline Mount = "it"
	MountImageDates    Mount = "id"
)

// mountTitles are the static root container names, in root browse order.
var mountOrder = []Mount{
	MountArtists, MountAlbums, MountGenres, MountYears, MountNewMusic,
	MountFolders, MountPlaylists, MountVideos, MountImages,
	MountImageAlbums, MountImageDates, MountImageTimeline,
}

var mountTitles = map[Mount]string{
	MountArtists:       "Artists",
	MountAlbums:        "Albums",
	MountGenres:        "Genres",
	MountYears:         "Years",
	MountNewMusic:      "New Music",
	MountFolders:       "Music Folder",
	MountPlaylists:     "Playlists",
	MountTracks:        "Tracks",
	MountVideos:        "Videos",
	MountImages:        "All Pictures",
	MountImageAlbums:   "Picture Albums",
	MountImageDates:    "By Date",
	MountImageTimeline: "Timeline",
}

// KeyKind is the lexical type of one key segment.
type KeyKind int

const (
	KeyNumber KeyKind = iota
	KeyDate           // YYYY or YYYYMMDD
	KeyHash
)

// Key is one typed key segment.
type Key struct {
	Kind KeyKind
	Num  int64
	Hash string
}

func (k Key) String() string {
	if k.Kind == KeyHash {
		return k.Hash
	}
	return strconv.FormatInt(k.Num, 10)
}

// Level is one depth of a parsed path: the hierarchy kind at that depth and
// the key selecting a node within it. Key is nil on the final level when the
// path addresses the listing itself rather than one of its nodes.
type Level struct {
	Kind Mount
	Key  *Key
}

// ParsedPath is a validated object ID. Levels always has at least one entry;
// every level except possibly the last is keyed.
type ParsedPath struct {
	Raw    string
	Mount  Mount
	Levels []Level
}

// Last returns the final level.
func (p ParsedPath) Last() Level {
	return p.Levels[len(p.Levels)-1]
}

// LastKeyed returns the deepest keyed level, or false when the path is a
// bare mount.
func (p ParsedPath) LastKeyed() (Level, bool) {
	for i := len(p.Levels) - 1; i >= 0; i-- {
		if p.Levels[i].Key != nil {
			return p.Levels[i], true
		}
	}
	return Level{}, false
}

// KeyFor returns the key threaded through the path for the given kind.
func (p ParsedPath) KeyFor(kind Mount) (Key, bool) {
	for _, lv := range p.Levels {
		if lv.Kind == kind && lv.Key != nil {
			return *lv.Key, true
		}
	}
	return Key{}, false
}

// ParentID computes the object ID of the node's parent for metadata
// responses. A path ending in an unkeyed listing level drops that level and
// its selecting key; a path ending in a leaf key drops only the key. Track
// items spliced into musicfolder listings keep their folder parent, so a
// trailing /t under the folder mount maps back to /m.
func (p ParsedPath) ParentID() string {
	segs := strings.Split(strings.TrimPrefix(p.Raw, "/"), "/")
	last := p.Last()
	switch {
	case len(segs) <= 1:
		return RootID
	case last.Key == nil:
		// strip selecting key + kind suffix
		if len(segs) <= 2 {
			return RootID
		}
		return "/" + strings.Join(segs[:len(segs)-2], "/")
	default:
		parent := "/" + strings.Join(segs[:len(segs)-1], "/")
		if p.Mount == MountFolders && last.Kind == MountTracks {
			parent = strings.TrimSuffix(parent, "/"+string(MountTracks)) + "/" + string(MountFolders)
		}
		return parent
	}
}

// child kind transitions: which listing kinds may follow a keyed node of
// each kind.
var transitions = map[Mount][]Mount{
	MountArtists:       {MountAlbums},
	MountAlbums:        {MountTracks},
	MountGenres:        {MountArtists},
	MountYears:         {MountAlbums},
	MountNewMusic:      {MountTracks},
	MountFolders:       {MountFolders, MountTracks},
	MountPlaylists:     {MountTracks},
	MountImageAlbums:   {MountImages},
	MountImageDates:    {MountImages},
	MountImageTimeline: {MountImageDates},
}

// keyKindFor is the key type each kind threads through child IDs.
func keyKindFor(kind Mount) KeyKind {
	switch kind {
	case MountImageAlbums:
		return KeyHash
	case MountYears, MountImageDates, MountImageTimeline:
		return KeyDate
	default:
		return KeyNumber
	}
}

var mountSet = func() map[Mount]bool {
	m := make(map[Mount]bool, len(mountOrder)+1)
	for _, mt := range mountOrder {
		m[mt] = true
	}
	m[MountTracks] = true
	return m
}()

// Parse validates an object ID against the mount table and returns its
// typed levels. Parsing is purely syntactic; no I/O occurs here.
func Parse(objectID string) (ParsedPath, error) {
	if objectID == RootID || objectID == "" {
		return ParsedPath{}, fmt.Errorf("%w: root has no parsed form", shared.ErrInvalidPath)
	}
	if !strings.HasPrefix(objectID, "/") {
		return ParsedPath{}, fmt.Errorf("%w: %q", shared.ErrInvalidPath, objectID)
	}

	segs := strings.Split(objectID[1:], "/")
	mount := Mount(segs[0])
	if !mountSet[mount] {
		return ParsedPath{}, fmt.Errorf("%w: unknown mount %q", shared.ErrInvalidPath, segs[0])
	}

	p := ParsedPath{Raw: objectID, Mount: mount, Levels: []Level{{Kind: mount}}}
	segs = segs[1:]

	for len(segs) > 0 {
		cur := &p.Levels[len(p.Levels)-1]
		key, err := parseKey(segs[0], keyKindFor(cur.Kind))
		if err != nil {
			return ParsedPath{}, err
		}
		cur.Key = &key
		segs = segs[1:]
		if len(segs) == 0 {
			break
		}

		next := Mount(segs[0])
		if !validTransition(cur.Kind, next) {
			return ParsedPath{}, fmt.Errorf("%w: %q cannot contain %q", shared.ErrInvalidPath, cur.Kind, next)
		}
		p.Levels = append(p.Levels, Level{Kind: next})
		segs = segs[1:]
	}

	return p, nil
}

func validTransition(from, to Mount) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func parseKey(seg string, kind KeyKind) (Key, error) {
	if seg == "" {
		return Key{}, fmt.Errorf("%w: empty key segment", shared.ErrInvalidPath)
	}
	switch kind {
	case KeyHash:
		if strings.ContainsAny(seg, "/<>&\"") {
			return Key{}, fmt.Errorf("%w: bad hash segment %q", shared.ErrInvalidPath, seg)
		}
		return Key{Kind: KeyHash, Hash: seg}, nil
	case KeyDate:
		if len(seg) != 4 && len(seg) != 8 {
			return Key{}, fmt.Errorf("%w: bad date segment %q", shared.ErrInvalidPath, seg)
		}
		n, err := strconv.ParseInt(seg, 10, 64)
		if err != nil || n < 0 {
			return Key{}, fmt.Errorf("%w: bad date segment %q", shared.ErrInvalidPath, seg)
		}
		return Key{Kind: KeyDate, Num: n}, nil
	default:
		n, err := strconv.ParseInt(seg, 10, 64)
		if err != nil || n < 0 {
			return Key{}, fmt.Errorf("%w: bad numeric segment %q", shared.ErrInvalidPath, seg)
		}
		return Key{Kind: KeyNumber, Num: n}, nil
	}
}
