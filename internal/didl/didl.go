// package didl models DIDL-Lite objects and serializes them for UPnP
// ContentDirectory responses.
//
// See http://upnp.org/schemas/av/didl-lite-v3.xsd for reference.
package didl

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Property element names used by the renderer.
const (
	TagCreator             = "dc:creator"
	TagDate                = "dc:date"
	TagArtist              = "upnp:artist"
	TagGenre               = "upnp:genre"
	TagAlbum               = "upnp:album"
	TagAlbumArtURI         = "upnp:albumArtURI"
	TagOriginalTrackNumber = "upnp:originalTrackNumber"
	TagIcon                = "upnp:icon"
	TagLastUpdated         = "pv:lastUpdated"
)

// Object classes emitted by the renderer.
const (
	ClassStorageFolder = "object.container.storageFolder"
	ClassMusicArtist   = "object.container.person.musicArtist"
	ClassMusicAlbum    = "object.container.album.musicAlbum"
	ClassMusicGenre    = "object.container.genre.musicGenre"
	ClassPlaylist      = "object.container.playlistContainer"
	ClassPhotoAlbum    = "object.container.album.photoAlbum"
	ClassMusicTrack    = "object.item.audioItem.musicTrack"
	ClassVideoItem     = "object.item.videoItem"
	ClassPhoto         = "object.item.imageItem.photo"
)

// Prop is one optional metadata element. Props keep insertion order so
// serialized documents are deterministic.
type Prop struct {
	Name  string
	Value string
}

// Resource is a res element pointing at retrievable content.
type Resource struct {
	ProtocolInfo string
	Size         int64
	Duration     string
	Resolution   string
	URL          string
}

// Object is a DIDL-Lite container or item. All objects emitted by this
// server are restricted.
type Object struct {
	Container  bool
	ID         string
	ParentID   string
	Searchable bool
	Title      string
	Class      string
	Props      []Prop
	Resources  []Resource
}

// AddProp appends an optional metadata element, skipping empty values.
func (o *Object) AddProp(name, value string) {
	if value == "" {
		return
	}
	o.Props = append(o.Props, Prop{Name: name, Value: value})
}

// AddResource appends a res element.
func (o *Object) AddResource(r Resource) {
	o.Resources = append(o.Resources, r)
}

const header = `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"` +
	` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
	` xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/"` +
	` xmlns:pv="http://www.pv.com/pvns/">`

// Render serializes objects into a DIDL-Lite document. Rendering zero
// objects yields the empty string, not an empty envelope.
func Render(objects []Object) string {
	if len(objects) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(header)
	for i := range objects {
		writeObject(&b, &objects[i])
	}
	b.WriteString(`</DIDL-Lite>`)
	return b.String()
}

func writeObject(b *strings.Builder, o *Object) {
	elem := "item"
	if o.Container {
		elem = "container"
	}

	b.WriteByte('<')
	b.WriteString(elem)
	writeAttr(b, "id", o.ID)
	writeAttr(b, "parentID", o.ParentID)
	writeAttr(b, "restricted", "1")
	if o.Container && o.Searchable {
		writeAttr(b, "searchable", "1")
	}
	b.WriteByte('>')

	writeElem(b, "dc:title", o.Title)
	writeElem(b, "upnp:class", o.Class)
	for _, p := range o.Props {
		writeElem(b, p.Name, p.Value)
	}
	for _, r := range o.Resources {
		writeResource(b, r)
	}

	b.WriteString("</")
	b.WriteString(elem)
	b.WriteByte('>')
}

func writeResource(b *strings.Builder, r Resource) {
	b.WriteString(`<res`)
	if r.ProtocolInfo != "" {
		writeAttr(b, "protocolInfo", r.ProtocolInfo)
	}
	if r.Size > 0 {
		writeAttr(b, "size", strconv.FormatInt(r.Size, 10))
	}
	if r.Duration != "" {
		writeAttr(b, "duration", r.Duration)
	}
	if r.Resolution != "" {
		writeAttr(b, "resolution", r.Resolution)
	}
	b.WriteByte('>')
	b.WriteString(Escape(r.URL))
	b.WriteString(`</res>`)
}

func writeElem(b *strings.Builder, name, value string) {
	b.WriteByte('<')
	b.WriteString(name)
	b.WriteByte('>')
	b.WriteString(Escape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(Escape(value))
	b.WriteByte('"')
}

// Escape entity-escapes user-controlled text for embedding in XML content
// or attribute values.
func Escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return ""
	}
	return b.String()
}
