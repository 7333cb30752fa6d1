package didl

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Errorf("Render(nil) = %q, want empty", got)
	}
	if got := Render([]Object{}); got != "" {
		t.Errorf("Render(empty) = %q, want empty", got)
	}
}

func TestRenderContainer(t *testing.T) {
	o := Object{
		Container:  true,
		ID:         "/g/12/a",
		ParentID:   "/g",
		Searchable: true,
		Class:      ClassMusicGenre,
		Title:      "Jazz & Blues",
	}
	got := Render([]Object{o})

	for _, want := range []string{
		`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"`,
		`xmlns:dc="http://purl.org/dc/elements/1.1/"`,
		`xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/"`,
		`<container id="/g/12/a" parentID="/g" restricted="1" searchable="1">`,
		`<dc:title>Jazz &amp; Blues</dc:title>`,
		`<upnp:class>object.container.genre.musicGenre</upnp:class>`,
		`</container>`,
		`</DIDL-Lite>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderItemWithResource(t *testing.T) {
	o := Object{
		ID:       "/t/9",
		ParentID: "/t",
		Class:    ClassMusicTrack,
		Title:    "Feeling Good",
	}
	o.AddProp(TagArtist, "Nina Simone")
	o.AddProp(TagGenre, "") // empty values are skipped
	o.AddResource(Resource{
		ProtocolInfo: "http-get:*:audio/flac:*",
		Size:         123456,
		Duration:     "0:02:54",
		URL:          "http://host/stream/track/9",
	})
	got := Render([]Object{o})

	for _, want := range []string{
		`<item id="/t/9" parentID="/t" restricted="1">`,
		`<upnp:artist>Nina Simone</upnp:artist>`,
		`<res protocolInfo="http-get:*:audio/flac:*" size="123456" duration="0:02:54">http://host/stream/track/9</res>`,
		`</item>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "upnp:genre") {
		t.Errorf("empty prop was rendered:\n%s", got)
	}
}

// rendered documents must stay parseable by a strict XML decoder even with
// hostile titles.
func TestRenderWellFormed(t *testing.T) {
	objects := []Object{
		{
			Container: true,
			ID:        "/a/1/l",
			ParentID:  "/a/1",
			Class:     ClassMusicAlbum,
			Title:     `<bad> & "worse" 'still'`,
		},
		{
			ID:       "/t/2",
			ParentID: "/t",
			Class:    ClassMusicTrack,
			Title:    "ok",
		},
	}
	got := Render(objects)

	dec := xml.NewDecoder(strings.NewReader(got))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("rendered XML not well-formed: %v\n%s", err, got)
		}
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`a<b>&"c"`); got != "a&lt;b&gt;&amp;&#34;c&#34;" {
		t.Errorf("Escape = %q", got)
	}
}
