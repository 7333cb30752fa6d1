package formatter

import (
	"strings"
	"testing"

	"github.com/froydnj/contentdir/internal/didl"
	"github.com/froydnj/contentdir/internal/directory"
)

func sampleResult() *directory.BrowseResult {
	track := didl.Object{
		ID:       "/a/7/l/3/t/9",
		ParentID: "/a/7/l/3/t",
		Class:    didl.ClassMusicTrack,
		Title:    "Sinnerman",
	}
	track.AddProp(didl.TagArtist, "Nina Simone")
	track.AddProp(didl.TagAlbum, "Pastel Blues")
	track.AddProp(didl.TagGenre, "Jazz")
	track.AddResource(didl.Resource{
		ProtocolInfo: "http-get:*:audio/flac:*",
		Duration:     "0:10:21",
		URL:          "http://host/stream/track/9",
	})

	folder := didl.Object{
		Container: true,
		ID:        "/m/5",
		ParentID:  "/m",
		Class:     didl.ClassStorageFolder,
		Title:     "simone",
	}

	return &directory.BrowseResult{
		Objects:  []didl.Object{folder, track},
		Returned: 2,
		Total:    12,
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleResult())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Title,Class,Artist,Album,Genre,Duration") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "/a/7/l/3/t/9") {
			t.Errorf("CSV missing track ID")
		}
		if !strings.Contains(output, "Nina Simone") {
			t.Errorf("CSV missing artist")
		}
		if !strings.Contains(output, "0:10:21") {
			t.Errorf("CSV missing duration")
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 3 {
			t.Errorf("expected header plus 2 records, got %d lines", len(lines))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("Pastel Blues", sampleResult())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Pastel Blues") {
			t.Errorf("markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Entries**: 2 of 12") {
			t.Errorf("markdown missing entry count")
		}
		if !strings.Contains(output, "2. Nina Simone - Sinnerman (Pastel Blues) [0:10:21]") {
			t.Errorf("markdown missing track line, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText("Music Folder", sampleResult())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Container: Music Folder") {
			t.Errorf("text missing container name")
		}
		if !strings.Contains(output, "1. + simone") {
			t.Errorf("text missing folder marker, got: %s", output)
		}
		if !strings.Contains(output, "2.   Sinnerman") {
			t.Errorf("text missing track line, got: %s", output)
		}
	})
}
