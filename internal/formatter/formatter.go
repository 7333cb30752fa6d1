// package formatter exports browse listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/froydnj/contentdir/internal/didl"
	"github.com/froydnj/contentdir/internal/directory"
)

// ExportToCSV converts a browse listing to CSV with columns: ID, Title, Class, Artist, Album, Genre, Duration
func ExportToCSV(res *directory.BrowseResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Class", "Artist", "Album", "Genre", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range res.Objects {
		record := []string{
			o.ID,
			o.Title,
			o.Class,
			prop(o, didl.TagArtist),
			prop(o, didl.TagAlbum),
			prop(o, didl.TagGenre),
			duration(o),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a browse listing to Markdown
func ExportToMarkdown(title string, res *directory.BrowseResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Entries**: %d of %d\n\n", res.Returned, res.Total))

	for i, o := range res.Objects {
		line := o.Title
		if artist := prop(o, didl.TagArtist); artist != "" {
			line = fmt.Sprintf("%s - %s", artist, line)
		}
		if album := prop(o, didl.TagAlbum); album != "" {
			line = fmt.Sprintf("%s (%s)", line, album)
		}
		if d := duration(o); d != "" {
			line = fmt.Sprintf("%s [%s]", line, d)
		}
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a browse listing to plain text
func ExportToText(title string, res *directory.BrowseResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Container: %s\n", title))
	buf.WriteString(fmt.Sprintf("Entries: %d of %d\n\n", res.Returned, res.Total))

	for i, o := range res.Objects {
		marker := " "
		if o.Container {
			marker = "+"
		}
		buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, marker, o.Title))
	}

	return buf.Bytes(), nil
}

func prop(o didl.Object, name string) string {
	for _, p := range o.Props {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

func duration(o didl.Object) string {
	for _, r := range o.Resources {
		if r.Duration != "" {
			return r.Duration
		}
	}
	return ""
}
