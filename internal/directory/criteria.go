package directory

import (
	"fmt"
	"strings"

	"github.com/froydnj/contentdir/internal/models"
	"github.com/froydnj/contentdir/internal/shared"
)

// searchTable is the query family a search targets, selected by any
// derivedfrom term in the criteria (tracks when absent).
type searchTable string

const (
	tableTracks searchTable = "tracks"
	tableVideos searchTable = "videos"
	tableImages searchTable = "images"
)

func (t searchTable) command() string {
	switch t {
	case tableVideos:
		return models.CmdVideos
	case tableImages:
		return models.CmdImages
	default:
		return models.CmdTitles
	}
}

// column is one mapped UPnP property: the backend column it lowers to and
// the extra tag the query must fetch to populate it.
type column struct {
	expr string
	tag  models.Tag
}

var trackColumns = map[string]column{
	"dc:title":       {expr: "tracks.title"},
	"dc:creator":     {expr: "contributors.name", tag: models.TagArtist},
	"upnp:artist":    {expr: "contributors.name", tag: models.TagArtist},
	"upnp:album":     {expr: "albums.title", tag: models.TagAlbum},
	"upnp:genre":     {expr: "genres.name", tag: models.TagGenre},
	"@id":            {expr: "tracks.id"},
	"@refID":         {expr: ""},
	"pv:lastUpdated": {expr: "tracks.updated_at", tag: models.TagLastUpdated},
}

var videoColumns = map[string]column{
	"dc:title":       {expr: "videos.title"},
	"@id":            {expr: "videos.id"},
	"@refID":         {expr: ""},
	"pv:lastUpdated": {expr: "videos.updated_at", tag: models.TagLastUpdated},
}

var imageColumns = map[string]column{
	"dc:title":       {expr: "images.title"},
	"dc:date":        {expr: "images.taken_at"},
	"@id":            {expr: "images.id"},
	"@refID":         {expr: ""},
	"pv:lastUpdated": {expr: "images.updated_at", tag: models.TagLastUpdated},
}

func columnsFor(t searchTable) map[string]column {
	switch t {
	case tableVideos:
		return videoColumns
	case tableImages:
		return imageColumns
	default:
		return trackColumns
	}
}

// audio-only properties are undefined outside the tracks table; we reject
// rather than emit queries against columns that do not exist there.
var audioOnly = map[string]bool{
	"dc:creator":  true,
	"upnp:artist": true,
	"upnp:album":  true,
	"upnp:genre":  true,
}

// decodeSearch lowers a UPnP SearchCriteria expression into a backend
// command plus a SQL predicate, recording which extra tags the query must
// fetch. The literal "*" matches everything.
func decodeSearch(criteria string) (string, models.SearchPredicate, []models.Tag, error) {
	criteria = strings.TrimSpace(criteria)
	if criteria == "*" || criteria == "" {
		return models.CmdTitles, models.SearchPredicate{SQL: "1=1"}, nil, nil
	}

	tokens, err := tokenize(criteria)
	if err != nil {
		return "", models.SearchPredicate{}, nil, err
	}

	table := scanDerivedFrom(tokens)
	dec := &decoder{tokens: tokens, table: table, cols: columnsFor(table)}
	sql, err := dec.expression()
	if err != nil {
		return "", models.SearchPredicate{}, nil, err
	}
	if dec.pos != len(dec.tokens) {
		return "", models.SearchPredicate{}, nil, fmt.Errorf("%w: trailing tokens in %q", shared.ErrUnsupportedCriteria, criteria)
	}

	pred := models.SearchPredicate{SQL: sql, Args: dec.args}
	return table.command(), pred, dec.tags, nil
}

// decodeSort lowers a UPnP SortCriteria list into an ORDER BY fragment for
// the given command. Unrecognized properties are dropped, not rejected.
func decodeSort(criteria string, command string) (string, []models.Tag) {
	table := tableTracks
	switch command {
	case models.CmdVideos:
		table = tableVideos
	case models.CmdImages:
		table = tableImages
	}
	cols := columnsFor(table)

	var parts []string
	var tags []models.Tag
	for _, spec := range parseSortSpecs(criteria) {
		col, ok := cols[spec.prop]
		if !ok || col.expr == "" {
			continue
		}
		if table != tableTracks && audioOnly[spec.prop] {
			continue
		}
		dir := "ASC"
		if spec.desc {
			dir = "DESC"
		}
		parts = append(parts, col.expr+" "+dir)
		if col.tag != "" {
			tags = appendTag(tags, col.tag)
		}
	}
	return strings.Join(parts, ", "), tags
}

// sortSpec is one [+|-]property token from a SortCriteria list.
type sortSpec struct {
	prop string
	desc bool
}

func parseSortSpecs(criteria string) []sortSpec {
	var specs []sortSpec
	for _, tok := range strings.Split(criteria, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		spec := sortSpec{prop: tok}
		switch tok[0] {
		case '+':
			spec.prop = tok[1:]
		case '-':
			spec.prop = tok[1:]
			spec.desc = true
		}
		if spec.prop == "" {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// tokenize splits a criteria string into words, quoted strings, and parens.
// Quoted strings support backslash escapes.
func tokenize(s string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++
		case c == '"':
			var b strings.Builder
			i++
			for i < len(s) && s[i] != '"' {
				if s[i] == '\\' && i+1 < len(s) {
					i++
				}
				b.WriteByte(s[i])
				i++
			}
			if i >= len(s) {
				return nil, fmt.Errorf("%w: unterminated string", shared.ErrUnsupportedCriteria)
			}
			i++
			tokens = append(tokens, `"`+b.String())
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\n\r()\"", rune(s[j])) {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		}
	}
	return tokens, nil
}

// scanDerivedFrom pre-scans tokens for a derivedfrom term to pick the query
// family before property mapping happens.
func scanDerivedFrom(tokens []string) searchTable {
	for i := 0; i+1 < len(tokens); i++ {
		if strings.EqualFold(tokens[i], "derivedfrom") && strings.HasPrefix(tokens[i+1], `"`) {
			class := tokens[i+1][1:]
			switch {
			case strings.HasPrefix(class, "object.item.videoItem"):
				return tableVideos
			case strings.HasPrefix(class, "object.item.imageItem"):
				return tableImages
			}
		}
	}
	return tableTracks
}

// decoder is a recursive-descent parser over the token stream.
type decoder struct {
	tokens []string
	pos    int
	table  searchTable
	cols   map[string]column
	args   []any
	tags   []models.Tag
}

func (d *decoder) peek() (string, bool) {
	if d.pos >= len(d.tokens) {
		return "", false
	}
	return d.tokens[d.pos], true
}

func (d *decoder) next() (string, bool) {
	tok, ok := d.peek()
	if ok {
		d.pos++
	}
	return tok, ok
}

// expression := relation { ("and"|"or") relation }
func (d *decoder) expression() (string, error) {
	left, err := d.relation()
	if err != nil {
		return "", err
	}

	for {
		tok, ok := d.peek()
		if !ok || tok == ")" {
			return left, nil
		}
		var op string
		switch strings.ToLower(tok) {
		case "and":
			op = "AND"
		case "or":
			op = "OR"
		default:
			return "", fmt.Errorf("%w: expected and/or, got %q", shared.ErrUnsupportedCriteria, tok)
		}
		d.pos++

		right, err := d.relation()
		if err != nil {
			return "", err
		}
		left = fmt.Sprintf("(%s %s %s)", left, op, right)
	}
}

// relation := "(" expression ")" | property operator value
func (d *decoder) relation() (string, error) {
	tok, ok := d.next()
	if !ok {
		return "", fmt.Errorf("%w: unexpected end of criteria", shared.ErrUnsupportedCriteria)
	}
	if tok == "(" {
		inner, err := d.expression()
		if err != nil {
			return "", err
		}
		if closing, ok := d.next(); !ok || closing != ")" {
			return "", fmt.Errorf("%w: missing closing paren", shared.ErrUnsupportedCriteria)
		}
		return inner, nil
	}

	prop := tok
	op, ok := d.next()
	if !ok {
		return "", fmt.Errorf("%w: missing operator after %q", shared.ErrUnsupportedCriteria, prop)
	}
	val, ok := d.next()
	if !ok {
		return "", fmt.Errorf("%w: missing operand after %q", shared.ErrUnsupportedCriteria, op)
	}

	// derivedfrom picked the table during pre-scan; the term itself
	// collapses to a tautology.
	if strings.EqualFold(op, "derivedfrom") {
		return "1=1", nil
	}

	if d.table != tableTracks && audioOnly[prop] {
		return "", fmt.Errorf("%w: %s not valid for %s search", shared.ErrUnsupportedCriteria, prop, d.table)
	}
	col, known := d.cols[prop]
	if !known {
		return "", fmt.Errorf("%w: unknown property %q", shared.ErrUnsupportedCriteria, prop)
	}
	if col.tag != "" {
		d.tags = appendTag(d.tags, col.tag)
	}

	switch strings.ToLower(op) {
	case "contains":
		if col.expr == "" {
			return "0=1", nil
		}
		d.args = append(d.args, likePattern(stringValue(val)))
		return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col.expr), nil
	case "doesnotcontain":
		if col.expr == "" {
			return "1=1", nil
		}
		d.args = append(d.args, likePattern(stringValue(val)))
		return fmt.Sprintf(`LOWER(%s) NOT LIKE ? ESCAPE '\'`, col.expr), nil
	case "exists":
		want := strings.EqualFold(stringValue(val), "true")
		if col.expr == "" {
			// no object in this library carries the property
			if want {
				return "0=1", nil
			}
			return "1=1", nil
		}
		if want {
			return col.expr + " IS NOT NULL", nil
		}
		return col.expr + " IS NULL", nil
	case "=":
		if col.expr == "" {
			return "0=1", nil
		}
		d.args = append(d.args, stringValue(val))
		return col.expr + " = ?", nil
	default:
		return "", fmt.Errorf("%w: unsupported operator %q", shared.ErrUnsupportedCriteria, op)
	}
}

// stringValue strips the quote marker the tokenizer prefixes to quoted
// strings; bare words pass through.
func stringValue(tok string) string {
	return strings.TrimPrefix(tok, `"`)
}

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters escaped.
func likePattern(s string) string {
	s = strings.ToLower(s)
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func appendTag(tags []models.Tag, t models.Tag) []models.Tag {
	for _, have := range tags {
		if have == t {
			return tags
		}
	}
	return append(tags, t)
}
