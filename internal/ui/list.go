package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/froydnj/contentdir/internal/didl"
)

var _ list.Item = objectItem{}

// objectItem wraps a [didl.Object] to implement [list.Item].
type objectItem struct {
	object didl.Object
}

func (i objectItem) FilterValue() string { return i.object.Title }
func (i objectItem) Title() string {
	if i.object.Container {
		return "▸ " + i.object.Title
	}
	return i.object.Title
}

func (i objectItem) Description() string {
	var parts []string
	for _, p := range i.object.Props {
		switch p.Name {
		case didl.TagArtist, didl.TagAlbum, didl.TagGenre:
			parts = append(parts, p.Value)
		}
	}
	if len(parts) == 0 {
		return shortClass(i.object.Class)
	}
	return strings.Join(parts, " • ")
}

// shortClass trims a UPnP class to its last dotted component.
func shortClass(class string) string {
	if idx := strings.LastIndex(class, "."); idx >= 0 {
		return class[idx+1:]
	}
	return class
}
