// package ui implements the interactive library browser. The model walks the
// same virtual hierarchy a control point sees, one Browse call per level.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/froydnj/contentdir/internal/didl"
	"github.com/froydnj/contentdir/internal/directory"
)

// browsePageSize bounds a single TUI fetch; deeper pages are out of scope
// for the interactive browser.
const browsePageSize = 500

// crumb is one level of the navigation stack.
type crumb struct {
	id    string
	title string
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	service *directory.Service
	stack   []crumb
	objects []didl.Object
	list    list.Model
	width   int
	height  int
	loading bool
	total   uint32
	err     error
	help    help.Model
	keys    keyMap
}

type childrenFetchedMsg struct {
	result directory.BrowseResult
	err    error
}

// NewModel creates a new TUI model rooted at the directory's top container.
func NewModel(ctx context.Context, service *directory.Service) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	return &Model{
		ctx:     ctx,
		service: service,
		stack:   []crumb{{id: directory.RootID, title: "Library"}},
		list:    l,
		loading: true,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the root containers.
func (m *Model) Init() tea.Cmd {
	return m.fetchChildren(directory.RootID)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.enter):
			if m.loading {
				return m, nil
			}
			item, ok := m.list.SelectedItem().(objectItem)
			if !ok || !item.object.Container {
				return m, nil
			}
			m.stack = append(m.stack, crumb{id: item.object.ID, title: item.object.Title})
			m.loading = true
			return m, m.fetchChildren(item.object.ID)

		case key.Matches(msg, m.keys.back):
			if len(m.stack) <= 1 {
				return m, tea.Quit
			}
			m.stack = m.stack[:len(m.stack)-1]
			m.loading = true
			return m, m.fetchChildren(m.current().id)

		case key.Matches(msg, m.keys.refresh):
			m.loading = true
			return m, m.fetchChildren(m.current().id)
		}

	case childrenFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.objects = msg.result.Objects
		m.total = msg.result.Total
		items := make([]list.Item, len(msg.result.Objects))
		for i, o := range msg.result.Objects {
			items[i] = objectItem{object: o}
		}
		return m, m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the breadcrumb, the current listing, and the help footer.
func (m *Model) View() string {
	title := styles.title.Render(m.breadcrumb())

	var body string
	switch {
	case m.err != nil:
		body = styles.err.Render(fmt.Sprintf("error: %v", m.err))
	case m.loading:
		body = styles.warn.Render("loading…")
	default:
		body = m.list.View()
		if m.total > uint32(len(m.objects)) {
			body += "\n" + styles.help.Render(
				fmt.Sprintf("showing %d of %d", len(m.objects), m.total))
		}
	}

	return fmt.Sprintf("%s\n%s\n%s", title, body, m.help.View(m.keys))
}

func (m *Model) current() crumb {
	return m.stack[len(m.stack)-1]
}

func (m *Model) breadcrumb() string {
	s := m.stack[0].title
	for _, c := range m.stack[1:] {
		s += " / " + c.title
	}
	return s
}

// fetchChildren loads one page of a container's children off the UI loop.
func (m *Model) fetchChildren(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.service.Browse(m.ctx, id, "BrowseDirectChildren", "*", 0, browsePageSize, "")
		return childrenFetchedMsg{result: res, err: err}
	}
}
