package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustainthread/sustainnews/internal/archive"
	"github.com/sustainthread/sustainnews/internal/browser"
)

type model struct {
	all      []archive.Record
	filtered []archive.Record
	cursor   int
	width    int
	height   int

	searching bool
	search    textinput.Model

	status string
}

func newModel(records []archive.Record) model {
	search := textinput.New()
	search.Placeholder = "search title, description, source"
	search.CharLimit = 80

	return model{
		all:      records,
		filtered: records,
		search:   search,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		m.filtered = m.all
		m.cursor = 0
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filtered = filterRecords(m.all, m.search.Value())
	m.cursor = 0
	return m, cmd
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "g":
		m.cursor = 0
	case "G":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}
	case "/":
		m.searching = true
		m.search.Focus()
	case "o", "enter":
		if m.cursor < len(m.filtered) {
			r := m.filtered[m.cursor]
			if r.URL == "" {
				m.status = "no link for this item"
			} else if err := browser.Open(r.URL); err != nil {
				m.status = fmt.Sprintf("open failed: %v", err)
			} else {
				m.status = "opened " + truncateStr(r.URL, 60)
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("sustainnews · %d items", len(m.filtered)))

	listHeight := m.height - 10
	if listHeight < 3 {
		listHeight = 3
	}
	list := renderList(m.filtered, m.cursor, listHeight, m.width)

	var preview string
	if m.cursor < len(m.filtered) {
		preview = m.renderPreview(m.filtered[m.cursor])
	}

	var footer string
	if m.searching {
		footer = searchPromptStyle.Render("/") + m.search.View()
	} else {
		hint := "j/k move · / search · o open · q quit"
		if m.status != "" {
			hint = m.status
		}
		footer = statusStyle.Render(hint)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", list, preview, footer)
}

func (m model) renderPreview(r archive.Record) string {
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(itemTitleStyle.Render(truncateStr(r.Title, width)))
	b.WriteString("\n")
	b.WriteString(itemMetaStyle.Render(fmt.Sprintf("%s · %s · score %d", r.Source, r.Tier, r.Score)))
	if r.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(r.Description)
	}
	if r.URL != "" {
		b.WriteString("\n")
		b.WriteString(itemMetaStyle.Render(truncateStr(r.URL, width)))
	}
	return previewStyle.Width(width).Render(b.String())
}

// Run starts the browser over the archived records.
func Run(records []archive.Record) error {
	p := tea.NewProgram(newModel(records), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
