package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"opdscat/internal/opds"
	"opdscat/internal/render"
)

// chromeLines is the vertical space taken by the tab bar, the title,
// the status line and the help line.
const chromeLines = 4

func (m Model) listHeight() int {
	h := m.height - chromeLines
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")

	switch m.mode {
	case modeDialog:
		b.WriteString(m.overlay(m.dialogView()))
	case modeMenu:
		b.WriteString(m.overlay(m.menuView()))
	case modeSearch:
		b.WriteString(m.overlay(m.inputView("Search")))
	case modeRename:
		b.WriteString(m.overlay(m.inputView("Rename to")))
	case modePassword:
		b.WriteString(m.overlay(m.passwordView()))
	default:
		b.WriteString(m.browseView())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) tabBar() string {
	parts := make([]string, 0, len(m.tabs))
	for i, name := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, m.theme.TabActive.Render(name))
		} else {
			parts = append(parts, m.theme.TabInactive.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// browseView lays the entry list next to the detail panel.
func (m Model) browseView() string {
	listWidth := m.width * 3 / 5
	panelWidth := m.width - listWidth - 1
	if panelWidth < 10 {
		return m.listView(m.width)
	}
	list := m.listView(listWidth)
	panel := m.panelView(panelWidth)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", panel)
}

func (m Model) listView(width int) string {
	height := m.listHeight()
	lines := make([]string, 0, height)

	if len(m.entries) == 0 && m.status == "" {
		lines = append(lines, m.theme.PanelBody.Render("No files found."))
	}
	for i := m.offset; i < len(m.entries) && len(lines) < height; i++ {
		lines = append(lines, m.entryLine(i, width))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) entryLine(i, width int) string {
	entry := m.entries[i]
	label := entry.Title()

	var styled string
	switch e := entry.(type) {
	case opds.Directory:
		styled = m.theme.EntryDir.Render(label + "/")
	case opds.File:
		styled = m.theme.EntryFile.Render(label)
	case opds.CatalogEntry:
		if e.Href != nil {
			styled = m.theme.EntryFeed.Render(label)
		} else {
			styled = m.theme.EntryFile.Render(label)
		}
	default:
		styled = label
	}

	if i == m.cursor {
		return m.theme.ActiveLine.Render("> ") + styled
	}
	return "  " + styled
}

// panelView shows the details of the selected catalog entry: author,
// rendered description and the cover when it has been fetched.
func (m Model) panelView(width int) string {
	ce, ok := m.selected().(opds.CatalogEntry)
	if !ok {
		return ""
	}

	var parts []string
	parts = append(parts, m.theme.PanelTitle.Render(ce.Name))
	if ce.Author != "" {
		parts = append(parts, m.theme.PanelBody.Render("by "+ce.Author))
	}
	if img, have := m.images[ce.Name]; have {
		parts = append(parts, RenderImage(img, width, m.listHeight()/2))
	}
	for _, line := range render.Lines(ce.Details, width) {
		parts = append(parts, m.theme.PanelBody.Render(line))
	}

	joined := strings.Join(parts, "\n")
	return clampLines(joined, m.listHeight())
}

func (m Model) dialogView() string {
	title := m.theme.DialogTitle.Render(m.dialogTitle)
	body := strings.Join(render.Lines(m.dialogBody, m.dialogWidth()), "\n")
	if m.dialogTitle == "Help" {
		body = m.dialogBody
	}
	return m.theme.Dialog.Render(title + "\n\n" + body)
}

func (m Model) menuView() string {
	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render(m.menuTitle))
	b.WriteString("\n\n")
	for i, item := range m.menuItems {
		if i == m.menuCursor {
			b.WriteString(m.theme.ActiveLine.Render("> " + item.Label))
		} else {
			b.WriteString("  " + item.Label)
		}
		if i < len(m.menuItems)-1 {
			b.WriteString("\n")
		}
	}
	return m.theme.Dialog.Render(b.String())
}

func (m Model) inputView(prompt string) string {
	return m.theme.Dialog.Render(
		m.theme.DialogTitle.Render(prompt) + "\n\n" + m.input + "█")
}

func (m Model) passwordView() string {
	masked := strings.Repeat("*", len([]rune(m.input)))
	return m.theme.Dialog.Render(
		m.theme.DialogTitle.Render("Password for "+m.promptName) + "\n" +
			m.theme.PanelBody.Render(m.promptServer.String()) + "\n\n" + masked + "█")
}

func (m Model) overlay(content string) string {
	return lipgloss.Place(m.width, m.listHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) statusLine() string {
	if m.notice != nil {
		return m.theme.Notice.Render(m.notice.title + ": " + m.notice.body)
	}
	if m.status == "" {
		return ""
	}
	if strings.Contains(m.status, "failed") {
		return m.theme.StatusWarn.Render(m.status)
	}
	return m.theme.Status.Render(m.status)
}

func (m Model) helpLine() string {
	return m.theme.HelpKey.Render("?") + m.theme.HelpText.Render(" help  ") +
		m.theme.HelpKey.Render("q") + m.theme.HelpText.Render(" quit")
}

func (m Model) dialogWidth() int {
	w := m.width - 10
	if w < 20 {
		w = 20
	}
	return w
}

func clampLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
