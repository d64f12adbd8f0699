// Package tui is the presentation layer: a bubbletea model that drains
// the controller's UI channel on a frame tick and translates keys into
// controller messages. It holds no application logic; everything it
// shows arrived as a UIMessage.
package tui

import (
	"image"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"opdscat/internal/controller"
	"opdscat/internal/opds"
	"opdscat/internal/server"
	"opdscat/internal/tui/theme"
)

// framesPerSecond paces the UI-channel drain.
const framesPerSecond = 30

// noticeDuration is how long a notification stays on screen.
const noticeDuration = 5 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeDialog
	modeMenu
	modeSearch
	modeRename
	modePassword
)

type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type notice struct {
	title string
	body  string
	until time.Time
}

// Model is the bubbletea model for the whole application.
type Model struct {
	theme theme.Theme
	tx    chan<- controller.ControllerMessage
	rx    <-chan controller.UIMessage

	width  int
	height int

	tabs      []string
	activeTab int

	title   string
	entries []opds.Entry
	status  string
	cursor  int
	offset  int

	images map[string]image.Image

	mode mode

	dialogTitle string
	dialogBody  string

	menuTitle  string
	menuItems  []controller.ContextMenuEntry
	menuCursor int

	input     string
	renameOld string

	promptName   string
	promptServer server.Server

	notice *notice
	now    time.Time
}

// New builds the model over the controller's channels.
func New(ctrl *controller.Controller, th theme.Theme) Model {
	return Model{
		theme:  th,
		tx:     ctrl.Messages(),
		rx:     ctrl.UI(),
		tabs:   []string{"local"},
		images: make(map[string]image.Image),
		now:    time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return frameTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case frameMsg:
		m.now = time.Time(msg)
		m = m.drain()
		if m.notice != nil && m.now.After(m.notice.until) {
			m.notice = nil
		}
		return m, frameTick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// drain applies every queued UI message. The channel is buffered and
// the controller never blocks on it for long, so one pass per frame
// keeps the view current.
func (m Model) drain() Model {
	for {
		select {
		case msg := <-m.rx:
			m = m.apply(msg)
		default:
			return m
		}
	}
}

func (m Model) apply(msg controller.UIMessage) Model {
	switch msg := msg.(type) {
	case controller.UIAddConnection:
		m.tabs = append(m.tabs, msg.Name)
	case controller.UpdateDirectoryView:
		m.title = msg.Title
		m.status = msg.Status
		if msg.Entries != nil || msg.Status == "" {
			m.entries = msg.Entries
		}
		if m.cursor >= len(m.entries) {
			m.cursor = 0
			m.offset = 0
		}
	case controller.ShowInfo:
		m.mode = modeDialog
		m.dialogTitle = msg.Title
		m.dialogBody = msg.Body
	case controller.ShowContextMenu:
		m.mode = modeMenu
		m.menuTitle = msg.Title
		m.menuItems = msg.Entries
		m.menuCursor = 0
	case controller.StoreImage:
		m.images[msg.Title] = msg.Image
	case controller.PasswordPrompt:
		m.mode = modePassword
		m.promptName = msg.Name
		m.promptServer = msg.Server
		m.input = ""
	case controller.ShowNotification:
		m.notice = &notice{title: msg.Title, body: msg.Body, until: m.now.Add(noticeDuration)}
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeDialog:
		m.mode = modeBrowse
		return m, nil
	case modeMenu:
		return m.handleMenuKey(msg)
	case modeSearch, modeRename, modePassword:
		return m.handleInputKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m = m.moveCursor(-1)
	case "down", "j":
		m = m.moveCursor(1)
	case "enter":
		if entry := m.selected(); entry != nil {
			m.tx <- controller.EntrySelected{Entry: entry}
		}
	case "backspace", "left", "h":
		m.tx <- controller.GoBack{}
	case "tab":
		if len(m.tabs) > 1 {
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			m.tx <- controller.ChangeConnection{Name: m.tabs[m.activeTab]}
		}
	case "/":
		m.mode = modeSearch
		m.input = ""
	case "H":
		m.tx <- controller.ShowDownloadHistory{}
	case "?":
		m.mode = modeDialog
		m.dialogTitle = "Help"
		m.dialogBody = helpText
	}
	return m, nil
}

const helpText = `enter      select entry
backspace  go back
tab        next connection
/          search
H          download history
?          this help
q          quit`

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeBrowse
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(m.menuItems)-1 {
			m.menuCursor++
		}
	case "enter":
		if m.menuCursor >= len(m.menuItems) {
			m.mode = modeBrowse
			return m, nil
		}
		picked := m.menuItems[m.menuCursor].Message
		// Renames need a filename first; every other menu action
		// dispatches as is.
		if rename, ok := picked.(controller.Rename); ok {
			m.mode = modeRename
			m.renameOld = rename.OldPath
			m.input = filepath.Base(rename.OldPath)
			return m, nil
		}
		m.mode = modeBrowse
		m.tx <- picked
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input = ""
	case "enter":
		m = m.submitInput()
	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m, nil
}

func (m Model) submitInput() Model {
	switch m.mode {
	case modeSearch:
		m.tx <- controller.Search{Query: m.input}
	case modeRename:
		m.tx <- controller.Rename{OldPath: m.renameOld, NewName: m.input}
	case modePassword:
		m.tx <- controller.AddConnection{
			Name:     m.promptName,
			Server:   m.promptServer,
			Password: m.input,
		}
	}
	m.mode = modeBrowse
	m.input = ""
	return m
}

func (m Model) moveCursor(delta int) Model {
	if len(m.entries) == 0 {
		return m
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	m = m.scrollToCursor()

	// Prefetch the cover for the entry under the cursor.
	if ce, ok := m.entries[m.cursor].(opds.CatalogEntry); ok && ce.Image != nil {
		if _, have := m.images[ce.Name]; !have {
			m.tx <- controller.RequestImage{Entry: ce}
		}
	}
	return m
}

func (m Model) scrollToCursor() Model {
	visible := m.listHeight()
	if visible < 1 {
		return m
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	return m
}

func (m Model) selected() opds.Entry {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil
	}
	return m.entries[m.cursor]
}
