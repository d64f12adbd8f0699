// Package controller owns every connection and runs the application
// logic. The presentation layer talks to it exclusively through two
// typed channels: ControllerMessage in, UIMessage out. Slow work
// (navigation, downloads, cover fetches) runs in spawned goroutines
// that post their result on the UI channel when done, so the run loop
// never blocks on the network.
package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zalando/go-keyring"

	"opdscat/internal/config"
	"opdscat/internal/connection"
	"opdscat/internal/fsutil"
	"opdscat/internal/opds"
	"opdscat/internal/platform"
	"opdscat/internal/server"
	"opdscat/internal/storage"
)

// DefaultRefreshInterval is how often the active remote tab is
// re-rendered from cache. Local tabs refresh on filesystem events
// instead.
const DefaultRefreshInterval = 5 * time.Minute

// localTab is the name of the built-in download-directory connection.
const localTab = "local"

// managed pairs a connection with the mutex serializing access to it.
// Spawned tasks lock it for the duration of one connection call.
type managed struct {
	mu   sync.Mutex
	conn connection.Connection
}

// Controller routes messages between the presentation layer and the
// connections. All fields are owned by the run loop goroutine except
// the managed connections, which spawned tasks lock individually.
type Controller struct {
	rx   chan ControllerMessage
	uiTx chan UIMessage

	connections map[string]*managed
	currentTab  string

	client          *http.Client
	cfg             config.Config
	cfgPath         string
	downloadDir     *url.URL
	history         *storage.History
	log             *slog.Logger
	refreshInterval time.Duration
	openFile        func(string) error
}

// New builds a controller over the loaded configuration. history may be
// nil when the download database could not be opened.
func New(cfg config.Config, cfgPath string, history *storage.History, log *slog.Logger) (*Controller, error) {
	downloadDir, err := fsutil.DirectoryURL(cfg.DownloadDirectory)
	if err != nil {
		return nil, err
	}

	return &Controller{
		rx:   make(chan ControllerMessage, 128),
		uiTx: make(chan UIMessage, 128),
		connections: map[string]*managed{
			localTab: {conn: connection.NewLocal(downloadDir)},
		},
		currentTab:      localTab,
		client:          &http.Client{},
		cfg:             cfg,
		cfgPath:         cfgPath,
		downloadDir:     downloadDir,
		history:         history,
		log:             log,
		refreshInterval: DefaultRefreshInterval,
		openFile:        platform.OpenPath,
	}, nil
}

// Messages is where the presentation layer posts its requests.
func (c *Controller) Messages() chan<- ControllerMessage { return c.rx }

// UI is drained by the presentation layer on every frame tick.
func (c *Controller) UI() <-chan UIMessage { return c.uiTx }

// Run drives the controller until ctx is cancelled. It shows the local
// tab, connects the configured servers, then loops over incoming
// messages, download-directory events and the refresh ticker.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.changeConnection(ctx, localTab); err != nil {
		return err
	}
	if err := c.connectConfiguredServers(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(fsutil.FilePath(c.downloadDir)); err != nil {
		return fmt.Errorf("watch download directory: %w", err)
	}

	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-c.rx:
			if err := c.handle(ctx, msg); err != nil {
				c.log.Error("message failed", "message", fmt.Sprintf("%T", msg), "err", err)
				c.post(ctx, ShowInfo{Title: "Error", Body: err.Error()})
			}
		case _, ok := <-watcher.Events:
			if ok && c.currentTab == localTab {
				c.refresh(ctx)
			}
		case err, ok := <-watcher.Errors:
			if ok {
				c.log.Warn("filesystem watcher", "err", err)
			}
		case <-ticker.C:
			if c.currentTab != localTab {
				c.refresh(ctx)
			}
		}
	}
}

// connectConfiguredServers looks up each configured server's password
// and either connects it or asks the presentation layer to prompt. A
// missing keyring entry is expected on a new machine; any other keyring
// failure aborts startup.
func (c *Controller) connectConfiguredServers(ctx context.Context) error {
	for name, srv := range c.cfg.Servers {
		password, err := srv.GetPassword()
		switch {
		case err == nil:
			c.send(ctx, AddConnection{Name: name, Server: srv, Password: password})
		case errors.Is(err, keyring.ErrNotFound):
			c.post(ctx, PasswordPrompt{Name: name, Server: srv})
		default:
			return fmt.Errorf("read password for %s: %w", name, err)
		}
	}
	return nil
}

func (c *Controller) handle(ctx context.Context, msg ControllerMessage) error {
	switch m := msg.(type) {
	case EntrySelected:
		return c.entrySelected(ctx, m.Entry)
	case AddConnection:
		return c.addConnection(ctx, m)
	case ChangeConnection:
		return c.changeConnection(ctx, m.Name)
	case GoBack:
		return c.goBack(ctx)
	case Open:
		if err := c.openFile(fsutil.FilePath(m.URL)); err != nil {
			return err
		}
		return nil
	case Navigate:
		c.navigateAsync(ctx, c.active(), m.URL)
		return nil
	case Download:
		return c.download(ctx, m.URL)
	case RequestImage:
		c.requestImage(ctx, m.Entry)
		return nil
	case Rename:
		return fsutil.RenameWithinDir(m.OldPath, m.NewName)
	case Delete:
		return os.Remove(fsutil.FilePath(m.URL))
	case Search:
		return c.search(ctx, m.Query)
	case ShowDownloadHistory:
		return c.showDownloadHistory(ctx)
	default:
		return fmt.Errorf("unhandled message %T", msg)
	}
}

// entrySelected decides what pressing enter on an entry does: navigate
// into directories and nested feeds, open a context menu for files and
// acquirable catalog entries, reject everything else.
func (c *Controller) entrySelected(ctx context.Context, entry opds.Entry) error {
	switch e := entry.(type) {
	case opds.Directory:
		c.send(ctx, Navigate{URL: e.URL})
		return nil
	case opds.File:
		path := fsutil.FilePath(e.URL)
		c.post(ctx, ShowContextMenu{
			Title: e.Name,
			Entries: []ContextMenuEntry{
				{Label: "Open", Message: Open{URL: e.URL}},
				{Label: "Rename", Message: Rename{OldPath: path, NewName: path}},
				{Label: "Delete", Message: Delete{URL: e.URL}},
			},
		})
		return nil
	case opds.CatalogEntry:
		if e.Unsupported != "" {
			return fmt.Errorf("Unsupported acquisition type: %s", e.Unsupported)
		}
		if e.Href != nil {
			c.send(ctx, Navigate{URL: e.Href})
			return nil
		}
		if len(e.Downloads) == 0 {
			return errors.New("Cannot perform any action on this entry.")
		}
		menu := make([]ContextMenuEntry, 0, len(e.Downloads))
		for _, d := range e.Downloads {
			menu = append(menu, ContextMenuEntry{
				Label:   "Download as " + d.MimeType,
				Message: Download{URL: d.URL},
			})
		}
		c.post(ctx, ShowContextMenu{Title: e.Name, Entries: menu})
		return nil
	default:
		return fmt.Errorf("unhandled entry type %T", entry)
	}
}

// addConnection stores the password, dials the catalog and registers
// the tab. The server is persisted to the config file so it comes back
// on the next start.
func (c *Controller) addConnection(ctx context.Context, m AddConnection) error {
	if err := server.StorePassword(m.Server, m.Password); err != nil {
		return err
	}
	remote, err := connection.DialRemote(ctx, m.Server, m.Password, c.client)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.Name, err)
	}
	c.connections[m.Name] = &managed{conn: remote}

	if c.cfg.Servers == nil {
		c.cfg.Servers = make(map[string]server.Server)
	}
	c.cfg.Servers[m.Name] = m.Server
	if err := c.cfg.Write(c.cfgPath); err != nil {
		return err
	}

	c.post(ctx, UIAddConnection{Name: m.Name, Server: m.Server, Password: m.Password})
	return nil
}

func (c *Controller) changeConnection(ctx context.Context, name string) error {
	mc, ok := c.connections[name]
	if !ok {
		return fmt.Errorf("unknown connection %q", name)
	}
	c.currentTab = name

	mc.mu.Lock()
	addr := mc.conn.CurrentAddress()
	mc.mu.Unlock()
	c.navigateAsync(ctx, mc, addr)
	return nil
}

// navigateAsync posts a loading view immediately and fetches the page
// in a spawned task. The history push happens inside NavigateTo, so a
// failed fetch still lands on the stack and Back unwinds it.
func (c *Controller) navigateAsync(ctx context.Context, mc *managed, addr *url.URL) {
	c.post(ctx, UpdateDirectoryView{Title: addr.String(), Status: "Loading..."})
	go func() {
		mc.mu.Lock()
		entries, err := mc.conn.NavigateTo(ctx, addr)
		mc.mu.Unlock()
		if err != nil {
			c.post(ctx, UpdateDirectoryView{Title: addr.String(), Status: "Load failed: " + err.Error()})
			return
		}
		c.post(ctx, UpdateDirectoryView{Title: addr.String(), Entries: entries})
	}()
}

func (c *Controller) goBack(ctx context.Context) error {
	mc := c.active()
	mc.mu.Lock()
	entries, err := mc.conn.Back(ctx)
	addr := mc.conn.CurrentAddress()
	mc.mu.Unlock()
	if err != nil {
		return err
	}
	c.post(ctx, UpdateDirectoryView{Title: addr.String(), Entries: entries})
	return nil
}

// download runs the fetch-verify-save pipeline in a spawned task and
// reports progress through notifications. Only remote connections can
// download.
func (c *Controller) download(ctx context.Context, u *url.URL) error {
	mc := c.active()
	remote, ok := mc.conn.(*connection.Remote)
	if !ok {
		return errors.New("downloads are only available on catalog connections")
	}

	source := u.String()
	c.post(ctx, ShowNotification{Title: "Starting download", Body: source})
	go func() {
		mc.mu.Lock()
		name, data, err := remote.Download(ctx, u)
		mc.mu.Unlock()
		if err != nil {
			c.post(ctx, ShowInfo{Title: "Error", Body: fmt.Sprintf("download from %s: %v", source, err)})
			return
		}
		if err := fsutil.SaveBytes(data, c.downloadDir, name); err != nil {
			c.post(ctx, ShowNotification{Title: "Attention", Body: err.Error()})
			return
		}
		c.recordDownload(ctx, name, source, int64(len(data)))
		c.post(ctx, ShowNotification{Title: "Attention", Body: fmt.Sprintf("File %s finished downloading", name)})
	}()
	return nil
}

// recordDownload appends to the history database. Failures are logged
// and otherwise ignored; the file is already on disk.
func (c *Controller) recordDownload(ctx context.Context, name, source string, size int64) {
	if c.history == nil {
		return
	}
	d := storage.Download{Filename: name, SourceURL: source, Size: size, DownloadedAt: time.Now()}
	if err := c.history.Record(ctx, d); err != nil {
		c.log.Warn("record download", "filename", name, "err", err)
	}
}

// requestImage fetches and decodes a cover in a spawned task. Entries
// without a cover and undecodable responses are silently skipped; the
// side panel just shows no image.
func (c *Controller) requestImage(ctx context.Context, entry opds.Entry) {
	ce, ok := entry.(opds.CatalogEntry)
	if !ok || ce.Image == nil {
		return
	}

	mc := c.active()
	go func() {
		mc.mu.Lock()
		data := mc.conn.GetImageBytes(ctx, ce.Image)
		mc.mu.Unlock()
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			c.log.Warn("decode cover", "url", ce.Image.String(), "err", err)
			return
		}
		c.post(ctx, StoreImage{Title: ce.Name, Image: img})
	}()
}

func (c *Controller) search(ctx context.Context, query string) error {
	mc := c.active()
	mc.mu.Lock()
	entries, err := mc.conn.Search(ctx, query)
	mc.mu.Unlock()
	if err != nil {
		return err
	}
	c.post(ctx, UpdateDirectoryView{Title: "Search results for " + query, Entries: entries})
	return nil
}

func (c *Controller) showDownloadHistory(ctx context.Context) error {
	if c.history == nil {
		return errors.New("download history is not available")
	}
	recent, err := c.history.Recent(ctx, 20)
	if err != nil {
		return err
	}

	var b strings.Builder
	if len(recent) == 0 {
		b.WriteString("No downloads recorded yet.")
	}
	for _, d := range recent {
		fmt.Fprintf(&b, "%s  %s (%d bytes)\n", d.DownloadedAt.Local().Format("2006-01-02 15:04"), d.Filename, d.Size)
	}
	c.post(ctx, ShowInfo{Title: "Download history", Body: b.String()})
	return nil
}

// refresh re-renders the active tab from its current address. Remote
// pages come from the connection cache, so a periodic refresh is cheap;
// local pages re-read the directory. A failed refresh only updates the
// status line.
func (c *Controller) refresh(ctx context.Context) {
	mc := c.active()
	mc.mu.Lock()
	addr := mc.conn.CurrentAddress()
	entries, err := mc.conn.GetPage(ctx, addr)
	mc.mu.Unlock()
	if err != nil {
		c.log.Warn("refresh", "url", addr.String(), "err", err)
		c.post(ctx, UpdateDirectoryView{Title: addr.String(), Status: "Refresh failed: " + err.Error()})
		return
	}
	status := "Updated " + time.Now().UTC().Format(time.RFC3339)
	c.post(ctx, UpdateDirectoryView{Title: addr.String(), Entries: entries, Status: status})
}

func (c *Controller) active() *managed {
	return c.connections[c.currentTab]
}

// post delivers a message to the presentation layer, giving up when ctx
// is cancelled so spawned tasks never leak on shutdown.
func (c *Controller) post(ctx context.Context, msg UIMessage) {
	select {
	case c.uiTx <- msg:
	case <-ctx.Done():
	}
}

// send queues a message back onto the controller's own inbox.
func (c *Controller) send(ctx context.Context, msg ControllerMessage) {
	select {
	case c.rx <- msg:
	case <-ctx.Done():
	}
}
