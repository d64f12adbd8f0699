package controller

import (
	"image"
	"net/url"

	"opdscat/internal/opds"
	"opdscat/internal/server"
)

// ControllerMessage is posted by the presentation layer — or by the
// controller to itself — and handled by the run loop. Variants carry
// everything the handler needs so no state is shared with the UI.
type ControllerMessage interface {
	controllerMessage()
}

// EntrySelected reports that the user pressed enter on an entry in the
// directory view.
type EntrySelected struct {
	Entry opds.Entry
}

// AddConnection connects to a catalog and registers it under Name. An
// empty Password means no password is available.
type AddConnection struct {
	Name     string
	Server   server.Server
	Password string
}

// ChangeConnection switches the active tab.
type ChangeConnection struct {
	Name string
}

// GoBack pops the active connection's history.
type GoBack struct{}

// Open hands a local file to the OS mime-type opener.
type Open struct {
	URL *url.URL
}

// Navigate moves the active connection to the URL.
type Navigate struct {
	URL *url.URL
}

// Download fetches the file at the URL into the download directory.
type Download struct {
	URL *url.URL
}

// RequestImage fetches and decodes the cover image for an entry.
type RequestImage struct {
	Entry opds.Entry
}

// Rename renames a local file; only the base of NewName is used.
type Rename struct {
	OldPath string
	NewName string
}

// Delete removes a local file or directory.
type Delete struct {
	URL *url.URL
}

// Search runs the active connection's search.
type Search struct {
	Query string
}

// ShowDownloadHistory asks for the recent-downloads dialog.
type ShowDownloadHistory struct{}

func (EntrySelected) controllerMessage()       {}
func (AddConnection) controllerMessage()       {}
func (ChangeConnection) controllerMessage()    {}
func (GoBack) controllerMessage()              {}
func (Open) controllerMessage()                {}
func (Navigate) controllerMessage()            {}
func (Download) controllerMessage()            {}
func (RequestImage) controllerMessage()        {}
func (Rename) controllerMessage()              {}
func (Delete) controllerMessage()              {}
func (Search) controllerMessage()              {}
func (ShowDownloadHistory) controllerMessage() {}

// UIMessage is posted by the controller and drained by the presentation
// layer during its frame tick.
type UIMessage interface {
	uiMessage()
}

// UIAddConnection registers a new connection tab in the view.
type UIAddConnection struct {
	Name     string
	Server   server.Server
	Password string
}

// UpdateDirectoryView replaces the entry list. Status is "Loading...",
// "", or an error summary; when both Entries and Status are empty the
// presentation substitutes "No files found."
type UpdateDirectoryView struct {
	Title   string
	Entries []opds.Entry
	Status  string
}

// ShowInfo opens a modal dialog.
type ShowInfo struct {
	Title string
	Body  string
}

// ContextMenuEntry labels a controller message inside a context menu.
type ContextMenuEntry struct {
	Label   string
	Message ControllerMessage
}

// ShowContextMenu opens a popup menu; submitting an entry dispatches
// the paired message back to the controller.
type ShowContextMenu struct {
	Title   string
	Entries []ContextMenuEntry
}

// StoreImage caches a decoded cover image by entry title.
type StoreImage struct {
	Title string
	Image image.Image
}

// PasswordPrompt asks the user for a server password; submitting sends
// AddConnection with the password filled in.
type PasswordPrompt struct {
	Name   string
	Server server.Server
}

// ShowNotification flashes a transient panel that never captures input.
type ShowNotification struct {
	Title string
	Body  string
}

func (UIAddConnection) uiMessage()     {}
func (UpdateDirectoryView) uiMessage() {}
func (ShowInfo) uiMessage()            {}
func (ShowContextMenu) uiMessage()     {}
func (StoreImage) uiMessage()          {}
func (PasswordPrompt) uiMessage()      {}
func (ShowNotification) uiMessage()    {}
