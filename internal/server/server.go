// Package server describes a remote OPDS catalog account and its
// credential storage in the OS keyring. Passwords never touch the
// configuration file.
package server

import (
	"fmt"
	"net/url"

	"github.com/zalando/go-keyring"
)

// service is the keyring namespace all catalog credentials live under.
const service = "opdscat"

// Server identifies a remote OPDS catalog. BaseURL is the full catalog
// URL, not just the host. A server without a username has no password.
type Server struct {
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username,omitempty"`
}

// Domain returns the scheme+host portion of the base URL. Relative
// hrefs in feeds resolve against it.
func (s Server) Domain() (*url.URL, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", s.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q has no scheme or host", s.BaseURL)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

func (s Server) keyringKey() string {
	return fmt.Sprintf("%s@%s", s.Username, s.BaseURL)
}

// GetPassword retrieves the stored password for the server. Servers
// without a username have no password; a stored empty string counts as
// absent. keyring.ErrNotFound passes through so the caller can prompt
// the user; any other backend error is unexpected.
func (s Server) GetPassword() (string, error) {
	if s.Username == "" {
		return "", nil
	}
	password, err := keyring.Get(service, s.keyringKey())
	if err != nil {
		return "", err
	}
	return password, nil
}

// StorePassword writes the password to the OS keyring. Nothing is
// stored when the server has no username or the password is empty.
func StorePassword(s Server, password string) error {
	if s.Username == "" || password == "" {
		return nil
	}
	if err := keyring.Set(service, s.keyringKey(), password); err != nil {
		return fmt.Errorf("store password for %s: %w", s.BaseURL, err)
	}
	return nil
}

func (s Server) String() string {
	return fmt.Sprintf("URL: %s\nUSER: %s", s.BaseURL, s.Username)
}
