package server

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestDomain(t *testing.T) {
	s := Server{BaseURL: "https://example.com/path/further/down"}
	d, err := s.Domain()
	if err != nil {
		t.Fatalf("Domain returned error: %v", err)
	}
	if d.String() != "https://example.com" {
		t.Fatalf("unexpected domain: %s", d)
	}
}

func TestDomain_InvalidBaseURL(t *testing.T) {
	if _, err := (Server{BaseURL: "not a url"}).Domain(); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}

func TestGetPassword_NoUsername(t *testing.T) {
	keyring.MockInit()
	pwd, err := (Server{BaseURL: "https://ex.org/opds"}).GetPassword()
	if err != nil {
		t.Fatalf("GetPassword returned error: %v", err)
	}
	if pwd != "" {
		t.Fatalf("server without username must have no password, got %q", pwd)
	}
}

func TestStoreAndGetPassword(t *testing.T) {
	keyring.MockInit()
	s := Server{BaseURL: "https://ex.org/opds", Username: "alice"}

	if err := StorePassword(s, "hunter2"); err != nil {
		t.Fatalf("StorePassword returned error: %v", err)
	}
	pwd, err := s.GetPassword()
	if err != nil {
		t.Fatalf("GetPassword returned error: %v", err)
	}
	if pwd != "hunter2" {
		t.Fatalf("unexpected password: %q", pwd)
	}
}

func TestGetPassword_MissingEntry(t *testing.T) {
	keyring.MockInit()
	s := Server{BaseURL: "https://ex.org/opds", Username: "nobody"}

	_, err := s.GetPassword()
	if !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("expected keyring.ErrNotFound, got %v", err)
	}
}

func TestStorePassword_NoOpWithoutCredentials(t *testing.T) {
	keyring.MockInit()

	if err := StorePassword(Server{BaseURL: "https://ex.org"}, "pwd"); err != nil {
		t.Fatalf("store without username must be a no-op: %v", err)
	}
	if err := StorePassword(Server{BaseURL: "https://ex.org", Username: "alice"}, ""); err != nil {
		t.Fatalf("store of empty password must be a no-op: %v", err)
	}

	s := Server{BaseURL: "https://ex.org", Username: "alice"}
	if _, err := s.GetPassword(); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("nothing must have been stored, got %v", err)
	}
}
