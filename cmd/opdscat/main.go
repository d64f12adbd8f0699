package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"opdscat/internal/config"
	"opdscat/internal/controller"
	"opdscat/internal/logging"
	"opdscat/internal/platform"
	"opdscat/internal/storage"
	"opdscat/internal/tui"
	"opdscat/internal/tui/theme"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "opdscat:", err)
		os.Exit(1)
	}
}

func run() error {
	platform.WarnUnsupportedOS()

	home := os.Getenv("HOME")
	if home == "" {
		return errors.New("HOME is not set")
	}

	cfgPath := config.Path(home)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	appDir := filepath.Dir(cfgPath)
	log, logFile, err := logging.New(appDir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// A broken history database should not keep the browser from
	// starting; downloads just go unrecorded.
	history, err := storage.OpenHistory(filepath.Join(appDir, "downloads.db"))
	if err != nil {
		log.Warn("open download history", "err", err)
		history = nil
	} else {
		defer history.Close()
		if err := history.Init(context.Background()); err != nil {
			log.Warn("init download history", "err", err)
			history = nil
		}
	}

	ctrl, err := controller.New(cfg, cfgPath, history, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := ctrl.Run(ctx); err != nil {
			log.Error("controller stopped", "err", err)
		}
	}()

	program := tea.NewProgram(tui.New(ctrl, theme.Default()), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
