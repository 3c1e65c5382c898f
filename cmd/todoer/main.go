package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hunterjackson/todoer/internal/db"
	"github.com/hunterjackson/todoer/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("todoer %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// The TUI owns stdout, so logs go to a file next to the database.
	logger := newLogger()

	database, err := db.New(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	app := ui.NewApp(database)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	dataDir, err := db.DataDir()
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	logFile, err := os.OpenFile(filepath.Join(dataDir, "todoer.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return slog.New(slog.NewTextHandler(logFile, nil))
}
