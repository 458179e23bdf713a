// Package main provides the entry point for the YOLO OBB Annotator.
package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	fyneapp "fyne.io/fyne/v2/app"

	"github.com/sycamore23/yolo-obb-annotator/internal/app"
	"github.com/sycamore23/yolo-obb-annotator/internal/class"
	"github.com/sycamore23/yolo-obb-annotator/internal/version"
	"github.com/sycamore23/yolo-obb-annotator/ui/mainwindow"
	"github.com/sycamore23/yolo-obb-annotator/ui/prefs"
)

const appTitle = "YOLO OBB Annotator"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	slog.Info("starting", "app", appTitle, "version", version.Version)

	fyneApp := fyneapp.NewWithID("com.github.sycamore23.yolo-obb-annotator")

	appState := app.NewState()
	appPrefs := prefs.Load()

	// Command line: optional image path and class file.
	args := os.Args[1:]
	for _, arg := range args {
		switch {
		case hasClassExt(arg):
			reg, err := class.LoadFile(arg)
			if err != nil {
				slog.Error("loading class file", "path", arg, "error", err)
				continue
			}
			appState.Classes = reg
		default:
			if err := appState.OpenImage(arg); err != nil {
				slog.Error("opening image", "path", arg, "error", err)
			}
		}
	}

	win := mainwindow.New(fyneApp, appState, appPrefs)
	if appState.Image == nil {
		win.RestoreLastImage()
	}
	win.ShowAndRun()

	if err := appPrefs.Save(); err != nil {
		slog.Warn("saving preferences", "error", err)
	}
}

func hasClassExt(path string) bool {
	return strings.HasSuffix(path, ".txt") || strings.HasSuffix(path, ".json")
}
