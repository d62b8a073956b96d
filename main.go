// Package main provides the entry point for the Smart Chart application.
package main

import (
	"log"
	"os"

	"fyne.io/fyne/v2/app"

	chartapp "smart-chart/internal/app"
	"smart-chart/internal/config"
	"smart-chart/internal/version"
	"smart-chart/ui/mainwindow"
	"smart-chart/ui/prefs"
)

const appTitle = "Smart Chart"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Printf("Config: %v, using defaults", err)
		cfg = config.Default()
	}

	fyneApp := app.NewWithID("io.github.smart-chart")
	fyneApp.Settings().SetTheme(&chartapp.ChartTheme{})

	appState := chartapp.NewState(cfg)
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)
	win.SetTitle(appTitle)

	// Handle command line arguments
	if len(os.Args) > 1 {
		path := os.Args[1]
		var loadErr error
		if mainwindow.IsSessionFile(path) {
			loadErr = win.OpenSession(path)
		} else {
			loadErr = win.OpenResponse(path)
		}
		if loadErr != nil {
			log.Printf("Failed to load %s: %v", path, loadErr)
		}
	} else {
		win.RestoreLastResponse()
	}

	win.ShowAndRun()
}
