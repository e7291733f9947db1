package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"coffeepulse/internal/app"
)

// Embedded browser shell
//go:embed all:static/*
var staticFiles embed.FS

func main() {
	var frontendFS fs.FS
	if sub, err := fs.Sub(staticFiles, "static"); err == nil {
		frontendFS = sub
	} else {
		slog.Warn("Frontend embedding failed", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("%s\nDashboard running at %s\n", app.AppName, application.Config.URL())

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
