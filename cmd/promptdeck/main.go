// Package main provides the promptdeck command-line entry point: it wires
// the persistence core together and exposes export, import, and inspect
// subcommands for working with the local data directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"

	"github.com/promptdeck/promptdeck/internal/app"
	"github.com/promptdeck/promptdeck/internal/di"
	"github.com/promptdeck/promptdeck/internal/logger"
	"github.com/promptdeck/promptdeck/internal/persist"
	"github.com/promptdeck/promptdeck/internal/storage"
)

func main() {
	args := os.Args[1:]
	command := "inspect"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command = args[0]
		args = args[1:]
	}

	injector := di.NewContainer(args)
	defer shutdown(injector)

	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	a, err := do.Invoke[*app.App](injector)
	if err != nil {
		log.Fatal("failed to build application", "error", err)
	}
	manager := do.MustInvoke[*persist.Manager](injector)

	ctx := context.Background()
	if err := a.Load(ctx); err != nil {
		log.Fatal("failed to load state", "error", err)
	}

	switch command {
	case "inspect":
		runInspect(a, injector)
	case "export":
		if err := runExport(manager); err != nil {
			log.Fatal("export failed", "error", err)
		}
	case "import":
		if err := runImport(ctx, manager); err != nil {
			log.Fatal("import failed", "error", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected inspect, export, or import)\n", command)
		os.Exit(2)
	}

	a.Close()
}

// runInspect prints a summary of the stored documents.
func runInspect(a *app.App, injector do.Injector) {
	backend := do.MustInvoke[storage.Backend](injector)
	state := a.State()

	fmt.Printf("backend:     %s\n", backend.Name())
	fmt.Printf("channels:    %d\n", len(state.Channels))
	fmt.Printf("tags:        %d\n", len(state.Tags))
	fmt.Printf("custom tags: %d\n", len(state.CustomTags))
	fmt.Printf("theme:       %s\n", state.Theme)
	fmt.Printf("language:    %s\n", state.Language)

	for _, ch := range a.VisibleChannels() {
		star := " "
		if ch.Starred {
			star = "*"
		}
		fmt.Printf("  %s %-24s tags=%d images=%d\n", star, ch.Name, len(ch.Tags), len(ch.Images))
	}
}

// runExport writes the full export envelope to stdout.
func runExport(manager *persist.Manager) error {
	data, err := manager.ExportAll()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

// runImport replaces the stored state with an export envelope read from
// stdin.
func runImport(ctx context.Context, manager *persist.Manager) error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	return manager.Import(ctx, data)
}

func readAllStdin() ([]byte, error) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("import expects an export file on stdin")
	}
	return io.ReadAll(os.Stdin)
}

// shutdown closes the backend and any other shutdownable services.
func shutdown(injector *do.RootScope) {
	if backend, err := do.Invoke[storage.Backend](injector); err == nil {
		backend.Close()
	}
	injector.Shutdown()
}
