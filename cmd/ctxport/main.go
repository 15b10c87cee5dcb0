// Command ctxport exports AI conversations and GitHub threads as Markdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ctxport/internal/adapters/driven/clipboard"
	"github.com/custodia-labs/ctxport/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ctxport/internal/adapters/driving/cli"
	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version, bootstrap); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the config store, registry and export service.
func bootstrap(configDir string) (*cli.Services, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	settings, err := services.NewSettingsService(store).Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings from %s: %w", store.Path(), err)
	}

	sessions := driven.StaticSessions(settings.Sessions)
	env := connectors.Env{Sessions: sessions}

	registry, err := services.NewRegistry(env, services.RegistryOptions{
		ManifestDir: settings.ManifestDir,
		GitHubToken: settings.GitHubToken,
	})
	if err != nil {
		return nil, fmt.Errorf("registering adapters: %w", err)
	}

	return &cli.Services{
		Export:    services.NewExportService(registry, sessions, settings.BatchInterval),
		Registry:  registry,
		Clipboard: clipboard.New(),
		Settings:  settings,
	}, nil
}
