// Package cli provides the cobra command tree for ctxport.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
	"github.com/custodia-labs/ctxport/internal/logger"
)

var (
	version = "dev"

	verbose   bool
	configDir string
)

// Services injected by SetServices or the bootstrap.
var (
	exportService   driving.ExportService
	adapterRegistry driving.AdapterRegistry
	clipboardWriter driven.Clipboard
	settings        = defaultSettings()
)

// Services holds everything the commands depend on.
type Services struct {
	Export    driving.ExportService
	Registry  driving.AdapterRegistry
	Clipboard driven.Clipboard
	Settings  *domain.Settings
}

// Bootstrap builds the services once global flags are parsed. configDir
// is empty unless --config-dir was given.
type Bootstrap func(configDir string) (*Services, error)

var bootstrap Bootstrap

var errNotConfigured = errors.New("export service not configured")

var rootCmd = &cobra.Command{
	Use:   "ctxport",
	Short: "Export AI conversations and GitHub threads as Markdown",
	Long: `ctxport extracts conversations from ChatGPT, Claude, Gemini, Grok,
DeepSeek and GitHub issues or pull requests, and renders them as Markdown
ready to paste into another model's context.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print each extraction step to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ctxport)")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string, b Bootstrap) error {
	version = v
	bootstrap = b
	return rootCmd.ExecuteContext(ctx)
}

// SetServices injects the services directly.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	exportService = s.Export
	adapterRegistry = s.Registry
	clipboardWriter = s.Clipboard
	if s.Settings != nil {
		settings = s.Settings
	}
}

func defaultSettings() *domain.Settings {
	s := domain.DefaultSettings()
	return &s
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if !verbose {
		logger.SetWarnHook(func(msg string) {
			cmd.PrintErrf("warning: %s\n", msg)
		})
	} else {
		logger.SetWarnHook(nil)
	}

	if bootstrap == nil || exportService != nil {
		return nil
	}
	s, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}
