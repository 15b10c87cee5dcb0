package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
	"github.com/custodia-labs/ctxport/internal/markdown"
)

// outputFlags are the rendering and delivery flags shared by extract and fetch.
type outputFlags struct {
	format        string
	noFrontmatter bool
	output        string
	copy          bool
}

func (f *outputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "",
		"output format: full, user-only, code-only or compact (default from config)")
	cmd.Flags().BoolVar(&f.noFrontmatter, "no-frontmatter", false, "omit the frontmatter block")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write Markdown to this file instead of stdout")
	cmd.Flags().BoolVarP(&f.copy, "copy", "c", false, "copy Markdown to the clipboard")
}

func (f *outputFlags) reset() {
	*f = outputFlags{}
}

// options merges the flags over the configured defaults.
func (f *outputFlags) options() (driving.ExportOptions, error) {
	format := settings.Format
	if f.format != "" {
		parsed, err := domain.ParseFormat(f.format)
		if err != nil {
			return driving.ExportOptions{}, err
		}
		format = parsed
	}
	frontmatter := settings.Frontmatter && !f.noFrontmatter
	return driving.ExportOptions{Format: format, IncludeFrontmatter: &frontmatter}, nil
}

// deliver writes the Markdown to a file, the clipboard or stdout and
// reports the statistics on stderr.
func (f *outputFlags) deliver(cmd *cobra.Command, res *driving.ExportResult) error {
	if f.output != "" {
		if err := os.WriteFile(f.output, []byte(res.Markdown), 0600); err != nil {
			return fmt.Errorf("writing %s: %w", f.output, err)
		}
	}
	if f.copy {
		if clipboardWriter == nil {
			return errors.New("clipboard not configured")
		}
		if err := clipboardWriter.WriteText(res.Markdown); err != nil {
			return err
		}
	}
	if f.output == "" && !f.copy {
		fmt.Fprintln(cmd.OutOrStdout(), res.Markdown)
	}

	cmd.PrintErrf("%d messages, %s tokens\n", res.MessageCount, markdown.FormatTokenCount(res.EstimatedTokens))
	return nil
}
