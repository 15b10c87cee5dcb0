package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

var (
	extractFlags    outputFlags
	extractHTMLFile string
	extractCookie   string
	extractStorage  map[string]string
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Export the conversation at a URL",
	Long: `Extracts the conversation, issue or pull request at the URL and prints it
as Markdown.

Chat platforms need the session of a signed-in browser. Pass it with
--cookie and --storage, or store it under [sessions.<platform>] in the
config file. Gemini reads the conversation from the page itself, so it
needs --html with a saved copy of the page.

Examples:
  ctxport extract https://chatgpt.com/c/abc123 --cookie "$COOKIES" --copy
  ctxport extract https://github.com/owner/repo/pull/42 --format compact
  ctxport extract https://gemini.google.com/app/abc --html page.html`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractFlags.bind(extractCmd)
	extractCmd.Flags().StringVar(&extractHTMLFile, "html", "", "file holding the serialised page HTML")
	extractCmd.Flags().StringVar(&extractCookie, "cookie", "", "document.cookie string of the page")
	extractCmd.Flags().StringToStringVar(&extractStorage, "storage", nil, "local storage entry as key=value (repeatable)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errNotConfigured
	}

	opts, err := extractFlags.options()
	if err != nil {
		return err
	}

	page := domain.Page{
		URL:          args[0],
		Cookies:      extractCookie,
		LocalStorage: extractStorage,
	}
	if extractHTMLFile != "" {
		data, err := os.ReadFile(extractHTMLFile)
		if err != nil {
			return fmt.Errorf("reading page snapshot: %w", err)
		}
		page.HTML = string(data)
	}

	_, res, err := exportService.Export(cmd.Context(), page, opts)
	if err != nil {
		return err
	}
	return extractFlags.deliver(cmd, res)
}
