package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

var fetchFlags outputFlags

var fetchCmd = &cobra.Command{
	Use:   "fetch <platform> <id>...",
	Short: "Fetch conversations by ID",
	Long: `Fetches conversations by ID using the session stored for the platform.
More than one ID produces a single merged document. IDs are fetched one
after another, batch_interval_ms apart.

Examples:
  ctxport fetch chatgpt 6745f0c1-1d2e-8000-a1b2-c3d4e5f6a7b8
  ctxport fetch github owner/repo/issues/12 owner/repo/pull/15 -o context.md`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFetch,
}

func init() {
	fetchFlags.bind(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errNotConfigured
	}

	opts, err := fetchFlags.options()
	if err != nil {
		return err
	}

	platform, ids := args[0], args[1:]
	ctx := cmd.Context()

	if len(ids) == 1 {
		b, err := exportService.FetchByID(ctx, platform, ids[0])
		if err != nil {
			return err
		}
		return fetchFlags.deliver(cmd, exportService.Render(b, opts))
	}

	progress := func(p domain.BatchProgress) {
		cmd.PrintErrf("[%d/%d]\n", p.Current, p.Total)
	}
	result, res, err := exportService.CopyMultiple(ctx, platform, ids, opts, progress)
	if err != nil {
		return err
	}

	for _, item := range result.Items {
		if item.Err != nil {
			cmd.PrintErrf("failed %s: %v\n", item.ID, item.Err)
		}
	}
	if res == nil {
		return fmt.Errorf("all %d conversations failed", result.Total)
	}

	cmd.PrintErrf("merged %d of %d conversations\n", result.Succeeded, result.Total)
	return fetchFlags.deliver(cmd, res)
}
