package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms",
	Args:  cobra.NoArgs,
	RunE:  runPlatforms,
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

func runPlatforms(cmd *cobra.Command, _ []string) error {
	if adapterRegistry == nil {
		return errors.New("adapter registry not configured")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPLATFORM\tVERSION\tKIND\tRELIABILITY")
	for _, p := range adapterRegistry.Platforms() {
		kind := "builtin"
		if p.Declarative {
			kind = "manifest"
		}
		reliability := p.Reliability
		if reliability == "" {
			reliability = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Platform, p.Version, kind, reliability)
	}
	return w.Flush()
}
