package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxport/internal/connectors/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Work with declarative platform manifests",
	Long: `Declarative manifests describe a chat platform in YAML. Files placed in
the manifest directory (manifest_dir in the config file) are registered
next to the built-in adapters.`,
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate manifest files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runManifestValidate,
}

func init() {
	manifestCmd.AddCommand(manifestValidateCmd)
	rootCmd.AddCommand(manifestCmd)
}

func runManifestValidate(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		m, err := manifest.LoadFile(path)
		if err != nil {
			return err
		}
		cmd.Printf("%s: ok (%s %s, provider %s)\n", path, m.ID, m.Version, m.Provider)
	}
	return nil
}
