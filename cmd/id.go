package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/porter/internal/porter"
)

var idCmd = &cobra.Command{
	Use:   "id <file>...",
	Short: "Print the cache identifier for template filenames",
	Long: `Print the identifier porter caches a template under. Filenames are
lower-cased and every "/", "\" and "." becomes "_", so distinct names can
share one identifier.

Examples:
  porter id Test/Render.PHP       # test_render_php`,
	Args: cobra.MinimumNArgs(1),
	RunE: runID,
}

func init() {
	rootCmd.AddCommand(idCmd)
}

func runID(cmd *cobra.Command, args []string) error {
	for _, filename := range args {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), porter.IDFromFilename(filename)); err != nil {
			return err
		}
	}
	return nil
}
