package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rawCmd = &cobra.Command{
	Use:   "raw <file>",
	Short: "Print a template's source without rendering it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func runRaw(cmd *cobra.Command, args []string) error {
	p, err := loadPorter()
	if err != nil {
		return fmt.Errorf("failed to load porter: %w", err)
	}

	controller, err := p.SavedController(args[0])
	if err != nil {
		return err
	}

	source, err := controller.RawTemplate()
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), source)
	return err
}
