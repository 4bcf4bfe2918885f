package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/conneroisu/porter/internal/template"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a template with variables",
	Long: `Render a template file from the template directory and print the result.

Variables given with --var are decoded as YAML scalars, so numbers and
booleans keep their type. A --vars-file (YAML or JSON mapping) is applied
first and --var values override it.

Examples:
  porter render test/render.php --var string=testing --var int=123
  porter render page.html --vars-file vars.yaml --out public/page.html
  porter render page.html --fresh                  # bypass the saved handle`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var (
	renderVars     = newVarsValue()
	renderVarsFile string
	renderOut      string
	renderFresh    bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().VarP(renderVars, "var", "v", "template variable (repeatable)")
	renderCmd.Flags().StringVarP(&renderVarsFile, "vars-file", "f", "", "YAML or JSON file of template variables")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "write the result to a file instead of stdout")
	renderCmd.Flags().BoolVar(&renderFresh, "fresh", false, "use a new handle instead of the saved one")
}

func runRender(cmd *cobra.Command, args []string) error {
	p, err := loadPorter()
	if err != nil {
		return fmt.Errorf("failed to load porter: %w", err)
	}

	open := p.SavedController
	if renderFresh {
		open = p.NewController
	}
	controller, err := open(args[0])
	if err != nil {
		return err
	}

	if err := applyVariables(controller, renderVarsFile, renderVars); err != nil {
		return err
	}

	return renderTo(controller, renderOut, cmd.OutOrStdout())
}

// applyVariables sets the variables from varsFile and then vars on controller
func applyVariables(controller *template.Controller, varsFile string, vars *varsValue) error {
	if varsFile != "" {
		fileVars, err := loadVarsFile(varsFile)
		if err != nil {
			return err
		}
		controller.SetVariables(fileVars)
	}
	controller.SetVariables(vars.Map())
	return nil
}

// renderTo renders controller into the file out, or to w when out is empty
func renderTo(controller *template.Controller, out string, w io.Writer) error {
	output, err := controller.RenderedTemplate()
	if err != nil {
		return err
	}

	if out != "" {
		if err := atomic.WriteFile(out, strings.NewReader(output)); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		return nil
	}

	_, err = fmt.Fprint(w, output)
	return err
}
