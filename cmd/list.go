package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/porter/internal/file"
	"github.com/conneroisu/porter/internal/porter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List template files in the template directory",
	Long: `List every template file under the template directory with the
identifier it is cached under.

Examples:
  porter list                  # table output
  porter list --format json    # JSON output
  porter list --format yaml    # YAML output`,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
}

// listEntry is the serialized form of a listed template
type listEntry struct {
	Path     string `json:"path" yaml:"path"`
	ID       string `json:"id" yaml:"id"`
	Size     int64  `json:"size" yaml:"size"`
	Modified string `json:"modified" yaml:"modified"`
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := loadPorter()
	if err != nil {
		return fmt.Errorf("failed to load porter: %w", err)
	}

	files, ok := p.Files().(*file.Porter)
	if !ok {
		return fmt.Errorf("template provider does not support listing")
	}

	infos, err := files.List()
	if err != nil {
		return err
	}

	switch listFormat {
	case "table":
		return outputListTable(cmd.OutOrStdout(), p.TemplateDir(), infos)
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(listEntries(infos))
	case "yaml":
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		if err := encoder.Encode(listEntries(infos)); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", listFormat)
	}
}

func listEntries(infos []file.Info) []listEntry {
	entries := make([]listEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, listEntry{
			Path:     info.RelPath,
			ID:       porter.IDFromFilename(info.RelPath),
			Size:     info.Size,
			Modified: info.ModTime.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return entries
}

func outputListTable(out io.Writer, dir string, infos []file.Info) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintf(out, "No templates found in %s\n", dir)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tID\tSIZE\tMODIFIED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			info.RelPath,
			porter.IDFromFilename(info.RelPath),
			humanize.Bytes(uint64(info.Size)),
			humanize.Time(info.ModTime),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d template(s)\n", len(infos))
	return err
}
