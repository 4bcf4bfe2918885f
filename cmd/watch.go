package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/porter/internal/config"
	"github.com/conneroisu/porter/internal/file"
	"github.com/conneroisu/porter/internal/logging"
	"github.com/conneroisu/porter/internal/template"
	"github.com/conneroisu/porter/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the template directory and re-render on changes",
	Long: `Watch the template directory and drop compiled templates when their
files change, including templates that include a changed file. With
--render, the named template is rendered once at start and again after
every batch of changes, keeping the variables given with --var and
--vars-file. Runs until interrupted.

Examples:
  porter watch
  porter watch --ext html --ext php   # only react to these extensions
  porter watch --render page.html --var title=Home --out public/index.html`,
	RunE: runWatch,
}

var (
	watchExtensions []string
	watchRender     string
	watchOut        string
	watchVars       = newVarsValue()
	watchVarsFile   string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchExtensions, "ext", nil, "only watch files with these extensions")
	watchCmd.Flags().StringVarP(&watchRender, "render", "r", "", "template to re-render after each change")
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "write re-rendered output to a file instead of stdout")
	watchCmd.Flags().VarP(watchVars, "var", "v", "template variable for --render (repeatable)")
	watchCmd.Flags().StringVarP(&watchVarsFile, "vars-file", "f", "", "YAML or JSON file of variables for --render")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	p, err := loadPorter()
	if err != nil {
		return fmt.Errorf("failed to load porter: %w", err)
	}

	files, ok := p.Files().(*file.Porter)
	if !ok {
		return fmt.Errorf("template provider does not support invalidation")
	}

	logger := logging.NewLogger(cfg.Log.LoggerConfig()).WithComponent("watch")

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.NoBackupFilter)
	if len(watchExtensions) > 0 {
		fileWatcher.AddFilter(watcher.ExtensionFilter(watchExtensions...))
	}
	fileWatcher.AddHandler(watcher.InvalidateHandler(files, logger))

	if watchRender != "" {
		controller, err := p.SavedController(watchRender)
		if err != nil {
			return err
		}
		if err := applyVariables(controller, watchVarsFile, watchVars); err != nil {
			return err
		}
		if err := renderTo(controller, watchOut, cmd.OutOrStdout()); err != nil {
			return err
		}
		fileWatcher.AddHandler(rerenderHandler(controller, watchOut, cmd.OutOrStdout(), logger))
	}

	if err := fileWatcher.AddRecursive(p.TemplateDir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", p.TemplateDir(), err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	logger.Info(ctx, "Watching templates", "dir", p.TemplateDir(), "render", watchRender)
	<-ctx.Done()
	logger.Info(context.Background(), "Stopping watcher")
	return nil
}

// rerenderHandler renders controller again after every batch of changes.
// It must run after the invalidation handler.
func rerenderHandler(controller *template.Controller, out string, w io.Writer, logger logging.Logger) watcher.ChangeHandler {
	return func(events []watcher.ChangeEvent) error {
		if err := renderTo(controller, out, w); err != nil {
			return fmt.Errorf("re-render %s: %w", controller.ID(), err)
		}
		logger.Info(context.Background(), "Re-rendered template",
			"template_id", controller.ID(),
			"changes", len(events),
		)
		return nil
	}
}
