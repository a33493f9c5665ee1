package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/xaml-go/xaml"
)

func newWatchCmd(a *app) *cobra.Command {
	var outDir string
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Render the Xaml documents of a directory whenever they change",
		Long: `Watch renders every *.xaml file of DIR once and again after each change, writing page.xaml
to page.html or page.xml next to it or in --out-dir. Render errors are logged and do not stop watching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watcher{
				dir:      args[0],
				debounce: debounce,
				logger:   a.logger,
				render: func(path string) (string, error) {
					return a.renderFile(path, outDir)
				},
			}
			return w.run(ctx, nil)
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory of rendered files (default is next to the document)")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "delay grouping rapid changes into one render")
	return cmd
}

// renderFile renders all pages of a document to its output file and returns the output path.
func (a *app) renderFile(path, outDir string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	s, err := xaml.Decode(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	doc, err := xaml.Parse(xaml.SplitLines(s), a.parseOptions()...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	buf := &bytes.Buffer{}
	if err := a.renderPages(buf, doc.Pages, ""); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	out := outputPath(path, outDir, doc)
	return out, os.WriteFile(out, buf.Bytes(), 0o644)
}

type watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	render   func(path string) (string, error)
}

// run renders all documents and then watches the directory until ctx is done. Ready is closed once
// the directory is being watched.
func (w *watcher) run(ctx context.Context, ready chan<- struct{}) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	paths, err := filepath.Glob(filepath.Join(w.dir, "*.xaml"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		w.renderLogged(path)
	}
	w.logger.Info("watching for changes", "dir", w.dir, "documents", len(paths))
	if ready != nil {
		close(ready)
	}

	pending := map[string]bool{}
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".xaml" || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			for _, path := range changed {
				w.renderLogged(path)
			}
			pending = map[string]bool{}
		}
	}
}

func (w *watcher) renderLogged(path string) {
	start := time.Now()
	out, err := w.render(path)
	if err != nil {
		w.logger.Error("render failed", "file", path, "error", err)
		return
	}
	w.logger.Info("rendered document", "file", path, "output", out, "duration", time.Since(start))
}
