package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenchat/lumen/internal/loader"
	"github.com/lumenchat/lumen/internal/logger"
	"github.com/lumenchat/lumen/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]...",
	Short: "Watch directories and re-index files as they change",
	Long: `Watches the given directories recursively and re-indexes files
when they are created or modified. Rapid write bursts from editors are
debounced; removed files have their chunks deleted. Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var (
	watchExtensions []string
	watchDebounce   time.Duration
)

func init() {
	watchCmd.Flags().StringSliceVarP(&watchExtensions, "ext", "e", nil,
		"File extensions to watch (default: markdown, text, and common code files)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"Quiet period before a changed file is re-indexed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extensions := watchExtensions
	if len(extensions) == 0 {
		extensions = loader.DefaultExtensions()
	}

	w := watcher.New(watcher.Config{
		Roots:      args,
		Extensions: extensions,
		Debounce:   watchDebounce,
		OnIndex: func(path string) {
			doc, err := loader.Load(path)
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return
			}
			count, err := indexerService.IndexDocument(context.Background(), doc)
			if err != nil {
				cmd.PrintErrf("Failed to index %s: %v\n", path, err)
				return
			}
			cmd.Printf("Indexed %s (%d chunks)\n", path, count)
		},
		OnRemove: func(path string) {
			if err := indexerService.RemoveSource(context.Background(), path); err != nil {
				cmd.PrintErrf("Failed to remove %s: %v\n", path, err)
				return
			}
			cmd.Printf("Removed %s\n", path)
		},
	})

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	cmd.Printf("Watching %d paths. Press Ctrl+C to stop.\n", len(args))
	<-ctx.Done()
	cmd.Println("\nStopping.")
	return nil
}
