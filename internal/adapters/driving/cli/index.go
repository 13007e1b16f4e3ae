package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/loader"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]...",
	Short: "Index files or directories",
	Long: `Segments, embeds, and stores the given files. Directories are
walked recursively; re-indexing a file fully replaces its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

// indexExtensions is a flag limiting which file types are indexed.
var indexExtensions []string

func init() {
	indexCmd.Flags().StringSliceVarP(&indexExtensions, "ext", "e", nil,
		"File extensions to index (default: markdown, text, and common code files)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	ctx := context.Background()

	var docs []domain.SourceDocument
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.IsDir() {
			loaded, err := loader.LoadDir(path, indexExtensions)
			if err != nil {
				return fmt.Errorf("failed to load directory %s: %w", path, err)
			}
			docs = append(docs, loaded...)
			continue
		}

		doc, err := loader.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		cmd.Println("No matching files found.")
		return nil
	}

	cmd.Printf("Indexing %d files...\n", len(docs))

	stats, err := indexerService.IndexAll(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d documents (%d chunks).\n", stats.DocumentsIndexed, stats.ChunksProduced)
	if len(stats.FailedFiles) > 0 {
		cmd.Printf("Failed to index %d files:\n", len(stats.FailedFiles))
		for _, f := range stats.FailedFiles {
			cmd.Printf("  %s\n", f)
		}
	}

	return nil
}
