package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete indexed chunks",
	Long: `Deletes indexed chunks. With --source, only the chunks indexed
from that path are removed; otherwise the whole index is wiped, which
requires --force.`,
	RunE: runWipe,
}

var (
	wipeSource string
	wipeForce  bool
)

func init() {
	wipeCmd.Flags().StringVar(&wipeSource, "source", "", "Only remove chunks indexed from this path")
	wipeCmd.Flags().BoolVarP(&wipeForce, "force", "f", false, "Confirm wiping the entire index")
	rootCmd.AddCommand(wipeCmd)
}

func runWipe(cmd *cobra.Command, _ []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	ctx := context.Background()

	if wipeSource != "" {
		if err := indexerService.RemoveSource(ctx, wipeSource); err != nil {
			return fmt.Errorf("failed to remove source: %w", err)
		}
		cmd.Printf("Removed chunks for %s.\n", wipeSource)
		return nil
	}

	if !wipeForce {
		return errors.New("refusing to wipe the entire index without --force")
	}

	if err := indexerService.Wipe(ctx); err != nil {
		return fmt.Errorf("failed to wipe index: %w", err)
	}
	cmd.Println("Index wiped.")
	return nil
}
