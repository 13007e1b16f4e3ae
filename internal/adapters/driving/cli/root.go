// Package cli provides the lumen command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lumenchat/lumen/internal/core/ports/driving"
	"github.com/lumenchat/lumen/internal/core/services"
	"github.com/lumenchat/lumen/internal/logger"
)

// Services injected by main before Execute. Commands check for nil and
// fail with a clear error so partially configured setups degrade politely.
var (
	indexerService  driving.Indexer
	answererService driving.Answerer
	settingsService *services.Settings
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Local retrieval engine for the Lumen chat product",
	Long: `Lumen indexes your local files into a chunk store and answers
questions grounded in that indexed content, with source citations.

Index some files, then ask:

  lumen index ./notes
  lumen ask "what did I write about deployment?"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging to stderr")
}

// SetServices injects the application services used by the commands.
func SetServices(indexer driving.Indexer, answerer driving.Answerer, settings *services.Settings) {
	indexerService = indexer
	answererService = answerer
	settingsService = settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
