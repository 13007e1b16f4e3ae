package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lumenchat/lumen/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration. Keys use dotted paths:

  embedding.provider   ollama | openai
  embedding.model      embedding model name
  embedding.api_key    API key for cloud providers
  llm.provider         ollama | openai | anthropic
  llm.model            completion model name
  llm.api_key          API key for cloud providers
  rag.top_k            default number of grounding chunks
  rag.min_score        default threshold for threshold reranking
  rag.chunk_size       target chunk size in characters
  rag.chunk_overlap    overlap between consecutive chunks
  rag.max_attempts     citation-enforced generation attempts`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	embedding := settingsService.Embedding()
	llm := settingsService.LLM()
	rag := settingsService.RAG()

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, embedding.Provider, embedding.Model, embedding.APIKey, embedding.BaseURL)
	cmd.Printf("  Status: %s\n", configuredStatus(embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, llm.Provider, llm.Model, llm.APIKey, llm.BaseURL)
	cmd.Printf("  Status: %s\n", configuredStatus(llm.IsConfigured()))
	cmd.Println()

	cmd.Println("[RAG]")
	cmd.Printf("  Chunk size:    %d\n", rag.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", rag.ChunkOverlap)
	cmd.Printf("  Top K:         %d\n", rag.TopK)
	cmd.Printf("  Min score:     %.2f\n", rag.MinScore)
	cmd.Printf("  Max attempts:  %d\n", rag.MaxAttempts)

	if !embedding.IsConfigured() || !llm.IsConfigured() {
		cmd.Println()
		cmd.Println("Run 'lumen config set' to configure missing providers.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, apiKey, baseURL string) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	if model != "" {
		cmd.Printf("  Model: %s\n", model)
	}
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func configuredStatus(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, ok := settingsService.Get(args[0])
	if !ok {
		cmd.Println("(not set)")
		return nil
	}
	cmd.Printf("%v\n", value.ToAny())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, raw := args[0], args[1]
	if err := settingsService.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

// parseConfigValue infers the value variant from its text form. Booleans
// and numbers are stored typed; everything else stays a string.
func parseConfigValue(raw string) domain.Value {
	if raw == "true" || raw == "false" {
		return domain.Bool(raw == "true")
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return domain.Number(n)
	}
	return domain.String(raw)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
