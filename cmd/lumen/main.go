// Command lumen is the command-line surface of the Lumen retrieval core.
package main

import (
	"fmt"
	"os"

	"github.com/lumenchat/lumen/internal/adapters/driven/ai"
	configfile "github.com/lumenchat/lumen/internal/adapters/driven/config/file"
	"github.com/lumenchat/lumen/internal/adapters/driven/storage/sqlite"
	"github.com/lumenchat/lumen/internal/adapters/driving/cli"
	"github.com/lumenchat/lumen/internal/core/services"
	"github.com/lumenchat/lumen/internal/ratelimit"
	"github.com/lumenchat/lumen/internal/segmenter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore(os.Getenv("LUMEN_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("failed to open configuration: %w", err)
	}
	settings := services.NewSettings(configStore)

	store, err := sqlite.NewStore(os.Getenv("LUMEN_DATA_DIR"))
	if err != nil {
		return fmt.Errorf("failed to open chunk store: %w", err)
	}
	defer store.Close()

	rag := settings.RAG()
	seg, err := segmenter.New(segmenter.Config{
		TargetChunkSize:            rag.ChunkSize,
		OverlapSize:                rag.ChunkOverlap,
		RespectParagraphBoundaries: true,
		RespectSentenceBoundaries:  true,
	})
	if err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}

	// Provider failures must not block commands that do not need the
	// provider, like config or stats.
	embedder, err := ai.CreateAndValidateEmbeddingService(settings.Embedding())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	llm, err := ai.CreateAndValidateLLMService(settings.LLM())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if llm != nil {
		defer llm.Close()
	}
	if embedder != nil {
		defer embedder.Close()
	}

	limiter := ratelimit.New(ratelimit.DefaultConfig)

	indexer := services.NewIndexer(seg, embedder, store)
	retriever := services.NewRetriever(store, embedder)
	reranker := services.NewReranker(llm, limiter)

	llmSettings := settings.LLM()
	answerer := services.NewAnswerer(retriever, reranker, llm, limiter, services.Config{
		MaxTokens:   llmSettings.MaxTokens,
		Temperature: llmSettings.Temperature,
	})

	cli.SetServices(indexer, answerer, settings)
	return cli.Execute()
}
