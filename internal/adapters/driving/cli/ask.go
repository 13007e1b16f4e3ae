package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driving"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded in indexed content",
	Long: `Retrieves the most relevant indexed chunks, reranks them, and
generates an answer grounded in that context, with source citations.

Rerank strategies:
  none       keep retrieval order, truncated to top-k
  threshold  keep hits scoring at or above --min-score
  adaptive   derive the threshold from the score distribution
  llm        ask the LLM to judge each candidate's relevance`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// Flags for the ask command. Zero values defer to configured defaults.
var (
	askTopK        int
	askStrategy    string
	askMinScore    float64
	askCitations   bool
	askMaxAttempts int
	askBaseline    bool
)

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "Number of chunks to ground the answer on (0 = configured default)")
	askCmd.Flags().StringVarP(&askStrategy, "strategy", "s", "adaptive", "Rerank strategy: none, threshold, adaptive, llm")
	askCmd.Flags().Float64VarP(&askMinScore, "min-score", "m", 0, "Similarity threshold for the threshold strategy (0 = configured default)")
	askCmd.Flags().BoolVarP(&askCitations, "citations", "c", false, "Require the answer to cite its sources, regenerating if it does not")
	askCmd.Flags().IntVarP(&askMaxAttempts, "max-attempts", "a", 0, "Generation attempts when --citations is set (0 = configured default)")
	askCmd.Flags().BoolVar(&askBaseline, "baseline", false, "Answer without retrieval, for comparison")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answererService == nil {
		return errors.New("answerer service not configured")
	}

	question := strings.Join(args, " ")
	ctx := context.Background()

	if askBaseline {
		answer, err := answererService.AnswerBaseline(ctx, question)
		if err != nil {
			return fmt.Errorf("failed to answer: %w", err)
		}
		printAnswer(cmd, answer)
		return nil
	}

	opts, err := buildAnswerOptions()
	if err != nil {
		return err
	}

	var answer *domain.RAGAnswer
	if askCitations {
		answer, err = answererService.AnswerWithCitations(ctx, question, opts)
	} else {
		answer, err = answererService.Answer(ctx, question, opts)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoRelevantContext) {
			cmd.Println("No relevant indexed content found for this question.")
			cmd.Println("Index some files first with 'lumen index <path>'.")
			return nil
		}
		return fmt.Errorf("failed to answer: %w", err)
	}

	printAnswer(cmd, answer)
	return nil
}

// buildAnswerOptions resolves flags against configured RAG defaults.
func buildAnswerOptions() (driving.AnswerOptions, error) {
	kind, err := domain.ParseRerankKind(askStrategy)
	if err != nil {
		return driving.AnswerOptions{}, err
	}

	rag := domain.DefaultRAGSettings()
	if settingsService != nil {
		rag = settingsService.RAG()
	}

	strategy := domain.RerankStrategy{Kind: kind}
	if kind == domain.RerankThreshold {
		strategy.MinScore = askMinScore
		if strategy.MinScore <= 0 {
			strategy.MinScore = rag.MinScore
		}
	}

	topK := askTopK
	if topK <= 0 {
		topK = rag.TopK
	}
	maxAttempts := askMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = rag.MaxAttempts
	}

	return driving.AnswerOptions{
		TopK:        topK,
		Strategy:    strategy,
		MaxAttempts: maxAttempts,
	}, nil
}

func printAnswer(cmd *cobra.Command, answer *domain.RAGAnswer) {
	cmd.Println(answer.AnswerText)

	if len(answer.SourceHits) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, hit := range answer.SourceHits {
			cmd.Printf("  [%d] %s (similarity: %.1f%%)\n",
				hit.Rank, hit.Chunk.SourceName, hit.Similarity*100)
		}
	}

	cmd.Printf("\nAnswered in %s\n", answer.Elapsed.Round(time.Millisecond))
}
