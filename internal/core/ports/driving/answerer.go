package driving

import (
	"context"

	"github.com/lumenchat/lumen/internal/core/domain"
)

// AnswerOptions configures one grounded answering request.
type AnswerOptions struct {
	// TopK is the number of hits used to ground the answer.
	TopK int

	// Strategy selects how retrieved candidates are reranked.
	Strategy domain.RerankStrategy

	// MaxAttempts bounds the citation-enforced generation loop.
	// Only used by AnswerWithCitations.
	MaxAttempts int
}

// Answerer produces grounded, citation-bearing answers from indexed chunks.
type Answerer interface {
	// Answer retrieves, reranks, and generates a grounded answer.
	// Returns domain.ErrNoRelevantContext when nothing can ground it.
	Answer(ctx context.Context, question string, opts AnswerOptions) (*domain.RAGAnswer, error)

	// AnswerWithCitations behaves like Answer but validates that the
	// generated text cites its sources, regenerating up to MaxAttempts
	// before returning domain.ErrNoRelevantContext.
	AnswerWithCitations(ctx context.Context, question string, opts AnswerOptions) (*domain.RAGAnswer, error)

	// AnswerBaseline answers without retrieval. It exists purely for
	// comparison instrumentation.
	AnswerBaseline(ctx context.Context, question string) (*domain.RAGAnswer, error)
}
