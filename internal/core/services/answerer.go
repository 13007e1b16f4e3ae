package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
	"github.com/lumenchat/lumen/internal/core/ports/driving"
	"github.com/lumenchat/lumen/internal/logger"
	"github.com/lumenchat/lumen/internal/ratelimit"
)

// Ensure Answerer implements the interface.
var _ driving.Answerer = (*Answerer)(nil)

// Default generation parameters, overridable via Config.
const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
	defaultMaxAttempts = 3
)

// sourceMarkerPattern recognises citation markers like "[Source 2]" or
// "[Source 2: notes.md]" in generated answers.
var sourceMarkerPattern = regexp.MustCompile(`\[Source (\d+)(?::[^\]]*)?\]`)

// CitationValidator checks that an answer references its sources in a
// recognisable, enumerable form.
type CitationValidator interface {
	// Validate inspects the answer text against the hits it was grounded on.
	Validate(answer string, hits []domain.SearchHit) domain.CitationValidation
}

// Config tunes answer generation.
type Config struct {
	// MaxTokens caps generated answer length.
	MaxTokens int

	// Temperature controls generation randomness.
	Temperature float64
}

// Answerer builds grounded prompts, calls the LLM capability, validates
// citations, and retries generation within a bound.
type Answerer struct {
	retriever   *Retriever
	reranker    *Reranker
	llm         driven.LLMService
	limiter     *ratelimit.Limiter
	validator   CitationValidator
	maxTokens   int
	temperature float64
}

// NewAnswerer creates an answer generator. The limiter is the shared
// rate-limiting collaborator guarding all LLM calls.
func NewAnswerer(
	retriever *Retriever,
	reranker *Reranker,
	llm driven.LLMService,
	limiter *ratelimit.Limiter,
	cfg Config,
) *Answerer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	return &Answerer{
		retriever:   retriever,
		reranker:    reranker,
		llm:         llm,
		limiter:     limiter,
		validator:   &markerValidator{},
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// SetCitationValidator replaces the default marker-based validator.
func (a *Answerer) SetCitationValidator(v CitationValidator) {
	if v != nil {
		a.validator = v
	}
}

// Answer retrieves, reranks, and generates a grounded answer.
func (a *Answerer) Answer(
	ctx context.Context, question string, opts driving.AnswerOptions,
) (*domain.RAGAnswer, error) {
	started := time.Now()

	hits, err := a.retrieveAndRerank(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	text, err := a.generate(ctx, question, hits)
	if err != nil {
		return nil, err
	}

	logger.Elapsed("Grounded answer", started)
	return &domain.RAGAnswer{
		AnswerText: text,
		SourceHits: hits,
		Question:   question,
		Elapsed:    time.Since(started),
	}, nil
}

// AnswerWithCitations generates with citation enforcement: retrieval runs
// once, then generation repeats up to MaxAttempts until the answer carries
// recognisable citations. Exhausting the budget without a valid answer
// raises domain.ErrNoRelevantContext.
func (a *Answerer) AnswerWithCitations(
	ctx context.Context, question string, opts driving.AnswerOptions,
) (*domain.RAGAnswer, error) {
	started := time.Now()

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	hits, err := a.retrieveAndRerank(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := a.generate(ctx, question, hits)
		if err != nil {
			return nil, err
		}

		validation := a.validator.Validate(text, hits)
		logger.Debug("Citation validation attempt %d/%d: valid=%t score=%.2f",
			attempt, maxAttempts, validation.Valid, validation.Score)

		if validation.Valid {
			logger.Elapsed("Cited answer", started)
			return &domain.RAGAnswer{
				AnswerText: text,
				SourceHits: hits,
				Question:   question,
				Elapsed:    time.Since(started),
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: no adequately cited answer after %d attempts",
		domain.ErrNoRelevantContext, maxAttempts)
}

// AnswerBaseline answers without retrieval, purely for comparison
// instrumentation against the grounded path.
func (a *Answerer) AnswerBaseline(ctx context.Context, question string) (*domain.RAGAnswer, error) {
	started := time.Now()

	text, err := a.complete(ctx, question)
	if err != nil {
		return nil, err
	}

	return &domain.RAGAnswer{
		AnswerText: text,
		SourceHits: nil,
		Question:   question,
		Elapsed:    time.Since(started),
	}, nil
}

// retrieveAndRerank fetches candidates and reranks them down to TopK.
// LLM-judged reranking retrieves a wider candidate pool.
func (a *Answerer) retrieveAndRerank(
	ctx context.Context, question string, opts driving.AnswerOptions,
) ([]domain.SearchHit, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	fetch := topK
	if opts.Strategy.Kind == domain.RerankLLMJudged {
		fetch = llmJudgeCandidateCap
	}

	candidates, err := a.retriever.Search(ctx, question, fetch)
	if err != nil {
		return nil, err
	}

	hits, err := a.reranker.Rerank(ctx, question, candidates, opts.Strategy, topK)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: no indexed content matched the question",
			domain.ErrNoRelevantContext)
	}
	return hits, nil
}

// generate builds the grounding prompt and calls the LLM capability.
func (a *Answerer) generate(ctx context.Context, question string, hits []domain.SearchHit) (string, error) {
	prompt := buildGroundedPrompt(question, hits)
	return a.complete(ctx, prompt)
}

func (a *Answerer) complete(ctx context.Context, prompt string) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	if a.limiter != nil {
		if err := a.limiter.WaitN(ctx, ratelimit.EstimateTokens(prompt)); err != nil {
			return "", err
		}
	}

	text, err := a.llm.Complete(ctx, prompt, driven.CompleteOptions{
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// buildGroundedPrompt constructs a strict grounding prompt: answer only
// from the provided context, cite a source marker after every claim, and
// finish with an enumerated sources section.
func buildGroundedPrompt(question string, hits []domain.SearchHit) string {
	var b strings.Builder

	b.WriteString("Answer the question using ONLY the context below.\n")
	b.WriteString("After every claim, cite the supporting source with its marker, e.g. [Source 1].\n")
	b.WriteString("If the context does not contain the answer, say so instead of guessing.\n")
	b.WriteString("End your answer with a \"Sources:\" section listing every source you cited.\n\n")
	b.WriteString("Context:\n\n")

	for _, hit := range hits {
		fmt.Fprintf(&b, "[Source %d: %s] (similarity: %.1f%%)\n%s\n\n",
			hit.Rank, hit.Chunk.SourceName, hit.Similarity*100, cleanContent(hit.Chunk.Content))
	}

	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

// cleanContent collapses runs of whitespace so context blocks stay compact.
func cleanContent(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// markerValidator is the default CitationValidator: the answer must cite at
// least one marker that refers to an available source. Score is the
// fraction of available sources cited.
type markerValidator struct{}

var _ CitationValidator = (*markerValidator)(nil)

// Validate implements CitationValidator.
func (markerValidator) Validate(answer string, hits []domain.SearchHit) domain.CitationValidation {
	if len(hits) == 0 {
		return domain.CitationValidation{}
	}

	cited := make(map[int]bool)
	for _, match := range sourceMarkerPattern.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if n >= 1 && n <= len(hits) {
			cited[n] = true
		}
	}

	return domain.CitationValidation{
		Valid: len(cited) > 0,
		Score: float64(len(cited)) / float64(len(hits)),
	}
}
