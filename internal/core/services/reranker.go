package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
	"github.com/lumenchat/lumen/internal/logger"
	"github.com/lumenchat/lumen/internal/ratelimit"
)

// llmJudgeCandidateCap bounds the number of candidates sent to the LLM in
// one scoring prompt.
const llmJudgeCandidateCap = 15

// adaptiveFloor is the lowest threshold the adaptive strategy will use.
const adaptiveFloor = 0.3

// Blend weights for LLM-judged scores.
const (
	similarityWeight = 0.4
	llmScoreWeight   = 0.6
)

// judgeExcerptLimit caps per-candidate content in the scoring prompt.
const judgeExcerptLimit = 400

// scoreArrayPattern extracts a bracketed integer array from a free-form
// LLM reply, e.g. "[8, 3, 10]".
var scoreArrayPattern = regexp.MustCompile(`\[\s*\d+(?:\s*,\s*\d+)*\s*\]`)

// Reranker re-scores and filters retrieved candidates. Statistical
// strategies always degrade gracefully; only the LLM-judged strategy can
// fail hard.
type Reranker struct {
	llm     driven.LLMService
	limiter *ratelimit.Limiter
}

// NewReranker creates a reranker. The LLM service may be nil when only
// statistical strategies are used; the limiter is the shared rate-limiting
// collaborator guarding all LLM calls.
func NewReranker(llm driven.LLMService, limiter *ratelimit.Limiter) *Reranker {
	return &Reranker{llm: llm, limiter: limiter}
}

// Rerank applies the strategy to the candidates and returns at most k hits
// with ranks reassigned. When candidates exist, threshold-style strategies
// never return empty: an empty filter result falls back to the unfiltered
// top k.
func (r *Reranker) Rerank(
	ctx context.Context,
	question string,
	candidates []domain.SearchHit,
	strategy domain.RerankStrategy,
	k int,
) ([]domain.SearchHit, error) {
	logger.Section("Reranking")
	logger.Debug("Strategy: %s, candidates: %d, k: %d", strategy, len(candidates), k)

	if len(candidates) == 0 || k <= 0 {
		return nil, nil
	}

	switch strategy.Kind {
	case domain.RerankNone:
		return takeRanked(cloneHits(candidates), k), nil

	case domain.RerankThreshold:
		return r.thresholdRerank(candidates, strategy.MinScore, k), nil

	case domain.RerankAdaptive:
		return r.adaptiveRerank(candidates, k), nil

	case domain.RerankLLMJudged:
		return r.llmRerank(ctx, question, candidates, k)

	default:
		return nil, fmt.Errorf("%w: unknown rerank strategy %q", domain.ErrInvalidInput, strategy.Kind)
	}
}

// thresholdRerank keeps hits at or above minScore; when none qualify it
// falls back to the unfiltered top k rather than silently returning empty.
func (r *Reranker) thresholdRerank(candidates []domain.SearchHit, minScore float64, k int) []domain.SearchHit {
	kept := make([]domain.SearchHit, 0, len(candidates))
	for _, hit := range candidates {
		if hit.Similarity >= minScore {
			kept = append(kept, hit)
		}
	}

	if len(kept) == 0 {
		logger.Debug("No candidate cleared threshold %.3f, falling back to top %d", minScore, k)
		kept = cloneHits(candidates)
	}

	return takeRanked(kept, k)
}

// adaptiveRerank derives the threshold from the score distribution:
// max(adaptiveFloor, mean - 0.5*stddev).
func (r *Reranker) adaptiveRerank(candidates []domain.SearchHit, k int) []domain.SearchHit {
	mean, stddev := scoreStats(candidates)
	threshold := mean - 0.5*stddev
	if threshold < adaptiveFloor {
		threshold = adaptiveFloor
	}
	logger.Debug("Adaptive threshold: %.3f (mean %.3f, stddev %.3f)", threshold, mean, stddev)

	return r.thresholdRerank(candidates, threshold, k)
}

// llmRerank asks the LLM to score each candidate 0-10 for relevance and
// blends the normalised score with the original similarity.
func (r *Reranker) llmRerank(
	ctx context.Context, question string, candidates []domain.SearchHit, k int,
) ([]domain.SearchHit, error) {
	if r.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerankingFailed, domain.ErrLLMUnavailable)
	}

	capped := cloneHits(candidates)
	if len(capped) > llmJudgeCandidateCap {
		capped = capped[:llmJudgeCandidateCap]
	}

	prompt := buildJudgePrompt(question, capped)

	if r.limiter != nil {
		if err := r.limiter.WaitN(ctx, ratelimit.EstimateTokens(prompt)); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRerankingFailed, err)
		}
	}

	reply, err := r.llm.Complete(ctx, prompt, driven.CompleteOptions{
		MaxTokens:   200,
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerankingFailed, err)
	}

	scores := parseJudgeScores(reply, len(capped))

	for i := range capped {
		capped[i].Similarity = similarityWeight*capped[i].Similarity + llmScoreWeight*scores[i]
	}

	sort.SliceStable(capped, func(i, j int) bool {
		return capped[i].Similarity > capped[j].Similarity
	})

	return takeRanked(capped, k), nil
}

// buildJudgePrompt constructs a single scoring prompt over all candidates.
func buildJudgePrompt(question string, hits []domain.SearchHit) string {
	var b strings.Builder
	b.WriteString("Rate how relevant each passage is to the question on a scale of 0 to 10.\n")
	b.WriteString("Reply with ONLY a JSON array of integers, one per passage, in order.\n")
	b.WriteString("Example: [8, 3, 10]\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", question)

	for i, hit := range hits {
		excerpt := hit.Chunk.Content
		if len(excerpt) > judgeExcerptLimit {
			excerpt = excerpt[:judgeExcerptLimit]
		}
		fmt.Fprintf(&b, "Passage %d:\n%s\n\n", i+1, excerpt)
	}

	return b.String()
}

// parseJudgeScores extracts a bracketed integer array from the reply and
// normalises each score to [0, 1]. On any parse failure it substitutes a
// synthetic decreasing score rather than failing the rerank.
func parseJudgeScores(reply string, count int) []float64 {
	scores := make([]float64, count)

	match := scoreArrayPattern.FindString(reply)
	if match != "" {
		parts := strings.Split(strings.Trim(match, "[]"), ",")
		if len(parts) == count {
			parsed := true
			for i, part := range parts {
				n, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					parsed = false
					break
				}
				score := float64(n) / 10.0
				scores[i] = math.Min(math.Max(score, 0), 1)
			}
			if parsed {
				return scores
			}
		}
	}

	logger.Warn("Could not parse judge scores from reply, using synthetic ordering")
	for i := range scores {
		scores[i] = 1.0 - float64(i)*0.05
	}
	return scores
}

// scoreStats returns the mean and standard deviation of the candidates'
// similarity scores.
func scoreStats(hits []domain.SearchHit) (mean, stddev float64) {
	if len(hits) == 0 {
		return 0, 0
	}

	for _, hit := range hits {
		mean += hit.Similarity
	}
	mean /= float64(len(hits))

	var variance float64
	for _, hit := range hits {
		d := hit.Similarity - mean
		variance += d * d
	}
	variance /= float64(len(hits))

	return mean, math.Sqrt(variance)
}

// cloneHits copies the slice so reranking never mutates the caller's hits.
func cloneHits(hits []domain.SearchHit) []domain.SearchHit {
	out := make([]domain.SearchHit, len(hits))
	copy(out, hits)
	return out
}
