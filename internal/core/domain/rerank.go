package domain

import "fmt"

// RerankKind identifies a reranking strategy.
type RerankKind string

// Available reranking strategies.
const (
	// RerankNone passes retrieved hits through unchanged, truncated to K.
	RerankNone RerankKind = "none"

	// RerankThreshold keeps hits at or above a fixed similarity score.
	RerankThreshold RerankKind = "threshold"

	// RerankAdaptive derives the threshold from the score distribution.
	RerankAdaptive RerankKind = "adaptive"

	// RerankLLMJudged asks an LLM to score each candidate for relevance.
	RerankLLMJudged RerankKind = "llm"
)

// RerankStrategy is a stateless value selecting how retrieved candidates
// are re-scored and filtered. MinScore is only meaningful for the
// threshold kind.
type RerankStrategy struct {
	// Kind selects the strategy.
	Kind RerankKind

	// MinScore is the minimum similarity for the threshold strategy.
	MinScore float64
}

// NoRerank returns the passthrough strategy.
func NoRerank() RerankStrategy {
	return RerankStrategy{Kind: RerankNone}
}

// ThresholdRerank returns a fixed-threshold strategy.
func ThresholdRerank(minScore float64) RerankStrategy {
	return RerankStrategy{Kind: RerankThreshold, MinScore: minScore}
}

// AdaptiveRerank returns the distribution-derived threshold strategy.
func AdaptiveRerank() RerankStrategy {
	return RerankStrategy{Kind: RerankAdaptive}
}

// LLMJudgedRerank returns the LLM-scored strategy.
func LLMJudgedRerank() RerankStrategy {
	return RerankStrategy{Kind: RerankLLMJudged}
}

// IsValid returns true if the strategy kind is recognised.
func (s RerankStrategy) IsValid() bool {
	switch s.Kind {
	case RerankNone, RerankThreshold, RerankAdaptive, RerankLLMJudged:
		return true
	default:
		return false
	}
}

// RequiresLLM returns true if this strategy needs an LLM provider.
func (s RerankStrategy) RequiresLLM() bool {
	return s.Kind == RerankLLMJudged
}

// String returns the string representation.
func (s RerankStrategy) String() string {
	if s.Kind == RerankThreshold {
		return fmt.Sprintf("threshold(%.2f)", s.MinScore)
	}
	return string(s.Kind)
}

// ParseRerankKind converts a user-supplied name into a RerankKind.
func ParseRerankKind(name string) (RerankKind, error) {
	switch RerankKind(name) {
	case RerankNone, RerankThreshold, RerankAdaptive, RerankLLMJudged:
		return RerankKind(name), nil
	default:
		return "", fmt.Errorf("%w: unknown rerank strategy %q", ErrInvalidInput, name)
	}
}
