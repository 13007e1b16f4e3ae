// Package segmenter splits cleaned text into overlapping, boundary-aware
// segments ready for embedding.
package segmenter

import (
	"fmt"
	"strings"

	"github.com/lumenchat/lumen/internal/core/domain"
)

// DefaultTargetChunkSize is the default number of characters per segment.
const DefaultTargetChunkSize = 1000

// DefaultOverlapSize is the default number of overlapping characters.
const DefaultOverlapSize = 200

// Bounded lookback distances for boundary-aware cutting.
const (
	paragraphLookback = 200
	sentenceLookback  = 100
)

// Config controls segmentation behaviour.
type Config struct {
	// TargetChunkSize is the window size in characters.
	TargetChunkSize int

	// OverlapSize is the number of characters repeated between consecutive
	// segments. Must be smaller than TargetChunkSize.
	OverlapSize int

	// RespectParagraphBoundaries prefers cutting at blank lines.
	RespectParagraphBoundaries bool

	// RespectSentenceBoundaries prefers cutting after sentence-ending
	// punctuation when no paragraph break is found.
	RespectSentenceBoundaries bool
}

// DefaultConfig returns the segmentation defaults.
func DefaultConfig() Config {
	return Config{
		TargetChunkSize:            DefaultTargetChunkSize,
		OverlapSize:                DefaultOverlapSize,
		RespectParagraphBoundaries: true,
		RespectSentenceBoundaries:  true,
	}
}

// Segment is one bounded slice of the input text.
type Segment struct {
	// Content is the segment text.
	Content string

	// Start and End are byte offsets into the original text.
	Start int
	End   int

	// StartLine and EndLine are 1-based line numbers.
	StartLine int
	EndLine   int

	// TokenEstimate is a cheap heuristic token count.
	TokenEstimate int
}

// Segmenter splits text into overlapping segments.
type Segmenter struct {
	cfg Config
}

// New creates a segmenter. An overlap that is not smaller than the target
// chunk size is a configuration error, not a runtime fallback.
func New(cfg Config) (*Segmenter, error) {
	if cfg.TargetChunkSize <= 0 {
		return nil, fmt.Errorf("%w: target chunk size must be positive, got %d",
			domain.ErrInvalidInput, cfg.TargetChunkSize)
	}
	if cfg.OverlapSize < 0 {
		return nil, fmt.Errorf("%w: overlap size must be non-negative, got %d",
			domain.ErrInvalidInput, cfg.OverlapSize)
	}
	if cfg.OverlapSize >= cfg.TargetChunkSize {
		return nil, fmt.Errorf("%w: overlap size %d must be smaller than target chunk size %d",
			domain.ErrInvalidInput, cfg.OverlapSize, cfg.TargetChunkSize)
	}
	return &Segmenter{cfg: cfg}, nil
}

// Segment splits the text into overlapping segments. Empty or
// whitespace-only input yields an empty sequence.
func (s *Segmenter) Segment(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	n := len(text)
	if n <= s.cfg.TargetChunkSize {
		return []Segment{s.makeSegment(text, 0, n)}
	}

	estimated := n/(s.cfg.TargetChunkSize-s.cfg.OverlapSize) + 1
	segments := make([]Segment, 0, estimated)

	start := 0
	for start < n {
		end := start + s.cfg.TargetChunkSize
		if end >= n {
			end = n
		} else {
			end = s.cutPoint(text, start, end)
		}

		// Degenerate ranges are dropped; force progress past them.
		if end <= start {
			start++
			continue
		}

		if strings.TrimSpace(text[start:end]) != "" {
			segments = append(segments, s.makeSegment(text, start, end))
		}

		if end >= n {
			break
		}

		next := end - s.cfg.OverlapSize
		if next <= start {
			// Guarantee forward progress every iteration.
			next = start + 1
		}
		start = next
	}

	return segments
}

// cutPoint searches backward from the raw window end for a natural
// boundary. Without one inside the lookback, the raw offset stands and
// a single token longer than the window gets a raw cut.
func (s *Segmenter) cutPoint(text string, start, end int) int {
	if s.cfg.RespectParagraphBoundaries {
		limit := end - paragraphLookback
		if limit <= start {
			limit = start + 1
		}
		for i := end; i >= limit; i-- {
			if i >= 2 && text[i-1] == '\n' && text[i-2] == '\n' {
				return i
			}
		}
	}

	if s.cfg.RespectSentenceBoundaries {
		limit := end - sentenceLookback
		if limit <= start {
			limit = start + 1
		}
		for i := end - 1; i >= limit; i-- {
			if isSentenceEnd(text[i]) && i+1 < len(text) && isWhitespace(text[i+1]) {
				return i + 1
			}
		}
	}

	return end
}

func (s *Segmenter) makeSegment(text string, start, end int) Segment {
	content := text[start:end]
	startLine := strings.Count(text[:start], "\n") + 1
	return Segment{
		Content:       content,
		Start:         start,
		End:           end,
		StartLine:     startLine,
		EndLine:       startLine + strings.Count(content, "\n"),
		TokenEstimate: EstimateTokens(content),
	}
}

// EstimateTokens is a cheap token-count heuristic: max(words, chars/4).
// It is never a real tokenizer; callers must not rely on exactness.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if byChars := len(text) / 4; byChars > words {
		return byChars
	}
	return words
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
