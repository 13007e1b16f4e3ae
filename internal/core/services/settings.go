package services

import (
	"fmt"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
)

// Configuration key paths. Keys are dotted TOML paths so the config file
// groups naturally into [embedding], [llm], and [rag] tables.
const (
	keyEmbeddingProvider   = "embedding.provider"
	keyEmbeddingAPIKey     = "embedding.api_key"
	keyEmbeddingBaseURL    = "embedding.base_url"
	keyEmbeddingModel      = "embedding.model"
	keyEmbeddingDimensions = "embedding.dimensions"

	keyLLMProvider    = "llm.provider"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMModel       = "llm.model"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMTemperature = "llm.temperature"

	keyRAGChunkSize    = "rag.chunk_size"
	keyRAGChunkOverlap = "rag.chunk_overlap"
	keyRAGTopK         = "rag.top_k"
	keyRAGMinScore     = "rag.min_score"
	keyRAGMaxAttempts  = "rag.max_attempts"
)

// Settings reads and writes typed application settings through the
// configuration store. Missing keys fall back to defaults; provider
// settings with no provider configured stay unconfigured rather than
// erroring, so the CLI can run index-only workflows without credentials.
type Settings struct {
	store driven.ConfigStore
}

// NewSettings creates a settings service over a config store.
func NewSettings(store driven.ConfigStore) *Settings {
	return &Settings{store: store}
}

// Embedding assembles the embedding provider settings. The result is
// never nil; check IsConfigured before building a service from it.
func (s *Settings) Embedding() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider:   domain.AIProvider(s.store.GetString(keyEmbeddingProvider)),
		APIKey:     s.store.GetString(keyEmbeddingAPIKey),
		BaseURL:    s.store.GetString(keyEmbeddingBaseURL),
		Model:      s.store.GetString(keyEmbeddingModel),
		Dimensions: s.store.GetInt(keyEmbeddingDimensions),
	}
}

// LLM assembles the LLM provider settings. The result is never nil;
// check IsConfigured before building a service from it.
func (s *Settings) LLM() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider:    domain.AIProvider(s.store.GetString(keyLLMProvider)),
		APIKey:      s.store.GetString(keyLLMAPIKey),
		BaseURL:     s.store.GetString(keyLLMBaseURL),
		Model:       s.store.GetString(keyLLMModel),
		MaxTokens:   s.store.GetInt(keyLLMMaxTokens),
		Temperature: s.store.GetFloat(keyLLMTemperature),
	}
}

// RAG assembles retrieval tuning, overlaying configured values on the
// defaults.
func (s *Settings) RAG() domain.RAGSettings {
	rag := domain.DefaultRAGSettings()
	if v := s.store.GetInt(keyRAGChunkSize); v > 0 {
		rag.ChunkSize = v
	}
	if v, ok := s.store.Get(keyRAGChunkOverlap); ok {
		if n, ok := v.AsInt(); ok && n >= 0 {
			rag.ChunkOverlap = n
		}
	}
	if v := s.store.GetInt(keyRAGTopK); v > 0 {
		rag.TopK = v
	}
	if v, ok := s.store.Get(keyRAGMinScore); ok {
		if f, ok := v.AsNumber(); ok {
			rag.MinScore = f
		}
	}
	if v := s.store.GetInt(keyRAGMaxAttempts); v > 0 {
		rag.MaxAttempts = v
	}
	return rag
}

// SetEmbeddingProvider stores the embedding provider configuration.
func (s *Settings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, provider)
	}
	if err := s.store.Set(keyEmbeddingProvider, domain.String(provider.String())); err != nil {
		return err
	}
	if model != "" {
		if err := s.store.Set(keyEmbeddingModel, domain.String(model)); err != nil {
			return err
		}
	}
	if apiKey != "" {
		return s.store.Set(keyEmbeddingAPIKey, domain.String(apiKey))
	}
	return nil
}

// SetLLMProvider stores the LLM provider configuration.
func (s *Settings) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, provider)
	}
	if err := s.store.Set(keyLLMProvider, domain.String(provider.String())); err != nil {
		return err
	}
	if model != "" {
		if err := s.store.Set(keyLLMModel, domain.String(model)); err != nil {
			return err
		}
	}
	if apiKey != "" {
		return s.store.Set(keyLLMAPIKey, domain.String(apiKey))
	}
	return nil
}

// Get retrieves a raw configuration value by dotted key.
func (s *Settings) Get(key string) (domain.Value, bool) {
	return s.store.Get(key)
}

// Set stores a raw configuration value by dotted key.
func (s *Settings) Set(key string, value domain.Value) error {
	return s.store.Set(key, value)
}
