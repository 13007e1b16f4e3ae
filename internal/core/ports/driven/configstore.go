package driven

import "github.com/lumenchat/lumen/internal/core/domain"

// ConfigStore provides durable key-value configuration. Keys use dotted
// paths ("llm.provider"); values are explicit domain.Value variants rather
// than dynamically typed payloads.
type ConfigStore interface {
	// Get retrieves a configuration value by dotted key path.
	Get(key string) (domain.Value, bool)

	// GetString retrieves a string value, or "" when absent or mistyped.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 when absent or mistyped.
	GetInt(key string) int

	// GetFloat retrieves a float value, or 0 when absent or mistyped.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, or false when absent or mistyped.
	GetBool(key string) bool

	// Set stores a configuration value by dotted key path and persists it.
	Set(key string, value domain.Value) error

	// Load re-reads configuration from the backing file.
	Load() error
}
