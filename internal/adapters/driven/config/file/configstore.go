package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using
// TOML. Values are held as explicit domain.Value variants; keys use dotted
// paths matching the TOML table structure.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]domain.Value
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.lumen/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".lumen")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]domain.Value),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by dotted key path.
func (s *ConfigStore) Get(key string) (domain.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string value, or "" when absent or mistyped.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := val.AsString()
	return str
}

// GetInt retrieves an integer value, or 0 when absent or mistyped.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	n, _ := val.AsInt()
	return n
}

// GetFloat retrieves a float value, or 0 when absent or mistyped.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	f, _ := val.AsNumber()
	return f
}

// GetBool retrieves a boolean value, or false when absent or mistyped.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := val.AsBool()
	return b
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value domain.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	nested := make(map[string]any)
	for key, value := range s.data {
		insertPath(nested, key, value.ToAny())
	}

	data, err := toml.Marshal(nested)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file. A missing file is not an
// error; the store starts empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]domain.Value)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	flat, err := flattenValues(loaded, "")
	if err != nil {
		return fmt.Errorf("reading config values: %w", err)
	}
	s.data = flat
	return nil
}

// flattenValues converts nested tables to dot-notation keys with explicit
// Value variants. E.g., {"llm": {"model": "x"}} becomes {"llm.model": x}.
func flattenValues(m map[string]any, prefix string) (map[string]domain.Value, error) {
	result := make(map[string]domain.Value)

	for key, raw := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := raw.(map[string]any); ok {
			flat, err := flattenValues(nested, fullKey)
			if err != nil {
				return nil, err
			}
			for k, v := range flat {
				result[k] = v
			}
			continue
		}

		value, err := domain.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", fullKey, err)
		}
		result[fullKey] = value
	}

	return result, nil
}

// insertPath places a value into a nested map following a dotted key path.
func insertPath(m map[string]any, key string, value any) {
	for {
		head, rest, found := strings.Cut(key, ".")
		if !found {
			m[key] = value
			return
		}

		child, ok := m[head].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[head] = child
		}
		m, key = child, rest
	}
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
