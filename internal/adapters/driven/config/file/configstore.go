package file

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvConfigDir overrides the default configuration directory.
const EnvConfigDir = "CTXPORT_CONFIG_DIR"

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// DefaultDir returns the configuration directory: $CTXPORT_CONFIG_DIR if
// set, otherwise ~/.ctxport.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ctxport"), nil
}

// NewConfigStore creates a TOML-based config store in configDir.
// If configDir is empty, DefaultDir is used.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}

	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}

	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}

// GetStringMap returns the string values stored under prefix, keyed by
// the rest of the key.
func (s *ConfigStore) GetStringMap(prefix string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := prefix + "."
	result := make(map[string]string)
	for k, v := range s.data {
		rest, ok := strings.CutPrefix(k, p)
		if !ok {
			continue
		}
		if str, ok := v.(string); ok {
			result[rest] = str
		}
	}
	return result
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// nestMap reverses flattenMap so tables are written as TOML tables.
// A scalar and a table under the same name keep the scalar.
func nestMap(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		ok := true
		for _, p := range parts[:len(parts)-1] {
			child, exists := node[p]
			if !exists {
				next := make(map[string]any)
				node[p] = next
				node = next
				continue
			}
			next, isMap := child.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = next
		}
		if ok {
			node[parts[len(parts)-1]] = flat[key]
		}
	}
	return root
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
