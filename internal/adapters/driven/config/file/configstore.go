package file

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultEnvBindings maps environment variables onto configuration keys.
func DefaultEnvBindings() map[string]string {
	return map[string]string{
		"OVERPASS_API_URL":                "overpass.url",
		"GOOGLE_CLOUD_PROJECT":            "firestore.project",
		"GOOGLE_CLOUD_FIRESTORE_DATABASE": "firestore.database",
		"GOOGLE_APPLICATION_CREDENTIALS":  "firestore.credentials_file",
		"GOLF_LOADER_STORE":               "store.backend",
	}
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Bound environment variables take precedence over the file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any

	getenv func(string) string
	env    map[string]string // config key -> variable
}

// Option configures a ConfigStore.
type Option func(*ConfigStore)

// WithEnv overlays environment variables onto keys. bindings maps variable
// names to configuration keys; empty variables are ignored.
func WithEnv(getenv func(string) string, bindings map[string]string) Option {
	return func(s *ConfigStore) {
		s.getenv = getenv
		for variable, key := range bindings {
			s.env[key] = variable
		}
	}
}

// NewConfigStore creates a new TOML-based config store reading path.
// If path is empty, defaults to ~/.golf-loader/config.toml. A missing file
// is an empty configuration.
func NewConfigStore(path string, opts ...Option) (*ConfigStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".golf-loader", "config.toml")
	}

	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
		env:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v := s.lookupEnv(key); v != "" {
		return v, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

func (s *ConfigStore) lookupEnv(key string) string {
	if s.getenv == nil {
		return ""
	}
	variable, ok := s.env[key]
	if !ok {
		return ""
	}
	return s.getenv(variable)
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
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// GetFloat retrieves a numeric configuration value. Integers are widened.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Keys returns the keys set in the file or through bound variables.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	for key := range s.env {
		if s.lookupEnv(key) != "" && !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}

	// Write with restricted permissions
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

	if loaded == nil {
		loaded = make(map[string]any)
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// flattenMap converts nested tables to dot-notation keys.
// E.g., [overpass] url = "x" becomes {"overpass.url": "x"}.
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

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
