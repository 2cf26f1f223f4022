package config

import (
	"os"
	"strings"
)

// EnvSource reads environment variables.
//
// With explicit bindings only the bound variables are read. Otherwise every
// variable starting with PREFIX_ is mapped: a double underscore separates
// sections and a single underscore stays part of the key, so
// APP_EVENT__POOL_SIZE becomes event.pool_size.
type EnvSource struct {
	prefix   string // such as "APP"
	priority int
	bindings map[string]string // config key -> env var, such as "event.pool_size" -> "EVENT_POOL_SIZE"
}

// NewEnvSource creates an environment source
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// AddBinding maps key to envKey; the prefix is added when missing
func (s *EnvSource) AddBinding(key, envKey string) {
	s.bindings[key] = envKey
}

// Name data source name
func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

// Priority source priority
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load reads the matching variables; empty values are skipped
func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})

	if len(s.bindings) > 0 {
		for key, envKey := range s.bindings {
			fullEnvKey := envKey
			if s.prefix != "" && !strings.HasPrefix(envKey, s.prefix+"_") {
				fullEnvKey = s.prefix + "_" + envKey
			}
			if value := os.Getenv(fullEnvKey); value != "" {
				result[key] = value
			}
		}
		return result, nil
	}

	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || value == "" || !strings.HasPrefix(key, prefix) {
			continue
		}
		result[envToKey(strings.TrimPrefix(key, prefix))] = value
	}

	return result, nil
}

// envToKey EVENT__POOL_SIZE -> event.pool_size
func envToKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}
