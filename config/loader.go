package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges configuration sources and serves the result through viper.
// It implements component.ConfigLoader.
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]interface{} // flat keys
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		mergedConfig: make(map[string]interface{}),
		v:            viper.New(),
	}
}

// AddSource adds a configuration layer
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load reads every source from lowest to highest priority and merges them
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]interface{})
	var files []string
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}

		if fileSource, ok := source.(*FileSource); ok {
			files = append(files, fileSource.path)
		}

		mergeFlat(merged, data)
	}

	l.mergedConfig = merged
	l.loadedFiles = files
	l.syncToViper()
	return nil
}

// mergeFlat copies data over dst. A key replaces the deeper keys it covers
// and the scalar ancestors it lives under.
func mergeFlat(dst, data map[string]interface{}) {
	for key, value := range data {
		prefix := key + "."
		for existing := range dst {
			if strings.HasPrefix(existing, prefix) {
				delete(dst, existing)
			}
		}
		for i := strings.LastIndex(key, "."); i > 0; i = strings.LastIndex(key[:i], ".") {
			delete(dst, key[:i])
		}
		dst[key] = value
	}
}

// syncToViper rebuilds the viper instance from the merged flat map
func (l *Loader) syncToViper() {
	nested := unflattenMap(l.mergedConfig)

	l.v = viper.New()
	for key, value := range nested {
		l.v.Set(key, value)
	}
}

// unflattenMap {"event.pool_size": 10} -> {"event": {"pool_size": 10}}
func unflattenMap(flat map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for key, value := range flat {
		setNestedValue(result, key, value)
	}
	return result
}

func setNestedValue(m map[string]interface{}, key string, value interface{}) {
	keys := splitKey(key)
	if len(keys) == 0 {
		return
	}

	current := m
	for _, k := range keys[:len(keys)-1] {
		nested, ok := current[k].(map[string]interface{})
		if !ok {
			// a scalar at this level is replaced by the deeper key
			nested = make(map[string]interface{})
			current[k] = nested
		}
		current = nested
	}
	current[keys[len(keys)-1]] = value
}

// splitKey splits on dots, dropping empty segments
func splitKey(key string) []string {
	parts := strings.Split(key, ".")
	result := parts[:0]
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Unmarshal decodes the section at key into v
func (l *Loader) Unmarshal(key string, v interface{}) error {
	return l.v.UnmarshalKey(key, v)
}

// UnmarshalAll decodes the whole configuration into v
func (l *Loader) UnmarshalAll(v interface{}) error {
	return l.v.Unmarshal(v)
}

// Get configuration value
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString string value
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt integer value
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool boolean value
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// IsSet reports whether key exists
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// AllSettings returns the nested configuration
func (l *Loader) AllSettings() map[string]interface{} {
	return l.v.AllSettings()
}

// GetLoadedFiles lists the file sources read by the last Load
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}

// GetViper returns the underlying viper instance
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// Reload reads every source again
func (l *Loader) Reload() error {
	return l.Load()
}
