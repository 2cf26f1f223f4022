// Package config loads layered configuration: yaml files, environment
// variables and command line flags, merged by source priority.
package config

// ConfigSource is one layer of configuration
type ConfigSource interface {
	// Name for logs and errors
	Name() string

	// Priority higher values override lower ones.
	// Conventions: config.yaml 10, <env>.yaml 20, environment 50, flags 100.
	Priority() int

	// Load returns flat, dot-separated keys such as "event.pool_size"
	Load() (map[string]interface{}, error)
}
