package component

// ConfigLoader is the read-only configuration surface components consume
type ConfigLoader interface {
	// Get raw value
	Get(key string) interface{}

	// Unmarshal decodes the section at key into v
	Unmarshal(key string, v interface{}) error

	GetString(key string) string

	GetInt(key string) int

	GetBool(key string) bool

	IsSet(key string) bool
}
