package config

import (
	"fmt"
	"reflect"
	"strings"
)

// FlagSource maps a flags struct onto config keys through `config` tags.
// Zero-valued fields are skipped so unset flags never override files.
//
//	type Flags struct {
//	    PoolSize int `config:"event.pool_size"`
//	}
type FlagSource struct {
	flags    interface{}
	priority int
}

// NewFlagSource creates a flag source from a struct or struct pointer
func NewFlagSource(flags interface{}, priority int) *FlagSource {
	return &FlagSource{
		flags:    flags,
		priority: priority,
	}
}

// Name data source name
func (s *FlagSource) Name() string {
	return "flags"
}

// Priority source priority
func (s *FlagSource) Priority() int {
	return s.priority
}

// Load reads every tagged, non-zero field
func (s *FlagSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.flags == nil {
		return result, nil
	}

	v := reflect.ValueOf(s.flags)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return result, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("flags must be a struct or pointer to struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanInterface() || field.IsZero() {
			continue
		}

		// several keys may share one flag: `config:"a.b,c.d"`
		for _, key := range strings.Split(t.Field(i).Tag.Get("config"), ",") {
			key = strings.TrimSpace(key)
			if key == "" || key == "-" {
				continue
			}
			result[key] = field.Interface()
		}
	}

	return result, nil
}
