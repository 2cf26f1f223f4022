// Package flagx binds cobra flags to tagged struct fields.
//
//	type BenchOptions struct {
//	    Workers int           `flag:"workers,w" usage:"pool size" default:"8"`
//	    Timeout time.Duration `flag:"timeout" default:"30s"`
//	}
//
//	var opts BenchOptions
//	flagx.BindFlags(cmd, &opts)       // at command construction
//	flagx.ParseFlags(cmd, &opts)      // in RunE
package flagx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var durationType = reflect.TypeOf(time.Duration(0))

// BindFlags registers one flag per `flag`-tagged field.
// Supported tags: flag ("name" or "name,n"), usage, default, required, persistent.
func BindFlags(cmd *cobra.Command, target interface{}) error {
	t, err := structType(target)
	if err != nil {
		return err
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, short := flagName(field)
		if name == "" {
			continue
		}

		flags := cmd.Flags()
		if field.Tag.Get("persistent") == "true" {
			flags = cmd.PersistentFlags()
		}

		if err := registerFlag(flags, field, name, short, field.Tag.Get("usage"), field.Tag.Get("default")); err != nil {
			return fmt.Errorf("bind field %s: %w", field.Name, err)
		}

		if field.Tag.Get("required") == "true" {
			if err := cmd.MarkFlagRequired(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseFlags copies flag values into the tagged fields of target
func ParseFlags(cmd *cobra.Command, target interface{}) error {
	t, err := structType(target)
	if err != nil {
		return err
	}
	v := reflect.ValueOf(target).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		name, _ := flagName(t.Field(i))
		if name == "" || !field.CanSet() {
			continue
		}
		if err := setFieldValue(cmd, field, name); err != nil {
			return fmt.Errorf("parse field %s: %w", t.Field(i).Name, err)
		}
	}
	return nil
}

func structType(target interface{}) (reflect.Type, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("target must be a pointer to struct")
	}
	return v.Elem().Type(), nil
}

func flagName(field reflect.StructField) (name, short string) {
	tag := field.Tag.Get("flag")
	if tag == "" {
		return "", ""
	}
	name, short, _ = strings.Cut(tag, ",")
	return name, short
}

type flagSet interface {
	StringP(name, shorthand, value, usage string) *string
	IntP(name, shorthand string, value int, usage string) *int
	BoolP(name, shorthand string, value bool, usage string) *bool
	Float64P(name, shorthand string, value float64, usage string) *float64
	DurationP(name, shorthand string, value time.Duration, usage string) *time.Duration
	StringSliceP(name, shorthand string, value []string, usage string) *[]string
	IntSliceP(name, shorthand string, value []int, usage string) *[]int
}

func registerFlag(flags flagSet, field reflect.StructField, name, short, usage, defaultVal string) error {
	if field.Type == durationType {
		var def time.Duration
		if defaultVal != "" {
			d, err := time.ParseDuration(defaultVal)
			if err != nil {
				return fmt.Errorf("default %q: %w", defaultVal, err)
			}
			def = d
		}
		flags.DurationP(name, short, def, usage)
		return nil
	}

	switch field.Type.Kind() {
	case reflect.String:
		flags.StringP(name, short, defaultVal, usage)

	case reflect.Int:
		def := 0
		if defaultVal != "" {
			n, err := strconv.Atoi(defaultVal)
			if err != nil {
				return fmt.Errorf("default %q: %w", defaultVal, err)
			}
			def = n
		}
		flags.IntP(name, short, def, usage)

	case reflect.Bool:
		def := false
		if defaultVal != "" {
			b, err := strconv.ParseBool(defaultVal)
			if err != nil {
				return fmt.Errorf("default %q: %w", defaultVal, err)
			}
			def = b
		}
		flags.BoolP(name, short, def, usage)

	case reflect.Float64:
		def := 0.0
		if defaultVal != "" {
			f, err := strconv.ParseFloat(defaultVal, 64)
			if err != nil {
				return fmt.Errorf("default %q: %w", defaultVal, err)
			}
			def = f
		}
		flags.Float64P(name, short, def, usage)

	case reflect.Slice:
		var def []string
		if defaultVal != "" {
			def = strings.Split(defaultVal, ",")
		}
		switch field.Type.Elem().Kind() {
		case reflect.String:
			flags.StringSliceP(name, short, def, usage)
		case reflect.Int:
			ints := make([]int, 0, len(def))
			for _, s := range def {
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil {
					return fmt.Errorf("default %q: %w", defaultVal, err)
				}
				ints = append(ints, n)
			}
			flags.IntSliceP(name, short, ints, usage)
		default:
			return fmt.Errorf("unsupported slice element type: %s", field.Type.Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type.Kind())
	}
	return nil
}

func setFieldValue(cmd *cobra.Command, field reflect.Value, name string) error {
	flags := cmd.Flags()

	if field.Type() == durationType {
		val, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		field.SetInt(int64(val))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		val, err := flags.GetString(name)
		if err != nil {
			return err
		}
		field.SetString(val)

	case reflect.Int:
		val, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		field.SetInt(int64(val))

	case reflect.Bool:
		val, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		field.SetBool(val)

	case reflect.Float64:
		val, err := flags.GetFloat64(name)
		if err != nil {
			return err
		}
		field.SetFloat(val)

	case reflect.Slice:
		switch field.Type().Elem().Kind() {
		case reflect.String:
			val, err := flags.GetStringSlice(name)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(val))
		case reflect.Int:
			val, err := flags.GetIntSlice(name)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(val))
		default:
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
