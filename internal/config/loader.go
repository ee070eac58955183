package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves one variable. os.LookupEnv is the production source.
type LookupFunc func(name string) (string, bool)

// Load builds the configuration from the process environment and validates it.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds the configuration from lookup. Every bad variable is
// reported, not just the first.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := fill(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads variables from the given .env files, or from ./.env when
// none are given. Values already set in the environment win. A missing file is
// not an error.
func LoadEnvFiles(files ...string) (loaded bool, err error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, statErr := os.Stat(f); statErr == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return false, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return false, fmt.Errorf("load env file: %w", err)
	}
	return true, nil
}

// envTag is the parsed form of a field's env, envAlt, default and required tags.
type envTag struct {
	names    []string
	fallback string
	required bool
}

func parseTag(f reflect.StructField) (envTag, bool) {
	primary := f.Tag.Get("env")
	if primary == "" {
		return envTag{}, false
	}
	t := envTag{
		names:    []string{primary},
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	if alt := f.Tag.Get("envAlt"); alt != "" {
		t.names = append(t.names, alt)
	}
	return t, true
}

// resolve returns the first non-empty value among the tag's names, then the
// default.
func (t envTag) resolve(lookup LookupFunc) (string, error) {
	for _, name := range t.names {
		if v, ok := lookup(name); ok && v != "" {
			return v, nil
		}
	}
	if t.required {
		return "", fmt.Errorf("required environment variable %s is not set", t.names[0])
	}
	return t.fallback, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// fill walks the nested config sections and sets every tagged field.
func fill(v reflect.Value, lookup LookupFunc) error {
	var errs []error
	for i := range v.NumField() {
		sf := v.Type().Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			if err := fill(fv, lookup); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		tag, ok := parseTag(sf)
		if !ok {
			continue
		}
		raw, err := tag.resolve(lookup)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", tag.names[0], raw, err))
		}
	}
	return errors.Join(errs...)
}

// assign parses raw into the field's type.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", fv.Type().Elem().Kind())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
