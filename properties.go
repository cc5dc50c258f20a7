// Package svcreg provides the Properties service: process-wide key/value
// configuration loaded from a file, intended to be bound into the registry
// as a named service.
package svcreg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

// Properties holds flattened configuration values keyed by dotted paths:
// a nested document {"db": {"host": "x"}} yields the key "db.host".
// It is safe for concurrent use.
type Properties struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewProperties creates an empty Properties instance.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]any)}
}

// LoadProperties reads a configuration file into a new Properties instance.
// The format is chosen by file extension: .yaml/.yml, .toml, or .json.
func LoadProperties(path string) (*Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	}

	raw := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML properties: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML properties: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON properties: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigType, ext)
	}

	p := NewProperties()
	flattenInto(p.values, "", raw)
	return p, nil
}

// flattenInto copies a nested document into dst using dotted keys.
func flattenInto(dst map[string]any, prefix string, src map[string]any) {
	for key, value := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			flattenInto(dst, full, nested)
			continue
		}
		dst[full] = value
	}
}

// Get returns the raw value for key.
func (p *Properties) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Set stores a value under key, replacing any previous value.
func (p *Properties) Set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// Keys returns all keys in sorted order.
func (p *Properties) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.values))
	for key := range p.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value for key as a string.
func (p *Properties) String(key string) (string, error) {
	v, ok := p.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPropertyNotFound, key)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}

// Int returns the value for key converted to an int.
func (p *Properties) Int(key string) (int, error) {
	return convertProperty[int](p, key)
}

// Bool returns the value for key converted to a bool.
func (p *Properties) Bool(key string) (bool, error) {
	return convertProperty[bool](p, key)
}

// Float returns the value for key converted to a float64.
func (p *Properties) Float(key string) (float64, error) {
	return convertProperty[float64](p, key)
}

// Duration returns the value for key parsed as a time.Duration, e.g. "250ms".
func (p *Properties) Duration(key string) (time.Duration, error) {
	s, err := p.String(key)
	if err != nil {
		return 0, err
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", key, err)
	}
	return d, nil
}

// convertProperty fetches key and coerces it to T, going through a string
// round trip for values the document parser typed differently.
func convertProperty[T any](p *Properties, key string) (T, error) {
	var zero T

	v, ok := p.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrPropertyNotFound, key)
	}

	if typed, ok := v.(T); ok {
		return typed, nil
	}

	converted, err := cast.FromType(fmt.Sprintf("%v", v), reflect.TypeOf(zero))
	if err != nil {
		return zero, fmt.Errorf("property %q: %w", key, err)
	}

	typed, ok := converted.(T)
	if !ok {
		return zero, fmt.Errorf("property %q: cannot convert %T to %T", key, v, zero)
	}
	return typed, nil
}
