package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parameter types
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeString  = "string"
	TypeBoolean = "boolean"
)

// Parameter defines a configurable input of a protocol
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// Parse converts a raw value (YAML scalar, env var or prompt answer) into the
// parameter's type and checks its bounds.
func (p Parameter) Parse(raw interface{}) (interface{}, error) {
	var value interface{}
	switch p.Type {
	case TypeInteger:
		n, err := asInt(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		if p.Min != nil {
			if lo, err := asInt(p.Min); err == nil && n < lo {
				return nil, fmt.Errorf("%s: value must be at least %d", p.Name, lo)
			}
		}
		if p.Max != nil {
			if hi, err := asInt(p.Max); err == nil && n > hi {
				return nil, fmt.Errorf("%s: value must be at most %d", p.Name, hi)
			}
		}
		value = n
	case TypeFloat:
		f, err := asFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		if p.Min != nil {
			if lo, err := asFloat(p.Min); err == nil && f < lo {
				return nil, fmt.Errorf("%s: value must be at least %g", p.Name, lo)
			}
		}
		if p.Max != nil {
			if hi, err := asFloat(p.Max); err == nil && f > hi {
				return nil, fmt.Errorf("%s: value must be at most %g", p.Name, hi)
			}
		}
		value = f
	case TypeString:
		s := fmt.Sprint(raw)
		if len(p.Options) > 0 && !contains(p.Options, s) {
			return nil, fmt.Errorf("%s: must be one of: %s", p.Name, strings.Join(p.Options, ", "))
		}
		value = s
	case TypeBoolean:
		switch v := raw.(type) {
		case bool:
			value = v
		default:
			b, err := strconv.ParseBool(fmt.Sprint(v))
			if err != nil {
				return nil, fmt.Errorf("%s: invalid boolean %q", p.Name, fmt.Sprint(v))
			}
			value = b
		}
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", p.Type)
	}
	return value, nil
}

// Resolve fills in defaults for params not present in values and parses the
// rest. Unknown names are rejected.
func Resolve(params []Parameter, values map[string]interface{}) (map[string]interface{}, error) {
	known := make(map[string]bool, len(params))
	result := make(map[string]interface{}, len(params))

	for _, p := range params {
		known[p.Name] = true
		raw, ok := values[p.Name]
		if !ok {
			raw = p.Default
		}
		if raw == nil {
			if p.Required {
				return nil, fmt.Errorf("required parameter %s not provided and no default available", p.Name)
			}
			continue
		}
		v, err := p.Parse(raw)
		if err != nil {
			return nil, err
		}
		result[p.Name] = v
	}

	for name := range values {
		if !known[name] {
			return nil, fmt.Errorf("unknown parameter %s", name)
		}
	}
	return result, nil
}

func asInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("invalid integer %v", val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", val)
		}
		return n, nil
	}
	return 0, fmt.Errorf("invalid integer %v", v)
}

func asFloat(v interface{}) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("invalid number %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %v: must be finite", v)
	}
	return f, nil
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
