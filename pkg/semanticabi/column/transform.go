package column

import (
	"fmt"
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/value"
)

// HexNormalizeTransform lowercases a hex string (or each element of a list of hex strings),
// optionally pulling the raw value from a different source column than the one it's attached to.
type HexNormalizeTransform struct {
	sourceCol string
}

func NewHexNormalize(sourceCol string) *HexNormalizeTransform {
	return &HexNormalizeTransform{sourceCol: sourceCol}
}

func (t *HexNormalizeTransform) Transform(row map[string]any, key string) (any, error) {
	col := key
	if t.sourceCol != "" {
		col = t.sourceCol
	}
	v, ok := row[col]
	if !ok || v == nil {
		return nil, nil
	}

	switch s := v.(type) {
	case string:
		return strings.ToLower(s), nil
	case []string:
		out := make([]string, len(s))
		for i, item := range s {
			out[i] = strings.ToLower(item)
		}
		return out, nil
	case []any:
		out := make([]string, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("column %s: cannot hex-normalize element %T", col, item)
			}
			out[i] = strings.ToLower(str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("column %s: cannot hex-normalize %T", col, v)
	}
}

// HexToFloatTransform reads a hex or numeric value out of row and converts it to a float64.
type HexToFloatTransform struct {
	sourceCol string
}

func NewHexToFloat(sourceCol string) *HexToFloatTransform {
	return &HexToFloatTransform{sourceCol: sourceCol}
}

func (t *HexToFloatTransform) Transform(row map[string]any, key string) (any, error) {
	col := key
	if t.sourceCol != "" {
		col = t.sourceCol
	}
	v, ok := row[col]
	if !ok {
		return nil, nil
	}
	return value.HexToFloat(v)
}

// HexToIntTransform reads a hex or numeric value out of row and converts it to an int64, capping
// it at maxValue if set and falling back to defaultValue when the source is absent.
type HexToIntTransform struct {
	sourceCol    string
	defaultValue *int64
	maxValue     *int64
}

type HexToIntOpt func(*HexToIntTransform)

func WithSourceColumn(name string) HexToIntOpt {
	return func(t *HexToIntTransform) { t.sourceCol = name }
}

func WithDefaultValue(v int64) HexToIntOpt {
	return func(t *HexToIntTransform) { t.defaultValue = &v }
}

func WithMaxValue(v int64) HexToIntOpt {
	return func(t *HexToIntTransform) { t.maxValue = &v }
}

func NewHexToInt(opts ...HexToIntOpt) *HexToIntTransform {
	t := &HexToIntTransform{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HexToIntTransform) Transform(row map[string]any, key string) (any, error) {
	col := key
	if t.sourceCol != "" {
		col = t.sourceCol
	}
	v, ok := row[col]
	if !ok || v == nil {
		if t.defaultValue != nil {
			return *t.defaultValue, nil
		}
		return nil, nil
	}
	n, err := value.HexToInt(v)
	if err != nil {
		return nil, err
	}
	if t.maxValue != nil && n > *t.maxValue {
		return *t.maxValue, nil
	}
	return n, nil
}

// ToStringTransform wraps a base Transform and stringifies whatever non-string value it
// produces, leaving strings and nils untouched.
type ToStringTransform struct {
	inner Transform
}

func NewToString(inner Transform) *ToStringTransform {
	return &ToStringTransform{inner: inner}
}

func (t *ToStringTransform) Transform(row map[string]any, key string) (any, error) {
	v, err := t.inner.Transform(row, key)
	if err != nil || v == nil {
		return v, err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}
