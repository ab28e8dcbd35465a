package stats

import (
	"encoding/json"
	"fmt"
)

// Helpers for reading loosely-typed event payloads decoded with UseNumber.

func get(m map[string]any, key string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	return v, nil
}

func getString(m map[string]any, key string) (string, error) {
	v, err := get(m, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, v)
	}
	return s, nil
}

func getList(m map[string]any, key string) ([]any, error) {
	v, err := get(m, key)
	if err != nil {
		return nil, err
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, want list", key, v)
	}
	return l, nil
}

func getMap(m map[string]any, key string) (map[string]any, error) {
	v, err := get(m, key)
	if err != nil {
		return nil, err
	}
	o, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, want object", key, v)
	}
	return o, nil
}

// getID reads a field used as an id segment: a string or an integer.
func getID(m map[string]any, key string) (string, error) {
	v, err := get(m, key)
	if err != nil {
		return "", err
	}
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		if _, err := id.Int64(); err != nil {
			return "", fmt.Errorf("field %q: %w", key, err)
		}
		return id.String(), nil
	}
	return "", fmt.Errorf("field %q is %T, want id", key, v)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

func correctScore(v any) float64 {
	if truthy(v) {
		return 1
	}
	return 0
}

// truthy treats null, false, zero, "" and empty collections as absent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}
