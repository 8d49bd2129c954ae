package tool

import "fmt"

func stringInput(inputs map[string]any, key string) (string, bool) {
	v, ok := inputs[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func boolInput(inputs map[string]any, key string) bool {
	v, ok := inputs[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// stringSliceInput accepts []string, []any of strings, or a single string.
func stringSliceInput(inputs map[string]any, key string) ([]string, error) {
	v, ok := inputs[key]
	if !ok {
		return nil, nil
	}
	switch typed := v.(type) {
	case []string:
		return typed, nil
	case string:
		return []string{typed}, nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("input %q must contain strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("input %q must be a string or list of strings", key)
	}
}
