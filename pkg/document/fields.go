package document

import "fmt"

// asString coerces a decoded JSON value to a string, rejecting anything
// with the wrong wire type instead of silently stringifying it.
func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

// asInt coerces a decoded JSON value to an int. encoding/json decodes
// numbers into float64 when the target is interface{}, so that is the
// expected shape; a plain int is also accepted for values built in-process.
func asInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// asStringSlice coerces a decoded JSON value to a []string.
func asStringSlice(v interface{}) ([]string, error) {
	switch s := v.(type) {
	case []string:
		return s, nil
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string element, got %T", e)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string array, got %T", v)
	}
}
