package dispatch

import "github.com/deepreason/orchestrator/pkg/rpcerr"

// getString fetches a required string field from params.
func getString(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", rpcerr.New(rpcerr.KindInvalidInput, "missing required field: "+key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", rpcerr.New(rpcerr.KindInvalidInput, "field "+key+" must be a non-empty string")
	}
	return s, nil
}

// getStringOpt fetches an optional string field, returning def if absent.
func getStringOpt(params map[string]any, key, def string) string {
	v, ok := params[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// getIntOpt fetches an optional numeric field (JSON numbers decode as
// float64), returning def if absent or mistyped.
func getIntOpt(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return int(f)
}

// getBoolOpt fetches an optional boolean field, returning def if absent.
func getBoolOpt(params map[string]any, key string, def bool) bool {
	v, ok := params[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// getMap fetches a required nested object field.
func getMap(params map[string]any, key string) (map[string]any, error) {
	v, ok := params[key]
	if !ok {
		return nil, rpcerr.New(rpcerr.KindInvalidInput, "missing required field: "+key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, rpcerr.New(rpcerr.KindInvalidInput, "field "+key+" must be an object")
	}
	return m, nil
}

// getMapOpt fetches an optional nested object field, returning an empty
// map if absent.
func getMapOpt(params map[string]any, key string) map[string]any {
	v, ok := params[key]
	if !ok {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// getSlice fetches a required array field.
func getSlice(params map[string]any, key string) ([]any, error) {
	v, ok := params[key]
	if !ok {
		return nil, rpcerr.New(rpcerr.KindInvalidInput, "missing required field: "+key)
	}
	s, ok := v.([]any)
	if !ok {
		return nil, rpcerr.New(rpcerr.KindInvalidInput, "field "+key+" must be an array")
	}
	return s, nil
}

// getStringSlice fetches an optional array-of-strings field.
func getStringSlice(params map[string]any, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, e := range s {
		if str, ok := e.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
