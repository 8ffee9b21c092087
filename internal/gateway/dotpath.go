package gateway

import (
	"maps"
	"strings"
)

// Params is the parameter object of one RPC call: field name to scalar,
// slice of scalars or nested Params-shaped map.
type Params = map[string]any

// Get walks a dot separated path through nested maps. When an intermediate
// value is not a map the walk stops and that value is returned as is.
func Get(obj Params, path string) any {
	var value any = obj
	for _, segment := range strings.Split(path, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return value
		}
		value = m[segment]
	}
	return value
}

// Unset returns a copy of obj without the field at path. Maps along the path
// are copied, every other branch is shared with obj, and obj itself is never
// modified.
func Unset(obj Params, path string) Params {
	return unset(obj, strings.Split(path, "."))
}

func unset(obj Params, keys []string) Params {
	out := make(Params, len(obj))
	maps.Copy(out, obj)
	key := keys[0]
	if len(keys) == 1 {
		delete(out, key)
		return out
	}
	child, ok := out[key].(map[string]any)
	if !ok {
		return out
	}
	out[key] = unset(child, keys[1:])
	return out
}
